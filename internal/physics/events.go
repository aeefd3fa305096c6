package physics

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// EventKind says what produced a collision event. Effects, audio and AI
// subscribe to one channel regardless of cause.
type EventKind int

const (
	EventContact EventKind = iota
	EventProjectileHit
	EventBlast
)

func (k EventKind) String() string {
	switch k {
	case EventContact:
		return "contact"
	case EventProjectileHit:
		return "projectile_hit"
	case EventBlast:
		return "blast"
	default:
		return "unknown"
	}
}

// CollisionEvent describes one contact from the perspective of Body: the
// normal points away from Body. Other is nil for projectile hits and
// blasts. Events are ephemeral; consumers must copy what they keep.
type CollisionEvent struct {
	Kind          EventKind
	Body          *Body
	Other         *Body
	Contact       rl.Vector3
	Normal        rl.Vector3
	Penetration   float32
	Impulse       float32
	RelativeSpeed float32
	Damage        float32
	Timestamp     time.Time
}

// collisionEventList is a multicast listener set for world-level
// subscribers (effects, audio, scoring).
type collisionEventList struct {
	listeners []CollisionListener
}

func (l *collisionEventList) add(listener CollisionListener) {
	if listener == nil {
		return
	}
	l.listeners = append(l.listeners, listener)
}

func (l *collisionEventList) clear() {
	l.listeners = nil
}

func (l *collisionEventList) invoke(ev CollisionEvent) {
	for _, listener := range l.listeners {
		listener.OnCollision(ev)
	}
}

// CollisionListenerFunc adapts a plain function to the listener interface.
type CollisionListenerFunc func(ev CollisionEvent)

func (f CollisionListenerFunc) OnCollision(ev CollisionEvent) { f(ev) }
