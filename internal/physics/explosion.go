package physics

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FalloffCurve shapes how explosion force decays toward the blast radius.
type FalloffCurve int

const (
	FalloffLinear FalloffCurve = iota
	FalloffQuadratic
	FalloffCubic
)

// apply evaluates the curve on t = 1 - distance/radius, t in [0, 1].
func (c FalloffCurve) apply(t float32) float32 {
	switch c {
	case FalloffQuadratic:
		return t * t
	case FalloffCubic:
		return t * t * t
	default:
		return t
	}
}

// Explosion is a one-shot radial impulse and damage source. It is applied
// once and discarded; repeated applications are fully independent.
type Explosion struct {
	Center rl.Vector3
	Radius float32
	Force  float32
	Damage float32
	Curve  FalloffCurve
	Layers Layer
}

// ApplyExplosion pushes and damages every qualifying body within the blast
// radius. Force follows the configured fall-off curve; damage always falls
// off linearly. Damage reaches listeners through the same collision-event
// channel as body contacts.
func (w *World) ApplyExplosion(e Explosion) {
	if e.Radius <= 0 {
		return
	}
	if e.Layers == 0 {
		e.Layers = LayerAll
	}

	for _, b := range w.store.all() {
		if e.Layers&b.Layers == 0 {
			continue
		}
		diff := rl.Vector3Subtract(b.Position, e.Center)
		dist := rl.Vector3Length(diff)
		if dist > e.Radius {
			continue
		}

		// Bodies on the blast center have no direction; push them up.
		dir := upNormal
		if dist > degenerateDistance {
			dir = rl.Vector3Scale(diff, 1/dist)
		}

		t := 1 - dist/e.Radius
		if b.Type == BodyDynamic {
			b.ApplyImpulse(rl.Vector3Scale(dir, e.Force*e.Curve.apply(t)))
		}

		w.dispatch(CollisionEvent{
			Kind:      EventBlast,
			Body:      b,
			Contact:   b.Position,
			Normal:    dir,
			Damage:    e.Damage * t,
			Timestamp: time.Now(),
		})
	}
}

// CreateExplosion is the fire-and-forget entry point used by the combat
// layer: linear force fall-off against every layer.
func (w *World) CreateExplosion(center rl.Vector3, radius, force, damage float32) {
	w.ApplyExplosion(Explosion{
		Center: center,
		Radius: radius,
		Force:  force,
		Damage: damage,
		Curve:  FalloffLinear,
		Layers: LayerAll,
	})
}
