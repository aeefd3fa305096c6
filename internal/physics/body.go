package physics

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BodyType controls how the solver treats a body.
type BodyType int

const (
	// BodyStatic never moves: walls, floors, cover. Infinite mass.
	BodyStatic BodyType = iota
	// BodyKinematic is moved externally (player controller, doors) and
	// pushes dynamic bodies but is never displaced by them.
	BodyKinematic
	// BodyDynamic is fully simulated: gravity, drag, impulses.
	BodyDynamic
)

func (t BodyType) String() string {
	switch t {
	case BodyStatic:
		return "static"
	case BodyKinematic:
		return "kinematic"
	case BodyDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Layer is a collision category bitmask. A body may carry several tags.
type Layer uint32

const (
	LayerDefault Layer = 1 << iota
	LayerWorld
	LayerPlayer
	LayerEnemy
	LayerProjectile
	LayerDebris
	LayerTrigger

	LayerAll Layer = ^Layer(0)
)

// CanLayersCollide reports whether two layer sets may interact: they must
// share at least one tag, and two bodies that are nothing but triggers
// never collide with each other.
func CanLayersCollide(a, b Layer) bool {
	if a&b == 0 {
		return false
	}
	if a == LayerTrigger && b == LayerTrigger {
		return false
	}
	return true
}

// CollisionListener receives collision, projectile-hit and blast events for
// a body it is registered on, or for every body when registered on the
// world. Listeners run synchronously inside the step: they must not block
// and must not mutate the world directly (use World.Defer).
type CollisionListener interface {
	OnCollision(ev CollisionEvent)
}

// UpdateListener is invoked once per fixed step after a body integrates.
type UpdateListener interface {
	OnBodyUpdate(b *Body, dt float32)
}

var nextBodyID uint64

// NewID hands out engine-generated body ids.
func NewID() uint64 {
	return atomic.AddUint64(&nextBodyID, 1)
}

// Body is a simulated rigid body. The renderable handle is owned by the
// external scene graph; physics only reads and writes its transform.
type Body struct {
	ID         uint64
	Renderable uint64
	Type       BodyType
	Layers     Layer

	Position        rl.Vector3
	Rotation        rl.Vector3 // euler degrees
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // degrees per second

	// acceleration accumulates ApplyForce calls and is cleared each step.
	acceleration rl.Vector3

	HalfExtents rl.Vector3
	Mass        float32
	invMass     float32

	Material    string
	Friction    float32
	Restitution float32
	Drag        float32

	Listener CollisionListener
	Updater  UpdateListener
	UserData any

	Sleeping   bool
	CanSleep   bool
	sleepTimer float32
}

// NewBody creates a body from a material preset and box half extents.
// Mass is derived from material density and box volume; static and
// kinematic bodies get infinite mass.
func NewBody(renderable uint64, typ BodyType, mat Material, halfExtents rl.Vector3) *Body {
	mat = mat.normalized()
	b := &Body{
		ID:          NewID(),
		Renderable:  renderable,
		Type:        typ,
		Layers:      LayerDefault,
		HalfExtents: halfExtents,
		Material:    mat.Name,
		Friction:    mat.Friction,
		Restitution: mat.Restitution,
		Drag:        mat.Drag,
		CanSleep:    true,
	}
	volume := 8 * halfExtents.X * halfExtents.Y * halfExtents.Z
	if volume <= 0 {
		volume = 1
	}
	b.Mass = mat.Density * volume
	if typ == BodyDynamic {
		b.invMass = 1 / b.Mass
	}
	return b
}

// InvMass is zero for static and kinematic bodies.
func (b *Body) InvMass() float32 {
	return b.invMass
}

func (b *Body) AABB() AABB {
	return NewAABBFromCenter(b.Position, b.HalfExtents)
}

// BoundingRadius is the half-diagonal of the body's box, used for
// broadphase bucketing and GPU pair scans.
func (b *Body) BoundingRadius() float32 {
	return rl.Vector3Length(b.HalfExtents)
}

// ApplyForce accumulates an acceleration for the next step. Only dynamic
// bodies respond.
func (b *Body) ApplyForce(force rl.Vector3) {
	if b.Type != BodyDynamic {
		return
	}
	b.acceleration = rl.Vector3Add(b.acceleration, rl.Vector3Scale(force, b.invMass))
	b.Wake()
}

// ApplyImpulse changes velocity immediately, scaled by inverse mass.
// Static and kinematic bodies are unaffected.
func (b *Body) ApplyImpulse(impulse rl.Vector3) {
	if b.Type != BodyDynamic {
		return
	}
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(impulse, b.invMass))
	b.Wake()
}

// Wake forces the body out of sleep.
func (b *Body) Wake() {
	b.Sleeping = false
	b.sleepTimer = 0
}

// trySleep puts a slow dynamic body to sleep after it stays below the
// velocity threshold for the configured timeout.
func (b *Body) trySleep(dt, velocityThreshold, timeout float32) {
	if !b.CanSleep || b.Sleeping || b.Type != BodyDynamic {
		return
	}

	speed := rl.Vector3Length(b.Velocity)
	angSpeed := rl.Vector3Length(b.AngularVelocity)
	if speed < velocityThreshold && angSpeed < velocityThreshold*sleepAngularFactor {
		b.sleepTimer += dt

		// Extra damping near rest reduces jitter before sleep kicks in
		b.Velocity = rl.Vector3Scale(b.Velocity, nearRestDamping)
		b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, nearRestDamping)

		if b.sleepTimer >= timeout {
			b.Sleeping = true
			b.Velocity = rl.Vector3{}
			b.AngularVelocity = rl.Vector3{}
		}
	} else {
		b.sleepTimer = 0
	}
}

const (
	sleepAngularFactor = 3.0 // angular threshold in deg/s relative to linear
	nearRestDamping    = 0.9
)
