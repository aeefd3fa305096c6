package physics

import (
	"time"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// pairKey identifies an unordered body pair within a step so each contact
// resolves at most once per solver pass.
type pairKey struct {
	lo, hi uint64
}

func makePairKey(a, b uint64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

const (
	// degenerateDistance is the overlap distance below which the contact
	// normal is undefined; the fallback is vertical-up. Inherited weak
	// point of the model, kept deterministic rather than guessed around.
	degenerateDistance = 1e-4

	// Impact damage accrues above this approach speed, in m/s.
	impactDamageMinSpeed = 6.0
	impactDamageScale    = 2.0
)

var upNormal = rl.Vector3{Y: 1}

// detectAndResolve runs broadphase + narrowphase + impulse resolution for
// every dynamic body. Events are emitted on the first solver pass only;
// later passes exist to settle stacked contacts.
func (w *World) detectAndResolve() {
	contacts := 0
	for iter := 0; iter < w.cfg.SolverIterations; iter++ {
		emit := iter == 0
		seen := make(map[pairKey]struct{})

		if w.gpuActive() {
			contacts += w.resolveGPUPairs(seen, emit)
			// GPU pass covers dynamic-dynamic only; statics and
			// kinematics still come from the grid.
			for _, a := range w.store.dynamics {
				for _, b := range w.grid.nearby(a.Position, a.BoundingRadius()) {
					if b.Type == BodyDynamic {
						continue
					}
					if w.checkPair(a, b, seen, emit) {
						contacts++
					}
				}
			}
			continue
		}

		for _, a := range w.store.dynamics {
			for _, b := range w.grid.nearby(a.Position, a.BoundingRadius()) {
				if w.checkPair(a, b, seen, emit) {
					contacts++
				}
			}
		}
	}
	w.stats.Contacts = contacts
}

// checkPair applies the pair gates (self, duplicate, layers, sleep) and the
// AABB narrowphase, then resolves. Returns true when a contact resolved.
func (w *World) checkPair(a, b *Body, seen map[pairKey]struct{}, emit bool) bool {
	if b.ID == a.ID {
		return false
	}
	// Two dynamic bodies resolve once, from the lower-id side.
	if b.Type == BodyDynamic && a.ID > b.ID {
		return false
	}
	if !CanLayersCollide(a.Layers, b.Layers) {
		return false
	}
	key := makePairKey(a.ID, b.ID)
	if _, done := seen[key]; done {
		return false
	}
	seen[key] = struct{}{}

	if a.Sleeping && (b.Type != BodyDynamic || b.Sleeping) {
		return false
	}
	if !a.AABB().Intersects(b.AABB()) {
		return false
	}
	return w.resolveContact(a, b, emit)
}

// resolveContact applies the impulse model from the detector's candidate
// pair: normal from centers, min restitution, mass-weighted impulse,
// Coulomb friction, then positional de-penetration split by inverse mass.
func (w *World) resolveContact(a, b *Body, emit bool) bool {
	diff := rl.Vector3Subtract(b.Position, a.Position)
	dist := rl.Vector3Length(diff)

	normal := upNormal // zero-distance overlap has no defined normal
	if dist > degenerateDistance {
		normal = rl.Vector3Scale(diff, 1/dist)
	}

	relVel := rl.Vector3Subtract(b.Velocity, a.Velocity)
	velAlongNormal := rl.Vector3DotProduct(relVel, normal)
	if velAlongNormal > 0 {
		return false // already separating
	}

	invA, invB := a.invMass, b.invMass
	invSum := invA + invB
	if invSum == 0 {
		return false
	}

	approachSpeed := -velAlongNormal
	if approachSpeed > w.cfg.SleepVelocity*2 {
		a.Wake()
		b.Wake()
	}

	e := math32.Min(a.Restitution, b.Restitution)
	j := -(1 + e) * velAlongNormal / invSum
	impulse := rl.Vector3Scale(normal, j)
	a.Velocity = rl.Vector3Subtract(a.Velocity, rl.Vector3Scale(impulse, invA))
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(impulse, invB))

	// Coulomb friction along the tangential component
	relVel = rl.Vector3Subtract(b.Velocity, a.Velocity)
	tangent := rl.Vector3Subtract(relVel, rl.Vector3Scale(normal, rl.Vector3DotProduct(relVel, normal)))
	tangentLen := rl.Vector3Length(tangent)
	if tangentLen > degenerateDistance {
		tangent = rl.Vector3Scale(tangent, 1/tangentLen)
		jt := -rl.Vector3DotProduct(relVel, tangent) / invSum
		maxFriction := math32.Sqrt(a.Friction*b.Friction) * math32.Abs(j)
		jt = clamp(jt, -maxFriction, maxFriction)
		frictionImpulse := rl.Vector3Scale(tangent, jt)
		a.Velocity = rl.Vector3Subtract(a.Velocity, rl.Vector3Scale(frictionImpulse, invA))
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(frictionImpulse, invB))
	}

	// De-penetrate along the minimum translation vector, split by inverse
	// mass so statics and kinematics never move.
	mtv := a.AABB().Resolve(b.AABB())
	penetration := rl.Vector3Length(mtv)
	a.Position = rl.Vector3Add(a.Position, rl.Vector3Scale(mtv, invA/invSum))
	b.Position = rl.Vector3Subtract(b.Position, rl.Vector3Scale(mtv, invB/invSum))

	if emit {
		var damage float32
		if approachSpeed > impactDamageMinSpeed {
			damage = (approachSpeed - impactDamageMinSpeed) * impactDamageScale
		}

		contact := rl.Vector3Lerp(a.Position, b.Position, 0.5)
		now := time.Now()
		ev := CollisionEvent{
			Kind:          EventContact,
			Body:          a,
			Other:         b,
			Contact:       contact,
			Normal:        normal,
			Penetration:   penetration,
			Impulse:       j,
			RelativeSpeed: approachSpeed,
			Damage:        damage,
			Timestamp:     now,
		}
		w.dispatch(ev)

		// The second participant sees the normal pointing away from
		// itself.
		ev.Body, ev.Other = b, a
		ev.Normal = rl.Vector3Scale(normal, -1)
		w.dispatch(ev)
	}
	return true
}

// dispatch delivers an event to the body's own listener and every world
// listener. Listeners run synchronously; world mutations inside them must
// go through World.Defer.
func (w *World) dispatch(ev CollisionEvent) {
	if ev.Body != nil && ev.Body.Listener != nil {
		ev.Body.Listener.OnCollision(ev)
	}
	w.listeners.invoke(ev)
}
