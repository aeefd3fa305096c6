package physics

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	maxTrailPoints = 16

	// projectileHitRadius is the fixed collision radius of a bullet,
	// measured point-to-surface against candidate AABBs.
	projectileHitRadius = 0.5

	// penetrationDamageScale reduces remaining damage potential each time
	// a projectile passes through a target.
	penetrationDamageScale = 0.7

	// ricochetEnergyRetention scales velocity after a reflected hit.
	ricochetEnergyRetention = 0.6

	// falloffFloor is the damage fraction remaining at max range.
	falloffFloor = 0.1

	hitImpulseScale = 0.2
)

// ProjectileSpec describes one weapon discharge. Zero values get sensible
// defaults at spawn.
type ProjectileSpec struct {
	Renderable      uint64
	MuzzleSpeed     float32
	Drag            float32
	GravityAffected bool
	Damage          float32
	FalloffStart    float32 // fraction of MaxDistance with full damage
	Penetration     int
	RicochetChance  float32
	Ricochets       int
	MaxDistance     float32
	Lifetime        float32
	Layers          Layer // layers this projectile can hit
}

// Projectile is a short-lived ballistic entity. It is not a Body: its
// worst-case per-step cost is bounded by discrete penetration and ricochet
// budgets instead of full collision resolution.
type Projectile struct {
	ID         uint64
	Renderable uint64

	Position rl.Vector3
	Velocity rl.Vector3

	MuzzleSpeed     float32
	Drag            float32
	GravityAffected bool

	Damage         float32
	FalloffStart   float32
	RicochetChance float32
	MaxDistance    float32
	Lifetime       float32

	PenetrationsRemaining int
	RicochetsRemaining    int

	Distance float32
	Trail    []rl.Vector3

	age    float32
	hits   map[uint64]struct{}
	layers Layer
}

// HasHit reports whether the projectile already registered a hit against
// the body; a projectile never damages the same body twice.
func (p *Projectile) HasHit(id uint64) bool {
	_, ok := p.hits[id]
	return ok
}

// Age returns time since discharge in seconds.
func (p *Projectile) Age() float32 {
	return p.age
}

// DamageFalloff applies the ballistic fall-off model: full damage up to
// maxRange*falloffStart, linear decay after, exactly 10% at and beyond
// maxRange. Degenerate ranges return the floor.
func DamageFalloff(base, distance, maxRange, falloffStart float32) float32 {
	if maxRange <= 0 {
		return base * falloffFloor
	}
	plateau := maxRange * clamp(falloffStart, 0, 1)
	if distance <= plateau {
		return base
	}
	if distance >= maxRange {
		return base * falloffFloor
	}
	t := (distance - plateau) / (maxRange - plateau)
	return base * (1 - (1-falloffFloor)*t)
}

// FireProjectile spawns a projectile at origin travelling along direction
// and returns its id. Safe to call from collision listeners: spawning
// defers until the current step finishes.
func (w *World) FireProjectile(origin, direction rl.Vector3, spec ProjectileSpec) uint64 {
	dir := rl.Vector3Normalize(direction)
	if rl.Vector3Length(dir) == 0 {
		dir = rl.Vector3{Z: 1}
	}
	if spec.MuzzleSpeed <= 0 {
		spec.MuzzleSpeed = 300
	}
	if spec.MaxDistance <= 0 {
		spec.MaxDistance = 200
	}
	if spec.Lifetime <= 0 {
		spec.Lifetime = 5
	}
	if spec.Layers == 0 {
		spec.Layers = LayerAll &^ LayerTrigger
	}

	p := &Projectile{
		ID:                    NewID(),
		Renderable:            spec.Renderable,
		Position:              origin,
		Velocity:              rl.Vector3Scale(dir, spec.MuzzleSpeed),
		MuzzleSpeed:           spec.MuzzleSpeed,
		Drag:                  spec.Drag,
		GravityAffected:       spec.GravityAffected,
		Damage:                spec.Damage,
		FalloffStart:          clamp(spec.FalloffStart, 0, 1),
		RicochetChance:        clamp(spec.RicochetChance, 0, 1),
		MaxDistance:           spec.MaxDistance,
		Lifetime:              spec.Lifetime,
		PenetrationsRemaining: spec.Penetration,
		RicochetsRemaining:    spec.Ricochets,
		Trail:                 make([]rl.Vector3, 0, maxTrailPoints),
		hits:                  make(map[uint64]struct{}),
		layers:                spec.Layers,
	}

	w.mutate(func() {
		w.projectiles[p.ID] = p
		w.projectileOrder = append(w.projectileOrder, p)
	})
	return p.ID
}

// Projectile looks up a live projectile. Absent ids return ok=false.
func (w *World) Projectile(id uint64) (*Projectile, bool) {
	p, ok := w.projectiles[id]
	return p, ok
}

// RemoveProjectile destroys a projectile by id; absent ids are a no-op.
// The renderable is the caller's to clean up.
func (w *World) RemoveProjectile(id uint64) {
	w.mutate(func() {
		w.removeProjectileNow(id)
	})
}

func (w *World) removeProjectileNow(id uint64) {
	if _, ok := w.projectiles[id]; !ok {
		return
	}
	delete(w.projectiles, id)
	for i, p := range w.projectileOrder {
		if p.ID == id {
			w.projectileOrder = append(w.projectileOrder[:i], w.projectileOrder[i+1:]...)
			break
		}
	}
}

// Projectiles returns the live projectiles in spawn order.
func (w *World) Projectiles() []*Projectile {
	out := make([]*Projectile, len(w.projectileOrder))
	copy(out, w.projectileOrder)
	return out
}

// stepProjectiles advances every projectile by one fixed step: lifetime
// and range checks, drag, gravity drop, integration, then hit checks
// against spatial-grid candidates.
func (w *World) stepProjectiles(dt float32) {
	var expired []uint64

	for _, p := range w.projectileOrder {
		p.age += dt
		if p.age >= p.Lifetime || p.Distance >= p.MaxDistance {
			expired = append(expired, p.ID)
			continue
		}

		// Drag, then gravity drop
		damping := 1 - p.Drag*dt
		if damping < 0 {
			damping = 0
		}
		p.Velocity = rl.Vector3Scale(p.Velocity, damping)
		if p.GravityAffected {
			p.Velocity.Y += 0.5 * w.cfg.Gravity.Y * dt * dt
		}

		// Integrate and record the trail
		delta := rl.Vector3Scale(p.Velocity, dt)
		p.Position = rl.Vector3Add(p.Position, delta)
		p.Distance += rl.Vector3Length(delta)
		if len(p.Trail) == maxTrailPoints {
			copy(p.Trail, p.Trail[1:])
			p.Trail = p.Trail[:maxTrailPoints-1]
		}
		p.Trail = append(p.Trail, p.Position)

		if w.stepProjectileHits(p) {
			expired = append(expired, p.ID)
		}
	}

	for _, id := range expired {
		w.removeProjectileNow(id)
	}
}

// stepProjectileHits tests grid candidates around the projectile and
// applies damage, penetration and ricochet. Returns true when the
// projectile is spent.
func (w *World) stepProjectileHits(p *Projectile) bool {
	for _, b := range w.grid.nearby(p.Position, projectileHitRadius) {
		if p.HasHit(b.ID) {
			continue
		}
		if !CanLayersCollide(p.layers, b.Layers) {
			continue
		}
		if b.AABB().DistanceTo(p.Position) > projectileHitRadius {
			continue
		}

		p.hits[b.ID] = struct{}{}

		damage := DamageFalloff(p.Damage, p.Distance, p.MaxDistance, p.FalloffStart)

		travelDir := rl.Vector3Normalize(p.Velocity)
		b.ApplyImpulse(rl.Vector3Scale(travelDir, damage*hitImpulseScale))

		// Surface normal pointing away from the body, vertical-up when
		// the projectile sits exactly on the body center.
		normal := rl.Vector3Subtract(p.Position, b.Position)
		if nl := rl.Vector3Length(normal); nl > degenerateDistance {
			normal = rl.Vector3Scale(normal, 1/nl)
		} else {
			normal = upNormal
		}

		w.dispatch(CollisionEvent{
			Kind:          EventProjectileHit,
			Body:          b,
			Contact:       p.Position,
			Normal:        normal,
			RelativeSpeed: rl.Vector3Length(p.Velocity),
			Damage:        damage,
			Timestamp:     time.Now(),
		})

		if p.PenetrationsRemaining > 0 {
			p.PenetrationsRemaining--
			p.Damage *= penetrationDamageScale
			continue
		}
		if p.RicochetsRemaining > 0 && w.rng.Float32() < p.RicochetChance {
			p.RicochetsRemaining--
			p.Velocity = rl.Vector3Scale(rl.Vector3Reflect(p.Velocity, normal), ricochetEnergyRetention)
			return false
		}
		return true // both budgets spent, projectile stops here
	}
	return false
}
