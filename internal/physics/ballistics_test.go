package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/require"
)

func TestDamageFalloff(t *testing.T) {
	const base, maxRange, falloffStart = 100.0, 100.0, 0.3

	t.Run("full damage through the plateau", func(t *testing.T) {
		require.Equal(t, float32(base), DamageFalloff(base, 0, maxRange, falloffStart))
		require.Equal(t, float32(base), DamageFalloff(base, 15, maxRange, falloffStart))
		require.Equal(t, float32(base), DamageFalloff(base, 30, maxRange, falloffStart))
	})

	t.Run("exact floor at and beyond max range", func(t *testing.T) {
		require.Equal(t, float32(10), DamageFalloff(base, maxRange, maxRange, falloffStart))
		require.Equal(t, float32(10), DamageFalloff(base, 500, maxRange, falloffStart))
	})

	t.Run("monotonically non-increasing", func(t *testing.T) {
		prev := DamageFalloff(base, 0, maxRange, falloffStart)
		for d := float32(1); d <= 120; d++ {
			cur := DamageFalloff(base, d, maxRange, falloffStart)
			require.LessOrEqual(t, cur, prev, "damage rose between %v and %v", d-1, d)
			prev = cur
		}
	})

	t.Run("degenerate range returns the floor", func(t *testing.T) {
		require.Equal(t, float32(10), DamageFalloff(base, 5, 0, falloffStart))
		require.Equal(t, float32(10), DamageFalloff(base, 5, -1, falloffStart))
	})
}

// A projectile never damages the same body twice, even while it keeps
// overlapping it across steps.
func TestProjectileHitIdempotent(t *testing.T) {
	w := newQuietWorld(t)
	rec := &eventRecorder{}
	w.AddCollisionListener(rec)

	target := NewBody(0, BodyDynamic, bareMaterial(1), rl.Vector3{X: 1, Y: 1, Z: 1})
	target.Position = rl.Vector3{Z: 10}
	target.Layers = LayerEnemy
	w.AddBody(target)

	id := w.FireProjectile(rl.Vector3{Z: 9.2}, rl.Vector3{Z: 1}, ProjectileSpec{
		MuzzleSpeed: 1, // stays inside the target box across steps
		Damage:      10,
		Penetration: 5,
		Layers:      LayerEnemy,
	})

	w.Update(w.Config().Timestep)
	w.Update(w.Config().Timestep)

	hits := rec.ofKind(EventProjectileHit)
	require.Len(t, hits, 1)
	require.Equal(t, target.ID, hits[0].Body.ID)

	p, ok := w.Projectile(id)
	require.True(t, ok, "penetration budget keeps the projectile alive")
	require.True(t, p.HasHit(target.ID))
}

// Penetration: the first target costs the budget and scales remaining
// damage by 0.7; the second target destroys the projectile.
func TestProjectilePenetratesThenStops(t *testing.T) {
	w := newQuietWorld(t)
	rec := &eventRecorder{}
	w.AddCollisionListener(rec)

	near := NewBody(0, BodyDynamic, bareMaterial(1), rl.Vector3{X: 1, Y: 1, Z: 1})
	near.Position = rl.Vector3{Z: 10}
	near.Layers = LayerEnemy
	far := NewBody(0, BodyDynamic, bareMaterial(1), rl.Vector3{X: 1, Y: 1, Z: 1})
	far.Position = rl.Vector3{Z: 20}
	far.Layers = LayerEnemy
	w.AddBody(near)
	w.AddBody(far)

	id := w.FireProjectile(rl.Vector3{}, rl.Vector3{Z: 1}, ProjectileSpec{
		MuzzleSpeed:  600, // 10 m per fixed step
		Damage:       40,
		FalloffStart: 0.3,
		Penetration:  1,
		MaxDistance:  100,
		Layers:       LayerEnemy,
	})

	w.Update(w.Config().Timestep)

	hits := rec.ofKind(EventProjectileHit)
	require.Len(t, hits, 1)
	require.Equal(t, near.ID, hits[0].Body.ID)
	require.InDelta(t, 40, hits[0].Damage, 1e-3, "inside the plateau, no fall-off yet")

	p, ok := w.Projectile(id)
	require.True(t, ok)
	require.Equal(t, 0, p.PenetrationsRemaining)
	require.InDelta(t, 40*penetrationDamageScale, p.Damage, 1e-3)

	w.Update(w.Config().Timestep)

	hits = rec.ofKind(EventProjectileHit)
	require.Len(t, hits, 2)
	require.Equal(t, far.ID, hits[1].Body.ID)
	require.InDelta(t, 28, hits[1].Damage, 1e-3, "penetration scaled the base damage")

	_, ok = w.Projectile(id)
	require.False(t, ok, "budgets spent, projectile destroyed")
}

// Ricochet reflects the velocity about the surface normal and keeps 60% of
// the speed.
func TestProjectileRicochet(t *testing.T) {
	w := newQuietWorld(t)

	target := NewBody(0, BodyStatic, bareMaterial(1), rl.Vector3{X: 1, Y: 1, Z: 1})
	target.Position = rl.Vector3{Z: 10.4}
	target.Layers = LayerWorld
	w.AddBody(target)

	id := w.FireProjectile(rl.Vector3{}, rl.Vector3{Z: 1}, ProjectileSpec{
		MuzzleSpeed:    600,
		Damage:         40,
		RicochetChance: 1,
		Ricochets:      1,
		MaxDistance:    100,
		Layers:         LayerWorld,
	})

	w.Update(w.Config().Timestep)

	p, ok := w.Projectile(id)
	require.True(t, ok, "ricochet keeps the projectile alive")
	require.Equal(t, 0, p.RicochetsRemaining)
	require.InDelta(t, -600*ricochetEnergyRetention, p.Velocity.Z, 1e-2,
		"velocity reflected and scaled by energy retention")
}

func TestProjectileExpiry(t *testing.T) {
	w := newQuietWorld(t)
	ts := w.Config().Timestep

	t.Run("lifetime", func(t *testing.T) {
		id := w.FireProjectile(rl.Vector3{}, rl.Vector3{X: 1}, ProjectileSpec{
			MuzzleSpeed: 1,
			Lifetime:    2 * ts,
			MaxDistance: 1000,
		})
		w.Update(ts)
		_, ok := w.Projectile(id)
		require.True(t, ok)

		w.Update(ts)
		_, ok = w.Projectile(id)
		require.False(t, ok, "expired at end of lifetime")
	})

	t.Run("max distance", func(t *testing.T) {
		id := w.FireProjectile(rl.Vector3{}, rl.Vector3{X: 1}, ProjectileSpec{
			MuzzleSpeed: 600,
			MaxDistance: 15,
			Lifetime:    100,
		})
		w.Update(ts) // travels 10
		_, ok := w.Projectile(id)
		require.True(t, ok)

		w.Update(ts) // 20 > 15
		w.Update(ts) // range check happens at step start
		_, ok = w.Projectile(id)
		require.False(t, ok)
	})
}

func TestFireProjectileDefaults(t *testing.T) {
	w := newQuietWorld(t)

	id := w.FireProjectile(rl.Vector3{}, rl.Vector3{}, ProjectileSpec{})
	p, ok := w.Projectile(id)
	require.True(t, ok)

	require.Equal(t, float32(300), p.MuzzleSpeed)
	require.Equal(t, float32(200), p.MaxDistance)
	require.Equal(t, float32(5), p.Lifetime)
	require.Equal(t, LayerAll&^LayerTrigger, p.layers)
	require.Equal(t, float32(300), p.Velocity.Z, "zero direction defaults to +Z")
}

// The trail is bounded: old points fall off once the cap is reached.
func TestProjectileTrailBounded(t *testing.T) {
	w := newQuietWorld(t)
	ts := w.Config().Timestep

	id := w.FireProjectile(rl.Vector3{}, rl.Vector3{X: 1}, ProjectileSpec{
		MuzzleSpeed: 1,
		Lifetime:    100,
		MaxDistance: 1000,
	})
	for i := 0; i < maxTrailPoints*2; i++ {
		w.Update(ts)
	}

	p, ok := w.Projectile(id)
	require.True(t, ok)
	require.Len(t, p.Trail, maxTrailPoints)
	require.Equal(t, p.Position, p.Trail[maxTrailPoints-1], "newest point last")
}

func TestRemoveProjectileAbsentIsNoop(t *testing.T) {
	w := newQuietWorld(t)
	w.RemoveProjectile(12345)

	id := w.FireProjectile(rl.Vector3{}, rl.Vector3{X: 1}, ProjectileSpec{})
	w.RemoveProjectile(id)
	_, ok := w.Projectile(id)
	require.False(t, ok)
	require.Empty(t, w.Projectiles())
}
