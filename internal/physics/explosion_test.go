package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/require"
)

// Blast force is full at the center and zero at the radius boundary.
func TestExplosionFalloffAtExtremes(t *testing.T) {
	w := newQuietWorld(t)
	rec := &eventRecorder{}
	w.AddCollisionListener(rec)

	center := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	edge := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	edge.Position = rl.Vector3{X: 5}
	outside := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	outside.Position = rl.Vector3{X: 5.1}
	w.AddBody(center)
	w.AddBody(edge)
	w.AddBody(outside)

	w.ApplyExplosion(Explosion{
		Center: rl.Vector3{},
		Radius: 5,
		Force:  1000,
		Damage: 100,
	})

	// Center body has no radial direction: pushed straight up, full force.
	require.InDelta(t, 1000, center.Velocity.Y, 1e-2, "impulse/mass with mass 1")
	require.Equal(t, float32(0), center.Velocity.X)
	require.Equal(t, float32(0), center.Velocity.Z)

	// Exactly on the boundary: included, but force and damage are zero.
	require.Equal(t, rl.Vector3{}, edge.Velocity)

	// Beyond the radius: untouched, no event.
	require.Equal(t, rl.Vector3{}, outside.Velocity)

	blasts := rec.ofKind(EventBlast)
	require.Len(t, blasts, 2)
	require.InDelta(t, 100, blasts[0].Damage, 1e-3)
	require.InDelta(t, 0, blasts[1].Damage, 1e-3)
}

// Quadratic and cubic curves fall off faster than linear at mid radius;
// damage always decays linearly regardless of the force curve.
func TestExplosionFalloffCurves(t *testing.T) {
	cases := []struct {
		name  string
		curve FalloffCurve
		want  float32 // velocity magnitude at t=0.5 with force 1000, mass 1
	}{
		{"linear", FalloffLinear, 500},
		{"quadratic", FalloffQuadratic, 250},
		{"cubic", FalloffCubic, 125},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newQuietWorld(t)
			rec := &eventRecorder{}
			w.AddCollisionListener(rec)

			b := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
			b.Position = rl.Vector3{X: 5} // half of the 10 m radius
			w.AddBody(b)

			w.ApplyExplosion(Explosion{
				Center: rl.Vector3{},
				Radius: 10,
				Force:  1000,
				Damage: 100,
				Curve:  tc.curve,
			})

			require.InDelta(t, tc.want, b.Velocity.X, 1e-2)

			blasts := rec.ofKind(EventBlast)
			require.Len(t, blasts, 1)
			require.InDelta(t, 50, blasts[0].Damage, 1e-3, "damage fall-off stays linear")
		})
	}
}

// The layer mask limits who the blast touches.
func TestExplosionLayerFilter(t *testing.T) {
	w := newQuietWorld(t)
	rec := &eventRecorder{}
	w.AddCollisionListener(rec)

	soldier := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	soldier.Layers = LayerEnemy
	ghost := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	ghost.Layers = LayerTrigger
	w.AddBody(soldier)
	w.AddBody(ghost)

	w.ApplyExplosion(Explosion{
		Center: rl.Vector3{X: 1},
		Radius: 10,
		Force:  1000,
		Damage: 100,
		Layers: LayerEnemy,
	})

	require.NotEqual(t, rl.Vector3{}, soldier.Velocity)
	require.Equal(t, rl.Vector3{}, ghost.Velocity)

	blasts := rec.ofKind(EventBlast)
	require.Len(t, blasts, 1)
	require.Equal(t, soldier.ID, blasts[0].Body.ID)
}

// Static bodies take blast damage but never pick up velocity.
func TestExplosionStaticTakesDamageNotImpulse(t *testing.T) {
	w := newQuietWorld(t)
	rec := &eventRecorder{}
	w.AddCollisionListener(rec)

	wall := NewBody(0, BodyStatic, bareMaterial(1), rl.Vector3{X: 2, Y: 2, Z: 0.5})
	wall.Position = rl.Vector3{X: 2}
	w.AddBody(wall)

	w.ApplyExplosion(Explosion{
		Center: rl.Vector3{},
		Radius: 10,
		Force:  1000,
		Damage: 100,
	})

	require.Equal(t, rl.Vector3{}, wall.Velocity)
	blasts := rec.ofKind(EventBlast)
	require.Len(t, blasts, 1)
	require.InDelta(t, 80, blasts[0].Damage, 1e-3)
}

func TestExplosionDegenerateRadius(t *testing.T) {
	w := newQuietWorld(t)
	rec := &eventRecorder{}
	w.AddCollisionListener(rec)

	b := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	w.AddBody(b)

	w.ApplyExplosion(Explosion{Center: rl.Vector3{}, Radius: 0, Force: 1000})
	w.ApplyExplosion(Explosion{Center: rl.Vector3{}, Radius: -5, Force: 1000})

	require.Empty(t, rec.events)
	require.Equal(t, rl.Vector3{}, b.Velocity)
}

// Two identical explosions stack: applications are independent one-shots.
func TestExplosionApplicationsIndependent(t *testing.T) {
	w := newQuietWorld(t)

	b := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	b.Position = rl.Vector3{X: 5}
	w.AddBody(b)

	e := Explosion{Center: rl.Vector3{}, Radius: 10, Force: 1000, Damage: 10}
	w.ApplyExplosion(e)
	first := b.Velocity.X
	w.ApplyExplosion(e)

	require.InDelta(t, 2*first, b.Velocity.X, 1e-2)
}

func TestCreateExplosionDefaults(t *testing.T) {
	w := newQuietWorld(t)
	rec := &eventRecorder{}
	w.AddCollisionListener(rec)

	trigger := NewBody(0, BodyDynamic, bareMaterial(1), unitHalf)
	trigger.Layers = LayerTrigger
	trigger.Position = rl.Vector3{X: 2}
	w.AddBody(trigger)

	w.CreateExplosion(rl.Vector3{}, 10, 1000, 50)

	// The convenience wrapper hits every layer, triggers included.
	require.Len(t, rec.ofKind(EventBlast), 1)
	require.NotEqual(t, rl.Vector3{}, trigger.Velocity)
}
