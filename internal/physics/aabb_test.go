package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestAABBIntersects(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewAABBFromCenter(rl.Vector3{X: 1.5}, rl.Vector3{X: 1, Y: 1, Z: 1})
	c := NewAABBFromCenter(rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})

	if !a.Intersects(b) {
		t.Error("overlapping boxes should intersect")
	}
	if !b.Intersects(a) {
		t.Error("intersection should be symmetric")
	}
	if a.Intersects(c) {
		t.Error("separated boxes should not intersect")
	}

	// Exactly touching faces still count as intersecting
	d := NewAABBFromCenter(rl.Vector3{X: 2}, rl.Vector3{X: 1, Y: 1, Z: 1})
	if !a.Intersects(d) {
		t.Error("touching boxes should intersect")
	}
}

func TestAABBResolve(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{X: 0.8}, rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	push := a.Resolve(b)
	if push.X <= 0 || push.Y != 0 || push.Z != 0 {
		t.Errorf("expected +X push-out, got %+v", push)
	}

	far := NewAABBFromCenter(rl.Vector3{X: 10}, rl.Vector3{X: 1, Y: 1, Z: 1})
	if push := far.Resolve(b); push != rl.Vector3Zero() {
		t.Errorf("no overlap should give zero vector, got %+v", push)
	}
}

func TestAABBClosestPoint(t *testing.T) {
	box := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	inside := rl.Vector3{X: 0.5, Y: -0.5, Z: 0}
	if got := box.ClosestPoint(inside); got != inside {
		t.Errorf("point inside box should map to itself, got %+v", got)
	}

	outside := rl.Vector3{X: 3, Y: 0, Z: 0}
	want := rl.Vector3{X: 1, Y: 0, Z: 0}
	if got := box.ClosestPoint(outside); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if d := box.DistanceTo(outside); d != 2 {
		t.Errorf("expected distance 2, got %v", d)
	}
	if d := box.DistanceTo(inside); d != 0 {
		t.Errorf("expected zero distance inside, got %v", d)
	}
}

func TestRaycastAABBHit(t *testing.T) {
	box := NewAABBFromCenter(rl.Vector3{Z: 10}, rl.Vector3{X: 1, Y: 1, Z: 1})

	point, normal, distance, ok := RaycastAABB(rl.Vector3{}, rl.Vector3{Z: 1}, box, 100)
	if !ok {
		t.Fatal("ray down +Z should hit the box")
	}
	if distance != 9 {
		t.Errorf("expected distance 9, got %v", distance)
	}
	if point.Z != 9 {
		t.Errorf("expected hit at z=9, got %+v", point)
	}
	if normal.Z != -1 {
		t.Errorf("expected -Z face normal, got %+v", normal)
	}
}

func TestRaycastAABBMiss(t *testing.T) {
	box := NewAABBFromCenter(rl.Vector3{Z: 10}, rl.Vector3{X: 1, Y: 1, Z: 1})

	if _, _, _, ok := RaycastAABB(rl.Vector3{}, rl.Vector3{Z: -1}, box, 100); ok {
		t.Error("ray away from the box should miss")
	}
	if _, _, _, ok := RaycastAABB(rl.Vector3{}, rl.Vector3{Z: 1}, box, 5); ok {
		t.Error("box beyond max distance should miss")
	}
	if _, _, _, ok := RaycastAABB(rl.Vector3{X: 5}, rl.Vector3{Z: 1}, box, 100); ok {
		t.Error("parallel ray offset from the box should miss")
	}
}

func TestRaycastAABBFromInside(t *testing.T) {
	box := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})

	_, _, distance, ok := RaycastAABB(rl.Vector3{}, rl.Vector3{Z: 1}, box, 100)
	if !ok {
		t.Fatal("ray from inside should hit the exit face")
	}
	if distance != 2 {
		t.Errorf("expected exit at distance 2, got %v", distance)
	}
}
