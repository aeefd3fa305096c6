package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and half extents.
func NewAABBFromCenter(center, half rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Resolve returns the minimum translation vector to push 'a' out of 'b'.
// Returns zero vector if no overlap.
func (a AABB) Resolve(b AABB) rl.Vector3 {
	if !a.Intersects(b) {
		return rl.Vector3Zero()
	}

	// Penetration depth in each direction
	dx1 := b.Max.X - a.Min.X // push a in +X
	dx2 := a.Max.X - b.Min.X // push a in -X
	dy1 := b.Max.Y - a.Min.Y // push a in +Y
	dy2 := a.Max.Y - b.Min.Y // push a in -Y
	dz1 := b.Max.Z - a.Min.Z // push a in +Z
	dz2 := a.Max.Z - b.Min.Z // push a in -Z

	// Axis with minimum penetration is the push-out direction
	min := dx1
	result := rl.Vector3{X: dx1}

	if dx2 < min {
		min = dx2
		result = rl.Vector3{X: -dx2}
	}
	if dy1 < min {
		min = dy1
		result = rl.Vector3{Y: dy1}
	}
	if dy2 < min {
		min = dy2
		result = rl.Vector3{Y: -dy2}
	}
	if dz1 < min {
		min = dz1
		result = rl.Vector3{Z: dz1}
	}
	if dz2 < min {
		result = rl.Vector3{Z: -dz2}
	}

	return result
}

// ClosestPoint returns the point inside the box nearest to p.
func (a AABB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: clamp(p.X, a.Min.X, a.Max.X),
		Y: clamp(p.Y, a.Min.Y, a.Max.Y),
		Z: clamp(p.Z, a.Min.Z, a.Max.Z),
	}
}

// DistanceTo returns the Euclidean distance from p to the box surface,
// zero when p is inside.
func (a AABB) DistanceTo(p rl.Vector3) float32 {
	return rl.Vector3Length(rl.Vector3Subtract(p, a.ClosestPoint(p)))
}

// RaycastAABB runs a slab test against the box. The direction must be
// normalized. Returns the hit point, surface normal and distance along the
// ray, or ok=false when the ray misses or exits beyond maxDistance.
func RaycastAABB(origin, direction rl.Vector3, box AABB, maxDistance float32) (point, normal rl.Vector3, distance float32, ok bool) {
	var tmin, tmax float32

	// X slab
	if direction.X != 0 {
		t1 := (box.Min.X - origin.X) / direction.X
		t2 := (box.Max.X - origin.X) / direction.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = t1
		tmax = t2
	} else if origin.X < box.Min.X || origin.X > box.Max.X {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	} else {
		tmin = -math32.MaxFloat32
		tmax = math32.MaxFloat32
	}

	// Y slab
	if direction.Y != 0 {
		t1 := (box.Min.Y - origin.Y) / direction.Y
		t2 := (box.Max.Y - origin.Y) / direction.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Y < box.Min.Y || origin.Y > box.Max.Y {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	}

	if tmin > tmax {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	}

	// Z slab
	if direction.Z != 0 {
		t1 := (box.Min.Z - origin.Z) / direction.Z
		t2 := (box.Max.Z - origin.Z) / direction.Z
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Z < box.Min.Z || origin.Z > box.Max.Z {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	}

	if tmin > tmax || tmax < 0 || tmin > maxDistance {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	}

	t := tmin
	if t < 0 {
		t = tmax // origin inside the box
	}
	if t < 0 || t > maxDistance {
		return rl.Vector3{}, rl.Vector3{}, 0, false
	}

	point = rl.Vector3Add(origin, rl.Vector3Scale(direction, t))

	// Normal comes from whichever face the hit point lies on
	const epsilon = 0.001
	switch {
	case math32.Abs(point.X-box.Min.X) < epsilon:
		normal = rl.Vector3{X: -1}
	case math32.Abs(point.X-box.Max.X) < epsilon:
		normal = rl.Vector3{X: 1}
	case math32.Abs(point.Y-box.Min.Y) < epsilon:
		normal = rl.Vector3{Y: -1}
	case math32.Abs(point.Y-box.Max.Y) < epsilon:
		normal = rl.Vector3{Y: 1}
	case math32.Abs(point.Z-box.Min.Z) < epsilon:
		normal = rl.Vector3{Z: -1}
	default:
		normal = rl.Vector3{Z: 1}
	}

	return point, normal, t, true
}

// clamp restricts a value to a range
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
