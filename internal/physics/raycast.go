package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// SceneHit is what a WorldQuery reports back: the renderable it hit and
// where. The physics layer attaches body metadata afterwards.
type SceneHit struct {
	Renderable uint64
	Point      rl.Vector3
	Normal     rl.Vector3
	Distance   float32
}

// WorldQuery is the ray-intersection capability injected at construction.
// The external scene graph usually provides it; when it does not, the
// engine falls back to slab tests against its own body boxes.
type WorldQuery interface {
	CastRay(origin, direction rl.Vector3, maxDistance float32) (SceneHit, bool)
}

// RayHit is the structured raycast result. Hit=false carries zero distance
// and no body reference; callers never see an error for a clean miss.
type RayHit struct {
	Hit      bool
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
	BodyID   uint64
}

// Raycast resolves a line-of-sight or hit-scan query: delegate to the
// world query, then cross-reference the intersected renderable against the
// body store. A nearest hit on an incompatible layer is a miss.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32, layers Layer) RayHit {
	direction = rl.Vector3Normalize(direction)
	if rl.Vector3Length(direction) == 0 || maxDistance <= 0 {
		return RayHit{}
	}

	sceneHit, ok := w.query.CastRay(origin, direction, maxDistance)
	if !ok {
		return RayHit{}
	}

	hit := RayHit{
		Hit:      true,
		Point:    sceneHit.Point,
		Normal:   sceneHit.Normal,
		Distance: sceneHit.Distance,
	}
	if b, found := w.store.getByRenderable(sceneHit.Renderable); found {
		if layers&b.Layers == 0 {
			return RayHit{}
		}
		hit.BodyID = b.ID
	}
	return hit
}

// storeRaycaster is the default WorldQuery: nearest slab-test hit over
// every body box in the store.
type storeRaycaster struct {
	store *bodyStore
}

func (r storeRaycaster) CastRay(origin, direction rl.Vector3, maxDistance float32) (SceneHit, bool) {
	closest := SceneHit{Distance: maxDistance}
	found := false

	for _, b := range r.store.all() {
		point, normal, distance, ok := RaycastAABB(origin, direction, b.AABB(), maxDistance)
		if !ok || (found && distance >= closest.Distance) {
			continue
		}
		closest = SceneHit{
			Renderable: b.Renderable,
			Point:      point,
			Normal:     normal,
			Distance:   distance,
		}
		found = true
	}
	return closest, found
}
