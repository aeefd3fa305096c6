package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func gridBody(pos rl.Vector3) *Body {
	b := NewBody(0, BodyDynamic, DefaultMaterial(), unitHalf)
	b.Position = pos
	return b
}

func TestGridNearby(t *testing.T) {
	g := newGrid(5)

	near := gridBody(rl.Vector3{X: 1})
	far := gridBody(rl.Vector3{X: 40})
	g.insert(near)
	g.insert(far)

	got := g.nearby(rl.Vector3{}, 2)
	if len(got) != 1 || got[0].ID != near.ID {
		t.Fatalf("expected only the close body, got %d results", len(got))
	}

	if got := g.nearby(rl.Vector3{}, 100); len(got) != 2 {
		t.Errorf("wide query should find both bodies, got %d", len(got))
	}
	if got := g.nearby(rl.Vector3{}, -1); got != nil {
		t.Errorf("negative radius should return nil, got %d results", len(got))
	}
}

// Bucketing ignores the vertical axis but the distance filter does not: a
// body far overhead shares a cell yet is not a neighbour.
func TestGridVerticalFiltering(t *testing.T) {
	g := newGrid(5)

	overhead := gridBody(rl.Vector3{Y: 50})
	g.insert(overhead)

	if got := g.nearby(rl.Vector3{}, 2); len(got) != 0 {
		t.Errorf("body 50 m overhead should be filtered out, got %d results", len(got))
	}
	if got := g.nearby(rl.Vector3{}, 60); len(got) != 1 {
		t.Errorf("wide vertical reach should find it, got %d results", len(got))
	}
}

// A body near a cell boundary occupies every cell its radius overlaps, so
// queries from the far side still find it.
func TestGridSpansCellBoundary(t *testing.T) {
	g := newGrid(5)

	straddler := gridBody(rl.Vector3{X: 4.9})
	g.insert(straddler)

	if got := g.nearby(rl.Vector3{X: 5.5}, 1); len(got) != 1 {
		t.Errorf("straddling body should be visible from the next cell, got %d", len(got))
	}
}

func TestGridRemove(t *testing.T) {
	g := newGrid(5)

	b := gridBody(rl.Vector3{X: 1})
	g.insert(b)
	g.remove(b)

	if got := g.nearby(rl.Vector3{}, 10); len(got) != 0 {
		t.Errorf("removed body still returned, got %d results", len(got))
	}
	if len(g.cells) != 0 {
		t.Errorf("empty buckets should be deleted, %d remain", len(g.cells))
	}

	g.remove(b) // double remove is a no-op
}

func TestGridUpdateMovesBody(t *testing.T) {
	g := newGrid(5)

	b := gridBody(rl.Vector3{X: 1})
	g.insert(b)

	b.Position = rl.Vector3{X: 40}
	g.update(b)

	if got := g.nearby(rl.Vector3{}, 2); len(got) != 0 {
		t.Errorf("body should have left the origin cell, got %d results", len(got))
	}
	if got := g.nearby(rl.Vector3{X: 40}, 2); len(got) != 1 {
		t.Errorf("body should be findable at its new position, got %d results", len(got))
	}
}

func TestGridRebuild(t *testing.T) {
	g := newGrid(5)

	a := gridBody(rl.Vector3{X: 1})
	b := gridBody(rl.Vector3{X: 40})
	g.insert(a)

	a.Position = rl.Vector3{X: 20}
	g.rebuild([]*Body{a, b})

	if got := g.nearby(rl.Vector3{X: 1}, 2); len(got) != 0 {
		t.Errorf("rebuild should drop the stale position, got %d results", len(got))
	}
	if got := g.nearby(rl.Vector3{X: 20}, 2); len(got) != 1 {
		t.Errorf("rebuild should index the new position, got %d results", len(got))
	}
	if got := g.nearby(rl.Vector3{X: 40}, 2); len(got) != 1 {
		t.Errorf("rebuild should index bodies it was handed, got %d results", len(got))
	}
}
