package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// cellKey buckets bodies on the horizontal plane; the vertical axis is
// ignored for bucketing since an arena is wide, not tall.
type cellKey struct {
	X, Z int
}

// grid is the uniform broadphase. Each body occupies every cell its
// bounding radius overlaps; owners is the reverse map so removal costs
// only the cells the body sits in.
type grid struct {
	cellSize float32
	cells    map[cellKey][]*Body
	owners   map[uint64][]cellKey
}

func newGrid(cellSize float32) *grid {
	if cellSize <= 0 {
		cellSize = defaultCellSize
	}
	return &grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*Body),
		owners:   make(map[uint64][]cellKey),
	}
}

const defaultCellSize = 5.0

func (g *grid) cellAt(x, z float32) cellKey {
	return cellKey{
		X: int(math32.Floor(x / g.cellSize)),
		Z: int(math32.Floor(z / g.cellSize)),
	}
}

// span returns the cell range covered by a disk at (x,z) with the given
// radius.
func (g *grid) span(x, z, radius float32) (min, max cellKey) {
	return g.cellAt(x-radius, z-radius), g.cellAt(x+radius, z+radius)
}

func (g *grid) insert(b *Body) {
	min, max := g.span(b.Position.X, b.Position.Z, b.BoundingRadius())
	keys := make([]cellKey, 0, (max.X-min.X+1)*(max.Z-min.Z+1))
	for cx := min.X; cx <= max.X; cx++ {
		for cz := min.Z; cz <= max.Z; cz++ {
			key := cellKey{X: cx, Z: cz}
			g.cells[key] = append(g.cells[key], b)
			keys = append(keys, key)
		}
	}
	g.owners[b.ID] = keys
}

func (g *grid) remove(b *Body) {
	keys, ok := g.owners[b.ID]
	if !ok {
		return
	}
	for _, key := range keys {
		bucket := g.cells[key]
		for i, occupant := range bucket {
			if occupant.ID == b.ID {
				g.cells[key] = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(g.cells[key]) == 0 {
			delete(g.cells, key)
		}
	}
	delete(g.owners, b.ID)
}

func (g *grid) update(b *Body) {
	g.remove(b)
	g.insert(b)
}

// rebuild repopulates the grid from scratch. Called once per fixed step;
// the simplest correct policy given bodies move during integration.
func (g *grid) rebuild(bodies []*Body) {
	clear(g.cells)
	clear(g.owners)
	for _, b := range bodies {
		g.insert(b)
	}
}

// nearby returns every body whose bounds may touch a disk at pos with the
// given radius. Cell membership is a superset; candidates are filtered by
// true Euclidean distance before being returned.
func (g *grid) nearby(pos rl.Vector3, radius float32) []*Body {
	if radius < 0 {
		return nil
	}
	min, max := g.span(pos.X, pos.Z, radius)

	var result []*Body
	seen := make(map[uint64]struct{})
	for cx := min.X; cx <= max.X; cx++ {
		for cz := min.Z; cz <= max.Z; cz++ {
			for _, b := range g.cells[cellKey{X: cx, Z: cz}] {
				if _, dup := seen[b.ID]; dup {
					continue
				}
				seen[b.ID] = struct{}{}
				dist := rl.Vector3Length(rl.Vector3Subtract(b.Position, pos))
				if dist <= radius+b.BoundingRadius() {
					result = append(result, b)
				}
			}
		}
	}
	return result
}
