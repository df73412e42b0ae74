package grid

// direction offsets in the order neighbours are reported.
var (
	north = Cell{X: 0, Y: -1}
	east  = Cell{X: 1, Y: 0}
	south = Cell{X: 0, Y: 1}
	west  = Cell{X: -1, Y: 0}
)

// diagonal is a corner move together with the two orthogonal moves flanking it.
type diagonal struct {
	offset Cell
	flankA Cell
	flankB Cell
}

var (
	orthogonals = [4]Cell{north, east, south, west}
	diagonals   = [4]diagonal{
		{offset: Cell{X: -1, Y: -1}, flankA: north, flankB: west}, // NW
		{offset: Cell{X: 1, Y: 1}, flankA: east, flankB: south},   // SE
		{offset: Cell{X: -1, Y: 1}, flankA: west, flankB: south},  // SW
		{offset: Cell{X: 1, Y: -1}, flankA: east, flankB: north},  // NE
	}
)

// Resolver computes traversable neighbours over a Grid.
//
// A diagonal step is allowed only when the destination and both orthogonal
// cells it passes between are open, so paths never cut a wall corner.
// Results are cached per cell until the grid's wall revision changes.
type Resolver struct {
	grid     *Grid
	revision uint64
	cache    map[Cell][]Cell
}

// NewResolver creates a resolver reading from g.
func NewResolver(g *Grid) *Resolver {
	return &Resolver{
		grid:     g,
		revision: g.Revision(),
		cache:    make(map[Cell][]Cell),
	}
}

// Neighbors returns the cells reachable from c in one step, ordered
// N, E, S, W, NW, SE, SW, NE. The returned slice must not be modified.
func (r *Resolver) Neighbors(c Cell) []Cell {
	if rev := r.grid.Revision(); rev != r.revision {
		clear(r.cache)
		r.revision = rev
	}
	if cached, ok := r.cache[c]; ok {
		return cached
	}

	neighbors := make([]Cell, 0, 8)
	for _, d := range orthogonals {
		next := add(c, d)
		if !r.grid.IsWall(next) {
			neighbors = append(neighbors, next)
		}
	}
	for _, d := range diagonals {
		next := add(c, d.offset)
		if r.grid.IsWall(next) {
			continue
		}
		if r.grid.IsWall(add(c, d.flankA)) || r.grid.IsWall(add(c, d.flankB)) {
			continue
		}
		neighbors = append(neighbors, next)
	}

	r.cache[c] = neighbors
	return neighbors
}

// Adjacent reports whether b is a legal single step from a.
func (r *Resolver) Adjacent(a, b Cell) bool {
	for _, n := range r.Neighbors(a) {
		if n == b {
			return true
		}
	}
	return false
}

func add(c, d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}
