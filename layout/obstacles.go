package layout

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/pdrpinto/gridastar/grid"
)

// probeSize is the side of the query rectangle placed on a cell centre.
const probeSize = 1e-9

// obstacleEntry wraps a polygon for R-tree storage
type obstacleEntry struct {
	polygon orb.Polygon
	bbox    rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// obstacleIndex answers point-in-obstacle queries.
type obstacleIndex struct {
	tree *rtreego.Rtree
	size int
}

func newObstacleIndex(obstacles []orb.Polygon) *obstacleIndex {
	tree := rtreego.NewTree(2, 25, 50)
	size := 0
	for _, polygon := range obstacles {
		if len(polygon) == 0 || len(polygon[0]) < 3 {
			continue
		}
		bound := polygon.Bound()
		bbox, err := rtreego.NewRect(
			rtreego.Point{bound.Min[0], bound.Min[1]},
			[]float64{bound.Max[0] - bound.Min[0], bound.Max[1] - bound.Min[1]},
		)
		if err != nil {
			// zero-area polygon
			continue
		}
		tree.Insert(&obstacleEntry{polygon: polygon, bbox: bbox})
		size++
	}
	return &obstacleIndex{tree: tree, size: size}
}

func (idx *obstacleIndex) covers(point orb.Point) bool {
	if idx.size == 0 {
		return false
	}
	probe, err := rtreego.NewRect(rtreego.Point{point[0], point[1]}, []float64{probeSize, probeSize})
	if err != nil {
		return false
	}
	for _, item := range idx.tree.SearchIntersect(probe) {
		if planar.PolygonContains(item.(*obstacleEntry).polygon, point) {
			return true
		}
	}
	return false
}

// CellAt maps a world point to the cell containing it, cells being
// cellSize units wide with (0,0) at the grid's top-left corner.
func CellAt(g *grid.Grid, point orb.Point, cellSize float64) (grid.Cell, bool) {
	if cellSize <= 0 {
		return grid.Cell{}, false
	}
	cell := grid.Cell{
		X: int(math.Floor(point[0] / cellSize)),
		Y: int(math.Floor(point[1] / cellSize)),
	}
	return cell, g.InBounds(cell)
}

// CellCenter returns the world point at the centre of c.
func CellCenter(c grid.Cell, cellSize float64) orb.Point {
	return orb.Point{(float64(c.X) + 0.5) * cellSize, (float64(c.Y) + 0.5) * cellSize}
}

// Rasterize turns every cell whose centre lies inside an obstacle polygon
// into a wall and returns how many walls were added. Start and end cells are
// left open. Polygons use the same world units as cellSize.
func Rasterize(g *grid.Grid, obstacles []orb.Polygon, cellSize float64) (int, error) {
	if cellSize <= 0 {
		return 0, fmt.Errorf("%w: cell size %v must be positive", grid.ErrConfiguration, cellSize)
	}

	index := newObstacleIndex(obstacles)
	added := 0
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			cell := grid.Cell{X: x, Y: y}
			if g.IsWall(cell) || !index.covers(CellCenter(cell, cellSize)) {
				continue
			}
			before := g.Revision()
			if err := g.SetWall(cell); err != nil {
				return added, err
			}
			if g.Revision() != before {
				added++
			}
		}
	}
	return added, nil
}
