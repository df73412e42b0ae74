// Package grid holds the wall layout searched by the astar package and
// derives the cells reachable from any given cell.
//
// Cells are plain coordinate values. They never point back at the grid that
// owns them; every query goes through a *Grid or a *Resolver.
package grid

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultWidth  = 50
	DefaultHeight = 50
)

var (
	// ErrConfiguration reports invalid dimensions or an illegal start/end/wall placement.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidState reports a call that is not allowed in the current lifecycle stage.
	ErrInvalidState = errors.New("invalid state")
)

// Cell is a grid location addressed by column X and row Y.
type Cell struct {
	X, Y int
}

// String provides a string representation of Cell
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid is a dense width×height field of open or wall cells, indexed [y][x].
// Walls are only ever added. Start and end are set once each and are never walls.
type Grid struct {
	width, height int
	walls         [][]bool
	wallOrder     []Cell

	start, end       Cell
	hasStart, hasEnd bool

	revision uint64
}

// New creates a grid with every cell open and no start or end.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: grid dimensions %dx%d must be positive", ErrConfiguration, width, height)
	}

	walls := make([][]bool, height)
	for y := range walls {
		walls[y] = make([]bool, width)
	}
	return &Grid{width: width, height: height, walls: walls}, nil
}

// NewDefault creates a grid of DefaultWidth×DefaultHeight.
func NewDefault() *Grid {
	g, _ := New(DefaultWidth, DefaultHeight)
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c lies in [0, width) × [0, height).
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// IsWall reports whether c is a wall. Out-of-bounds cells count as walls.
func (g *Grid) IsWall(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.walls[c.Y][c.X]
}

// SetWall marks c as a wall. Setting the start, the end or an existing wall
// changes nothing.
func (g *Grid) SetWall(c Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: wall %v outside %dx%d grid", ErrConfiguration, c, g.width, g.height)
	}
	if g.isEndpoint(c) || g.walls[c.Y][c.X] {
		return nil
	}
	g.walls[c.Y][c.X] = true
	g.wallOrder = append(g.wallOrder, c)
	g.revision++
	return nil
}

// SetStart designates the start cell. It may be called once.
func (g *Grid) SetStart(c Cell) error {
	if g.hasStart {
		return fmt.Errorf("%w: start already set to %v", ErrInvalidState, g.start)
	}
	if err := g.checkEndpoint("start", c); err != nil {
		return err
	}
	if g.hasEnd && c == g.end {
		return fmt.Errorf("%w: start %v equals end", ErrConfiguration, c)
	}
	g.start, g.hasStart = c, true
	return nil
}

// SetEnd designates the end cell. It may be called once.
func (g *Grid) SetEnd(c Cell) error {
	if g.hasEnd {
		return fmt.Errorf("%w: end already set to %v", ErrInvalidState, g.end)
	}
	if err := g.checkEndpoint("end", c); err != nil {
		return err
	}
	if g.hasStart && c == g.start {
		return fmt.Errorf("%w: end %v equals start", ErrConfiguration, c)
	}
	g.end, g.hasEnd = c, true
	return nil
}

func (g *Grid) checkEndpoint(name string, c Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s %v outside %dx%d grid", ErrConfiguration, name, c, g.width, g.height)
	}
	if g.walls[c.Y][c.X] {
		return fmt.Errorf("%w: %s %v is a wall", ErrConfiguration, name, c)
	}
	return nil
}

func (g *Grid) isEndpoint(c Cell) bool {
	return (g.hasStart && c == g.start) || (g.hasEnd && c == g.end)
}

// Start returns the start cell and whether it has been set.
func (g *Grid) Start() (Cell, bool) { return g.start, g.hasStart }

// End returns the end cell and whether it has been set.
func (g *Grid) End() (Cell, bool) { return g.end, g.hasEnd }

// Walls returns the walls in the order they were added.
func (g *Grid) Walls() []Cell {
	out := make([]Cell, len(g.wallOrder))
	copy(out, g.wallOrder)
	return out
}

// Revision increases every time a wall is added.
func (g *Grid) Revision() uint64 { return g.revision }

// String renders the grid as rows of '#' (wall), '.' (open), 'S' and 'E'.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Cell{X: x, Y: y}
			switch {
			case g.hasStart && c == g.start:
				b.WriteByte('S')
			case g.hasEnd && c == g.end:
				b.WriteByte('E')
			case g.walls[y][x]:
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
