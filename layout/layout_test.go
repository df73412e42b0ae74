package layout

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridastar/grid"
)

func TestParse(t *testing.T) {
	t.Run("walls start and end", func(t *testing.T) {
		g, err := Parse(strings.NewReader("S.#\r\n.#.\n\n..E\n"))
		require.NoError(t, err)

		assert.Equal(t, 3, g.Width())
		assert.Equal(t, 3, g.Height())
		assert.True(t, g.IsWall(grid.Cell{X: 2, Y: 0}))
		assert.True(t, g.IsWall(grid.Cell{X: 1, Y: 1}))
		start, ok := g.Start()
		require.True(t, ok)
		assert.Equal(t, grid.Cell{X: 0, Y: 0}, start)
		end, ok := g.End()
		require.True(t, ok)
		assert.Equal(t, grid.Cell{X: 2, Y: 2}, end)
		assert.Equal(t, "S.#\n.#.\n..E\n", g.String())
	})

	t.Run("start and end are optional", func(t *testing.T) {
		g, err := Parse(strings.NewReader("..\n.."))
		require.NoError(t, err)
		_, ok := g.Start()
		assert.False(t, ok)
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := Parse(strings.NewReader("...\n..\n"))
		assert.ErrorIs(t, err, grid.ErrConfiguration)
	})

	t.Run("unknown character", func(t *testing.T) {
		_, err := Parse(strings.NewReader(".x.\n"))
		assert.ErrorIs(t, err, grid.ErrConfiguration)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Parse(strings.NewReader("\n\n"))
		assert.ErrorIs(t, err, grid.ErrConfiguration)
	})

	t.Run("rows wider than the maximum", func(t *testing.T) {
		_, err := Parse(strings.NewReader(strings.Repeat(".", MaxMapWidth+1) + "\n"))
		assert.ErrorIs(t, err, grid.ErrConfiguration)

		_, err = Parse(strings.NewReader(strings.Repeat(".", 3*MaxMapWidth)))
		assert.ErrorIs(t, err, grid.ErrConfiguration)

		g, err := Parse(strings.NewReader(strings.Repeat(".", MaxMapWidth) + "\r\n"))
		require.NoError(t, err)
		assert.Equal(t, MaxMapWidth, g.Width())
	})

	t.Run("two starts", func(t *testing.T) {
		_, err := Parse(strings.NewReader("S.S\n"))
		assert.ErrorIs(t, err, grid.ErrInvalidState)
	})
}

func TestRender(t *testing.T) {
	g, err := Parse(strings.NewReader("S...\n.##.\n...E\n"))
	require.NoError(t, err)

	path := []grid.Cell{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 1}}
	seen := []grid.Cell{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 3, Y: 2}, {X: 9, Y: 9}}

	want := "S**.\no##*\n...E\n"
	assert.Equal(t, want, Render(g, path, seen))
}

func TestRasterize(t *testing.T) {
	t.Run("square covers cell centres", func(t *testing.T) {
		g, _ := grid.New(10, 10)
		square := orb.Polygon{orb.Ring{{40, 40}, {100, 40}, {100, 100}, {40, 100}, {40, 40}}}

		added, err := Rasterize(g, []orb.Polygon{square}, 20)
		require.NoError(t, err)
		assert.Equal(t, 9, added)
		for y := 2; y <= 4; y++ {
			for x := 2; x <= 4; x++ {
				assert.True(t, g.IsWall(grid.Cell{X: x, Y: y}), "cell %d,%d", x, y)
			}
		}
		assert.False(t, g.IsWall(grid.Cell{X: 1, Y: 2}))
		assert.False(t, g.IsWall(grid.Cell{X: 5, Y: 5}))
	})

	t.Run("triangle", func(t *testing.T) {
		g, _ := grid.New(4, 4)
		triangle := orb.Polygon{orb.Ring{{0, 0}, {4.2, 0}, {0, 4.2}, {0, 0}}}

		added, err := Rasterize(g, []orb.Polygon{triangle}, 1)
		require.NoError(t, err)
		// centres with x+y <= 3
		assert.Equal(t, 10, added)
		assert.True(t, g.IsWall(grid.Cell{X: 0, Y: 0}))
		assert.True(t, g.IsWall(grid.Cell{X: 3, Y: 0}))
		assert.True(t, g.IsWall(grid.Cell{X: 1, Y: 2}))
		assert.False(t, g.IsWall(grid.Cell{X: 3, Y: 1}))
		assert.False(t, g.IsWall(grid.Cell{X: 2, Y: 2}))
	})

	t.Run("endpoints stay open", func(t *testing.T) {
		g, _ := grid.New(3, 3)
		require.NoError(t, g.SetStart(grid.Cell{X: 1, Y: 1}))
		all := orb.Polygon{orb.Ring{{0, 0}, {3, 0}, {3, 3}, {0, 3}, {0, 0}}}

		added, err := Rasterize(g, []orb.Polygon{all}, 1)
		require.NoError(t, err)
		assert.Equal(t, 8, added)
		assert.False(t, g.IsWall(grid.Cell{X: 1, Y: 1}))
	})

	t.Run("degenerate polygons are ignored", func(t *testing.T) {
		g, _ := grid.New(3, 3)
		line := orb.Polygon{orb.Ring{{0, 1}, {3, 1}, {0, 1}}}

		added, err := Rasterize(g, []orb.Polygon{line, {}}, 1)
		require.NoError(t, err)
		assert.Zero(t, added)
	})

	t.Run("cell size must be positive", func(t *testing.T) {
		g, _ := grid.New(3, 3)
		_, err := Rasterize(g, nil, 0)
		assert.ErrorIs(t, err, grid.ErrConfiguration)
	})
}

func TestCellAt(t *testing.T) {
	g, _ := grid.New(50, 50)

	cell, ok := CellAt(g, orb.Point{45, 999}, 20)
	assert.True(t, ok)
	assert.Equal(t, grid.Cell{X: 2, Y: 49}, cell)

	_, ok = CellAt(g, orb.Point{1000, 0}, 20)
	assert.False(t, ok)
	_, ok = CellAt(g, orb.Point{-1, 0}, 20)
	assert.False(t, ok)
	_, ok = CellAt(g, orb.Point{1, 1}, 0)
	assert.False(t, ok)

	assert.Equal(t, orb.Point{50, 10}, CellCenter(grid.Cell{X: 2, Y: 0}, 20))
}

func TestScatter(t *testing.T) {
	build := func() *grid.Grid {
		g, _ := grid.New(20, 12)
		require.NoError(t, g.SetStart(grid.Cell{X: 0, Y: 0}))
		require.NoError(t, g.SetEnd(grid.Cell{X: 19, Y: 11}))
		return g
	}

	t.Run("same seed same walls", func(t *testing.T) {
		a, b := build(), build()
		addedA := Scatter(a, rand.New(rand.NewSource(7)), 8, 200, 0.25)
		addedB := Scatter(b, rand.New(rand.NewSource(7)), 8, 200, 0.25)

		assert.Equal(t, addedA, addedB)
		assert.Equal(t, a.String(), b.String())
		assert.Len(t, a.Walls(), addedA)
		assert.Positive(t, addedA)
	})

	t.Run("never walls the endpoints", func(t *testing.T) {
		g := build()
		Scatter(g, rand.New(rand.NewSource(1)), 50, 500, 1)
		assert.False(t, g.IsWall(grid.Cell{X: 0, Y: 0}))
		assert.False(t, g.IsWall(grid.Cell{X: 19, Y: 11}))
	})

	t.Run("zero density adds nothing", func(t *testing.T) {
		g := build()
		assert.Zero(t, Scatter(g, rand.New(rand.NewSource(3)), 8, 200, 0))
		assert.Empty(t, g.Walls())
	})
}
