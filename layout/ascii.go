// Package layout builds and draws grid.Grid wall layouts: ASCII maps,
// polygon obstacles in world coordinates and random wall clusters.
package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdrpinto/gridastar/grid"
)

// Map characters.
const (
	Open  = '.'
	Wall  = '#'
	Start = 'S'
	End   = 'E'
	Route = '*'
	Seen  = 'o'
)

// MaxMapWidth is the longest row Parse accepts.
const MaxMapWidth = 4096

// Parse reads an ASCII map with one row per line. Blank lines are skipped
// and every row must have the same width, at most MaxMapWidth.
func Parse(reader io.Reader) (*grid.Grid, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 256), MaxMapWidth+2)
	scanner.Split(bufio.ScanLines)

	var rows []string
	line := 0
	for scanner.Scan() {
		line++
		row := strings.TrimRight(scanner.Text(), "\r")
		if row == "" {
			continue
		}
		if len(row) > MaxMapWidth {
			return nil, fmt.Errorf("%w: line %d is wider than %d", grid.ErrConfiguration, line, MaxMapWidth)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d has width %d, want %d", grid.ErrConfiguration, line, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d is wider than %d", grid.ErrConfiguration, line+1, MaxMapWidth)
		}
		return nil, fmt.Errorf("reading map: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty map", grid.ErrConfiguration)
	}

	g, err := grid.New(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		for x, char := range []byte(row) {
			cell := grid.Cell{X: x, Y: y}
			switch char {
			case Open:
			case Wall:
				err = g.SetWall(cell)
			case Start:
				err = g.SetStart(cell)
			case End:
				err = g.SetEnd(cell)
			default:
				err = fmt.Errorf("%w: unknown map character %q at %v", grid.ErrConfiguration, char, cell)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Render draws g like grid.Grid.String, marking seen cells with 'o' and
// path cells with '*'. Start and end keep their letters.
func Render(g *grid.Grid, path, seen []grid.Cell) string {
	rows := strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n")
	canvas := make([][]byte, len(rows))
	for y, row := range rows {
		canvas[y] = []byte(row)
	}

	mark := func(cells []grid.Cell, char byte) {
		for _, c := range cells {
			if !g.InBounds(c) {
				continue
			}
			if current := canvas[c.Y][c.X]; current == Start || current == End {
				continue
			}
			canvas[c.Y][c.X] = char
		}
	}
	mark(seen, Seen)
	mark(path, Route)

	var b strings.Builder
	for _, row := range canvas {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
