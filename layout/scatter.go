package layout

import (
	"math/rand"

	"github.com/pdrpinto/gridastar/grid"
)

var walkDirections = [4]grid.Cell{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// Scatter adds clustered random walls: each cluster is a random walk of the
// given number of steps that drops a wall with probability density at every
// cell it visits. Start and end are never walled. It returns the number of
// walls added.
func Scatter(g *grid.Grid, rng *rand.Rand, clusters, steps int, density float64) int {
	added := 0
	for c := 0; c < clusters; c++ {
		p := grid.Cell{X: rng.Intn(g.Width()), Y: rng.Intn(g.Height())}
		for s := 0; s < steps; s++ {
			if rng.Float64() < density && !g.IsWall(p) {
				before := g.Revision()
				_ = g.SetWall(p)
				if g.Revision() != before {
					added++
				}
			}
			d := walkDirections[rng.Intn(len(walkDirections))]
			np := grid.Cell{X: p.X + d.X, Y: p.Y + d.Y}
			if g.InBounds(np) {
				p = np
			}
		}
	}
	return added
}
