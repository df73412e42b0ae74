package astar

import "github.com/pdrpinto/gridastar/grid"

// StepCost is the cost of moving between two adjacent cells. Diagonal and
// orthogonal moves cost the same.
func StepCost(_, _ grid.Cell) int {
	return 1
}

// Heuristic estimates the distance from a to b as 14 per diagonal step plus
// 10 per remaining straight step.
//
// The scale is ten times StepCost, so with the default step scale the
// estimate dominates the accumulated cost. See WithStepScale.
func Heuristic(a, b grid.Cell) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	dMax, dMin := max(dx, dy), min(dx, dy)
	return 14*dMin + 10*(dMax-dMin)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
