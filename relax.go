package astar

import "github.com/pdrpinto/gridastar/grid"

// relaxProposal is the candidate update for one neighbour of the cell being expanded.
type relaxProposal struct {
	FromNode grid.Cell
	ToNode   grid.Cell
	GScore   int
	FScore   int
}

func propose(from grid.Cell, fromGScore int, to grid.Cell, goal grid.Cell, stepScale int) relaxProposal {
	tentativeG := fromGScore + StepCost(from, to)*stepScale
	return relaxProposal{
		FromNode: from,
		ToNode:   to,
		GScore:   tentativeG,
		FScore:   tentativeG + Heuristic(to, goal),
	}
}
