package api

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
)

// CellDTO is a cell on the wire.
type CellDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ScatterRequest asks for clustered random walls.
type ScatterRequest struct {
	Seed     int64   `json:"seed"`
	Clusters int     `json:"clusters" binding:"gte=0"`
	Steps    int     `json:"steps" binding:"gte=0"`
	Density  float64 `json:"density" binding:"gte=0,lte=1"`
}

// CreateGridRequest describes a grid to build. Map, when set, is an ASCII
// layout that replaces Width and Height. Obstacles are polygons in world
// units and cover every cell whose centre they contain.
type CreateGridRequest struct {
	Width     int             `json:"width" binding:"gte=0"`
	Height    int             `json:"height" binding:"gte=0"`
	Map       string          `json:"map"`
	Start     *CellDTO        `json:"start"`
	End       *CellDTO        `json:"end"`
	Walls     []CellDTO       `json:"walls"`
	Obstacles []orb.Polygon   `json:"obstacles"`
	CellSize  float64         `json:"cell_size" binding:"gte=0"`
	Scatter   *ScatterRequest `json:"scatter"`
}

// ResultDTO is a finished search.
type ResultDTO struct {
	Outcome  string    `json:"outcome"`
	Path     []CellDTO `json:"path"`
	Cost     int       `json:"cost"`
	Expanded int       `json:"expanded"`
	Seen     []CellDTO `json:"seen"`
}

// GridResponse is the state of a session.
type GridResponse struct {
	ID     string     `json:"id"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Start  *CellDTO   `json:"start,omitempty"`
	End    *CellDTO   `json:"end,omitempty"`
	Walls  []CellDTO  `json:"walls"`
	State  string     `json:"state"`
	Map    string     `json:"map"`
	Result *ResultDTO `json:"result,omitempty"`
}

// SnapshotResponse is one step of a stepped search.
type SnapshotResponse struct {
	Step    int       `json:"step"`
	Current CellDTO   `json:"current"`
	Open    []CellDTO `json:"open"`
	Closed  []CellDTO `json:"closed"`
	State   string    `json:"state"`
	Done    bool      `json:"done"`
	Found   bool      `json:"found"`
	Path    []CellDTO `json:"path,omitempty"`
}

// Frame is a message sent over the progress stream. Event frames carry Cell
// and Step, the last frame carries Result or Error.
type Frame struct {
	Type   string     `json:"type"`
	Cell   *CellDTO   `json:"cell,omitempty"`
	Step   int        `json:"step,omitempty"`
	Result *ResultDTO `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}

const (
	frameResult = "result"
	frameError  = "error"
)

func toCellDTO(c grid.Cell) CellDTO { return CellDTO{X: c.X, Y: c.Y} }

func (c CellDTO) cell() grid.Cell { return grid.Cell{X: c.X, Y: c.Y} }

func toCellDTOs(cells []grid.Cell) []CellDTO {
	out := make([]CellDTO, 0, len(cells))
	for _, c := range cells {
		out = append(out, toCellDTO(c))
	}
	return out
}

// setToCellDTOs lists a cell set in row-major order.
func setToCellDTOs(set map[grid.Cell]bool) []CellDTO {
	out := make([]CellDTO, 0, len(set))
	for c, ok := range set {
		if ok {
			out = append(out, toCellDTO(c))
		}
	}
	slices.SortFunc(out, func(a, b CellDTO) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	return out
}

func toResultDTO(r astar.Result) *ResultDTO {
	return &ResultDTO{
		Outcome:  r.Outcome.String(),
		Path:     toCellDTOs(r.Path),
		Cost:     r.Cost,
		Expanded: r.ExpandedNodes,
		Seen:     toCellDTOs(r.Seen),
	}
}

func toSnapshotResponse(snap astar.StepSnapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Step:    snap.StepIndex,
		Current: toCellDTO(snap.Current),
		Open:    setToCellDTOs(snap.Open),
		Closed:  setToCellDTOs(snap.Closed),
		State:   snap.State.String(),
		Done:    snap.Done,
		Found:   snap.Found,
	}
	if snap.Found {
		resp.Path = toCellDTOs(snap.Path)
	}
	return resp
}

func eventFrame(event astar.Event) Frame {
	cell := toCellDTO(event.Cell)
	return Frame{Type: event.Kind.String(), Cell: &cell, Step: event.Step}
}
