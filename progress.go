package astar

import "github.com/pdrpinto/gridastar/grid"

// EventKind tells a ProgressSink what happened to a cell.
type EventKind int

const (
	// EventExpanded is sent when a cell leaves the frontier and is finalized.
	EventExpanded EventKind = iota + 1
	// EventFrontierGrown is sent when a cell first joins the frontier.
	// It is never sent for the start or end cell.
	EventFrontierGrown
)

func (k EventKind) String() string {
	switch k {
	case EventExpanded:
		return "expanded"
	case EventFrontierGrown:
		return "frontier"
	default:
		return "unknown"
	}
}

// Event is a single progress notification.
type Event struct {
	Kind EventKind
	Cell grid.Cell
	Step int
}

// ProgressSink receives events synchronously from the goroutine running the search.
type ProgressSink interface {
	Notify(event Event)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(event Event)

func (f SinkFunc) Notify(event Event) { f(event) }

type discardSink struct{}

func (discardSink) Notify(Event) {}
