package astar

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/internal"
)

// State is the lifecycle stage of a Stepper.
type State int

const (
	StateReady State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further steps will change the search.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current   grid.Cell
	Open      map[grid.Cell]bool
	Closed    map[grid.Cell]bool
	CameFrom  map[grid.Cell]grid.Cell
	State     State
	Done      bool
	Found     bool
	Path      []grid.Cell
	StepIndex int
}

// Stepper runs the search one expansion at a time so a caller can render
// progress between steps. It is not safe for concurrent use.
type Stepper struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger logrus.FieldLogger
	sink   ProgressSink

	resolver    *grid.Resolver
	start, goal grid.Cell
	stepScale   int

	openSet    priorityQueue
	openSetMap map[grid.Cell]*queueItem
	closedSet  mapset.Set[grid.Cell]
	cameFrom   map[grid.Cell]grid.Cell
	gScore     map[grid.Cell]int
	nextSeq    uint64

	current   grid.Cell
	seen      []grid.Cell
	path      []grid.Cell
	stepCount int
	expanded  int
	state     State
}

// NewStepper prepares a search over g. The grid must have a start and an end.
func NewStepper(parent context.Context, g *grid.Grid, options ...Option) (*Stepper, error) {
	start, ok := g.Start()
	if !ok {
		return nil, fmt.Errorf("%w: grid has no start", grid.ErrInvalidState)
	}
	goal, ok := g.End()
	if !ok {
		return nil, fmt.Errorf("%w: grid has no end", grid.ErrInvalidState)
	}
	opts, err := buildOptions(options)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Stepper{
		ctx: ctx, cancel: cancel,
		logger: opts.Logger.WithFields(logrus.Fields{
			"start": start.String(),
			"end":   goal.String(),
		}),
		sink:       opts.Sink,
		resolver:   grid.NewResolver(g),
		start:      start,
		goal:       goal,
		stepScale:  opts.StepScale,
		openSet:    make(priorityQueue, 0),
		openSetMap: make(map[grid.Cell]*queueItem),
		closedSet:  mapset.New[grid.Cell](),
		cameFrom:   make(map[grid.Cell]grid.Cell),
		gScore:     map[grid.Cell]int{start: 0},
		current:    start,
		state:      StateReady,
	}

	heap.Init(&s.openSet)
	s.push(start, 0, Heuristic(start, goal))

	return s, nil
}

// Close cancels the search. The next Step ends in StateCancelled unless the
// search has already finished.
func (s *Stepper) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// State returns the current lifecycle stage.
func (s *Stepper) State() State { return s.state }

// Step advances the search by one node expansion and returns a snapshot.
// Once the search is finished Step returns the final snapshot again.
func (s *Stepper) Step() StepSnapshot {
	s.advance()
	return s.snapshot()
}

// Result reports the search outcome so far. Outcome is OutcomeNone until
// the stepper reaches a terminal state.
func (s *Stepper) Result() Result {
	result := Result{
		Start:         s.start,
		End:           s.goal,
		ExpandedNodes: s.expanded,
		Seen:          append([]grid.Cell(nil), s.seen...),
	}
	switch s.state {
	case StateSucceeded:
		result.Outcome = OutcomeSucceeded
		result.Path = append([]grid.Cell{}, s.path...)
		result.Cost = s.gScore[s.goal]
	case StateFailed:
		result.Outcome = OutcomeFailed
	case StateCancelled:
		result.Outcome = OutcomeCancelled
	}
	return result
}

func (s *Stepper) advance() {
	if s.state.Terminal() {
		return
	}
	if s.state == StateReady {
		s.state = StateRunning
		s.logger.Debug("search started")
	}
	if s.ctx.Err() != nil {
		s.finish(StateCancelled)
		return
	}
	if s.openSet.Len() == 0 {
		s.finish(StateFailed)
		return
	}

	s.stepCount++
	currentItem := heap.Pop(&s.openSet).(*queueItem)
	current := currentItem.Cell
	delete(s.openSetMap, current)
	s.current = current

	// Goal check
	if current == s.goal {
		s.path = internal.ReconstructInterior(s.cameFrom, s.goal, s.start)
		s.finish(StateSucceeded)
		return
	}

	s.closedSet.Put(current)
	s.expanded++
	s.sink.Notify(Event{Kind: EventExpanded, Cell: current, Step: s.stepCount})

	for _, neighbor := range s.resolver.Neighbors(current) {
		if s.closedSet.Has(neighbor) {
			continue
		}
		p := propose(current, currentItem.GScore, neighbor, s.goal, s.stepScale)
		if gPrev, ok := s.gScore[neighbor]; ok && p.GScore >= gPrev {
			continue
		}
		s.gScore[p.ToNode] = p.GScore
		s.cameFrom[p.ToNode] = p.FromNode

		if item, inOpen := s.openSetMap[p.ToNode]; inOpen {
			item.GScore = p.GScore
			item.FScore = p.FScore
			heap.Fix(&s.openSet, item.IndexInQueue)
			continue
		}
		s.push(p.ToNode, p.GScore, p.FScore)
		if p.ToNode != s.start && p.ToNode != s.goal {
			s.seen = append(s.seen, p.ToNode)
			s.sink.Notify(Event{Kind: EventFrontierGrown, Cell: p.ToNode, Step: s.stepCount})
		}
	}
}

func (s *Stepper) push(cell grid.Cell, gScore, fScore int) {
	s.nextSeq++
	item := &queueItem{Cell: cell, GScore: gScore, FScore: fScore, Seq: s.nextSeq}
	heap.Push(&s.openSet, item)
	s.openSetMap[cell] = item
}

func (s *Stepper) finish(state State) {
	s.state = state
	s.logger.WithFields(logrus.Fields{
		"outcome":  state.String(),
		"expanded": s.expanded,
		"steps":    s.stepCount,
	}).Debug("search finished")
}

func (s *Stepper) snapshot() StepSnapshot {
	closed := make(map[grid.Cell]bool, s.closedSet.Size())
	s.closedSet.Each(func(cell grid.Cell) {
		closed[cell] = true
	})
	snap := StepSnapshot{
		Current:   s.current,
		Open:      s.openSetToBoolMap(),
		Closed:    closed,
		CameFrom:  copyCameFrom(s.cameFrom),
		State:     s.state,
		Done:      s.state.Terminal(),
		Found:     s.state == StateSucceeded,
		StepIndex: s.stepCount,
	}
	if snap.Found {
		snap.Path = append([]grid.Cell{}, s.path...)
	}
	return snap
}

func (s *Stepper) openSetToBoolMap() map[grid.Cell]bool {
	m := make(map[grid.Cell]bool, len(s.openSetMap))
	for k := range s.openSetMap {
		m[k] = true
	}
	return m
}

func copyCameFrom[T comparable](m map[T]T) map[T]T {
	if m == nil {
		return nil
	}
	c := make(map[T]T, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
