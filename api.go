package astar

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdrpinto/gridastar/grid"
)

// Outcome is how a search ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Result contains the outcome of a search
type Result struct {
	Outcome Outcome
	Start   grid.Cell
	End     grid.Cell
	// Path holds the cells strictly between Start and End.
	// It is empty unless Outcome is OutcomeSucceeded.
	Path []grid.Cell
	// Cost is the accumulated step cost of the route to End.
	Cost          int
	ExpandedNodes int
	// Seen lists frontier cells in the order they were discovered,
	// excluding Start and End.
	Seen []grid.Cell
}

// Found reports whether a path was found.
func (r Result) Found() bool { return r.Outcome == OutcomeSucceeded }

// Route returns Start, Path and End as one sequence, or nil if no path was found.
func (r Result) Route() []grid.Cell {
	if !r.Found() {
		return nil
	}
	route := make([]grid.Cell, 0, len(r.Path)+2)
	route = append(route, r.Start)
	route = append(route, r.Path...)
	return append(route, r.End)
}

// Options defines parameters for the search.
type Options struct {
	Sink      ProgressSink
	Logger    logrus.FieldLogger
	StepScale int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithProgressSink delivers Expanded and FrontierGrown events to sink.
func WithProgressSink(sink ProgressSink) Option {
	return func(options *Options) { options.Sink = sink }
}

// WithLogger sets the logger used for lifecycle debug messages.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(options *Options) { options.Logger = logger }
}

// MaxStepScale bounds WithStepScale so accumulated costs cannot overflow.
const MaxStepScale = 1 << 16

// WithStepScale multiplies StepCost by scale when accumulating path cost.
//
// The default of 1 keeps the accumulated cost an order of magnitude below
// Heuristic, which makes the search greedy: it finds shortest paths on open
// ground but may return a longer one around walls. A scale of 14 makes
// Heuristic consistent with the step cost and every path found is shortest.
// The scale changes expansion order and therefore progress events.
func WithStepScale(scale int) Option {
	return func(options *Options) { options.StepScale = scale }
}

func buildOptions(options []Option) (Options, error) {
	searchOptions := Options{
		Sink:      discardSink{},
		Logger:    logrus.StandardLogger(),
		StepScale: 1,
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.StepScale < 1 || searchOptions.StepScale > MaxStepScale {
		return Options{}, fmt.Errorf("%w: step scale %d must be between 1 and %d", grid.ErrConfiguration, searchOptions.StepScale, MaxStepScale)
	}
	if searchOptions.Sink == nil {
		searchOptions.Sink = discardSink{}
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = logrus.StandardLogger()
	}
	return searchOptions, nil
}

// Search runs the search on g from its start to its end until it succeeds,
// exhausts the frontier or ctx is cancelled.
//
// The only errors are configuration errors: a grid without start or end
// yields grid.ErrInvalidState. Not finding a path is reported through
// Result.Outcome. The grid must not be modified while Search runs.
func Search(ctx context.Context, g *grid.Grid, options ...Option) (Result, error) {
	stepper, err := NewStepper(ctx, g, options...)
	if err != nil {
		return Result{}, err
	}
	defer stepper.Close()

	for !stepper.State().Terminal() {
		stepper.advance()
	}
	return stepper.Result(), nil
}
