// Package session keeps the grids created through the server and the one
// search each of them may run.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
)

type mode int

const (
	modeIdle mode = iota
	modeStepping
	modeStreaming
)

// Session owns a grid and at most one search over it. The grid is never
// modified after the session is created.
type Session struct {
	ID      uuid.UUID
	Created time.Time

	grid   *grid.Grid
	logger logrus.FieldLogger

	mu      sync.Mutex
	mode    mode
	state   astar.State
	stepper *astar.Stepper
	cancel  context.CancelFunc
	result  *astar.Result
}

// Status is a copy of what a session knows about its search.
type Status struct {
	ID     uuid.UUID
	Grid   *grid.Grid
	State  astar.State
	Result *astar.Result
}

// Grid returns the session grid. Callers must treat it as read-only.
func (s *Session) Grid() *grid.Grid { return s.grid }

// Status reports the search state and, once the search is over, its result.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := Status{ID: s.ID, Grid: s.grid, State: s.state}
	if s.result != nil {
		result := *s.result
		status.Result = &result
	}
	return status
}

// Step runs one expansion of the session search, creating the stepper on the
// first call. It fails with grid.ErrInvalidState when the search is being
// streamed.
func (s *Session) Step(options ...astar.Option) (astar.StepSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case modeStreaming:
		return astar.StepSnapshot{}, fmt.Errorf("%w: session %s is streaming its search", grid.ErrInvalidState, s.ID)
	case modeIdle:
		options = append([]astar.Option{astar.WithLogger(s.logger)}, options...)
		stepper, err := astar.NewStepper(context.Background(), s.grid, options...)
		if err != nil {
			return astar.StepSnapshot{}, err
		}
		s.stepper = stepper
		s.cancel = stepper.Close
		s.mode = modeStepping
	}

	snap := s.stepper.Step()
	s.state = snap.State
	if snap.Done && s.result == nil {
		result := s.stepper.Result()
		s.result = &result
	}
	return snap, nil
}

// Run searches the grid to completion, reporting progress to the options'
// sink. A session runs at most one search: calling Run after Step or a
// previous Run fails with grid.ErrInvalidState. Close cancels a running search.
func (s *Session) Run(ctx context.Context, options ...astar.Option) (astar.Result, error) {
	s.mu.Lock()
	if s.mode != modeIdle {
		s.mu.Unlock()
		return astar.Result{}, fmt.Errorf("%w: session %s already ran its search", grid.ErrInvalidState, s.ID)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mode = modeStreaming
	s.state = astar.StateRunning
	s.cancel = cancel
	s.mu.Unlock()

	options = append([]astar.Option{astar.WithLogger(s.logger)}, options...)
	result, err := astar.Search(ctx, s.grid, options...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = astar.StateFailed
		return astar.Result{}, err
	}
	s.state = stateOf(result.Outcome)
	s.result = &result
	return result, nil
}

// Close cancels the session search if one is in progress.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func stateOf(outcome astar.Outcome) astar.State {
	switch outcome {
	case astar.OutcomeSucceeded:
		return astar.StateSucceeded
	case astar.OutcomeFailed:
		return astar.StateFailed
	case astar.OutcomeCancelled:
		return astar.StateCancelled
	default:
		return astar.StateRunning
	}
}

// Store indexes sessions by id. It is safe for concurrent use.
type Store struct {
	logger logrus.FieldLogger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewStore returns an empty store whose sessions log through logger.
func NewStore(logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{logger: logger, sessions: make(map[uuid.UUID]*Session)}
}

// Create registers a new session for g.
func (st *Store) Create(g *grid.Grid) *Session {
	id := uuid.New()
	s := &Session{
		ID:      id,
		Created: time.Now(),
		grid:    g,
		logger:  st.logger.WithField("session", id.String()),
		state:   astar.StateReady,
	}

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"width":  g.Width(),
		"height": g.Height(),
		"walls":  len(g.Walls()),
	}).Info("session created")
	return s
}

// Get looks up a session.
func (st *Store) Get(id uuid.UUID) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session and cancels its search. It reports whether the
// session existed.
func (st *Store) Delete(id uuid.UUID) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	s.logger.Info("session deleted")
	return true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
