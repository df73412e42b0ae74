// Package api exposes grid sessions over HTTP: create a grid, step its
// search, stream the search over a websocket and drop the session.
package api

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/internal/session"
	"github.com/pdrpinto/gridastar/layout"
)

// Controller registers routes on a router group.
type Controller interface {
	RegisterPublic(*gin.RouterGroup)
}

// Defaults for a grid created without explicit settings, and the limits a
// create request must stay within. Zero limits fall back to the package
// defaults.
type Defaults struct {
	Width     int
	Height    int
	CellSize  float64
	StepDelay time.Duration

	MaxWidth        int
	MaxHeight       int
	MaxScatterSteps int
	WriteTimeout    time.Duration
}

const (
	defaultMaxSide         = 1000
	defaultMaxScatterSteps = 1_000_000
	defaultWriteTimeout    = 10 * time.Second
)

// GridController serves grid sessions.
type GridController struct {
	store    *session.Store
	defaults Defaults
	logger   logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewGridController initializes a GridController.
func NewGridController(store *session.Store, defaults Defaults, logger logrus.FieldLogger) *GridController {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	defaults.MaxWidth = cmp.Or(defaults.MaxWidth, defaultMaxSide)
	defaults.MaxHeight = cmp.Or(defaults.MaxHeight, defaultMaxSide)
	defaults.MaxScatterSteps = cmp.Or(defaults.MaxScatterSteps, defaultMaxScatterSteps)
	defaults.WriteTimeout = cmp.Or(defaults.WriteTimeout, defaultWriteTimeout)
	return &GridController{
		store:    store,
		defaults: defaults,
		logger:   logger,
	}
}

// RegisterPublic registers public routes.
func (gc *GridController) RegisterPublic(route *gin.RouterGroup) {
	grids := route.Group("/grids")
	{
		grids.POST("", gc.create)
		grids.GET("/:id", gc.show)
		grids.DELETE("/:id", gc.remove)
		grids.POST("/:id/step", gc.step)
		grids.GET("/:id/stream", gc.stream)
	}
}

func (gc *GridController) create(ctx *gin.Context) {
	var request CreateGridRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := gc.buildGrid(request)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := gc.store.Create(g)
	ctx.JSON(http.StatusCreated, gridResponse(s.Status()))
}

func (gc *GridController) show(ctx *gin.Context) {
	s, ok := gc.lookup(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gridResponse(s.Status()))
}

func (gc *GridController) remove(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	if !gc.store.Delete(id) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (gc *GridController) step(ctx *gin.Context) {
	s, ok := gc.lookup(ctx)
	if !ok {
		return
	}
	options, err := searchOptions(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	snap, err := s.Step(options...)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toSnapshotResponse(snap))
}

// lookup resolves the :id parameter, writing the error response itself when
// it fails.
func (gc *GridController) lookup(ctx *gin.Context) (*session.Session, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, false
	}
	s, ok := gc.store.Get(id)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return nil, false
	}
	return s, true
}

func (gc *GridController) buildGrid(request CreateGridRequest) (*grid.Grid, error) {
	var (
		g   *grid.Grid
		err error
	)
	if request.Map != "" {
		g, err = layout.Parse(strings.NewReader(request.Map))
		if err == nil {
			err = gc.checkSize(g.Width(), g.Height())
		}
	} else {
		width, height := cmp.Or(request.Width, gc.defaults.Width), cmp.Or(request.Height, gc.defaults.Height)
		if err = gc.checkSize(width, height); err == nil {
			g, err = grid.New(width, height)
		}
	}
	if err != nil {
		return nil, err
	}

	if request.Start != nil {
		if err := g.SetStart(request.Start.cell()); err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
	}
	if request.End != nil {
		if err := g.SetEnd(request.End.cell()); err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
	}
	for _, w := range request.Walls {
		if err := g.SetWall(w.cell()); err != nil {
			return nil, fmt.Errorf("wall: %w", err)
		}
	}
	if len(request.Obstacles) > 0 {
		cellSize := cmp.Or(request.CellSize, gc.defaults.CellSize)
		if _, err := layout.Rasterize(g, request.Obstacles, cellSize); err != nil {
			return nil, err
		}
	}
	if sc := request.Scatter; sc != nil && sc.Density > 0 {
		clusters, steps := cmp.Or(sc.Clusters, 8), cmp.Or(sc.Steps, 200)
		if limit := gc.defaults.MaxScatterSteps; clusters > limit || steps > limit || clusters*steps > limit {
			return nil, fmt.Errorf("%w: scatter of %d clusters by %d steps exceeds %d steps", grid.ErrConfiguration, clusters, steps, limit)
		}
		rng := rand.New(rand.NewSource(sc.Seed))
		layout.Scatter(g, rng, clusters, steps, sc.Density)
	}
	return g, nil
}

func (gc *GridController) checkSize(width, height int) error {
	if width > gc.defaults.MaxWidth || height > gc.defaults.MaxHeight {
		return fmt.Errorf("%w: grid %dx%d exceeds %dx%d", grid.ErrConfiguration, width, height, gc.defaults.MaxWidth, gc.defaults.MaxHeight)
	}
	return nil
}

// searchOptions reads the optional scale query parameter.
func searchOptions(ctx *gin.Context) ([]astar.Option, error) {
	raw, ok := ctx.GetQuery("scale")
	if !ok {
		return nil, nil
	}
	scale, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: scale %q is not an integer", grid.ErrConfiguration, raw)
	}
	return []astar.Option{astar.WithStepScale(scale)}, nil
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, grid.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, grid.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func gridResponse(status session.Status) GridResponse {
	g := status.Grid
	resp := GridResponse{
		ID:     status.ID.String(),
		Width:  g.Width(),
		Height: g.Height(),
		Walls:  toCellDTOs(g.Walls()),
		State:  status.State.String(),
		Map:    g.String(),
	}
	if start, ok := g.Start(); ok {
		c := toCellDTO(start)
		resp.Start = &c
	}
	if end, ok := g.End(); ok {
		c := toCellDTO(end)
		resp.End = &c
	}
	if status.Result != nil {
		resp.Result = toResultDTO(*status.Result)
		resp.Map = layout.Render(g, status.Result.Path, status.Result.Seen)
	}
	return resp
}
