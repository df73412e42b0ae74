package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/internal/session"
	"github.com/pdrpinto/gridastar/layout"
)

func newHandler(t *testing.T, defaults Defaults) (http.Handler, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	store := session.NewStore(logger)
	gc := NewGridController(store, defaults, logger)
	router := NewRouter(Config{BaseURL: "/api", Controllers: []Controller{gc}, Logger: logger})
	return router.Handler(), store
}

var testDefaults = Defaults{Width: 10, Height: 10, CellSize: 20}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createGrid(t *testing.T, h http.Handler, request CreateGridRequest) GridResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/grids", request)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[GridResponse](t, rec)
}

func TestCreateGrid(t *testing.T) {
	h, store := newHandler(t, testDefaults)

	t.Run("defaults and endpoints", func(t *testing.T) {
		resp := createGrid(t, h, CreateGridRequest{Start: &CellDTO{X: 0, Y: 0}, End: &CellDTO{X: 9, Y: 9}})

		id, err := uuid.Parse(resp.ID)
		require.NoError(t, err)
		_, ok := store.Get(id)
		assert.True(t, ok)
		assert.Equal(t, 10, resp.Width)
		assert.Equal(t, 10, resp.Height)
		assert.Equal(t, &CellDTO{X: 9, Y: 9}, resp.End)
		assert.Equal(t, "ready", resp.State)
		assert.Empty(t, resp.Walls)
		assert.Nil(t, resp.Result)
	})

	t.Run("ascii map and extra walls", func(t *testing.T) {
		resp := createGrid(t, h, CreateGridRequest{
			Map:   "S..\n.#.\n..E\n",
			Walls: []CellDTO{{X: 2, Y: 0}, {X: 0, Y: 0}},
		})

		assert.Equal(t, 3, resp.Width)
		assert.Equal(t, []CellDTO{{X: 1, Y: 1}, {X: 2, Y: 0}}, resp.Walls)
		assert.Equal(t, "S.#\n.#.\n..E\n", resp.Map)
	})

	t.Run("polygon obstacles", func(t *testing.T) {
		body := `{"obstacles": [[[[40,40],[100,40],[100,100],[40,100],[40,40]]]]}`
		rec := do(t, h, http.MethodPost, "/api/v1/grids", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decode[GridResponse](t, rec)
		assert.Len(t, resp.Walls, 9)
		assert.Contains(t, resp.Walls, CellDTO{X: 3, Y: 3})
	})

	t.Run("seeded scatter is repeatable", func(t *testing.T) {
		request := CreateGridRequest{
			Width: 20, Height: 12,
			Start:   &CellDTO{X: 0, Y: 0},
			End:     &CellDTO{X: 19, Y: 11},
			Scatter: &ScatterRequest{Seed: 7, Density: 0.25},
		}
		a := createGrid(t, h, request)
		b := createGrid(t, h, request)
		assert.NotEmpty(t, a.Walls)
		assert.Equal(t, a.Map, b.Map)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("rejected requests", func(t *testing.T) {
		bodies := map[string]string{
			"malformed json":     `{"width":`,
			"negative width":     `{"width": -1}`,
			"density above one":  `{"scatter": {"density": 2}}`,
			"start out of range": `{"start": {"x": 10, "y": 0}}`,
			"start equals end":   `{"start": {"x": 1, "y": 1}, "end": {"x": 1, "y": 1}}`,
			"unknown map glyph":  `{"map": "S?E"}`,
			"second start":       `{"map": "S.E", "start": {"x": 1, "y": 0}}`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				rec := do(t, h, http.MethodPost, "/api/v1/grids", body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Contains(t, decode[map[string]string](t, rec), "error")
			})
		}
	})
}

func TestCreateGridLimits(t *testing.T) {
	h, store := newHandler(t, Defaults{Width: 10, Height: 10, CellSize: 20, MaxWidth: 64, MaxHeight: 32, MaxScatterSteps: 1000})

	bodies := map[string]string{
		"too wide":             `{"width": 8000, "height": 10}`,
		"too tall":             `{"width": 10, "height": 33}`,
		"map wider than limit": `{"map": "` + strings.Repeat(".", 65) + `"}`,
		"map row overflow":     `{"map": "` + strings.Repeat(".", layout.MaxMapWidth+1) + `"}`,
		"scatter workload":     `{"scatter": {"density": 0.0001, "clusters": 1000000, "steps": 1000}}`,
		"scatter steps":        `{"scatter": {"density": 0.5, "clusters": 1, "steps": 1001}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/grids", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec), "error")
		})
	}
	assert.Zero(t, store.Len())

	resp := createGrid(t, h, CreateGridRequest{
		Width: 64, Height: 32,
		Scatter: &ScatterRequest{Seed: 1, Clusters: 10, Steps: 100, Density: 0.5},
	})
	assert.Equal(t, 64, resp.Width)
	assert.Equal(t, 32, resp.Height)
}

func TestSessionLookup(t *testing.T) {
	h, _ := newHandler(t, testDefaults)
	resp := createGrid(t, h, CreateGridRequest{})

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/grids/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/grids/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/grids/"+resp.ID, nil).Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/v1/grids/"+resp.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/v1/grids/"+resp.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/v1/grids/"+resp.ID+"/step", nil).Code)
}

func TestStep(t *testing.T) {
	h, _ := newHandler(t, testDefaults)
	resp := createGrid(t, h, CreateGridRequest{Width: 5, Height: 5, Start: &CellDTO{}, End: &CellDTO{X: 4, Y: 4}})
	stepPath := "/api/v1/grids/" + resp.ID + "/step"

	rec := do(t, h, http.MethodPost, stepPath, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[SnapshotResponse](t, rec)
	assert.Equal(t, 1, snap.Step)
	assert.Equal(t, CellDTO{}, snap.Current)
	assert.Equal(t, []CellDTO{{X: 0, Y: 0}}, snap.Closed)
	assert.Equal(t, []CellDTO{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, snap.Open)
	assert.Equal(t, "running", snap.State)
	assert.False(t, snap.Done)

	for i := 0; i < 10 && !snap.Done; i++ {
		rec = do(t, h, http.MethodPost, stepPath, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		snap = decode[SnapshotResponse](t, rec)
	}
	require.True(t, snap.Done)
	assert.True(t, snap.Found)
	assert.Equal(t, "succeeded", snap.State)
	assert.Equal(t, []CellDTO{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}, snap.Path)

	state := decode[GridResponse](t, do(t, h, http.MethodGet, "/api/v1/grids/"+resp.ID, nil))
	assert.Equal(t, "succeeded", state.State)
	require.NotNil(t, state.Result)
	assert.Equal(t, "succeeded", state.Result.Outcome)
	assert.Equal(t, 4, state.Result.Cost)
	assert.Equal(t, 4, state.Result.Expanded)
	assert.True(t, strings.HasPrefix(state.Map, "So"), state.Map)
	assert.Equal(t, 3, strings.Count(state.Map, "*"))

	rec = do(t, h, http.MethodGet, "/api/v1/grids/"+resp.ID+"/stream", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStepErrors(t *testing.T) {
	h, _ := newHandler(t, testDefaults)

	t.Run("no endpoints", func(t *testing.T) {
		resp := createGrid(t, h, CreateGridRequest{})
		rec := do(t, h, http.MethodPost, "/api/v1/grids/"+resp.ID+"/step", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad scale", func(t *testing.T) {
		resp := createGrid(t, h, CreateGridRequest{Start: &CellDTO{}, End: &CellDTO{X: 3, Y: 3}})
		for _, scale := range []string{"abc", "0", "70000"} {
			rec := do(t, h, http.MethodPost, "/api/v1/grids/"+resp.ID+"/step?scale="+scale, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, scale)
		}
		rec := do(t, h, http.MethodPost, "/api/v1/grids/"+resp.ID+"/step?scale=14", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func dialStream(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/grids/" + id + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	return conn
}

func TestStream(t *testing.T) {
	h, _ := newHandler(t, testDefaults)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp := createGrid(t, h, CreateGridRequest{Width: 5, Height: 5, Start: &CellDTO{}, End: &CellDTO{X: 4, Y: 4}})
	conn := dialStream(t, srv, resp.ID)
	defer conn.Close()

	var expanded, frontier []CellDTO
	var final Frame
	for {
		var frame Frame
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Type == frameResult || frame.Type == frameError {
			final = frame
			break
		}
		require.NotNil(t, frame.Cell)
		switch frame.Type {
		case astar.EventExpanded.String():
			expanded = append(expanded, *frame.Cell)
		case astar.EventFrontierGrown.String():
			frontier = append(frontier, *frame.Cell)
		}
	}

	assert.Equal(t, []CellDTO{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}, expanded)
	assert.Len(t, frontier, 17)
	assert.Equal(t, frameResult, final.Type)
	require.NotNil(t, final.Result)
	assert.Equal(t, "succeeded", final.Result.Outcome)
	assert.Equal(t, frontier, final.Result.Seen)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)

	state := decode[GridResponse](t, do(t, h, http.MethodGet, "/api/v1/grids/"+resp.ID, nil))
	assert.Equal(t, "succeeded", state.State)

	rec := do(t, h, http.MethodPost, "/api/v1/grids/"+resp.ID+"/step", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStreamCancelledByClient(t *testing.T) {
	h, store := newHandler(t, Defaults{Width: 50, Height: 50, CellSize: 20, StepDelay: 50 * time.Millisecond})
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp := createGrid(t, h, CreateGridRequest{Start: &CellDTO{}, End: &CellDTO{X: 49, Y: 49}})
	conn := dialStream(t, srv, resp.ID)

	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "expanded", frame.Type)
	require.NoError(t, conn.Close())

	s, ok := store.Get(uuid.MustParse(resp.ID))
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return s.Status().State == astar.StateCancelled
	}, 2*time.Second, 10*time.Millisecond)
	assert.Less(t, s.Status().Result.ExpandedNodes, 49)
}
