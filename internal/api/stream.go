package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	astar "github.com/pdrpinto/gridastar"
)

// frameConn is the write side of a websocket connection.
type frameConn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
}

// writeFrame writes v, giving up after timeout.
func writeFrame(conn frameConn, v any, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// socketSink writes every progress event to the connection and then waits
// for the step delay. A failed or timed out write cancels the search.
type socketSink struct {
	ctx          context.Context
	cancel       context.CancelFunc
	conn         frameConn
	delay        time.Duration
	writeTimeout time.Duration
	logger       logrus.FieldLogger
}

func (s *socketSink) Notify(event astar.Event) {
	if s.ctx.Err() != nil {
		return
	}
	if err := writeFrame(s.conn, eventFrame(event), s.writeTimeout); err != nil {
		s.logger.Warnf("stream write failed: %v", err)
		s.cancel()
		return
	}
	if event.Kind != astar.EventExpanded || s.delay <= 0 {
		return
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-s.ctx.Done():
	}
}

// stream runs the session search over a websocket. Each expansion and
// frontier event becomes a frame, the last frame holds the result. Closing
// the connection cancels the search.
func (gc *GridController) stream(ctx *gin.Context) {
	s, ok := gc.lookup(ctx)
	if !ok {
		return
	}
	options, err := searchOptions(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if state := s.Status().State; state != astar.StateReady {
		ctx.JSON(http.StatusConflict, gin.H{"error": "search already " + state.String()})
		return
	}

	conn, err := gc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		gc.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	logger := gc.logger.WithField("session", s.ID.String())
	runCtx, cancel := context.WithCancel(ctx.Request.Context())
	defer cancel()

	// the client only ever closes; any read error ends the search
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	sink := &socketSink{
		ctx:          runCtx,
		cancel:       cancel,
		conn:         conn,
		delay:        gc.defaults.StepDelay,
		writeTimeout: gc.defaults.WriteTimeout,
		logger:       logger,
	}
	logger.Info("stream started")
	result, err := s.Run(runCtx, append(options, astar.WithProgressSink(sink))...)

	final := Frame{Type: frameResult}
	if err != nil {
		final = Frame{Type: frameError, Error: err.Error()}
	} else {
		final.Result = toResultDTO(result)
	}
	logger.WithField("outcome", result.Outcome.String()).Info("stream finished")

	if err := writeFrame(conn, final, gc.defaults.WriteTimeout); err != nil {
		logger.Debugf("result not delivered: %v", err)
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(gc.defaults.WriteTimeout))
}
