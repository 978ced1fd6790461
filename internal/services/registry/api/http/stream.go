package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Douglas360/smart-contracts/internal/platform/timeouts"
	"github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/tokens"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/feed"
)

// upgrader enforces the origin policy: no allowed origins means same-origin
// only, and "*" admits any origin.
func (h *handler) upgrader() websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	origins := h.cfg.AllowedOrigins
	if len(origins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, AnyOrigin) || slices.Contains(origins, r.Header.Get("Origin"))
		}
	}
	return upgrader
}

// streamEvents replays the journal after ?after= and then follows live
// commits, one JSON event per text frame.
func (h *handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	after, err := parseUintParam(r, "after")
	if err != nil {
		writeError(w, r, err)
		return
	}
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Inbound frames are ignored; a read error means the peer went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = feed.Follow(ctx, h.cfg.Hub, h.cfg.Journal, after, func(evt event.Event) error {
		if err := conn.SetWriteDeadline(time.Now().Add(timeouts.StreamWrite)); err != nil {
			return err
		}
		return conn.WriteJSON(tokens.EventToWire(evt))
	})

	closeCode, reason := websocket.CloseNormalClosure, ""
	switch {
	case errors.Is(err, feed.ErrSlowSubscriber):
		closeCode, reason = websocket.CloseTryAgainLater, err.Error()
	case errors.Is(err, feed.ErrHubClosed):
		closeCode, reason = websocket.CloseGoingAway, err.Error()
	case err != nil && !errors.Is(err, context.Canceled):
		log.Printf("event stream: %v", err)
		closeCode, reason = websocket.CloseInternalServerErr, "stream failed"
	}
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(closeCode, reason), deadline)
}
