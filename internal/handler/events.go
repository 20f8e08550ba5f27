package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/genpass/genpass-go/internal/middleware"
	"github.com/genpass/genpass-go/internal/session"
)

const (
	eventBuffer  = 16
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HandleEvents handles GET /api/v1/session/events by upgrading to a websocket
// and streaming the session's expired, cleared and copied notifications.
// The stream is closed with a normal closure when the session ends.
func (h *SessionHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	events := make(chan session.Event, eventBuffer)
	unsubscribe, done, err := h.service.Subscribe(sessionID, func(ev session.Event) {
		select {
		case events <- ev:
		default:
			slog.Warn("dropping session event for slow subscriber", "session_id", sessionID, "event", ev.Kind)
		}
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		slog.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close()

	// Clients send nothing; reading only surfaces the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return
		case ev := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				slog.Warn("websocket write failed", "session_id", sessionID, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
