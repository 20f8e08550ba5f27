package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/genpass/genpass-go/internal/crypto"
	"github.com/genpass/genpass-go/internal/middleware"
	"github.com/genpass/genpass-go/internal/model"
	"github.com/genpass/genpass-go/internal/service"
	"github.com/genpass/genpass-go/internal/session"
)

const testSecret = "test-secret"

func newTestSessionHandler(t *testing.T) (*SessionHandler, *service.SessionService) {
	t.Helper()
	svc := service.NewSessionService(service.SessionConfig{
		Secret:      testSecret,
		TokenTTL:    time.Hour,
		IdleTimeout: time.Hour,
		Expiry:      time.Hour,
		Source:      crypto.NewSeededSource(5, 8),
	})
	return NewSessionHandler(svc), svc
}

// withSession attaches a session ID to the request the way SessionAuth does.
func withSession(req *http.Request, id string) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), id))
}

func createSession(t *testing.T, h *SessionHandler) model.SessionResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp model.SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf(errDecodeFmt, err)
	}
	return resp
}

func TestSessionHandlerFlow(t *testing.T) {
	h, _ := newTestSessionHandler(t)
	created := createSession(t, h)
	id := created.SessionID

	// Idle: no current credential.
	rec := httptest.NewRecorder()
	h.HandleCurrent(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/session/current", nil), id))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	// Generate.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/generate", strings.NewReader(`{"profile":"secure"}`))
	h.HandleGenerate(rec, withSession(req, id))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var generated model.GenerateResponse
	if err := json.NewDecoder(rec.Body).Decode(&generated); err != nil {
		t.Fatalf(errDecodeFmt, err)
	}

	// Current.
	rec = httptest.NewRecorder()
	h.HandleCurrent(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/session/current", nil), id))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var current model.GenerateResponse
	if err := json.NewDecoder(rec.Body).Decode(&current); err != nil {
		t.Fatalf(errDecodeFmt, err)
	}
	if current.Password != generated.Password {
		t.Errorf("current = %q, want %q", current.Password, generated.Password)
	}

	// Copy and clear.
	for _, step := range []struct {
		name string
		fn   http.HandlerFunc
	}{
		{"copy", h.HandleCopy},
		{"clear", h.HandleClear},
		{"clear again", h.HandleClear},
	} {
		rec = httptest.NewRecorder()
		step.fn(rec, withSession(httptest.NewRequest(http.MethodPost, "/", nil), id))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", step.name, rec.Code)
		}
	}

	// History survives clear.
	rec = httptest.NewRecorder()
	h.HandleHistory(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/session/history", nil), id))
	var hist model.HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&hist); err != nil {
		t.Fatalf(errDecodeFmt, err)
	}
	if len(hist.Passwords) != 1 || hist.Passwords[0] != generated.Password {
		t.Errorf("history = %v", hist.Passwords)
	}

	// Delete, then the session is gone.
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil), id))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.HandleHistory(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/session/history", nil), id))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSessionHandlerGenerateEmptyAlphabet(t *testing.T) {
	h, svc := newTestSessionHandler(t)
	created := createSession(t, h)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/generate",
		strings.NewReader(`{"lowercase":false,"uppercase":false,"digits":false,"symbols":false}`))
	h.HandleGenerate(rec, withSession(req, created.SessionID))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if hist, _ := svc.History(created.SessionID); len(hist.Passwords) != 0 {
		t.Errorf("history = %v, want empty", hist.Passwords)
	}
}

func TestSessionHandlerUnauthorized(t *testing.T) {
	h, _ := newTestSessionHandler(t)

	handlers := map[string]http.HandlerFunc{
		"generate": h.HandleGenerate,
		"current":  h.HandleCurrent,
		"history":  h.HandleHistory,
		"clear":    h.HandleClear,
		"copy":     h.HandleCopy,
		"delete":   h.HandleDelete,
		"events":   h.HandleEvents,
	}

	for name, fn := range handlers {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestSessionHandlerUnknownSession(t *testing.T) {
	h, _ := newTestSessionHandler(t)

	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, withSession(httptest.NewRequest(http.MethodPost, "/", nil), "missing"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("generate: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleCurrent(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), "missing"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("current: expected 404, got %d", rec.Code)
	}
}

func TestHandleEventsStreamsNotifications(t *testing.T) {
	h, svc := newTestSessionHandler(t)
	created := createSession(t, h)

	if _, err := svc.Generate(created.SessionID, model.GenerateRequest{}); err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	srv := httptest.NewServer(middleware.SessionAuthQuery(testSecret)(http.HandlerFunc(h.HandleEvents)))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + created.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() unexpected error: %v", err)
	}
	defer conn.Close()

	if err := svc.RecordCopy(created.SessionID); err != nil {
		t.Fatalf("RecordCopy() unexpected error: %v", err)
	}
	if err := svc.Clear(created.SessionID); err != nil {
		t.Fatalf("Clear() unexpected error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []session.EventKind{session.EventCopied, session.EventCleared} {
		var ev session.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("ReadJSON() unexpected error: %v", err)
		}
		if ev.Kind != want {
			t.Errorf("event = %s, want %s", ev.Kind, want)
		}
	}
}

func TestHandleEventsClosesWhenSessionDeleted(t *testing.T) {
	h, svc := newTestSessionHandler(t)
	created := createSession(t, h)

	srv := httptest.NewServer(middleware.SessionAuthQuery(testSecret)(http.HandlerFunc(h.HandleEvents)))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + created.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() unexpected error: %v", err)
	}
	defer conn.Close()

	if err := svc.Delete(created.SessionID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("ReadMessage() error = %v, want normal closure", err)
	}
}
