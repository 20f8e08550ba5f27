package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/genpass/genpass-go/internal/crypto"
	"github.com/genpass/genpass-go/internal/model"
	"github.com/genpass/genpass-go/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionConfig configures a SessionService.
type SessionConfig struct {
	Secret      string
	TokenTTL    time.Duration
	IdleTimeout time.Duration
	Expiry      time.Duration
	Source      crypto.Source
}

type sessionEntry struct {
	sess     *session.Session
	lastSeen time.Time
}

// SessionService keeps the in-memory generator sessions of connected clients.
type SessionService struct {
	cfg  SessionConfig
	opts []session.Option
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionService creates a SessionService. Extra options are applied to
// every session it creates.
func NewSessionService(cfg SessionConfig, opts ...session.Option) *SessionService {
	if cfg.Source == nil {
		cfg.Source = crypto.CryptoSource{}
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = session.DefaultExpiry
	}
	base := []session.Option{session.WithSource(cfg.Source), session.WithExpiry(cfg.Expiry)}

	return &SessionService{
		cfg:      cfg,
		opts:     append(base, opts...),
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create starts a new session and returns a token bound to it.
func (s *SessionService) Create() (model.SessionResponse, error) {
	id := uuid.NewString()

	token, expiresAt, err := crypto.GenerateToken(id, s.cfg.Secret, s.cfg.TokenTTL)
	if err != nil {
		return model.SessionResponse{}, err
	}

	sess := session.New(s.opts...)
	sess.Subscribe(func(ev session.Event) {
		slog.Info("credential event", "session_id", id, "event", ev.Kind)
	})

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{sess: sess, lastSeen: s.now()}
	s.mu.Unlock()

	slog.Info("session created", "session_id", id)

	return model.SessionResponse{
		SessionID: id,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Generate produces a new current credential for the session.
func (s *SessionService) Generate(id string, req model.GenerateRequest) (model.GenerateResponse, error) {
	sess, err := s.get(id)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	genReq, err := ResolveRequest(req)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	snap, err := sess.Generate(genReq)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return newGenerateResponse(snap.Credential, snap.Score), nil
}

// Current returns the session's current credential. ok is false when the
// session is idle.
func (s *SessionService) Current(id string) (resp model.GenerateResponse, ok bool, err error) {
	sess, err := s.get(id)
	if err != nil {
		return model.GenerateResponse{}, false, err
	}

	snap, ok := sess.Current()
	if !ok {
		return model.GenerateResponse{}, false, nil
	}
	return newGenerateResponse(snap.Credential, snap.Score), true, nil
}

// History returns the session's recent credentials, most recent first.
func (s *SessionService) History(id string) (model.HistoryResponse, error) {
	sess, err := s.get(id)
	if err != nil {
		return model.HistoryResponse{}, err
	}
	return model.HistoryResponse{Passwords: sess.History()}, nil
}

// Clear drops the session's current credential.
func (s *SessionService) Clear(id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.Clear()
	return nil
}

// RecordCopy notes that the client exported the current credential.
func (s *SessionService) RecordCopy(id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.RecordCopy()
	return nil
}

// Subscribe registers fn for the session's events. The returned done channel
// is closed when the session is deleted or evicted.
func (s *SessionService) Subscribe(id string, fn func(session.Event)) (unsubscribe func(), done <-chan struct{}, err error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	return sess.Subscribe(fn), sess.Done(), nil
}

// Delete ends a session.
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	entry.sess.Close()
	slog.Info("session deleted", "session_id", id)
	return nil
}

// Len reports the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run evicts idle sessions until ctx is cancelled.
func (s *SessionService) Run(ctx context.Context) {
	interval := s.cfg.IdleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// Sweep closes and removes sessions unused for longer than the idle timeout.
func (s *SessionService) Sweep() int {
	if s.cfg.IdleTimeout <= 0 {
		return 0
	}

	now := s.now()
	var stale []*session.Session

	s.mu.Lock()
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.cfg.IdleTimeout {
			stale = append(stale, entry.sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	return len(stale)
}

func (s *SessionService) get(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = s.now()
	return entry.sess, nil
}
