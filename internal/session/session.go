// Package session holds the state a user sees while generating credentials:
// the current credential, a short history, and the countdown that clears the
// credential after a period of inactivity.
package session

import (
	"sync"
	"time"

	"github.com/genpass/genpass-go/internal/crypto"
)

const (
	// HistoryLimit is the maximum number of credentials kept in history.
	HistoryLimit = 5

	// DefaultExpiry is how long a generated credential stays current.
	DefaultExpiry = 30 * time.Second
)

// EventKind names a notification emitted by a Session.
type EventKind string

const (
	EventExpired EventKind = "expired"
	EventCleared EventKind = "cleared"
	EventCopied  EventKind = "copied"
)

// Event is delivered to subscribers after the state change it describes.
type Event struct {
	Kind EventKind `json:"type"`
	At   time.Time `json:"at"`
}

// Snapshot is a credential together with its strength score.
type Snapshot struct {
	Credential string
	Score      int
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Session.
type Option func(*Session)

// WithSource sets the random source used for generation.
func WithSource(src crypto.Source) Option {
	return func(s *Session) { s.src = src }
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(sched Scheduler) Option {
	return func(s *Session) { s.sched = sched }
}

// WithExpiry sets how long a credential stays current after generation.
func WithExpiry(d time.Duration) Option {
	return func(s *Session) { s.expiry = d }
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

type subscriber struct {
	id int
	fn func(Event)
}

// Session is safe for concurrent use. Subscribers are invoked without the
// session lock held, so they may call back into the Session.
type Session struct {
	src    crypto.Source
	sched  Scheduler
	expiry time.Duration
	now    func() time.Time

	mu          sync.Mutex
	current     string
	active      bool
	history     []string
	timer       Timer
	epoch       uint64
	subscribers []subscriber
	nextSubID   int
	done        chan struct{}
	closed      bool
}

// New creates an idle session with an empty history.
func New(opts ...Option) *Session {
	s := &Session{
		src:    crypto.CryptoSource{},
		sched:  clockScheduler{},
		expiry: DefaultExpiry,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces a new current credential, records it in history and
// restarts the expiry countdown. On error the session is left untouched.
func (s *Session) Generate(req crypto.GenerationRequest) (Snapshot, error) {
	credential, err := crypto.Generate(req, s.src)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = credential
	s.active = true
	s.history = append([]string{credential}, s.history...)
	if len(s.history) > HistoryLimit {
		s.history = s.history[:HistoryLimit]
	}
	s.arm()

	return Snapshot{Credential: credential, Score: crypto.Score(credential)}, nil
}

// Current returns the current credential, if any.
func (s *Session) Current() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Snapshot{}, false
	}
	return Snapshot{Credential: s.current, Score: crypto.Score(s.current)}, true
}

// History returns recent credentials, most recent first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Clear drops the current credential and cancels the countdown. History is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	wasActive := s.active
	s.disarm()
	s.current = ""
	s.active = false
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if wasActive {
		s.emit(subs, EventCleared)
	}
}

// RecordCopy notifies subscribers that the current credential was exported.
// It does nothing when there is no current credential.
func (s *Session) RecordCopy() {
	s.mu.Lock()
	active := s.active
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if active {
		s.emit(subs, EventCopied)
	}
}

// Subscribe registers fn for session events and returns a function that
// removes it.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Done returns a channel that is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close cancels any pending countdown, drops all subscribers and closes the
// Done channel. Calling Close more than once is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.disarm()
	s.current = ""
	s.active = false
	s.subscribers = nil
	close(s.done)
}

// arm cancels the pending countdown before scheduling a new one.
// Callers must hold s.mu.
func (s *Session) arm() {
	s.disarm()
	epoch := s.epoch
	s.timer = s.sched.AfterFunc(s.expiry, func() { s.expire(epoch) })
}

// disarm stops the pending countdown and invalidates its epoch, so a callback
// that already started cannot take effect. Callers must hold s.mu.
func (s *Session) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.epoch++
}

func (s *Session) expire(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || !s.active {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.epoch++
	s.current = ""
	s.active = false
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.emit(subs, EventExpired)
}

func (s *Session) subscribersLocked() []subscriber {
	out := make([]subscriber, len(s.subscribers))
	copy(out, s.subscribers)
	return out
}

func (s *Session) emit(subs []subscriber, kind EventKind) {
	ev := Event{Kind: kind, At: s.now()}
	for _, sub := range subs {
		sub.fn(ev)
	}
}
