package calculator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-chi-calculator/internal/observability"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// StoreConfig bounds a SessionStore.
type StoreConfig struct {
	// TTL evicts sessions idle for longer. Zero keeps sessions forever.
	TTL time.Duration
	// MaxSessions caps live sessions. Zero means no cap.
	MaxSessions int
	// MaxDigits is passed to every session's Machine.
	MaxDigits int
}

// SessionView is what callers see of a session after every operation.
type SessionView struct {
	ID      string
	Display Display
	State   State
}

type session struct {
	mu       sync.Mutex
	machine  *Machine
	lastUsed time.Time
}

// SessionStore hosts one Machine per session. The map is guarded by the
// store lock; each Machine by its session lock, so a session handles one
// input at a time.
type SessionStore struct {
	cfg StoreConfig
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionStore(cfg StoreConfig) *SessionStore {
	return &SessionStore{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Create starts a session with a fresh Machine.
func (s *SessionStore) Create() (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return SessionView{}, fmt.Errorf("limit %d: %w", s.cfg.MaxSessions, ErrTooManySessions)
	}

	id := uuid.New().String()
	sess := &session{
		machine:  New(WithMaxDigits(s.cfg.MaxDigits)),
		lastUsed: s.now(),
	}
	s.sessions[id] = sess

	return view(id, sess.machine), nil
}

// Get returns the session's current display and state.
func (s *SessionStore) Get(id string) (SessionView, error) {
	return s.Update(id, func(*Machine) error { return nil })
}

// Update runs fn against the session's Machine. The returned view reflects
// the machine after fn, even when fn fails part way.
func (s *SessionStore) Update(id string, fn func(*Machine) error) (SessionView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	err = fn(sess.machine)
	return view(id, sess.machine), err
}

// Delete ends a session.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle since before now minus the TTL and returns
// how many were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	if s.cfg.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.cfg.TTL {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.cfg.TTL <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				sessionsEvicted.Add(float64(n))
				observability.Logger.Info("evicted idle calculator sessions",
					zap.Int("evicted", n),
					zap.Int("remaining", s.Len()),
				)
			}
		}
	}
}

func (s *SessionStore) touch(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

func view(id string, m *Machine) SessionView {
	return SessionView{ID: id, Display: m.Display(), State: m.Snapshot()}
}
