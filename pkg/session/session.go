// Package session keeps per-viewer widget state for the HTTP server.
//
// Each browser tab that opens a dataset gets its own [Session] holding a
// widget. Widgets are single-threaded, so every access goes through
// [Session.Do], which serializes HTTP handlers, WebSocket readers and
// asynchronous loader completions on the session's lock.
//
// Sessions expire after a period of inactivity. [Store.Cleanup] removes
// expired sessions; [Store.Run] does so periodically.
//
// # Usage
//
//	store := session.NewStore[*Viewer](session.DefaultTTL)
//	sess := store.Create(viewer)
//
//	sess, err := store.Get(id)
//	if err != nil {
//	    return err // SESSION_NOT_FOUND
//	}
//	err = sess.Do(func(v *Viewer) error {
//	    return v.Widget.ToggleID(nodeID)
//	})
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New(errors.ErrCodeSessionNotFound, "session expired")
)

// Default durations.
const (
	// DefaultTTL is the idle time after which a session expires.
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often Run sweeps expired sessions.
	DefaultCleanupInterval = time.Minute
)

// Session is one viewer's state.
type Session[V any] struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	value     V
	expiresAt time.Time
	closed    bool
}

// Do runs fn with exclusive access to the session value.
func (s *Session[V]) Do(fn func(V) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrExpired
	}
	return fn(s.value)
}

// Post runs fn under the session lock, dropping it if the session has been
// removed. Asynchronous loaders use it to hand results back.
func (s *Session[V]) Post(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		fn()
	}
}

// ExpiresAt returns the current expiry.
func (s *Session[V]) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session[V]) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Store is an in-memory session store. It is safe for concurrent use.
type Store[V any] struct {
	mu       sync.RWMutex
	sessions map[string]*Session[V]
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger

	// OnExpire, when set, is called for every session removed by Cleanup
	// or Delete, outside the store lock.
	OnExpire func(id string, value V)
}

// NewStore returns an empty store. A zero ttl uses DefaultTTL.
func NewStore[V any](ttl time.Duration) *Store[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store[V]{
		sessions: make(map[string]*Session[V]),
		ttl:      ttl,
		now:      time.Now,
		logger:   log.Default(),
	}
}

// SetLogger replaces the default logger.
func (st *Store[V]) SetLogger(l *log.Logger) {
	if l != nil {
		st.logger = l
	}
}

// Create stores value under a new random id.
func (st *Store[V]) Create(value V) *Session[V] {
	now := st.now()
	s := &Session[V]{
		ID:        uuid.NewString(),
		CreatedAt: now,
		value:     value,
		expiresAt: now.Add(st.ttl),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	st.logger.Debug("session created", "id", s.ID)
	return s
}

// Get returns the session and extends its expiry.
func (st *Store[V]) Get(id string) (*Session[V], error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := st.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || now.After(s.expiresAt) {
		return nil, ErrExpired
	}
	s.expiresAt = now.Add(st.ttl)
	return s, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (st *Store[V]) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		st.release(s)
	}
}

// Len returns the number of stored sessions, expired or not.
func (st *Store[V]) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cleanup removes expired sessions and reports how many were removed.
func (st *Store[V]) Cleanup(context.Context) int {
	now := st.now()
	var expired []*Session[V]

	st.mu.Lock()
	for id, s := range st.sessions {
		if now.After(s.ExpiresAt()) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		st.release(s)
	}
	if len(expired) > 0 {
		st.logger.Debug("expired sessions removed", "count", len(expired))
	}
	return len(expired)
}

// Run calls Cleanup every interval until ctx is done.
func (st *Store[V]) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Cleanup(ctx)
		}
	}
}

func (st *Store[V]) release(s *Session[V]) {
	s.close()
	if st.OnExpire != nil {
		st.OnExpire(s.ID, s.value)
	}
}
