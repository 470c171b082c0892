// Package sessions provides the in-memory, cookie-bound session store that
// scopes each analyst's canonical table to their own browser session. Nothing
// is persisted: sessions exist for the life of the process and expire after a
// configurable idle TTL.
package sessions

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmcallister/orcview/pkg/lifecycle"
)

// Store is a TTL-evicting map of session ID to session data. T is the
// session payload type owned by the domain using the store.
type Store[T any] struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry[T]
	ttl      time.Duration
	logger   *slog.Logger
}

type entry[T any] struct {
	data      T
	createdAt time.Time
	lastSeen  time.Time
}

// NewStore creates a Store with the given idle TTL.
func NewStore[T any](ttl time.Duration, logger *slog.Logger) *Store[T] {
	return &Store[T]{
		sessions: make(map[uuid.UUID]*entry[T]),
		ttl:      ttl,
		logger:   logger.With("system", "sessions"),
	}
}

// Create registers a new session with zero-valued data and returns its ID.
func (s *Store[T]) Create() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	now := time.Now()
	s.sessions[id] = &entry[T]{createdAt: now, lastSeen: now}

	s.logger.Info("session created", "session", id)
	return id
}

// Get returns the session data for id and refreshes its idle timer.
func (s *Store[T]) Get(id uuid.UUID) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		var zero T
		return zero, false
	}

	e.lastSeen = time.Now()
	return e.data, true
}

// Put replaces the session data for id, refreshing its idle timer. A missing
// session is recreated, so an eviction racing the caller between resolving a
// session and storing into it cannot silently drop the data.
func (s *Store[T]) Put(id uuid.UUID, data T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry[T]{createdAt: now}
		s.sessions[id] = e
		s.logger.Info("session recreated", "session", id)
	}

	e.data = data
	e.lastSeen = now
}

// Delete removes the session for id.
func (s *Store[T]) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Start launches the eviction sweeper on the lifecycle coordinator. The
// sweeper runs at half the TTL interval and stops on shutdown.
func (s *Store[T]) Start(lc *lifecycle.Coordinator) error {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	lc.OnShutdown(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				s.sweep(time.Now())
			}
		}
	})

	return nil
}

func (s *Store[T]) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			s.logger.Info("session expired", "session", id, "age", now.Sub(e.createdAt))
		}
	}
}
