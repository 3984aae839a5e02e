package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionEntry[T any] struct {
	userID   uuid.UUID
	value    T
	lastSeen time.Time
}

// sessionRegistry keeps live per-user sessions in memory. Nothing survives a
// restart.
type sessionRegistry[T any] struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[uuid.UUID]*sessionEntry[T]
}

func newSessionRegistry[T any](now func() time.Time) *sessionRegistry[T] {
	if now == nil {
		now = time.Now
	}
	return &sessionRegistry[T]{now: now, entries: make(map[uuid.UUID]*sessionEntry[T])}
}

func (r *sessionRegistry[T]) put(id, userID uuid.UUID, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &sessionEntry[T]{userID: userID, value: value, lastSeen: r.now()}
}

// get returns the session owned by userID and refreshes its idle timer.
// Sessions of other users are reported as missing.
func (r *sessionRegistry[T]) get(id, userID uuid.UUID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.userID != userID {
		var zero T
		return zero, ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return e.value, nil
}

func (r *sessionRegistry[T]) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// expire removes and returns sessions idle for longer than ttl.
func (r *sessionRegistry[T]) expire(ttl time.Duration) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-ttl)
	var expired []T
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.value)
			delete(r.entries, id)
		}
	}
	return expired
}

func (r *sessionRegistry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
