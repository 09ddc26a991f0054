package repositories

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"trip-planner/internal/ports"
)

type sessionEntry[S any] struct {
	value   S
	touched time.Time
}

// MemorySessionStore keeps planner sessions in process memory. Sessions live
// only as long as the process, like the form they back, and are dropped once
// idle for longer than the TTL.
type MemorySessionStore[S any] struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry[S]
	limit    int
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore caps the number of live sessions; a limit of 0 means
// unlimited and a ttl of 0 keeps idle sessions forever.
func NewMemorySessionStore[S any](limit int, ttl time.Duration) *MemorySessionStore[S] {
	return &MemorySessionStore[S]{
		sessions: make(map[string]*sessionEntry[S]),
		limit:    limit,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemorySessionStore[S]) Create(s S) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.limit > 0 && len(m.sessions) >= m.limit {
		m.sweepLocked(now)
	}
	if m.limit > 0 && len(m.sessions) >= m.limit {
		return "", fmt.Errorf("create session: %d sessions open, limit %d", len(m.sessions), m.limit)
	}

	id := uuid.NewString()
	m.sessions[id] = &sessionEntry[S]{value: s, touched: now}
	return id, nil
}

// Get returns a live session and marks it as used.
func (m *MemorySessionStore[S]) Get(id string) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.sessions[id]
	if ok && m.expired(e, now) {
		delete(m.sessions, id)
		ok = false
	}
	if !ok {
		var zero S
		return zero, fmt.Errorf("get session %q: %w", id, ports.ErrSessionNotFound)
	}

	e.touched = now
	return e.value, nil
}

func (m *MemorySessionStore[S]) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len reports the number of stored sessions, expired ones included until swept.
func (m *MemorySessionStore[S]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemorySessionStore[S]) sweepLocked(now time.Time) {
	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemorySessionStore[S]) expired(e *sessionEntry[S], now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touched) > m.ttl
}
