package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound indicates an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Manager is the registry of open sessions, keyed by id. Safe for
// concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	gen    Generator
	video  VideoGenerator
	logger *slog.Logger
}

// NewManager creates an empty registry whose sessions share one generator
// pair.
func NewManager(gen Generator, video VideoGenerator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		gen:      gen,
		video:    video,
		logger:   logger,
	}
}

// Create opens a new session and returns it.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.gen, m.video, m.logger)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.logger.Info("session created", "session", s.ID())
	return s
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// IDs lists the open session ids.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// PruneIdle drops sessions untouched for longer than maxIdle, skipping any
// with a generation in flight. Returns the number removed.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.Generating() {
			continue
		}
		if s.TouchedAt().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("pruned idle sessions", "count", removed)
	}
	return removed
}
