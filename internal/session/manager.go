package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/types"
)

// Manager keeps the live sessions of a server
type Manager struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a manager whose sessions share opts
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:     opts.withDefaults(),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Options returns the options sessions are created with
func (m *Manager) Options() Options {
	return m.opts
}

// Create starts a session on a new document. An unknown template id falls
// back to the default and returns a warning.
func (m *Manager) Create(kind types.DocumentKind, templateID string) (*Session, []string, error) {
	s, err := New(kind, m.opts)
	if err != nil {
		return nil, nil, err
	}
	var warnings []string
	if templateID != "" {
		_, warnings = s.SelectTemplate(templateID)
	}
	m.add(s)
	return s, warnings, nil
}

// OpenSaved starts a session on a saved document of the signed-in user
func (m *Manager) OpenSaved(ctx context.Context, kind types.DocumentKind, recordID uuid.UUID) (*Session, error) {
	s, err := OpenSaved(ctx, kind, recordID, m.opts)
	if err != nil {
		return nil, err
	}
	m.add(s)
	return s, nil
}

func (m *Manager) add(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	log.Printf("[session] created %s", s.ID())
}

// Get returns a live session
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close ends a session. It reports whether the session existed.
func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Evict closes sessions idle for longer than maxIdle and returns how many were
// closed
func (m *Manager) Evict(maxIdle time.Duration) int {
	cutoff := m.opts.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		log.Printf("[session] evicted %d idle session(s)", n)
	}
	return n
}

// RunEvictor evicts idle sessions every interval until ctx is done
func (m *Manager) RunEvictor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evict(maxIdle)
		}
	}
}
