package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
	"github.com/wricardo/mcp-training/memorycard/game/scheduler"
	"github.com/wricardo/mcp-training/memorycard/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const idLength = 8

// EventHandler receives every engine event of every session. It runs with
// the session locked.
type EventHandler func(sess *service.Session, ev engine.Event)

// Option configures a Manager
type Option func(*Manager)

// WithEventHandler forwards engine events to h
func WithEventHandler(h EventHandler) Option {
	return func(m *Manager) {
		m.onEvent = h
	}
}

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	onEvent  EventHandler
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session with the given ID and configuration. An
// empty id gets a generated one.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if strings.ContainsAny(id, " /\\?#") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}
	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	sess.Clock = scheduler.NewClock(sess)

	var opts []engine.Option
	if m.onEvent != nil {
		handler := m.onEvent
		opts = append(opts, engine.WithListener(func(ev engine.Event) {
			handler(sess, ev)
		}))
	}

	// The countdown starts inside engine.New; hold the session lock so no
	// tick can run before Engine is set.
	sess.Lock()
	eng, err := engine.New(config, sess.Clock, opts...)
	sess.Engine = eng
	sess.Unlock()
	if err != nil {
		sess.Clock.Stop()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.sessions[key] = sess
	log.Debug().Str("session", id).Int("rows", config.Rows).Int("cols", config.Cols).Msg("session registered")
	return sess, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if err == nil {
		return sess, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}

	return nil, err
}

// List returns all active sessions ordered by creation time
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session and stops its timers
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	key := strings.ToLower(id)
	sess, exists := m.sessions[key]
	if exists {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}
	stop(sess)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}

	sess.Lock()
	sess.LastAccessedAt = time.Now()
	sess.Unlock()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration. Lock order is m.mu before the session lock.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for key, sess := range m.sessions {
		sess.Lock()
		last := sess.LastAccessedAt
		sess.Unlock()
		if last.Before(cutoff) {
			delete(m.sessions, key)
			expired = append(expired, sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		stop(sess)
		log.Info().Str("session", sess.ID).Msg("expired session removed")
	}
	return len(expired)
}

// StopAll stops the timers of every session. Used on shutdown.
func (m *Manager) StopAll() {
	for _, sess := range m.List() {
		stop(sess)
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a short id that is not in use. Caller holds m.mu.
func (m *Manager) generateSessionID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}

// stop cancels the session's timers. Callbacks already waiting on the lock
// see the cancellation and return.
func stop(sess *service.Session) {
	sess.Lock()
	defer sess.Unlock()
	sess.Engine.Stop()
	sess.Clock.Stop()
}

