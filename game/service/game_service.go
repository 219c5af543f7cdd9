package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
	"github.com/wricardo/mcp-training/memorycard/game/scheduler"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Reveal(ctx context.Context, sessionID string, cardID int) (*RevealResult, error)
	Reset(ctx context.Context, sessionID string) (*GameView, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameView, error)
	MatchingPairs(ctx context.Context, sessionID string) (*PairsResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
}

// Notifier receives engine events for a session. It is called while the
// session is locked and must not block.
type Notifier interface {
	Notify(sessionID string, view *GameView, event engine.Event)
}

// Session represents an active game session. The embedded mutex serializes
// every call into Engine, including timer callbacks fired by Clock, and
// guards LastAccessedAt.
type Session struct {
	sync.Mutex

	ID             string
	Engine         *engine.Engine
	Config         *engine.GameConfig
	Clock          *scheduler.Clock
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
