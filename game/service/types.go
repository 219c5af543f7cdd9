package service

import (
	"time"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *GameView          `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CardView is the client-facing card. PairValue stays empty while the card
// is face down.
type CardView struct {
	ID        int               `json:"id"`
	Row       int               `json:"row"`
	Col       int               `json:"col"`
	Status    engine.CardStatus `json:"status"`
	PairValue string            `json:"pair_value,omitempty"`
}

// GameView is the renderable state of one game
type GameView struct {
	Rows         int              `json:"rows"`
	Cols         int              `json:"cols"`
	Cards        []CardView       `json:"cards"`
	MatchesFound int              `json:"matches_found"`
	TotalPairs   int              `json:"total_pairs"`
	AttemptsLeft int              `json:"attempts_left"`
	TimeLeft     int              `json:"time_left"`
	Phase        engine.Phase     `json:"phase"`
	Turn         engine.TurnState `json:"turn"`
	Selection    []int            `json:"selection"`
	HidePending  bool             `json:"hide_pending"`
	Message      string           `json:"message"`
}

// RevealResult contains the result of a reveal
type RevealResult struct {
	Changed   bool           `json:"changed"`
	Matched   bool           `json:"matched"`
	Outcome   engine.Outcome `json:"outcome,omitempty"`
	GameState *GameView      `json:"game_state"`
	Message   string         `json:"message"`
	Events    []GameEvent    `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      engine.EventType `json:"type"`
	CardIDs   []int            `json:"card_ids,omitempty"`
	Outcome   engine.Outcome   `json:"outcome,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// PairsResponse lists the matching positions of a board
type PairsResponse struct {
	SessionID string        `json:"session_id"`
	Pairs     []engine.Pair `json:"pairs"`
	Count     int           `json:"count"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename         string `json:"filename"`
	ConfigID         string `json:"config_id"` // The identifier to use for session creation
	Name             string `json:"name"`      // Display name
	Description      string `json:"description"`
	Rows             int    `json:"rows"`
	Cols             int    `json:"cols"`
	PaletteSize      int    `json:"palette_size"`
	StartAttempts    int    `json:"start_attempts"`
	StartTimeSeconds int    `json:"start_time_seconds"`
}
