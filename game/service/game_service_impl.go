package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					configIDs := make([]string, 0, len(availableConfigs))
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().Str("session", sess.ID).Str("config", configID).Msg("session created")

	info := s.sessionInfo(sess)
	info.ConfigName = configID
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// Reveal turns a card face up in the given session
func (s *gameServiceImpl) Reveal(ctx context.Context, sessionID string, cardID int) (*RevealResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	prev := sess.Engine.Selection()
	res, err := sess.Engine.Reveal(cardID)
	if err != nil {
		return nil, err
	}
	var pair []int
	if res.Changed && len(prev) == 1 {
		pair = []int{prev[0], cardID}
	}

	view := BuildGameView(sess.Engine)
	result := &RevealResult{
		Changed:   res.Changed,
		Matched:   res.Matched,
		Outcome:   res.Outcome,
		GameState: view,
		Message:   revealMessage(res, cardID, pair != nil),
	}
	if res.Changed {
		result.Events = revealEvents(res, cardID, pair)
	}
	return result, nil
}

// Reset deals a fresh board with the session's grid settings
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if _, _, err := sess.Engine.ResetDefault(); err != nil {
		return nil, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}
	log.Debug().Str("session", sessionID).Msg("game reset")
	return BuildGameView(sess.Engine), nil
}

// GetGameState returns the current state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return BuildGameView(sess.Engine), nil
}

// MatchingPairs lists the matching positions of a session's board
func (s *gameServiceImpl) MatchingPairs(ctx context.Context, sessionID string) (*PairsResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	pairs := sess.Engine.MatchingPairs()
	sess.Unlock()

	return &PairsResponse{
		SessionID: sess.ID,
		Pairs:     pairs,
		Count:     len(pairs),
	}, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to update last access")
	}
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	sess.Lock()
	view := BuildGameView(sess.Engine)
	lastAccessed := sess.LastAccessedAt
	sess.Unlock()

	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: lastAccessed,
		GameState:      view,
		GameConfig:     sess.Config,
	}
}

// BuildGameView renders the engine for clients. Face-down cards carry no
// pair value. The caller must hold the session lock.
func BuildGameView(eng *engine.Engine) *GameView {
	board := eng.Board()
	state := eng.State()

	cards := make([]CardView, len(board.Cards))
	for i, c := range board.Cards {
		cards[i] = CardView{
			ID:     c.ID,
			Row:    c.ID / board.Cols,
			Col:    c.ID % board.Cols,
			Status: c.Status,
		}
		if c.Status != engine.Hidden {
			cards[i].PairValue = c.PairValue
		}
	}

	return &GameView{
		Rows:         board.Rows,
		Cols:         board.Cols,
		Cards:        cards,
		MatchesFound: state.MatchesFound,
		TotalPairs:   state.TotalPairs,
		AttemptsLeft: state.AttemptsLeft,
		TimeLeft:     state.TimeLeft,
		Phase:        state.Phase,
		Turn:         eng.Turn(),
		Selection:    eng.Selection(),
		HidePending:  eng.HidePending(),
		Message:      stateMessage(state),
	}
}

// ForwardEvents adapts a Notifier to the event hook of the session manager.
// The hook runs with the session locked.
func ForwardEvents(n Notifier) func(*Session, engine.Event) {
	return func(sess *Session, ev engine.Event) {
		if sess.Engine == nil {
			return
		}
		n.Notify(sess.ID, BuildGameView(sess.Engine), ev)
	}
}

func stateMessage(state engine.SessionState) string {
	switch state.Phase {
	case engine.Won:
		return fmt.Sprintf("You found all %d pairs!", state.TotalPairs)
	case engine.Lost:
		if state.TimeLeft == 0 {
			return "Time is up!"
		}
		return "Out of attempts!"
	}
	return fmt.Sprintf("Pairs: %d/%d, attempts left: %d, time left: %ds",
		state.MatchesFound, state.TotalPairs, state.AttemptsLeft, state.TimeLeft)
}

func revealMessage(res *engine.RevealResult, cardID int, paired bool) string {
	switch {
	case res.Outcome == engine.OutcomeWon:
		return "Match! Board cleared, you win!"
	case res.Outcome == engine.OutcomeLost:
		return "Out of attempts, game over"
	case !res.Changed:
		return fmt.Sprintf("Card %d cannot be revealed right now", cardID)
	case res.Matched:
		return "Match!"
	case paired:
		return "No match, cards will be hidden"
	}
	return fmt.Sprintf("Revealed card %d", cardID)
}

// revealEvents describes a reveal. pair holds both card ids when the reveal
// completed a turn.
func revealEvents(res *engine.RevealResult, cardID int, pair []int) []GameEvent {
	now := time.Now()
	events := []GameEvent{{Type: engine.EventReveal, CardIDs: []int{cardID}, Timestamp: now}}

	switch {
	case pair != nil && res.Matched:
		events = append(events, GameEvent{Type: engine.EventMatch, CardIDs: pair, Timestamp: now})
	case pair != nil:
		events = append(events, GameEvent{Type: engine.EventMismatch, CardIDs: pair, Timestamp: now})
	}

	switch res.Outcome {
	case engine.OutcomeWon:
		events = append(events, GameEvent{Type: engine.EventWon, Outcome: res.Outcome, Timestamp: now})
	case engine.OutcomeLost:
		events = append(events, GameEvent{Type: engine.EventLost, Outcome: res.Outcome, Timestamp: now})
	}
	return events
}
