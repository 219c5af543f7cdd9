package engine

import (
	"fmt"
	"math/rand/v2"
)

// Engine owns one game: the board, the current selection and the budgets.
// It is not safe for concurrent use; callers serialize every call, including
// the callbacks it hands to its Scheduler.
type Engine struct {
	config    GameConfig
	board     *Board
	selection []*Card
	state     SessionState
	turn      TurnState

	scheduler Scheduler
	rng       *rand.Rand
	listeners []Listener

	countdown CancelToken
	hide      CancelToken
}

// Option configures an Engine
type Option func(*Engine)

// WithListener registers a listener for engine events
func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

// WithRand sets the random source used to shuffle boards
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// New creates an engine for the given rules and starts the countdown on
// sched. A nil sched yields an engine that only moves when Tick and
// OnMismatchTimeout are called directly.
func New(config *GameConfig, sched Scheduler, opts ...Option) (*Engine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if sched == nil {
		sched = &nopScheduler{}
	}

	e := &Engine{
		config:    *config,
		scheduler: sched,
	}
	for _, opt := range opts {
		opt(e)
	}

	board, err := GenerateWithPalette(config.Rows, config.Cols, config.PaletteSize, e.config.palette(), e.rng)
	if err != nil {
		return nil, err
	}
	e.start(board)
	return e, nil
}

// NewGame creates an engine with the classic delays and the given grid and budgets.
func NewGame(rows, cols, paletteSize, startAttempts, startTimeSeconds int, sched Scheduler, opts ...Option) (*Engine, error) {
	config := DefaultConfig()
	config.Rows = rows
	config.Cols = cols
	config.PaletteSize = paletteSize
	config.StartAttempts = startAttempts
	config.StartTimeSeconds = startTimeSeconds
	return New(config, sched, opts...)
}

func (e *Engine) start(board *Board) {
	e.board = board
	e.selection = nil
	e.turn = Idle
	e.state = SessionState{
		MatchesFound: 0,
		TotalPairs:   board.TotalPairs(),
		AttemptsLeft: e.config.StartAttempts,
		TimeLeft:     e.config.StartTimeSeconds,
		Phase:        Playing,
	}
	e.startCountdown()
}

// Reveal turns a card face up. Reveals that cannot apply (finished game,
// matched or already revealed card, pair awaiting the hide) are no-ops
// reported with Changed false.
func (e *Engine) Reveal(cardID int) (*RevealResult, error) {
	if cardID < 0 || cardID >= len(e.board.Cards) {
		return nil, fmt.Errorf("%w: card %d is not on a board of %d cards", ErrInvalidReference, cardID, len(e.board.Cards))
	}

	card := e.board.Cards[cardID]
	if e.state.Phase != Playing || card.Status != Hidden || e.turn == Resolving {
		return e.revealResult(false, false, OutcomeNone), nil
	}

	card.Status = Revealed
	e.selection = append(e.selection, card)

	if e.turn == Idle {
		e.turn = OneRevealed
		e.emit(Event{Type: EventReveal, CardIDs: []int{card.ID}})
		return e.revealResult(true, false, OutcomeNone), nil
	}

	e.turn = Resolving
	e.state.AttemptsLeft--

	first, second := e.selection[0], e.selection[1]
	ids := []int{first.ID, second.ID}
	matched := first.PairValue == second.PairValue
	outcome := OutcomeNone

	if matched {
		first.Status = Matched
		second.Status = Matched
		e.state.MatchesFound++
		e.clearSelection()
		e.emit(Event{Type: EventMatch, CardIDs: ids})

		// A completed board wins even on the last attempt.
		if e.state.MatchesFound == e.state.TotalPairs {
			outcome = e.finish(Won)
		}
	} else {
		e.emit(Event{Type: EventMismatch, CardIDs: ids})
		if e.state.AttemptsLeft > 0 {
			e.scheduleHide()
		}
	}

	if outcome == OutcomeNone && e.state.AttemptsLeft <= 0 {
		outcome = e.finish(Lost)
	}

	return e.revealResult(true, matched, outcome), nil
}

// Tick consumes one unit of the time budget
func (e *Engine) Tick() *TickResult {
	if e.state.Phase != Playing {
		return &TickResult{State: e.state}
	}

	if e.state.TimeLeft > 0 {
		e.state.TimeLeft--
	}
	e.emit(Event{Type: EventTick})

	outcome := OutcomeNone
	if e.state.TimeLeft == 0 {
		outcome = e.finish(Lost)
	}
	return &TickResult{State: e.state, Outcome: outcome}
}

// OnMismatchTimeout hides the pending mismatched pair. It does nothing when
// no pair is pending, including after the game ended or was reset.
func (e *Engine) OnMismatchTimeout() BoardSnapshot {
	if pending := e.hide; pending != 0 {
		e.scheduler.Cancel(pending)
		e.fireHide(pending)
	}
	return e.board.Snapshot()
}

// Reset deals a new board and restores the starting budgets. On error the
// current game is left untouched.
func (e *Engine) Reset(rows, cols, paletteSize int) (BoardSnapshot, SessionState, error) {
	board, err := GenerateWithPalette(rows, cols, paletteSize, e.config.palette(), e.rng)
	if err != nil {
		return BoardSnapshot{}, e.state, err
	}

	e.cancelHide()
	e.cancelCountdown()
	e.config.Rows = rows
	e.config.Cols = cols
	e.config.PaletteSize = paletteSize
	e.start(board)
	e.emit(Event{Type: EventReset})

	return e.board.Snapshot(), e.state, nil
}

// ResetDefault resets using the engine's current grid settings.
func (e *Engine) ResetDefault() (BoardSnapshot, SessionState, error) {
	return e.Reset(e.config.Rows, e.config.Cols, e.config.PaletteSize)
}

// Stop cancels every pending callback. The game state is kept.
func (e *Engine) Stop() {
	e.cancelHide()
	e.cancelCountdown()
}

// Board returns a snapshot of the board
func (e *Engine) Board() BoardSnapshot {
	return e.board.Snapshot()
}

// State returns the session state
func (e *Engine) State() SessionState {
	return e.state
}

// Turn returns the state of the current turn
func (e *Engine) Turn() TurnState {
	return e.turn
}

// Selection returns the ids of the selected cards in reveal order
func (e *Engine) Selection() []int {
	ids := make([]int, len(e.selection))
	for i, c := range e.selection {
		ids[i] = c.ID
	}
	return ids
}

// Config returns a copy of the rules the engine runs with
func (e *Engine) Config() GameConfig {
	return e.config
}

// IsOver reports whether the game reached a terminal phase
func (e *Engine) IsOver() bool {
	return e.state.Phase != Playing
}

// HidePending reports whether a mismatched pair is waiting to be hidden
func (e *Engine) HidePending() bool {
	return e.hide != 0
}

// MatchingPairs lists all position pairs that share a value
func (e *Engine) MatchingPairs() []Pair {
	return e.board.MatchingPairs()
}

func (e *Engine) revealResult(changed, matched bool, outcome Outcome) *RevealResult {
	return &RevealResult{
		Board:   e.board.Snapshot(),
		State:   e.state,
		Turn:    e.turn,
		Outcome: outcome,
		Changed: changed,
		Matched: matched,
	}
}

func (e *Engine) clearSelection() {
	e.selection = nil
	e.turn = Idle
}

// finish moves to a terminal phase and stops all timers.
func (e *Engine) finish(phase Phase) Outcome {
	e.state.Phase = phase
	e.cancelCountdown()
	e.cancelHide()
	e.clearSelection()

	outcome := OutcomeLost
	eventType := EventLost
	if phase == Won {
		outcome = OutcomeWon
		eventType = EventWon
	}
	e.emit(Event{Type: eventType, Outcome: outcome})
	return outcome
}

func (e *Engine) scheduleHide() {
	var token CancelToken
	token = e.scheduler.After(e.config.MismatchDelay(), func() {
		e.fireHide(token)
	})
	e.hide = token
}

func (e *Engine) fireHide(token CancelToken) {
	if token == 0 || token != e.hide {
		return
	}
	e.hide = 0
	if e.state.Phase != Playing || e.turn != Resolving {
		return
	}

	ids := make([]int, 0, len(e.selection))
	for _, c := range e.selection {
		if c.Status == Revealed {
			c.Status = Hidden
		}
		ids = append(ids, c.ID)
	}
	e.clearSelection()
	e.emit(Event{Type: EventHide, CardIDs: ids})
}

func (e *Engine) cancelHide() {
	if e.hide != 0 {
		e.scheduler.Cancel(e.hide)
		e.hide = 0
	}
}

func (e *Engine) startCountdown() {
	if e.config.TickInterval() <= 0 {
		return
	}
	var token CancelToken
	token = e.scheduler.Every(e.config.TickInterval(), func() {
		if token == e.countdown {
			e.Tick()
		}
	})
	e.countdown = token
}

func (e *Engine) cancelCountdown() {
	if e.countdown != 0 {
		e.scheduler.Cancel(e.countdown)
		e.countdown = 0
	}
}

func (e *Engine) emit(ev Event) {
	ev.State = e.state
	for _, l := range e.listeners {
		l(ev)
	}
}
