package engine

import (
	"errors"
	"time"
)

var (
	// ErrConfiguration is returned for an invalid grid, palette or budget.
	ErrConfiguration = errors.New("invalid game configuration")
	// ErrInvalidReference is returned when a card id does not exist on the board.
	ErrInvalidReference = errors.New("invalid card reference")
)

// CardStatus is the face state of a single card
type CardStatus string

const (
	Hidden   CardStatus = "hidden"
	Revealed CardStatus = "revealed"
	Matched  CardStatus = "matched"
)

// Phase is the top-level session status
type Phase string

const (
	Playing Phase = "playing"
	Won     Phase = "won"
	Lost    Phase = "lost"
)

// TurnState tracks progress within a single turn
type TurnState string

const (
	Idle        TurnState = "idle"
	OneRevealed TurnState = "one_revealed"
	Resolving   TurnState = "resolving"
)

// Outcome is reported the instant the phase becomes terminal
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

const (
	// Validation constants
	MinGridSize = 1
	MaxGridSize = 12

	DefaultRows             = 3
	DefaultCols             = 4
	DefaultPaletteSize      = 6
	DefaultStartAttempts    = 15
	DefaultStartTimeSeconds = 60
	DefaultMismatchDelay    = 1000 * time.Millisecond
	DefaultTickInterval     = 1000 * time.Millisecond
)

// Card is a single cell of the board
type Card struct {
	ID        int        `json:"id"`
	PairValue string     `json:"pair_value"`
	Status    CardStatus `json:"status"`
}

// Board is the ordered collection of cards, rows*cols long
type Board struct {
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Cards []*Card `json:"cards"`
}

// BoardSnapshot is a detached copy of the board
type BoardSnapshot struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Cards []Card `json:"cards"`
}

// SessionState holds the budgets and phase of the running game
type SessionState struct {
	MatchesFound int   `json:"matches_found"`
	TotalPairs   int   `json:"total_pairs"`
	AttemptsLeft int   `json:"attempts_left"`
	TimeLeft     int   `json:"time_left"`
	Phase        Phase `json:"phase"`
}

// Pair is two distinct positions that carry the same pair value
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Labels returns the 1-based card numbers of the pair.
func (p Pair) Labels() (int, int) {
	return p.A + 1, p.B + 1
}

// RevealResult is returned by Engine.Reveal
type RevealResult struct {
	Board   BoardSnapshot `json:"board"`
	State   SessionState  `json:"state"`
	Turn    TurnState     `json:"turn"`
	Outcome Outcome       `json:"outcome,omitempty"`
	// Changed is false when the reveal was a benign no-op.
	Changed bool `json:"changed"`
	Matched bool `json:"matched,omitempty"`
}

// TickResult is returned by Engine.Tick
type TickResult struct {
	State   SessionState `json:"state"`
	Outcome Outcome      `json:"outcome,omitempty"`
}

// EventType names what changed on the engine
type EventType string

const (
	EventReveal   EventType = "reveal"
	EventMatch    EventType = "match"
	EventMismatch EventType = "mismatch"
	EventHide     EventType = "hide"
	EventTick     EventType = "tick"
	EventWon      EventType = "won"
	EventLost     EventType = "lost"
	EventReset    EventType = "reset"
)

// Event is delivered synchronously to listeners after every state change
type Event struct {
	Type    EventType    `json:"type"`
	CardIDs []int        `json:"card_ids,omitempty"`
	State   SessionState `json:"state"`
	Outcome Outcome      `json:"outcome,omitempty"`
}

// Listener receives engine events. It runs on the caller's goroutine and
// must not call back into the engine.
type Listener func(Event)
