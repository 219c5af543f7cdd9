package engine

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

type fakeTask struct {
	fn        func()
	every     bool
	cancelled bool
	delay     time.Duration
}

// fakeScheduler records callbacks so tests can fire them by hand.
type fakeScheduler struct {
	next  CancelToken
	tasks map[CancelToken]*fakeTask
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{tasks: make(map[CancelToken]*fakeTask)}
}

func (f *fakeScheduler) After(d time.Duration, fn func()) CancelToken {
	f.next++
	f.tasks[f.next] = &fakeTask{fn: fn, delay: d}
	return f.next
}

func (f *fakeScheduler) Every(d time.Duration, fn func()) CancelToken {
	f.next++
	f.tasks[f.next] = &fakeTask{fn: fn, every: true, delay: d}
	return f.next
}

func (f *fakeScheduler) Cancel(token CancelToken) {
	if task, ok := f.tasks[token]; ok {
		task.cancelled = true
	}
}

// fireAfters runs every live one-shot callback once.
func (f *fakeScheduler) fireAfters() {
	for token, task := range f.tasks {
		if !task.every && !task.cancelled {
			task.cancelled = true
			task.fn()
			delete(f.tasks, token)
		}
	}
}

// fireEvery runs every live periodic callback once.
func (f *fakeScheduler) fireEvery() {
	for _, task := range f.tasks {
		if task.every && !task.cancelled {
			task.fn()
		}
	}
}

func (f *fakeScheduler) live(every bool) int {
	n := 0
	for _, task := range f.tasks {
		if task.every == every && !task.cancelled {
			n++
		}
	}
	return n
}

func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:             "Engine Test Config",
		Description:      "Configuration for engine tests",
		Rows:             3,
		Cols:             4,
		PaletteSize:      6,
		StartAttempts:    15,
		StartTimeSeconds: 60,
		MismatchDelayMs:  1000,
		TickIntervalMs:   1000,
	}
}

func newTestEngine(t *testing.T, config *GameConfig, opts ...Option) (*Engine, *fakeScheduler) {
	t.Helper()
	sched := newFakeScheduler()
	eng, err := New(config, sched, opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng, sched
}

// findMatch returns two hidden cards with the same value.
func findMatch(t *testing.T, e *Engine) (int, int) {
	t.Helper()
	seen := make(map[string]int)
	for _, c := range e.board.Cards {
		if c.Status != Hidden {
			continue
		}
		if first, ok := seen[c.PairValue]; ok {
			return first, c.ID
		}
		seen[c.PairValue] = c.ID
	}
	t.Fatal("no hidden pair left on the board")
	return -1, -1
}

// findMismatch returns two hidden cards with different values.
func findMismatch(t *testing.T, e *Engine) (int, int) {
	t.Helper()
	for _, a := range e.board.Cards {
		for _, b := range e.board.Cards {
			if a.Status == Hidden && b.Status == Hidden && a.PairValue != b.PairValue {
				return a.ID, b.ID
			}
		}
	}
	t.Fatal("no hidden mismatch left on the board")
	return -1, -1
}

func mustReveal(t *testing.T, e *Engine, id int) *RevealResult {
	t.Helper()
	res, err := e.Reveal(id)
	if err != nil {
		t.Fatalf("Reveal(%d) failed: %v", id, err)
	}
	return res
}

func TestNewGame(t *testing.T) {
	eng, err := NewGame(3, 4, 6, 15, 60, nil)
	if err != nil {
		t.Fatalf("Failed to create new game: %v", err)
	}

	state := eng.State()
	if state.Phase != Playing {
		t.Errorf("Expected phase %s, got %s", Playing, state.Phase)
	}
	if state.AttemptsLeft != 15 {
		t.Errorf("Expected 15 attempts, got %d", state.AttemptsLeft)
	}
	if state.TimeLeft != 60 {
		t.Errorf("Expected 60 seconds, got %d", state.TimeLeft)
	}
	if state.MatchesFound != 0 {
		t.Errorf("Expected no matches, got %d", state.MatchesFound)
	}
	if state.TotalPairs != 6 {
		t.Errorf("Expected 6 pairs, got %d", state.TotalPairs)
	}
	if eng.Turn() != Idle {
		t.Errorf("Expected idle turn, got %s", eng.Turn())
	}

	board := eng.Board()
	if len(board.Cards) != 12 {
		t.Fatalf("Expected 12 cards, got %d", len(board.Cards))
	}
	for i, c := range board.Cards {
		if c.ID != i {
			t.Errorf("Card at position %d has id %d", i, c.ID)
		}
		if c.Status != Hidden {
			t.Errorf("Card %d should start hidden, got %s", i, c.Status)
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Cols = 3

	_, err := New(config, nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestNew_StartsCountdown(t *testing.T) {
	_, sched := newTestEngine(t, createTestConfig())

	if sched.live(true) != 1 {
		t.Errorf("Expected one periodic countdown, got %d", sched.live(true))
	}
	for _, task := range sched.tasks {
		if task.every && task.delay != time.Second {
			t.Errorf("Expected 1s tick interval, got %v", task.delay)
		}
	}
}

func TestReveal_Match(t *testing.T) {
	eng, sched := newTestEngine(t, createTestConfig())
	a, b := findMatch(t, eng)

	first := mustReveal(t, eng, a)
	if !first.Changed {
		t.Error("Expected first reveal to change state")
	}
	if eng.Turn() != OneRevealed {
		t.Errorf("Expected one_revealed turn, got %s", eng.Turn())
	}
	if first.Board.Cards[a].Status != Revealed {
		t.Errorf("Expected card %d revealed, got %s", a, first.Board.Cards[a].Status)
	}

	second := mustReveal(t, eng, b)
	if !second.Matched {
		t.Error("Expected the pair to match")
	}
	if second.Board.Cards[a].Status != Matched || second.Board.Cards[b].Status != Matched {
		t.Errorf("Expected both cards matched, got %s and %s",
			second.Board.Cards[a].Status, second.Board.Cards[b].Status)
	}
	if second.State.MatchesFound != 1 {
		t.Errorf("Expected 1 match, got %d", second.State.MatchesFound)
	}
	if second.State.AttemptsLeft != 14 {
		t.Errorf("Expected 14 attempts left, got %d", second.State.AttemptsLeft)
	}
	if second.State.Phase != Playing {
		t.Errorf("Expected phase playing, got %s", second.State.Phase)
	}
	if second.Outcome != OutcomeNone {
		t.Errorf("Expected no outcome, got %s", second.Outcome)
	}
	if len(eng.Selection()) != 0 {
		t.Errorf("Expected empty selection, got %v", eng.Selection())
	}
	if eng.Turn() != Idle {
		t.Errorf("Expected idle turn, got %s", eng.Turn())
	}
	if sched.live(false) != 0 {
		t.Error("A match must not schedule a hide")
	}
}

func TestReveal_MismatchHidesAfterDelay(t *testing.T) {
	eng, sched := newTestEngine(t, createTestConfig())
	a, b := findMismatch(t, eng)

	mustReveal(t, eng, a)
	res := mustReveal(t, eng, b)

	if res.Matched {
		t.Error("Expected a mismatch")
	}
	if res.Board.Cards[a].Status != Revealed || res.Board.Cards[b].Status != Revealed {
		t.Error("Expected both cards to stay revealed until the delay elapses")
	}
	if res.State.AttemptsLeft != 14 {
		t.Errorf("Expected 14 attempts left, got %d", res.State.AttemptsLeft)
	}
	if eng.Turn() != Resolving {
		t.Errorf("Expected resolving turn, got %s", eng.Turn())
	}
	if !eng.HidePending() {
		t.Error("Expected a pending hide")
	}
	if sched.live(false) != 1 {
		t.Fatalf("Expected one scheduled hide, got %d", sched.live(false))
	}
	for _, task := range sched.tasks {
		if !task.every && task.delay != time.Second {
			t.Errorf("Expected 1s mismatch delay, got %v", task.delay)
		}
	}

	sched.fireAfters()

	board := eng.Board()
	if board.Cards[a].Status != Hidden || board.Cards[b].Status != Hidden {
		t.Errorf("Expected both cards hidden, got %s and %s", board.Cards[a].Status, board.Cards[b].Status)
	}
	if len(eng.Selection()) != 0 {
		t.Errorf("Expected empty selection, got %v", eng.Selection())
	}
	if eng.Turn() != Idle {
		t.Errorf("Expected idle turn, got %s", eng.Turn())
	}
	if eng.HidePending() {
		t.Error("Hide should no longer be pending")
	}
}

func TestReveal_SameCardTwice(t *testing.T) {
	eng, _ := newTestEngine(t, createTestConfig())

	mustReveal(t, eng, 0)
	before := eng.State()
	beforeBoard := eng.Board()

	res := mustReveal(t, eng, 0)
	if res.Changed {
		t.Error("Revealing a revealed card should be a no-op")
	}
	if res.State != before {
		t.Errorf("State changed: before %+v after %+v", before, res.State)
	}
	for i := range beforeBoard.Cards {
		if beforeBoard.Cards[i] != res.Board.Cards[i] {
			t.Errorf("Card %d changed from %+v to %+v", i, beforeBoard.Cards[i], res.Board.Cards[i])
		}
	}
	if got := eng.Selection(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Expected selection [0], got %v", got)
	}
}

func TestReveal_BlockedWhileResolving(t *testing.T) {
	eng, _ := newTestEngine(t, createTestConfig())
	a, b := findMismatch(t, eng)
	mustReveal(t, eng, a)
	mustReveal(t, eng, b)

	for _, c := range eng.board.Cards {
		if c.ID == a || c.ID == b {
			continue
		}
		res := mustReveal(t, eng, c.ID)
		if res.Changed {
			t.Fatalf("Third reveal of card %d should be ignored while resolving", c.ID)
		}
		if res.Board.Cards[c.ID].Status != Hidden {
			t.Errorf("Card %d should stay hidden, got %s", c.ID, res.Board.Cards[c.ID].Status)
		}
		break
	}
	if len(eng.Selection()) != 2 {
		t.Errorf("Expected selection of 2, got %v", eng.Selection())
	}
}

func TestReveal_MatchedCardIgnored(t *testing.T) {
	eng, _ := newTestEngine(t, createTestConfig())
	a, b := findMatch(t, eng)
	mustReveal(t, eng, a)
	mustReveal(t, eng, b)

	res := mustReveal(t, eng, a)
	if res.Changed {
		t.Error("Revealing a matched card should be a no-op")
	}
	if eng.Turn() != Idle {
		t.Errorf("Expected idle turn, got %s", eng.Turn())
	}
}

func TestReveal_InvalidReference(t *testing.T) {
	eng, _ := newTestEngine(t, createTestConfig())
	before := eng.State()

	for _, id := range []int{-1, 12, 100} {
		res, err := eng.Reveal(id)
		if !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Reveal(%d): expected ErrInvalidReference, got %v", id, err)
		}
		if res != nil {
			t.Errorf("Reveal(%d): expected nil result", id)
		}
	}
	if eng.State() != before {
		t.Error("Invalid reveals must not change state")
	}
}

func TestTick_TimeRunsOut(t *testing.T) {
	eng, sched := newTestEngine(t, createTestConfig())

	var res *TickResult
	for i := 1; i <= 60; i++ {
		res = eng.Tick()
		if i < 60 && res.Outcome != OutcomeNone {
			t.Fatalf("Unexpected outcome %s on tick %d", res.Outcome, i)
		}
	}

	if res.State.TimeLeft != 0 {
		t.Errorf("Expected 0 time left, got %d", res.State.TimeLeft)
	}
	if res.Outcome != OutcomeLost {
		t.Errorf("Expected outcome lost, got %q", res.Outcome)
	}
	if eng.State().Phase != Lost {
		t.Errorf("Expected phase lost, got %s", eng.State().Phase)
	}
	if sched.live(true) != 0 {
		t.Error("Countdown should be cancelled after the game is lost")
	}

	after := eng.Tick()
	if after.Outcome != OutcomeNone || after.State.TimeLeft != 0 {
		t.Errorf("Ticks after the end should be no-ops, got %+v", after)
	}
}

func TestTick_DrivenByScheduler(t *testing.T) {
	eng, sched := newTestEngine(t, createTestConfig())

	for i := 0; i < 5; i++ {
		sched.fireEvery()
	}
	if eng.State().TimeLeft != 55 {
		t.Errorf("Expected 55 seconds left, got %d", eng.State().TimeLeft)
	}
}

func TestTick_ShortCircuitsPendingHide(t *testing.T) {
	config := createTestConfig()
	config.StartTimeSeconds = 1
	eng, sched := newTestEngine(t, config)

	a, b := findMismatch(t, eng)
	mustReveal(t, eng, a)
	mustReveal(t, eng, b)

	res := eng.Tick()
	if res.Outcome != OutcomeLost {
		t.Fatalf("Expected lost, got %q", res.Outcome)
	}
	if sched.live(false) != 0 {
		t.Error("Pending hide should be cancelled when the game ends")
	}

	eng.OnMismatchTimeout()
	board := eng.Board()
	if board.Cards[a].Status != Revealed || board.Cards[b].Status != Revealed {
		t.Error("Hide must not run after the game ended")
	}
}

func TestReveal_LastAttemptMismatchLoses(t *testing.T) {
	config := createTestConfig()
	config.StartAttempts = 1
	eng, sched := newTestEngine(t, config)

	a, b := findMismatch(t, eng)
	mustReveal(t, eng, a)
	res := mustReveal(t, eng, b)

	if res.State.AttemptsLeft != 0 {
		t.Errorf("Expected 0 attempts left, got %d", res.State.AttemptsLeft)
	}
	if res.Outcome != OutcomeLost {
		t.Errorf("Expected outcome lost, got %q", res.Outcome)
	}
	if sched.live(true) != 0 || sched.live(false) != 0 {
		t.Error("All timers should be cancelled after the loss")
	}

	again := mustReveal(t, eng, 0)
	if again.Changed {
		t.Error("Reveal after the game ended should be a no-op")
	}
}

func TestReveal_LastAttemptMatchWithoutWinLoses(t *testing.T) {
	config := createTestConfig()
	config.StartAttempts = 1
	eng, _ := newTestEngine(t, config)

	a, b := findMatch(t, eng)
	mustReveal(t, eng, a)
	res := mustReveal(t, eng, b)

	if res.State.MatchesFound != 1 {
		t.Errorf("Expected 1 match, got %d", res.State.MatchesFound)
	}
	if res.Outcome != OutcomeLost {
		t.Errorf("Expected outcome lost, got %q", res.Outcome)
	}
}

func TestReveal_WinTakesPrecedence(t *testing.T) {
	config := createTestConfig()
	config.Rows = 1
	config.Cols = 2
	config.PaletteSize = 1
	config.StartAttempts = 1
	eng, sched := newTestEngine(t, config)

	mustReveal(t, eng, 0)
	res := mustReveal(t, eng, 1)

	if res.State.AttemptsLeft != 0 {
		t.Errorf("Expected 0 attempts left, got %d", res.State.AttemptsLeft)
	}
	if res.Outcome != OutcomeWon {
		t.Errorf("Expected outcome won, got %q", res.Outcome)
	}
	if eng.State().Phase != Won {
		t.Errorf("Expected phase won, got %s", eng.State().Phase)
	}
	if sched.live(true) != 0 {
		t.Error("Countdown should be cancelled after the win")
	}
}

func TestReveal_FullGameWins(t *testing.T) {
	eng, _ := newTestEngine(t, createTestConfig())

	var res *RevealResult
	for i := 0; i < 6; i++ {
		a, b := findMatch(t, eng)
		mustReveal(t, eng, a)
		res = mustReveal(t, eng, b)
		if i < 5 && res.Outcome != OutcomeNone {
			t.Fatalf("Unexpected outcome %s after %d matches", res.Outcome, i+1)
		}
	}

	if res.Outcome != OutcomeWon {
		t.Errorf("Expected outcome won, got %q", res.Outcome)
	}
	if res.State.MatchesFound != 6 {
		t.Errorf("Expected 6 matches, got %d", res.State.MatchesFound)
	}
	if res.State.AttemptsLeft != 9 {
		t.Errorf("Expected 9 attempts left, got %d", res.State.AttemptsLeft)
	}
}

func TestReset_CancelsPendingHide(t *testing.T) {
	eng, sched := newTestEngine(t, createTestConfig())

	a, b := findMismatch(t, eng)
	mustReveal(t, eng, a)
	mustReveal(t, eng, b)

	var staleHide func()
	for _, task := range sched.tasks {
		if !task.every && !task.cancelled {
			staleHide = task.fn
		}
	}
	if staleHide == nil {
		t.Fatal("Expected a scheduled hide")
	}

	board, state, err := eng.Reset(3, 4, 6)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if sched.live(false) != 0 {
		t.Error("Reset should cancel the pending hide")
	}
	if sched.live(true) != 1 {
		t.Errorf("Reset should leave exactly one countdown, got %d", sched.live(true))
	}
	if state.AttemptsLeft != 15 || state.TimeLeft != 60 || state.MatchesFound != 0 || state.Phase != Playing {
		t.Errorf("Unexpected state after reset: %+v", state)
	}

	// Start a new turn on the fresh board, then deliver the stale callbacks.
	mustReveal(t, eng, 0)
	staleHide()
	eng.OnMismatchTimeout()

	after := eng.Board()
	if after.Cards[0].Status != Revealed {
		t.Errorf("Late hide altered the new board: card 0 is %s", after.Cards[0].Status)
	}
	for i := 1; i < len(after.Cards); i++ {
		if after.Cards[i] != board.Cards[i] {
			t.Errorf("Card %d changed after late hide: %+v", i, after.Cards[i])
		}
	}
	if got := eng.Selection(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Expected selection [0], got %v", got)
	}
}

func TestReset_InvalidGridKeepsGame(t *testing.T) {
	eng, _ := newTestEngine(t, createTestConfig())
	mustReveal(t, eng, 0)
	before := eng.Board()

	_, _, err := eng.Reset(3, 3, 6)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration, got %v", err)
	}
	_, _, err = eng.Reset(4, 4, 6)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration for a small palette, got %v", err)
	}
	_, _, err = eng.Reset(1000, 1000, 500000)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration for an oversized grid, got %v", err)
	}

	after := eng.Board()
	for i := range before.Cards {
		if before.Cards[i] != after.Cards[i] {
			t.Errorf("Card %d changed after failed reset", i)
		}
	}
	if eng.Turn() != OneRevealed {
		t.Errorf("Expected turn to survive failed reset, got %s", eng.Turn())
	}
}

func TestReset_AfterLoss(t *testing.T) {
	config := createTestConfig()
	config.StartTimeSeconds = 1
	eng, sched := newTestEngine(t, config)
	eng.Tick()

	_, state, err := eng.ResetDefault()
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Phase != Playing || state.TimeLeft != 1 {
		t.Errorf("Unexpected state after reset: %+v", state)
	}
	if sched.live(true) != 1 {
		t.Error("Reset should restart the countdown")
	}
}

func TestEngine_StaleCountdownIgnored(t *testing.T) {
	eng, sched := newTestEngine(t, createTestConfig())

	var stale func()
	for _, task := range sched.tasks {
		if task.every {
			stale = task.fn
		}
	}
	if _, _, err := eng.ResetDefault(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	stale()
	if eng.State().TimeLeft != 60 {
		t.Errorf("Stale countdown ticked the new game: %d left", eng.State().TimeLeft)
	}
}

func TestEngine_SelectionInvariants(t *testing.T) {
	config := createTestConfig()
	config.StartAttempts = 1000
	config.StartTimeSeconds = 1000
	eng, sched := newTestEngine(t, config, WithRand(rand.New(rand.NewPCG(7, 11))))
	rng := rand.New(rand.NewPCG(3, 5))

	lastMatches := 0
	for step := 0; step < 500 && !eng.IsOver(); step++ {
		switch rng.IntN(4) {
		case 0:
			sched.fireAfters()
		default:
			if _, err := eng.Reveal(rng.IntN(12)); err != nil {
				t.Fatalf("Reveal failed: %v", err)
			}
		}

		if n := len(eng.Selection()); n > 2 {
			t.Fatalf("Selection grew to %d", n)
		}
		state := eng.State()
		if state.MatchesFound < lastMatches {
			t.Fatalf("matchesFound decreased from %d to %d", lastMatches, state.MatchesFound)
		}
		if state.MatchesFound > 6 {
			t.Fatalf("matchesFound exceeded total pairs: %d", state.MatchesFound)
		}
		lastMatches = state.MatchesFound
	}
}

func TestEngine_ListenerEvents(t *testing.T) {
	config := createTestConfig()
	config.StartAttempts = 1

	var events []Event
	eng, _ := newTestEngine(t, config, WithListener(func(ev Event) {
		events = append(events, ev)
	}))

	a, b := findMismatch(t, eng)
	mustReveal(t, eng, a)
	mustReveal(t, eng, b)

	want := []EventType{EventReveal, EventMismatch, EventLost}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Errorf("Event %d: expected %s, got %s", i, typ, events[i].Type)
		}
	}
	last := events[len(events)-1]
	if last.Outcome != OutcomeLost || last.State.Phase != Lost {
		t.Errorf("Expected lost outcome in final event, got %+v", last)
	}
}

func TestEngine_MatchingPairs(t *testing.T) {
	eng, _ := newTestEngine(t, createTestConfig())

	pairs := eng.MatchingPairs()
	if len(pairs) != 6 {
		t.Fatalf("Expected 6 pairs, got %d", len(pairs))
	}

	board := eng.Board()
	for i, p := range pairs {
		if p.A >= p.B {
			t.Errorf("Pair %d not ordered: %+v", i, p)
		}
		if board.Cards[p.A].PairValue != board.Cards[p.B].PairValue {
			t.Errorf("Pair %d does not match: %+v", i, p)
		}
		if i > 0 && pairs[i-1].A >= p.A {
			t.Errorf("Pairs not sorted by first position: %+v then %+v", pairs[i-1], p)
		}
	}
}

func TestEngine_NilSchedulerIsManual(t *testing.T) {
	eng, err := New(createTestConfig(), nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	a, b := findMismatch(t, eng)
	mustReveal(t, eng, a)
	mustReveal(t, eng, b)

	board := eng.OnMismatchTimeout()
	if board.Cards[a].Status != Hidden || board.Cards[b].Status != Hidden {
		t.Error("OnMismatchTimeout should hide the pending pair")
	}
	if eng.Turn() != Idle {
		t.Errorf("Expected idle turn, got %s", eng.Turn())
	}
}
