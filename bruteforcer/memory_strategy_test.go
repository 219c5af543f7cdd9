package main

import "testing"

func board(statuses ...string) *GameState {
	state := &GameState{Rows: 1, Cols: len(statuses)}
	for i, s := range statuses {
		state.Cards = append(state.Cards, Card{ID: i, Col: i, Status: s})
	}
	return state
}

func TestMemoryStrategy_ExploresLowestUnknown(t *testing.T) {
	s := NewMemoryStrategy()
	state := board("matched", "hidden", "hidden", "matched")

	if got := s.NextReveal(state); got != 1 {
		t.Errorf("Expected card 1, got %d", got)
	}
}

func TestMemoryStrategy_CompletesKnownPair(t *testing.T) {
	s := NewMemoryStrategy()

	// A mismatch shows cards 0 and 1
	shown := board("revealed", "revealed", "hidden", "hidden")
	shown.Cards[0].PairValue = "red"
	shown.Cards[1].PairValue = "blue"
	s.Observe(shown)

	// Card 2 turns out to be blue
	state := board("hidden", "hidden", "revealed", "hidden")
	state.Cards[2].PairValue = "blue"
	state.Selection = []int{2}
	s.Observe(state)

	if got := s.NextReveal(state); got != 1 {
		t.Errorf("Expected partner card 1, got %d", got)
	}
}

func TestMemoryStrategy_StartsWithKnownPair(t *testing.T) {
	s := NewMemoryStrategy()
	s.known = map[int]string{0: "red", 1: "blue", 3: "red"}

	if got := s.NextReveal(board("hidden", "hidden", "hidden", "hidden")); got != 0 {
		t.Errorf("Expected first card of the known pair, got %d", got)
	}
}

func TestMemoryStrategy_ForgetsMatched(t *testing.T) {
	s := NewMemoryStrategy()
	s.known = map[int]string{0: "red", 1: "red"}

	state := board("matched", "matched")
	state.Cards[0].PairValue = "red"
	state.Cards[1].PairValue = "red"
	s.Observe(state)

	if len(s.known) != 0 {
		t.Errorf("Matched cards should be forgotten, still know %v", s.known)
	}
	if got := s.NextReveal(state); got != -1 {
		t.Errorf("Expected -1 on a finished board, got %d", got)
	}
}

func TestMemoryStrategy_Reset(t *testing.T) {
	s := NewMemoryStrategy()
	s.known[4] = "cyan"
	s.Reset()

	if len(s.known) != 0 {
		t.Error("Reset should forget every card")
	}
}
