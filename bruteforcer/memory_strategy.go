package main

// MemoryStrategy remembers every value it has seen face up and prefers
// completing a known pair over exploring.
type MemoryStrategy struct {
	// Values of face-down cards seen earlier, by card id
	known map[int]string
}

func NewMemoryStrategy() *MemoryStrategy {
	return &MemoryStrategy{known: make(map[int]string)}
}

// Reset forgets everything. Call it whenever a new board is dealt.
func (s *MemoryStrategy) Reset() {
	s.known = make(map[int]string)
}

// Observe records revealed values and drops matched cards
func (s *MemoryStrategy) Observe(state *GameState) {
	if state == nil {
		return
	}
	for _, card := range state.Cards {
		switch card.Status {
		case "revealed":
			if card.PairValue != "" {
				s.known[card.ID] = card.PairValue
			}
		case "matched":
			delete(s.known, card.ID)
		}
	}
}

// NextReveal picks the next card id, or -1 when nothing can be revealed.
func (s *MemoryStrategy) NextReveal(state *GameState) int {
	hidden := make(map[int]bool)
	for _, card := range state.Cards {
		if card.Status == "hidden" {
			hidden[card.ID] = true
		}
	}

	if len(state.Selection) == 1 {
		first := state.Selection[0]
		value := s.known[first]
		// Partner already seen
		for id := range hidden {
			if s.known[id] == value && value != "" {
				return id
			}
		}
		return s.firstUnknown(state, hidden, first)
	}

	// A complete pair among face-down cards
	byValue := make(map[string]int)
	for id := 0; id < len(state.Cards); id++ {
		v, ok := s.known[id]
		if !ok || !hidden[id] {
			continue
		}
		if _, seen := byValue[v]; seen {
			return byValue[v]
		}
		byValue[v] = id
	}

	return s.firstUnknown(state, hidden, -1)
}

// firstUnknown returns the lowest face-down card never seen, falling back to
// any face-down card other than skip.
func (s *MemoryStrategy) firstUnknown(state *GameState, hidden map[int]bool, skip int) int {
	fallback := -1
	for id := 0; id < len(state.Cards); id++ {
		if !hidden[id] || id == skip {
			continue
		}
		if _, ok := s.known[id]; !ok {
			return id
		}
		if fallback < 0 {
			fallback = id
		}
	}
	return fallback
}
