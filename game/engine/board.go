package engine

import (
	"fmt"
	"math/rand/v2"
)

// DefaultPalette lists the pair values in the order they are handed out.
var DefaultPalette = []string{
	"red", "blue", "green", "yellow", "orange", "cyan",
	"magenta", "pink", "purple", "brown", "lime", "teal",
	"navy", "maroon", "olive", "silver", "gold", "coral",
}

// PairValues returns n distinct pair values. Palette entries come first in
// order; once they run out, generated names that do not clash with the
// palette fill the rest.
func PairValues(palette []string, n int) []string {
	values := make([]string, 0, n)
	used := make(map[string]bool, n)
	for _, v := range palette {
		if len(values) == n {
			return values
		}
		if v == "" || used[v] {
			continue
		}
		used[v] = true
		values = append(values, v)
	}
	for i := len(values); len(values) < n; i++ {
		v := fmt.Sprintf("color-%02d", i+1)
		if used[v] {
			continue
		}
		used[v] = true
		values = append(values, v)
	}
	return values
}

// Generate builds a shuffled board of rows*cols cards using the first
// rows*cols/2 values of the default palette. A nil rng uses the global source.
func Generate(rows, cols, paletteSize int, rng *rand.Rand) (*Board, error) {
	return GenerateWithPalette(rows, cols, paletteSize, DefaultPalette, rng)
}

// GenerateWithPalette is Generate with an explicit palette.
func GenerateWithPalette(rows, cols, paletteSize int, palette []string, rng *rand.Rand) (*Board, error) {
	if err := validateGrid(rows, cols, paletteSize); err != nil {
		return nil, err
	}

	total := rows * cols
	values := make([]string, 0, total)
	for _, v := range PairValues(palette, total/2) {
		values = append(values, v, v)
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	cards := make([]*Card, total)
	for i, v := range values {
		cards[i] = &Card{ID: i, PairValue: v, Status: Hidden}
	}

	return &Board{Rows: rows, Cols: cols, Cards: cards}, nil
}

func validateGrid(rows, cols, paletteSize int) error {
	if rows < MinGridSize || cols < MinGridSize {
		return fmt.Errorf("%w: rows and cols must be at least %d, got %dx%d", ErrConfiguration, MinGridSize, rows, cols)
	}
	if rows > MaxGridSize || cols > MaxGridSize {
		return fmt.Errorf("%w: rows and cols must be at most %d, got %dx%d", ErrConfiguration, MaxGridSize, rows, cols)
	}
	total := rows * cols
	if total%2 != 0 {
		return fmt.Errorf("%w: %dx%d grid has an odd number of cells", ErrConfiguration, rows, cols)
	}
	if paletteSize*2 < total {
		return fmt.Errorf("%w: palette of %d values cannot fill %d cells", ErrConfiguration, paletteSize, total)
	}
	return nil
}

// Snapshot returns a copy of the board that shares no state with it.
func (b *Board) Snapshot() BoardSnapshot {
	cards := make([]Card, len(b.Cards))
	for i, c := range b.Cards {
		cards[i] = *c
	}
	return BoardSnapshot{Rows: b.Rows, Cols: b.Cols, Cards: cards}
}

// TotalPairs is the number of matches needed to win.
func (b *Board) TotalPairs() int {
	return len(b.Cards) / 2
}

// MatchingPairs lists every pair of distinct positions sharing a value,
// ordered by first then second position.
func (b *Board) MatchingPairs() []Pair {
	var pairs []Pair
	for i := 0; i < len(b.Cards); i++ {
		for j := i + 1; j < len(b.Cards); j++ {
			if b.Cards[i].PairValue == b.Cards[j].PairValue {
				pairs = append(pairs, Pair{A: i, B: j})
			}
		}
	}
	return pairs
}

// CountStatus counts the cards currently in the given status
func (b *Board) CountStatus(status CardStatus) int {
	count := 0
	for _, c := range b.Cards {
		if c.Status == status {
			count++
		}
	}
	return count
}
