// Command analyze prints quick, human-readable heuristics about configuration
// files in the project's configs directory. For each config it summarizes the
// grid and budgets, then plays a number of simulated rounds with a
// perfect-memory player to estimate how forgiving the attempt budget is.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
)

// Analysis summarizes simulated rounds for one config
type Analysis struct {
	Name         string
	Pairs        int
	Games        int
	Wins         int
	MinAttempts  int
	MaxAttempts  int
	MeanAttempts float64
}

// WinRate is the share of simulated rounds the player won
func (a *Analysis) WinRate() float64 {
	if a.Games == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.Games)
}

func main() {
	configDir := flag.String("config-dir", "configs", "Directory containing game configurations")
	games := flag.Int("games", 1000, "Simulated rounds per config")
	seed := flag.Uint64("seed", 1, "Simulation seed")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*configDir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No config files found in %s\n", *configDir)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))

		config, err := engine.LoadGameConfig(file)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			continue
		}

		analysis, err := analyzeConfig(config, *games, rand.New(rand.NewPCG(*seed, *seed)))
		if err != nil {
			fmt.Printf("Error simulating: %v\n", err)
			continue
		}
		printAnalysis(config, analysis)
	}
}

func printAnalysis(config *engine.GameConfig, a *Analysis) {
	fmt.Printf("Name: %s\n", config.Name)
	fmt.Printf("Grid: %d x %d (%d pairs)\n", config.Rows, config.Cols, a.Pairs)
	fmt.Printf("Attempts: %d\n", config.StartAttempts)
	fmt.Printf("Time: %ds\n", config.StartTimeSeconds)
	fmt.Printf("Perfect-memory player over %d rounds:\n", a.Games)
	fmt.Printf("  Win rate: %.1f%%\n", a.WinRate()*100)
	fmt.Printf("  Attempts used: min %d, mean %.1f, max %d\n", a.MinAttempts, a.MeanAttempts, a.MaxAttempts)

	switch {
	case a.WinRate() == 1:
		fmt.Printf("✅ Attempt budget never runs out for a player with perfect recall\n")
	case a.WinRate() < 0.5:
		fmt.Printf("⚠️  WARNING: even perfect recall loses most rounds, consider more attempts\n")
	}
}

// analyzeConfig plays games rounds of config and aggregates the results.
// Timers are not scheduled, so only the attempt budget can end a round early.
func analyzeConfig(config *engine.GameConfig, games int, rng *rand.Rand) (*Analysis, error) {
	a := &Analysis{
		Name:        config.Name,
		Pairs:       config.Rows * config.Cols / 2,
		Games:       games,
		MinAttempts: -1,
	}

	total := 0
	for i := 0; i < games; i++ {
		won, used, err := playRound(config, rng)
		if err != nil {
			return nil, err
		}
		if won {
			a.Wins++
		}
		total += used
		if a.MinAttempts < 0 || used < a.MinAttempts {
			a.MinAttempts = used
		}
		if used > a.MaxAttempts {
			a.MaxAttempts = used
		}
	}
	if games > 0 {
		a.MeanAttempts = float64(total) / float64(games)
	}
	if a.MinAttempts < 0 {
		a.MinAttempts = 0
	}
	return a, nil
}

// playRound plays one round with a player that remembers every value seen.
// It returns whether the round was won and how many attempts it took.
func playRound(config *engine.GameConfig, rng *rand.Rand) (bool, int, error) {
	eng, err := engine.New(config, nil, engine.WithRand(rng))
	if err != nil {
		return false, 0, err
	}
	defer eng.Stop()

	seen := map[string][]int{}
	next := 0
	value := func(id int) string { return eng.Board().Cards[id].PairValue }

	reveal := func(id int) error {
		res, err := eng.Reveal(id)
		if err != nil {
			return err
		}
		if !res.Changed {
			return fmt.Errorf("reveal of card %d had no effect", id)
		}
		return nil
	}

	// unseen returns the next card the player has never looked at
	unseen := func() int {
		for next < len(eng.Board().Cards) {
			id := next
			next++
			if eng.Board().Cards[id].Status == engine.Hidden {
				return id
			}
		}
		return -1
	}

	for !eng.IsOver() {
		first, second := knownPair(seen)
		if first < 0 {
			if first = unseen(); first < 0 {
				break
			}
		}
		if err := reveal(first); err != nil {
			return false, 0, err
		}

		v := value(first)
		if second < 0 {
			for _, id := range seen[v] {
				if id != first {
					second = id
				}
			}
			if second < 0 {
				seen[v] = append(seen[v], first)
				if second = unseen(); second < 0 {
					break
				}
			}
		}
		if err := reveal(second); err != nil {
			return false, 0, err
		}

		if eng.Board().Cards[second].Status == engine.Matched {
			delete(seen, v)
		} else {
			seen[value(second)] = append(seen[value(second)], second)
			eng.OnMismatchTimeout()
		}
	}

	state := eng.State()
	return state.Phase == engine.Won, config.StartAttempts - state.AttemptsLeft, nil
}

// knownPair returns two remembered cards with the same value, or -1, -1
func knownPair(seen map[string][]int) (int, int) {
	for _, ids := range seen {
		if len(ids) >= 2 {
			return ids[0], ids[1]
		}
	}
	return -1, -1
}
