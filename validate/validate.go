// Command validate provides a small CLI that validates game configuration JSON
// files in a configs directory (default ../configs). It checks:
//   - JSON structure, with unknown fields rejected
//   - Field ranges and that the grid can be filled with pairs
//   - That a perfect player has enough attempts to find every pair
//   - Custom palettes that are shorter than the number of pairs
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	checkBudgets(&config, &result)
	return result
}

// checkBudgets reports whether the round can be won at all and how tight
// the budgets are.
func checkBudgets(config *engine.GameConfig, result *ValidationResult) {
	pairs := config.Rows * config.Cols / 2
	result.info("Grid %dx%d with %d pairs", config.Rows, config.Cols, pairs)

	// Every turn costs one attempt, so a perfect player needs one per pair.
	if config.StartAttempts < pairs {
		result.fail("start_attempts %d is less than the %d pairs: the game cannot be won", config.StartAttempts, pairs)
	} else {
		result.info("%d spare attempts beyond a perfect game", config.StartAttempts-pairs)
	}

	if config.TickIntervalMs == 0 {
		result.info("Countdown disabled (tick_interval_ms is 0)")
	} else {
		result.info("%.1f seconds per pair", float64(config.StartTimeSeconds)/float64(pairs))
	}

	if n := len(config.Palette); n > 0 && n < pairs {
		result.info("Palette has %d values for %d pairs, the rest use generated names", n, pairs)
	}
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
