package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// GameConfig represents the game rules loaded from JSON
type GameConfig struct {
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Rows             int      `json:"rows" validate:"min=1,max=12"`
	Cols             int      `json:"cols" validate:"min=1,max=12"`
	PaletteSize      int      `json:"palette_size" validate:"min=1"`
	Palette          []string `json:"palette,omitempty" validate:"omitempty,unique,dive,required"`
	StartAttempts    int      `json:"start_attempts" validate:"min=1"`
	StartTimeSeconds int      `json:"start_time_seconds" validate:"min=1"`
	MismatchDelayMs  int      `json:"mismatch_delay_ms" validate:"min=0"`
	TickIntervalMs   int      `json:"tick_interval_ms" validate:"min=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DefaultConfig returns the classic rules: a 3x4 grid of six colors,
// 15 attempts and one minute on the clock.
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:             "Classic",
		Description:      "3x4 grid, six colors, 15 attempts, 60 seconds",
		Rows:             DefaultRows,
		Cols:             DefaultCols,
		PaletteSize:      DefaultPaletteSize,
		StartAttempts:    DefaultStartAttempts,
		StartTimeSeconds: DefaultStartTimeSeconds,
		MismatchDelayMs:  int(DefaultMismatchDelay / time.Millisecond),
		TickIntervalMs:   int(DefaultTickInterval / time.Millisecond),
	}
}

// ValidateGameConfig checks field ranges and that the grid can be filled
// with pairs from the palette.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrConfiguration)
	}
	if err := validate.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if fe.Param() != "" {
				return fmt.Errorf("%w: %s must satisfy %s=%s, got %v", ErrConfiguration, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
			}
			return fmt.Errorf("%w: %s failed %s", ErrConfiguration, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return validateGrid(config.Rows, config.Cols, config.PaletteSize)
}

// LoadGameConfig loads and validates a configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// MismatchDelay is how long a mismatched pair stays face up
func (c *GameConfig) MismatchDelay() time.Duration {
	return time.Duration(c.MismatchDelayMs) * time.Millisecond
}

// TickInterval is the length of one countdown unit
func (c *GameConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

func (c *GameConfig) palette() []string {
	if len(c.Palette) > 0 {
		return c.Palette
	}
	return DefaultPalette
}
