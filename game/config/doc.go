// Package config provides configuration management for the memory card game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Validation through engine.ValidateGameConfig
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each JSON file in the configs directory describes one ruleset: grid
// dimensions, palette size (and optionally the palette itself), starting
// attempts and seconds, the mismatch delay and the countdown interval.
// The file name without extension is the config id used to create sessions.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("classic")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is classic.json when present, otherwise the first valid file,
// otherwise engine.DefaultConfig.
package config
