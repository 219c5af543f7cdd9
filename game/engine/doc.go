// Package engine provides the core game logic for the Memory Card game.
//
// The engine package implements the game mechanics including:
//   - Shuffled pair assignment for a rows x cols board
//   - The per-turn reveal, match and hide state machine
//   - Attempt and time budgets with win/loss determination
//   - Configuration loading and validation
//
// Core Types:
//
// Engine owns a Board of Cards, the current selection and the SessionState.
// It never touches a clock directly: delayed hides and the countdown go
// through the Scheduler interface, so tests can fire them synchronously.
//
// Usage:
//
//	eng, err := engine.NewGame(3, 4, 6, 15, 60, sched)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := eng.Reveal(0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if res.Outcome != engine.OutcomeNone {
//		fmt.Println("game over:", res.Outcome)
//	}
//
// Game Rules:
//
// Every turn reveals two cards and costs one attempt. Equal pair values are
// retired as matched; different values are turned face down again after the
// mismatch delay. Matching every pair wins, even on the last attempt. Running
// out of attempts or time loses.
package engine
