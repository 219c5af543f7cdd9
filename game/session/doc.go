// Package session provides session management for the memory card game.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Per-session timers backed by scheduler.Clock
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session registry. Each service.Session it creates owns an
// engine, a clock whose callbacks run under the session mutex, and
// creation/last access timestamps.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex digits of a random UUID. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager(session.WithEventHandler(service.ForwardEvents(hub)))
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//	sessions := manager.List()
//
// Cleanup:
//
// Deleting or expiring a session stops its countdown and any pending
// mismatch hide. Nothing is persisted.
package session
