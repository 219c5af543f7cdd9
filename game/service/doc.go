// Package service provides the business logic layer for the memory card game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup
//   - Card reveals and resets
//   - Client views that never expose face-down values
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Notifier receives engine events, typically the WebSocket hub.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an engine, a scheduler.Clock and a
// mutex. Requests and timer callbacks take the same mutex, so an engine only
// ever sees one caller at a time.
//
// Usage:
//
//	hub := websocket.NewHub()
//	sessionMgr := session.NewManager(session.WithEventHandler(service.ForwardEvents(hub)))
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Reveal(ctx, info.ID, 3)
package service
