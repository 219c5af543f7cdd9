// Package api provides HTTP REST API handlers for the memory card game.
//
// The api package implements:
//   - Session management endpoints
//   - Card reveal and reset
//   - Configuration listing
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "easy"})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session and stop its timers
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game view
//   - POST /api/sessions/{id}/reveal - Reveal a card ({"card_id": 4})
//   - POST /api/sessions/{id}/reset - Start a fresh round
//   - GET /api/sessions/{id}/pairs - Matching pairs, debug mode only
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Full configuration
//
// Errors are returned as JSON with an HTTP status code:
//
//	{"error": "session not found: 1a2b3c4d"}
//
// Usage:
//
//	server := api.NewServer(gameService, hub, api.WithDebug(debug))
//	http.ListenAndServe(":8080", server)
package api
