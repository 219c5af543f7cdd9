// Package mcp provides a Model Context Protocol server for the memory card game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create new game session with config selection
//   - list_sessions: List all active sessions
//   - get_session: Get specific session details
//   - game_state: Board grid, pairs found, attempts and time left
//   - reveal_card: Reveal one card by its 0-based id
//   - reset_game: Start a fresh round
//   - matching_pairs: Pairs of the current board (server debug mode only)
//   - list_configs: List available game configurations
//   - game_instructions: Rules and board legend
//
// The Client holds no game state. Every tool call is proxied to the REST API,
// so the MCP server can run in a separate process from the game server.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	http.Handle("/mcp", server.NewStreamableHTTPServer(client.GetMCPServer()))
package mcp
