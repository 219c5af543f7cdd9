// Package websocket provides WebSocket transport for the memory card game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Push of every engine event (reveal, match, mismatch, hide, tick, won,
//     lost, reset) with the resulting game view
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns all connections. Each client gets a read and a write
// goroutine. Broadcasts go through a buffered queue drained by Hub.Run, so
// Notify can be called from engine listeners that hold a session lock.
//
// Message Protocol:
//
// Clients connect to /ws?session=<id> and only listen. Each frame is one
// JSON Message:
//
//	{"session_id":"1a2b3c4d","event":"mismatch","card_ids":[2,7],"game_state":{...}}
//
// Face-down cards in game_state never carry their pair value.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	sessions := session.NewManager(session.WithEventHandler(service.ForwardEvents(hub)))
package websocket
