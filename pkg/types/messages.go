// Package types lists the names used on the game websocket and HTTP API so
// clients can be written without importing the server.
package types

// Client -> Server
// Key:
//   key: "left" | "right" | "down" | "up" | "restart"
//
// Restart: {}
//
// Server -> Client
// Frame:
//   version: number
//   state: { phase, score, lines, level, game_over, current, next, pos: {x, y} }
//   frame: { main: number[20][10], preview: number[4][4] }   // 0 = empty, 1..7 piece colors
//   changes: [{ area: "main" | "preview", x, y, color }]     // omitted on the first frame
//   events: string[]
//
// Error:
//   error: string

const (
	MsgKey     = "Key"
	MsgRestart = "Restart"
	MsgFrame   = "Frame"
	MsgError   = "Error"
)

const (
	KeyLeft    = "left"
	KeyRight   = "right"
	KeyDown    = "down"
	KeyUp      = "up"
	KeyRestart = "restart"
)

// Colors as sent in frames.
var ColorNames = []string{"empty", "cyan", "yellow", "purple", "green", "red", "blue", "orange"}
