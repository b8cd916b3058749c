package types

import (
	"github.com/DoyleJ11/tetris-server/internal/display"
	"github.com/DoyleJ11/tetris-server/internal/engine"
	"github.com/DoyleJ11/tetris-server/internal/room"
	wire "github.com/DoyleJ11/tetris-server/pkg/types"
)

type ClientMessage struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

type ServerMessage struct {
	Type    string         `json:"type"` // "Frame" | "Error"
	Version int            `json:"version,omitempty"`
	State   *engine.State  `json:"state,omitempty"`
	Frame   *display.Frame `json:"frame,omitempty"`
	Changes []display.Cell `json:"changes,omitempty"`
	Events  []string       `json:"events,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func FrameMessage(snap room.Snapshot) ServerMessage {
	events := make([]string, 0, len(snap.Events))
	for _, e := range snap.Events {
		events = append(events, string(e.Type))
	}
	return ServerMessage{
		Type:    wire.MsgFrame,
		Version: snap.Version,
		State:   &snap.State,
		Frame:   &snap.Frame,
		Changes: snap.Changes,
		Events:  events,
	}
}

func ErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: wire.MsgError, Error: msg}
}
