package hub

import (
	"time"

	"github.com/soar/padnav/internal/gamepad"
)

// Message types sent from server to client.
const (
	TypeFull   = "full"   // complete Snapshot
	TypeIntent = "intent" // one tick with at least one intent set
	TypeAck    = "ack"    // reply to a client command
)

// Client command types.
const (
	CmdVibrate   = "vibrate"
	CmdCalibrate = "calibrate"
	CmdRescan    = "rescan"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string                         `json:"type"`
	Seq       int64                          `json:"seq"`
	Timestamp int64                          `json:"timestamp"` // Unix milliseconds
	Data      *gamepad.Snapshot              `json:"data,omitempty"`
	Intents   *gamepad.NavigationIntentFrame `json:"intents,omitempty"`
	Command   string                         `json:"command,omitempty"`
	Error     string                         `json:"error,omitempty"`
}

// NewFullMessage creates a "full" type message containing the complete snapshot.
func NewFullMessage(seq int64, snap *gamepad.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      snap,
	}
}

// NewIntentMessage creates an "intent" type message for one navigation tick.
func NewIntentMessage(seq int64, frame *gamepad.NavigationIntentFrame) *WSMessage {
	return &WSMessage{
		Type:      TypeIntent,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Intents:   frame,
	}
}

// NewAckMessage acknowledges a client command. errMsg is empty on success.
func NewAckMessage(command, errMsg string) *WSMessage {
	return &WSMessage{
		Type:      TypeAck,
		Timestamp: time.Now().UnixMilli(),
		Command:   command,
		Error:     errMsg,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type      string   `json:"type"`
	Pattern   string   `json:"pattern,omitempty"`
	Intensity *float64 `json:"intensity,omitempty"`
}
