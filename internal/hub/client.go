package hub

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/soar/padnav/internal/gamepad"
)

// Commander executes client commands against the controller layer.
type Commander interface {
	Vibrate(pattern string, intensity float64)
	Calibrate(ctx context.Context)
	Scan()
}

// Client represents a connected WebSocket client.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.SugaredLogger
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: hub.logger,
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads client commands until the connection closes. ctx bounds
// long-running commands such as calibration.
func (c *Client) ReadPump(ctx context.Context, cmd Commander) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.logger.Debugw("error parsing client message", "error", err)
			c.reply(NewAckMessage("", "malformed message"))
			continue
		}

		switch clientMsg.Type {
		case CmdVibrate:
			intensity := 1.0
			if clientMsg.Intensity != nil {
				intensity = *clientMsg.Intensity
			}
			pattern := clientMsg.Pattern
			if pattern == "" {
				pattern = string(gamepad.PatternShort)
			}
			cmd.Vibrate(pattern, intensity)
			c.reply(NewAckMessage(CmdVibrate, ""))
		case CmdCalibrate:
			go cmd.Calibrate(ctx)
			c.reply(NewAckMessage(CmdCalibrate, ""))
		case CmdRescan:
			cmd.Scan()
			c.reply(NewAckMessage(CmdRescan, ""))
		default:
			c.logger.Debugw("unknown client command", "type", clientMsg.Type)
			c.reply(NewAckMessage(clientMsg.Type, "unknown command"))
		}
	}
}

func (c *Client) reply(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Warnw("error marshaling reply", "error", err)
		return
	}
	c.hub.send(c, data)
}
