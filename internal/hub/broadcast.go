package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/soar/padnav/internal/gamepad"
)

const fullSyncInterval = 5 * time.Second

// Event is one update from the controller layer: a connection change
// (Snapshot) or a navigation tick (Frame).
type Event struct {
	Snapshot *gamepad.Snapshot
	Frame    *gamepad.NavigationIntentFrame
}

// Broadcaster listens for controller events and broadcasts them to the hub.
type Broadcaster struct {
	hub    *Hub
	events <-chan Event
	clock  clock.Clock
	logger *zap.SugaredLogger

	mu        sync.Mutex
	lastState gamepad.Snapshot
	seq       int64
}

func NewBroadcaster(h *Hub, events <-chan Event, clk clock.Clock, logger *zap.SugaredLogger) *Broadcaster {
	return &Broadcaster{
		hub:    h,
		events: events,
		clock:  clk,
		logger: logger,
	}
}

// Seed sets the state sent to clients before the first event arrives.
func (b *Broadcaster) Seed(snap gamepad.Snapshot) {
	b.mu.Lock()
	b.lastState = snap
	b.mu.Unlock()
}

// Run starts the broadcaster loop until ctx is done or events is closed.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := b.clock.Ticker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-b.events:
			if !ok {
				return
			}
			b.handle(ev)

		case <-ticker.C:
			b.mu.Lock()
			if b.lastState.Connected {
				b.sendFullLocked()
			}
			b.mu.Unlock()
		}
	}
}

func (b *Broadcaster) handle(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ev.Snapshot != nil {
		changed := !gamepad.SameConnection(b.lastState, *ev.Snapshot)
		b.lastState = *ev.Snapshot
		if changed {
			b.sendFullLocked()
		}
	}
	if ev.Frame != nil {
		b.lastState.Intents = *ev.Frame
		if ev.Frame.Any() {
			b.seq++
			b.broadcast(NewIntentMessage(b.seq, ev.Frame))
		}
	}
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	b.seq++
	state := b.lastState
	msg := NewFullMessage(b.seq, &state)
	b.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Warnw("error marshaling initial state", "error", err)
		return
	}
	b.hub.send(c, data)
}

func (b *Broadcaster) sendFullLocked() {
	b.seq++
	state := b.lastState
	b.broadcast(NewFullMessage(b.seq, &state))
}

func (b *Broadcaster) broadcast(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Warnw("error marshaling message", "type", msg.Type, "error", err)
		return
	}
	b.hub.Broadcast(data)
}
