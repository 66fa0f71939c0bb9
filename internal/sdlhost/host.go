// Package sdlhost reads joysticks through SDL3 and serves them as a
// gamepad.Host.
package sdlhost

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soar/padnav/internal/gamepad"
)

const (
	pollDelayNS = 8_000_000 // ~120Hz refresh of the frame cache

	propJoystickCapRumble = "SDL.joystick.cap.rumble"
	rumbleQueueSize       = 16
)

var _ gamepad.Host = (*Host)(nil)

type joystickInfo struct {
	joystick *sdl.Joystick
	layout   *gamepad.Layout
	info     gamepad.DeviceInfo
}

type rumbleRequest struct {
	slot         int
	duration     time.Duration
	strong, weak float64
}

// Host reads joysticks through SDL3. All SDL calls happen on the goroutine
// running Run; other goroutines only see cached frames and queue rumbles.
type Host struct {
	logger    *zap.SugaredLogger
	joysticks map[sdl.JoystickID]*joystickInfo // owned by Run
	rumbles   chan rumbleRequest
	ready     chan struct{}

	mu     sync.RWMutex
	frames map[int]gamepad.RawFrame
	infos  map[int]gamepad.DeviceInfo
}

// New returns a Host with no joysticks open; call Run to start SDL.
func New(logger *zap.SugaredLogger) *Host {
	return &Host{
		logger:    logger,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		rumbles:   make(chan rumbleRequest, rumbleQueueSize),
		ready:     make(chan struct{}),
		frames:    make(map[int]gamepad.RawFrame),
		infos:     make(map[int]gamepad.DeviceInfo),
	}
}

// Ready is closed once SDL is initialized.
func (h *Host) Ready() <-chan struct{} {
	return h.ready
}

// Devices returns the joysticks currently open.
func (h *Host) Devices() []gamepad.DeviceInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]gamepad.DeviceInfo, 0, len(h.infos))
	for _, info := range h.infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// Frame returns a copy of the last frame read for slot.
func (h *Host) Frame(slot int) (gamepad.RawFrame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.frames[slot]
	if !ok {
		return gamepad.RawFrame{}, false
	}
	return gamepad.RawFrame{
		Buttons: append([]bool(nil), f.Buttons...),
		Axes:    append([]float64(nil), f.Axes...),
	}, true
}

// Rumble queues an effect for the SDL thread.
func (h *Host) Rumble(slot int, d time.Duration, strong, weak float64) error {
	h.mu.RLock()
	_, ok := h.infos[slot]
	h.mu.RUnlock()
	if !ok {
		return errors.Errorf("no joystick on slot %d", slot)
	}
	select {
	case h.rumbles <- rumbleRequest{slot: slot, duration: d, strong: strong, weak: weak}:
		return nil
	default:
		return errors.New("rumble queue full")
	}
}

// Run initializes SDL and runs the event and polling loop on a locked OS
// thread until ctx is done. Joysticks present at startup are reported to l
// as connects before the first poll.
func (h *Host) Run(ctx context.Context, l gamepad.Listener) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		return errors.Errorf("SDL init failed: %s", sdl.GetError())
	}
	defer sdl.Quit()

	h.logger.Info("SDL3 joystick subsystem initialized")
	close(h.ready)

	for _, id := range sdl.GetJoysticks() {
		h.openJoystick(id, l)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll(l)
			return nil
		default:
		}

		h.processEvents(l)
		h.refreshFrames()
		h.drainRumbles()
		sdl.DelayNS(pollDelayNS)
	}
}

func (h *Host) processEvents(l gamepad.Listener) {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			h.openJoystick(event.JDevice().Which, l)
		case sdl.EventJoystickRemoved:
			h.removeJoystick(event.JDevice().Which, l)
		case sdl.EventJoystickButtonDown:
			be := event.JButton()
			h.logger.Debugw("button down", "index", be.Button, "joystick", be.Which)
		case sdl.EventJoystickButtonUp:
			be := event.JButton()
			h.logger.Debugw("button up", "index", be.Button, "joystick", be.Which)
		}
	}
}

func (h *Host) openJoystick(instanceID sdl.JoystickID, l gamepad.Listener) {
	if _, exists := h.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		h.logger.Warnw("failed to open joystick", "id", instanceID, "error", sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	layout := gamepad.LayoutFor(vendorID, productID)
	rumble := sdl.GetBooleanProperty(sdl.GetJoystickProperties(js), propJoystickCapRumble, false)

	info := gamepad.DeviceInfo{
		ID:      gamepad.FormatDeviceID(name, vendorID, productID),
		Slot:    int(jsID),
		Haptics: rumble,
	}
	h.joysticks[jsID] = &joystickInfo{joystick: js, layout: layout, info: info}

	h.logger.Infow("joystick opened",
		"name", name,
		"vid", fmt.Sprintf("%04X", vendorID),
		"pid", fmt.Sprintf("%04X", productID),
		"layout", layout.Name,
		"axes", sdl.GetNumJoystickAxes(js),
		"buttons", sdl.GetNumJoystickButtons(js),
		"hats", sdl.GetNumJoystickHats(js),
		"rumble", rumble)

	h.mu.Lock()
	h.infos[info.Slot] = info
	h.frames[info.Slot] = h.read(h.joysticks[jsID])
	h.mu.Unlock()

	l.HandleConnect(info)
}

func (h *Host) removeJoystick(instanceID sdl.JoystickID, l gamepad.Listener) {
	ji, exists := h.joysticks[instanceID]
	if !exists {
		return
	}

	h.logger.Infow("joystick closed", "device", ji.info.ID)
	sdl.CloseJoystick(ji.joystick)
	delete(h.joysticks, instanceID)

	h.mu.Lock()
	delete(h.infos, ji.info.Slot)
	delete(h.frames, ji.info.Slot)
	h.mu.Unlock()

	l.HandleDisconnect(ji.info.Slot)
}

func (h *Host) closeAll(l gamepad.Listener) {
	for id := range h.joysticks {
		h.removeJoystick(id, l)
	}
}

func (h *Host) read(ji *joystickInfo) gamepad.RawFrame {
	js := ji.joystick
	raw := gamepad.RawJoystick{
		Buttons: make([]bool, sdl.GetNumJoystickButtons(js)),
		Axes:    make([]int16, sdl.GetNumJoystickAxes(js)),
		Hats:    int(sdl.GetNumJoystickHats(js)),
	}
	for i := range raw.Buttons {
		raw.Buttons[i] = sdl.GetJoystickButton(js, int32(i))
	}
	for i := range raw.Axes {
		raw.Axes[i] = sdl.GetJoystickAxis(js, int32(i))
	}
	if raw.Hats > 0 {
		raw.Hat = sdl.GetJoystickHat(js, 0)
	}
	return ji.layout.Translate(raw)
}

func (h *Host) refreshFrames() {
	frames := make(map[int]gamepad.RawFrame, len(h.joysticks))
	for _, ji := range h.joysticks {
		if !sdl.JoystickConnected(ji.joystick) {
			continue
		}
		frames[ji.info.Slot] = h.read(ji)
	}
	h.mu.Lock()
	h.frames = frames
	h.mu.Unlock()
}

func (h *Host) drainRumbles() {
	for {
		select {
		case req := <-h.rumbles:
			h.rumble(req)
		default:
			return
		}
	}
}

func (h *Host) rumble(req rumbleRequest) {
	ji, ok := h.joysticks[sdl.JoystickID(req.slot)]
	if !ok {
		return
	}
	low := gamepad.MotorLevel(req.strong)
	high := gamepad.MotorLevel(req.weak)
	if !sdl.RumbleJoystick(ji.joystick, low, high, uint32(req.duration.Milliseconds())) {
		h.logger.Debugw("rumble not supported", "device", ji.info.ID, "error", sdl.GetError())
	}
}
