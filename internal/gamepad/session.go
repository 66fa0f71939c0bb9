package gamepad

import (
	"time"

	"github.com/google/uuid"
)

// DeviceSession tracks one connected controller.
type DeviceSession struct {
	ID          uuid.UUID
	DeviceID    string
	Slot        int
	Family      Family
	Profile     *ControllerProfile
	Haptics     bool
	Previous    []bool
	Current     []bool
	ConnectedAt time.Time
}

func newSession(info DeviceInfo, shell HostShell, now time.Time) *DeviceSession {
	family, profile := Identify(info.ID, shell)
	n := profile.ButtonCount()
	return &DeviceSession{
		ID:          uuid.New(),
		DeviceID:    info.ID,
		Slot:        info.Slot,
		Family:      family,
		Profile:     profile,
		Haptics:     info.Haptics,
		Previous:    make([]bool, n),
		Current:     make([]bool, n),
		ConnectedAt: now,
	}
}

// advance shifts Current into Previous and reads a fresh Current from frame.
// Indices the frame does not report read as released; a missing frame
// releases everything.
func (s *DeviceSession) advance(frame RawFrame, ok bool) {
	s.Previous, s.Current = s.Current, s.Previous
	for i := range s.Current {
		s.Current[i] = ok && i < len(frame.Buttons) && frame.Buttons[i]
	}
}

func (s *DeviceSession) held(i int) bool {
	return i >= 0 && i < len(s.Current) && s.Current[i]
}

func (s *DeviceSession) wasHeld(i int) bool {
	return i >= 0 && i < len(s.Previous) && s.Previous[i]
}

// reset releases every button in both vectors.
func (s *DeviceSession) reset() {
	clear(s.Previous)
	clear(s.Current)
}

// clone returns a copy that shares nothing mutable with s.
func (s *DeviceSession) clone() DeviceSession {
	cp := *s
	cp.Previous = append([]bool(nil), s.Previous...)
	cp.Current = append([]bool(nil), s.Current...)
	return cp
}
