package gamepad

import "time"

// RawFrame is one reading of a device: button states and axis values as
// reported by the host, in raw index order.
type RawFrame struct {
	Buttons []bool
	Axes    []float64
}

// DeviceInfo describes a device as reported by the host input subsystem.
type DeviceInfo struct {
	ID      string
	Slot    int
	Haptics bool
}

// Host is the platform input subsystem.
type Host interface {
	// Devices lists devices already connected.
	Devices() []DeviceInfo
	// Frame returns the current raw frame for slot, or false if the slot
	// has no readable device.
	Frame(slot int) (RawFrame, bool)
	// Rumble requests a dual-motor effect. Magnitudes are in [0,1].
	Rumble(slot int, d time.Duration, strong, weak float64) error
}

// Listener receives connect/disconnect notifications from a Host.
type Listener interface {
	HandleConnect(info DeviceInfo)
	HandleDisconnect(slot int)
}
