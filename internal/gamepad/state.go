package gamepad

import "time"

// Vector is a stick position, each axis in [-1, 1].
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is the externally visible state of the manager.
type Snapshot struct {
	Connected   bool                  `json:"connected"`
	Family      *Family               `json:"family,omitempty"`
	Profile     string                `json:"profile,omitempty"`
	DeviceID    string                `json:"deviceId,omitempty"`
	Slot        int                   `json:"slot"`
	Haptics     bool                  `json:"haptics"`
	ConnectedAt time.Time             `json:"connectedAt,omitzero"`
	Tracked     int                   `json:"tracked"`
	Labels      map[string]string     `json:"labels"`
	Intents     NavigationIntentFrame `json:"intents"`
}

// SameConnection reports whether a and b describe the same active device.
func SameConnection(a, b Snapshot) bool {
	if a.Connected != b.Connected || a.DeviceID != b.DeviceID || a.Slot != b.Slot ||
		a.Haptics != b.Haptics || a.Tracked != b.Tracked || a.Profile != b.Profile {
		return false
	}
	return true
}

func labels(f Family) map[string]string {
	out := make(map[string]string, intentCount)
	for _, i := range Intents() {
		out[i.String()] = ButtonFor(f, i)
	}
	return out
}
