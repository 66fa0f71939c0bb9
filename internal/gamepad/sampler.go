package gamepad

import "math"

// Sample is the normalized input state of one poll tick.
type Sample struct {
	ButtonEdges map[string]bool
	Pressed     map[string]bool
	LeftStick   Vector
	RightStick  Vector
}

// ClampAxis limits a raw axis value to [-1, 1]. NaN reads as 0.
func ClampAxis(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

// ApplyRadialDeadzone zeroes the vector when its magnitude is strictly below
// deadzone. A magnitude equal to deadzone is kept.
func ApplyRadialDeadzone(v Vector, deadzone float64) Vector {
	if math.Hypot(v.X, v.Y) < deadzone {
		return Vector{}
	}
	return v
}

// sample derives edges and stick vectors for s. s must already have been
// advanced with frame. A nil session or missing frame yields the zero Sample.
func sample(s *DeviceSession, frame RawFrame, ok bool) Sample {
	out := Sample{
		ButtonEdges: map[string]bool{},
		Pressed:     map[string]bool{},
	}
	if s == nil || !ok {
		return out
	}
	// A name bound to several indices is one button: it rises only when
	// none of its indices was held on the previous tick.
	before := map[string]bool{}
	for i, name := range s.Profile.Buttons {
		if s.held(i) {
			out.Pressed[name] = true
		}
		if s.wasHeld(i) {
			before[name] = true
		}
	}
	for name := range out.Pressed {
		if !before[name] {
			out.ButtonEdges[name] = true
		}
	}
	axis := func(role AxisRole) float64 {
		i, ok := s.Profile.Axes[role]
		if !ok || i >= len(frame.Axes) {
			return 0
		}
		return ClampAxis(frame.Axes[i])
	}
	dz := s.Profile.Deadzone
	out.LeftStick = ApplyRadialDeadzone(Vector{X: axis(AxisLeftX), Y: axis(AxisLeftY)}, dz)
	out.RightStick = ApplyRadialDeadzone(Vector{X: axis(AxisRightX), Y: axis(AxisRightY)}, dz)
	return out
}
