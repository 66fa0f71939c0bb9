package gamepad

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Pattern names a haptic effect.
type Pattern string

const (
	PatternShort  Pattern = "short"
	PatternMedium Pattern = "medium"
	PatternLong   Pattern = "long"
	PatternPulse  Pattern = "pulse"
	PatternRumble Pattern = "rumble"
)

// HapticEffect is a dual-motor effect scaled by a caller intensity.
type HapticEffect struct {
	Duration    time.Duration
	StrongRatio float64
	WeakRatio   float64
}

var effects = map[Pattern]HapticEffect{
	PatternShort:  {Duration: 100 * time.Millisecond, StrongRatio: 1, WeakRatio: 0.5},
	PatternMedium: {Duration: 200 * time.Millisecond, StrongRatio: 1, WeakRatio: 0.7},
	PatternLong:   {Duration: 400 * time.Millisecond, StrongRatio: 1, WeakRatio: 0.8},
	PatternPulse:  {Duration: 50 * time.Millisecond, StrongRatio: 1, WeakRatio: 0.3},
	PatternRumble: {Duration: 800 * time.Millisecond, StrongRatio: 1, WeakRatio: 1},
}

// Effect returns the effect for p, falling back to the short pattern.
func Effect(p Pattern) HapticEffect {
	if e, ok := effects[p]; ok {
		return e
	}
	return effects[PatternShort]
}

// Calibration runs CalibrationPulses pulses CalibrationInterval apart.
const (
	CalibrationPulses   = 5
	CalibrationInterval = 250 * time.Millisecond
)

// Haptics issues best-effort vibration against a session's slot.
type Haptics struct {
	host    Host
	clock   clock.Clock
	logger  *zap.SugaredLogger
	enabled bool
}

func newHaptics(host Host, clk clock.Clock, logger *zap.SugaredLogger, enabled bool) *Haptics {
	return &Haptics{host: host, clock: clk, logger: logger, enabled: enabled}
}

// Vibrate fires pattern at intensity and returns without waiting for the
// effect to finish. It does nothing when s cannot vibrate or intensity is
// outside [0,1].
func (h *Haptics) Vibrate(s *DeviceSession, p Pattern, intensity float64) {
	if !h.enabled || s == nil || !s.Haptics {
		return
	}
	if math.IsNaN(intensity) || intensity < 0 || intensity > 1 {
		h.logger.Debugw("ignoring vibrate with invalid intensity", "intensity", intensity)
		return
	}
	if _, ok := effects[p]; !ok {
		h.logger.Debugw("unknown haptic pattern, using short", "pattern", p)
	}
	e := Effect(p)
	strong := intensity * e.StrongRatio
	weak := intensity * e.WeakRatio
	if err := h.host.Rumble(s.Slot, e.Duration, strong, weak); err != nil {
		h.logger.Debugw("rumble failed", "slot", s.Slot, "device", s.DeviceID, "error", err)
	}
}

// Calibrate plays a ramp of pulses on s. It returns after the last pulse or
// when ctx is done.
func (h *Haptics) Calibrate(ctx context.Context, s *DeviceSession) {
	if !h.enabled || s == nil || !s.Haptics {
		return
	}
	h.logger.Infow("haptic calibration started", "device", s.DeviceID, "family", s.Family)
	for i := 0; i < CalibrationPulses; i++ {
		if i > 0 {
			t := h.clock.Timer(CalibrationInterval)
			select {
			case <-ctx.Done():
				t.Stop()
				h.logger.Debugw("haptic calibration cancelled", "pulse", i)
				return
			case <-t.C:
			}
		}
		h.Vibrate(s, PatternPulse, calibrationIntensity(i))
	}
	h.logger.Infow("haptic calibration finished", "device", s.DeviceID)
}

// calibrationIntensity ramps linearly from 0.2 to 1.0.
func calibrationIntensity(i int) float64 {
	if CalibrationPulses <= 1 {
		return 1
	}
	return math.Min(1, 0.2+0.8*float64(i)/float64(CalibrationPulses-1))
}
