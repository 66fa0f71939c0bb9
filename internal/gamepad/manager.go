package gamepad

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultPollInterval is the navigation tick period.
const DefaultPollInterval = 100 * time.Millisecond

// Options configures a Manager. The zero value is usable.
type Options struct {
	Logger               *zap.SugaredLogger
	Clock                clock.Clock
	Shell                HostShell
	PollInterval         time.Duration
	DirectionalThreshold float64
	DisableHaptics       bool
	// OnChange is called after the set of tracked devices changes.
	OnChange func(Snapshot)
	// Feedback is called from the poll loop once per intent that fired.
	Feedback func(Intent)
}

// Manager tracks connected controllers and exposes navigation and haptics to
// UI code. The first connected controller is active; later ones are tracked
// but never preempt it.
type Manager struct {
	host      Host
	logger    *zap.SugaredLogger
	clock     clock.Clock
	shell     HostShell
	interval  time.Duration
	threshold float64
	onChange  func(Snapshot)
	feedback  func(Intent)
	haptics   *Haptics

	mu       sync.RWMutex
	sessions map[int]*DeviceSession
	active   *DeviceSession
	last     NavigationIntentFrame
}

// NewManager returns a Manager reading from host. No device is tracked until
// the host reports a connect or Scan runs.
func NewManager(host Host, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.DirectionalThreshold <= 0 {
		opts.DirectionalThreshold = DefaultDirectionalThreshold
	}
	return &Manager{
		host:      host,
		logger:    opts.Logger,
		clock:     opts.Clock,
		shell:     opts.Shell,
		interval:  opts.PollInterval,
		threshold: opts.DirectionalThreshold,
		onChange:  opts.OnChange,
		feedback:  opts.Feedback,
		haptics:   newHaptics(host, opts.Clock, opts.Logger, !opts.DisableHaptics),
		sessions:  make(map[int]*DeviceSession),
	}
}

// Scan reconciles tracked sessions with the devices the host reports: new
// devices are connected, vanished ones disconnected. Run it once at startup
// to pick up devices that were already plugged in.
func (m *Manager) Scan() {
	devices := m.host.Devices()
	seen := make(map[int]bool, len(devices))
	for _, d := range devices {
		seen[d.Slot] = true
	}
	m.mu.RLock()
	var gone []int
	for slot := range m.sessions {
		if !seen[slot] {
			gone = append(gone, slot)
		}
	}
	m.mu.RUnlock()
	for _, slot := range gone {
		m.HandleDisconnect(slot)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Slot < devices[j].Slot })
	for _, d := range devices {
		m.HandleConnect(d)
	}
}

// HandleConnect registers a device. A device already tracked on the same
// slot keeps its session with both button vectors released, and becomes
// active if nothing else is.
func (m *Manager) HandleConnect(info DeviceInfo) {
	m.mu.Lock()
	if s, ok := m.sessions[info.Slot]; ok && s.DeviceID == info.ID {
		s.reset()
		changed := false
		if m.active == nil {
			m.active = s
			changed = true
			m.logger.Infow("active controller set", "device", s.DeviceID, "family", s.Family, "slot", s.Slot)
		}
		m.mu.Unlock()
		if changed {
			m.notify()
		}
		return
	}
	if prev, ok := m.sessions[info.Slot]; ok && m.active == prev {
		m.active = nil
		m.last = NavigationIntentFrame{}
	}
	s := newSession(info, m.shell, m.clock.Now())
	m.sessions[info.Slot] = s
	m.logger.Infow("controller connected",
		"device", s.DeviceID,
		"slot", s.Slot,
		"family", s.Family,
		"profile", s.Profile.Name,
		"haptics", s.Haptics,
		"session", s.ID)
	if m.active == nil {
		m.active = s
		m.logger.Infow("active controller set", "device", s.DeviceID, "family", s.Family, "slot", s.Slot)
	} else {
		m.logger.Infow("controller tracked but not active", "device", s.DeviceID, "active", m.active.DeviceID)
	}
	m.mu.Unlock()
	m.notify()
}

// HandleDisconnect drops the session on slot. If it was active, navigation
// reads as no input until another device becomes active.
func (m *Manager) HandleDisconnect(slot int) {
	m.mu.Lock()
	s, ok := m.sessions[slot]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, slot)
	m.logger.Infow("controller disconnected", "device", s.DeviceID, "slot", slot, "session", s.ID)
	if m.active == s {
		m.active = nil
		m.last = NavigationIntentFrame{}
		m.logger.Infow("active controller lost", "tracked", len(m.sessions))
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.Snapshot())
	}
}

// IsConnected reports whether a controller is active.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active != nil
}

// ActiveFamily returns the family of the active controller.
func (m *Manager) ActiveFamily() (Family, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return 0, false
	}
	return m.active.Family, true
}

// ActiveProfileName returns the profile name of the active controller.
func (m *Manager) ActiveProfileName() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return "", false
	}
	return m.active.Profile.Name, true
}

// Sessions returns copies of every tracked session, oldest first.
func (m *Manager) Sessions() []DeviceSession {
	m.mu.RLock()
	out := lo.Map(lo.Values(m.sessions), func(s *DeviceSession, _ int) DeviceSession {
		return s.clone()
	})
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].Slot < out[j].Slot
		}
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

// GetNavigationInput runs one sample-and-map cycle on the active controller.
// With no active controller every intent is false.
func (m *Manager) GetNavigationInput() NavigationIntentFrame {
	_, frame := m.step()
	return frame
}

// Sample runs one cycle like GetNavigationInput and returns the normalized
// button edges and stick vectors instead of intents.
func (m *Manager) Sample() Sample {
	s, _ := m.step()
	return s
}

func (m *Manager) step() (Sample, NavigationIntentFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.active
	if s == nil {
		m.last = NavigationIntentFrame{}
		return sample(nil, RawFrame{}, false), m.last
	}
	raw, ok := m.host.Frame(s.Slot)
	if !ok {
		m.logger.Debugw("no frame for active controller", "slot", s.Slot)
	}
	s.advance(raw, ok)
	out := sample(s, raw, ok)
	m.last = mapIntents(s.Family, out, m.threshold)
	return out, m.last
}

func (m *Manager) activeSession() *DeviceSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Vibrate plays pattern on the active controller. Unknown patterns play as
// "short"; invalid intensity, no controller or no rumble support do nothing.
func (m *Manager) Vibrate(pattern string, intensity float64) {
	m.haptics.Vibrate(m.activeSession(), Pattern(pattern), intensity)
}

// Calibrate plays the calibration pulse sequence on the active controller
// and returns when it is done or ctx is cancelled.
func (m *Manager) Calibrate(ctx context.Context) {
	m.haptics.Calibrate(ctx, m.activeSession())
}

// Label returns the button name the active controller uses for intent i.
func (m *Manager) Label(i Intent) string {
	f, ok := m.ActiveFamily()
	if !ok {
		f = FamilyDirectInput
	}
	return ButtonFor(f, i)
}

func (m *Manager) ConfirmButton() string     { return m.Label(IntentConfirm) }
func (m *Manager) CancelButton() string      { return m.Label(IntentCancel) }
func (m *Manager) MenuButton() string        { return m.Label(IntentMenu) }
func (m *Manager) BackButton() string        { return m.Label(IntentBack) }
func (m *Manager) LeftBumperButton() string  { return m.Label(IntentLeftBumper) }
func (m *Manager) RightBumperButton() string { return m.Label(IntentRightBumper) }
func (m *Manager) StickClickButton() string  { return m.Label(IntentStickClick) }

// Snapshot returns the current connection state and the last intent frame.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{
		Tracked: len(m.sessions),
		Intents: m.last,
		Slot:    -1,
	}
	if m.active == nil {
		snap.Labels = labels(FamilyDirectInput)
		return snap
	}
	f := m.active.Family
	snap.Connected = true
	snap.Family = &f
	snap.Profile = m.active.Profile.Name
	snap.DeviceID = m.active.DeviceID
	snap.Slot = m.active.Slot
	snap.Haptics = m.active.Haptics
	snap.ConnectedAt = m.active.ConnectedAt
	snap.Labels = labels(f)
	return snap
}
