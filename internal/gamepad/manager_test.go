package gamepad

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"
)

type managerFixture struct {
	host    *fakeHost
	clock   *clock.Mock
	m       *Manager
	mu      sync.Mutex
	changes []Snapshot
}

func newManagerFixture(t *testing.T, opts Options) *managerFixture {
	t.Helper()
	f := &managerFixture{host: newFakeHost(), clock: clock.NewMock()}
	opts.Logger = zaptest.NewLogger(t).Sugar()
	opts.Clock = f.clock
	opts.OnChange = func(s Snapshot) {
		f.mu.Lock()
		f.changes = append(f.changes, s)
		f.mu.Unlock()
	}
	f.m = NewManager(f.host, opts)
	return f
}

func (f *managerFixture) connect(info DeviceInfo) {
	f.host.plug(info)
	f.m.HandleConnect(info)
}

func (f *managerFixture) disconnect(slot int) {
	f.host.unplug(slot)
	f.m.HandleDisconnect(slot)
}

func TestNoControllerIsSteadyState(t *testing.T) {
	f := newManagerFixture(t, Options{})
	test.That(t, f.m.IsConnected(), test.ShouldBeFalse)
	_, ok := f.m.ActiveFamily()
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = f.m.ActiveProfileName()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, f.m.GetNavigationInput(), test.ShouldResemble, NavigationIntentFrame{})
	test.That(t, f.m.ConfirmButton(), test.ShouldEqual, "Button1")

	f.m.Vibrate("short", 1)
	f.m.Calibrate(context.Background())
	test.That(t, f.host.rumbleCalls(), test.ShouldBeEmpty)
	test.That(t, f.host.readCount(), test.ShouldEqual, 0)
}

func TestXboxScenario(t *testing.T) {
	f := newManagerFixture(t, Options{})
	f.connect(DeviceInfo{ID: "Xbox Wireless Controller", Slot: 0, Haptics: true})

	fam, ok := f.m.ActiveFamily()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, fam, test.ShouldEqual, FamilyXbox)
	name, _ := f.m.ActiveProfileName()
	test.That(t, name, test.ShouldEqual, "Xbox")
	test.That(t, f.m.ConfirmButton(), test.ShouldEqual, "A")

	test.That(t, f.m.GetNavigationInput().Any(), test.ShouldBeFalse)

	f.host.press(0, 0)
	s := f.m.Sample()
	test.That(t, s.ButtonEdges["A"], test.ShouldBeTrue)
	s = f.m.Sample()
	test.That(t, s.ButtonEdges["A"], test.ShouldBeFalse)

	f.host.press(0)
	f.m.GetNavigationInput()
	f.host.press(0, 0)
	test.That(t, f.m.GetNavigationInput(), test.ShouldResemble, NavigationIntentFrame{Confirm: true})
	test.That(t, f.m.GetNavigationInput(), test.ShouldResemble, NavigationIntentFrame{})
}

func TestLabels(t *testing.T) {
	f := newManagerFixture(t, Options{})
	f.connect(DeviceInfo{ID: "DualSense Wireless Controller", Slot: 4})
	test.That(t, f.m.ConfirmButton(), test.ShouldEqual, "Cross")
	test.That(t, f.m.CancelButton(), test.ShouldEqual, "Circle")
	test.That(t, f.m.MenuButton(), test.ShouldEqual, "Options")
	test.That(t, f.m.BackButton(), test.ShouldEqual, "Share")
	test.That(t, f.m.LeftBumperButton(), test.ShouldEqual, "L1")
	test.That(t, f.m.RightBumperButton(), test.ShouldEqual, "R1")
	test.That(t, f.m.StickClickButton(), test.ShouldEqual, "L3")

	snap := f.m.Snapshot()
	test.That(t, snap.Labels["confirm"], test.ShouldEqual, "Cross")
	test.That(t, snap.Slot, test.ShouldEqual, 4)
	test.That(t, *snap.Family, test.ShouldEqual, FamilyPlayStation)
}

func TestFirstConnectedWins(t *testing.T) {
	f := newManagerFixture(t, Options{})
	f.connect(DeviceInfo{ID: "Xbox One", Slot: 0})
	f.connect(DeviceInfo{ID: "Pro Controller", Slot: 1, Haptics: true})

	fam, _ := f.m.ActiveFamily()
	test.That(t, fam, test.ShouldEqual, FamilyXbox)
	sessions := f.m.Sessions()
	test.That(t, sessions, test.ShouldHaveLength, 2)
	test.That(t, sessions[1].Family, test.ShouldEqual, FamilySwitchPro)
	test.That(t, sessions[1].Haptics, test.ShouldBeTrue)

	// input on the tracked controller is ignored
	f.host.press(1, 1)
	test.That(t, f.m.GetNavigationInput().Any(), test.ShouldBeFalse)

	// losing the active controller degrades to no input, without promotion
	f.disconnect(0)
	test.That(t, f.m.IsConnected(), test.ShouldBeFalse)
	test.That(t, f.m.GetNavigationInput(), test.ShouldResemble, NavigationIntentFrame{})
	test.That(t, f.m.Sessions(), test.ShouldHaveLength, 1)

	// a rescan activates the remaining controller
	f.m.Scan()
	fam, ok := f.m.ActiveFamily()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, fam, test.ShouldEqual, FamilySwitchPro)
}

func TestConnectDisconnectRoundTrip(t *testing.T) {
	f := newManagerFixture(t, Options{})
	before := f.m.GetNavigationInput()
	f.connect(DeviceInfo{ID: "8BitDo SN30 Pro", Slot: 2})
	f.host.press(2, 0)
	test.That(t, f.m.GetNavigationInput().Confirm, test.ShouldBeTrue)
	f.disconnect(2)
	test.That(t, f.m.GetNavigationInput(), test.ShouldResemble, before)
	test.That(t, f.m.Snapshot().Intents, test.ShouldResemble, NavigationIntentFrame{})

	f.mu.Lock()
	defer f.mu.Unlock()
	test.That(t, f.changes, test.ShouldHaveLength, 2)
	test.That(t, f.changes[0].Connected, test.ShouldBeTrue)
	test.That(t, f.changes[1].Connected, test.ShouldBeFalse)
}

func TestFrameVanishesMidSession(t *testing.T) {
	f := newManagerFixture(t, Options{})
	f.connect(DeviceInfo{ID: "Xbox One", Slot: 0})
	f.host.press(0, 0)
	test.That(t, f.m.GetNavigationInput().Confirm, test.ShouldBeTrue)

	// the host loses the frame before the disconnect event arrives
	f.host.unplug(0)
	test.That(t, f.m.GetNavigationInput(), test.ShouldResemble, NavigationIntentFrame{})
	test.That(t, f.m.IsConnected(), test.ShouldBeTrue)
}

func TestScanAtStartup(t *testing.T) {
	f := newManagerFixture(t, Options{})
	f.host.plug(DeviceInfo{ID: "Generic USB Pad", Slot: 5})
	f.host.plug(DeviceInfo{ID: "Xbox One", Slot: 3})
	f.m.Scan()
	fam, _ := f.m.ActiveFamily()
	test.That(t, fam, test.ShouldEqual, FamilyXbox)
	test.That(t, f.m.Sessions(), test.ShouldHaveLength, 2)

	// a repeat scan changes nothing
	f.m.Scan()
	test.That(t, f.m.Sessions(), test.ShouldHaveLength, 2)
	f.mu.Lock()
	test.That(t, f.changes, test.ShouldHaveLength, 2)
	f.mu.Unlock()

	// the active pad vanished without an event; the scan drops it and
	// activates the remaining one
	f.host.unplug(3)
	f.m.Scan()
	test.That(t, f.m.Sessions(), test.ShouldHaveLength, 1)
	fam, _ = f.m.ActiveFamily()
	test.That(t, fam, test.ShouldEqual, FamilyDirectInput)
}

func TestSlotReuseReplacesSession(t *testing.T) {
	f := newManagerFixture(t, Options{})
	f.connect(DeviceInfo{ID: "Xbox One", Slot: 0})
	f.connect(DeviceInfo{ID: "DualShock 4", Slot: 0})
	fam, _ := f.m.ActiveFamily()
	test.That(t, fam, test.ShouldEqual, FamilyPlayStation)
	test.That(t, f.m.Sessions(), test.ShouldHaveLength, 1)
}

func TestRepeatedConnectResetsButtons(t *testing.T) {
	f := newManagerFixture(t, Options{})
	info := DeviceInfo{ID: "Xbox Wireless Controller", Slot: 0}
	f.connect(info)
	f.host.press(0, 0)
	test.That(t, f.m.GetNavigationInput().Confirm, test.ShouldBeTrue)
	test.That(t, f.m.GetNavigationInput().Confirm, test.ShouldBeFalse)
	before := f.m.Sessions()[0]

	f.m.HandleConnect(info)
	after := f.m.Sessions()[0]
	test.That(t, after.ID, test.ShouldEqual, before.ID)
	for i := range after.Current {
		test.That(t, after.Current[i], test.ShouldBeFalse)
		test.That(t, after.Previous[i], test.ShouldBeFalse)
	}
	// still held, but the reconnect released it, so it counts as a new press
	test.That(t, f.m.GetNavigationInput().Confirm, test.ShouldBeTrue)
}

func TestManagerVibrate(t *testing.T) {
	f := newManagerFixture(t, Options{})
	f.connect(DeviceInfo{ID: "Wireless Controller", Slot: 0, Haptics: true})
	f.m.Vibrate("medium", 0.5)
	calls := f.host.rumbleCalls()
	test.That(t, calls, test.ShouldHaveLength, 1)
	test.That(t, calls[0].strong, test.ShouldAlmostEqual, 0.5)
	test.That(t, calls[0].weak, test.ShouldAlmostEqual, 0.35)
	test.That(t, calls[0].duration, test.ShouldEqual, 200*time.Millisecond)

	off := newManagerFixture(t, Options{DisableHaptics: true})
	off.connect(DeviceInfo{ID: "Wireless Controller", Slot: 0, Haptics: true})
	off.m.Vibrate("medium", 0.5)
	test.That(t, off.host.rumbleCalls(), test.ShouldBeEmpty)
}

func TestDirectionalThresholdOption(t *testing.T) {
	f := newManagerFixture(t, Options{DirectionalThreshold: 0.3})
	f.connect(DeviceInfo{ID: "Xbox One", Slot: 0})
	f.host.stick(0, 0.5, 0, 0, 0)
	test.That(t, f.m.GetNavigationInput().Right, test.ShouldBeTrue)
	// the stick is level-triggered
	test.That(t, f.m.GetNavigationInput().Right, test.ShouldBeTrue)
}
