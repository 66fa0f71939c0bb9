package gamepad

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

type rumbleCall struct {
	slot         int
	duration     time.Duration
	strong, weak float64
}

type fakeHost struct {
	mu        sync.Mutex
	devices   []DeviceInfo
	frames    map[int]RawFrame
	rumbles   []rumbleCall
	rumbleErr error
	reads     int
}

func newFakeHost() *fakeHost {
	return &fakeHost{frames: map[int]RawFrame{}}
}

func (f *fakeHost) Devices() []DeviceInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DeviceInfo(nil), f.devices...)
}

func (f *fakeHost) Frame(slot int) (RawFrame, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	fr, ok := f.frames[slot]
	return fr, ok
}

func (f *fakeHost) Rumble(slot int, d time.Duration, strong, weak float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rumbles = append(f.rumbles, rumbleCall{slot: slot, duration: d, strong: strong, weak: weak})
	return f.rumbleErr
}

func (f *fakeHost) plug(info DeviceInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = append(f.devices, info)
	if _, ok := f.frames[info.Slot]; !ok {
		f.frames[info.Slot] = RawFrame{Buttons: make([]bool, StandardButtons), Axes: make([]float64, 4)}
	}
}

func (f *fakeHost) unplug(slot int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []DeviceInfo
	for _, d := range f.devices {
		if d.Slot != slot {
			kept = append(kept, d)
		}
	}
	f.devices = kept
	delete(f.frames, slot)
}

// press sets the listed raw buttons and releases all others.
func (f *fakeHost) press(slot int, indices ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr := f.frames[slot]
	fr.Buttons = make([]bool, StandardButtons)
	for _, i := range indices {
		fr.Buttons[i] = true
	}
	f.frames[slot] = fr
}

func (f *fakeHost) stick(slot int, axes ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr := f.frames[slot]
	fr.Axes = append([]float64(nil), axes...)
	f.frames[slot] = fr
}

func (f *fakeHost) rumbleCalls() []rumbleCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rumbleCall(nil), f.rumbles...)
}

func (f *fakeHost) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

var errNoMotor = errors.New("no motor")
