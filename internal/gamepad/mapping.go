package gamepad

import (
	"sort"
	"strings"
)

// Family identifies a recognized controller hardware class.
type Family int

const (
	FamilyXbox Family = iota
	FamilyPlayStation
	FamilyEightBitDo
	FamilySwitchPro
	FamilyDirectInput
)

func (f Family) String() string {
	switch f {
	case FamilyXbox:
		return "XBOX"
	case FamilyPlayStation:
		return "PLAYSTATION"
	case FamilyEightBitDo:
		return "8BITDO"
	case FamilySwitchPro:
		return "SWITCH_PRO"
	case FamilyDirectInput:
		return "DIRECTINPUT"
	}
	return "UNKNOWN"
}

// MarshalText lets Family appear by name in JSON snapshots.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// AxisRole names one of the four analog stick axes.
type AxisRole int

const (
	AxisLeftX AxisRole = iota
	AxisLeftY
	AxisRightX
	AxisRightY
)

// D-pad names are shared by every family.
const (
	DPadUp    = "DPadUp"
	DPadDown  = "DPadDown"
	DPadLeft  = "DPadLeft"
	DPadRight = "DPadRight"
)

// ControllerProfile is the button/axis mapping and deadzone for a family.
// Profiles are built once and never mutated; use WithButtons to derive one.
type ControllerProfile struct {
	Family   Family
	Name     string
	Patterns []string // lower-case substrings matched against the device id
	Buttons  map[int]string
	Axes     map[AxisRole]int
	Deadzone float64
}

// ButtonName returns the semantic name bound to raw index i.
func (p *ControllerProfile) ButtonName(i int) (string, bool) {
	name, ok := p.Buttons[i]
	return name, ok
}

// ButtonCount is the length of a button vector able to hold every mapped index.
func (p *ControllerProfile) ButtonCount() int {
	n := 0
	for i := range p.Buttons {
		if i+1 > n {
			n = i + 1
		}
	}
	return n
}

// Indices returns every raw index bound to name, in ascending order.
func (p *ControllerProfile) Indices(name string) []int {
	var out []int
	for i, n := range p.Buttons {
		if n == name {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// WithButtons returns a copy of p with extra index bindings layered on top.
func (p *ControllerProfile) WithButtons(extra map[int]string) *ControllerProfile {
	cp := *p
	cp.Buttons = make(map[int]string, len(p.Buttons)+len(extra))
	for i, n := range p.Buttons {
		cp.Buttons[i] = n
	}
	for i, n := range extra {
		cp.Buttons[i] = n
	}
	return &cp
}

func (p *ControllerProfile) matches(lowerID string) bool {
	for _, pat := range p.Patterns {
		if strings.Contains(lowerID, pat) {
			return true
		}
	}
	return false
}

// Raw indices follow the standard gamepad order:
// 0-3 face (south, east, west, north), 4/5 bumpers, 6/7 triggers,
// 8/9 select/start, 10/11 stick clicks, 12-15 d-pad, 16 home, 17 extra.

var standardAxes = map[AxisRole]int{
	AxisLeftX:  0,
	AxisLeftY:  1,
	AxisRightX: 2,
	AxisRightY: 3,
}

func withDPad(m map[int]string) map[int]string {
	m[12] = DPadUp
	m[13] = DPadDown
	m[14] = DPadLeft
	m[15] = DPadRight
	return m
}

var xboxProfile = &ControllerProfile{
	Family:   FamilyXbox,
	Name:     "Xbox",
	Patterns: []string{"xbox", "xinput", "microsoft", "045e"},
	Buttons: withDPad(map[int]string{
		0:  "A",
		1:  "B",
		2:  "X",
		3:  "Y",
		4:  "LB",
		5:  "RB",
		6:  "LT",
		7:  "RT",
		8:  "View",
		9:  "Menu",
		10: "LS",
		11: "RS",
		16: "Xbox",
	}),
	Axes:     standardAxes,
	Deadzone: 0.15,
}

var playstationProfile = &ControllerProfile{
	Family:   FamilyPlayStation,
	Name:     "PlayStation",
	Patterns: []string{"playstation", "dualshock", "dualsense", "sony", "054c", "ps4", "ps5", "wireless controller"},
	Buttons: withDPad(map[int]string{
		0:  "Cross",
		1:  "Circle",
		2:  "Square",
		3:  "Triangle",
		4:  "L1",
		5:  "R1",
		6:  "L2",
		7:  "R2",
		8:  "Share",
		9:  "Options",
		10: "L3",
		11: "R3",
		16: "PS",
		17: "Touchpad",
	}),
	Axes:     standardAxes,
	Deadzone: 0.10,
}

var eightBitDoProfile = &ControllerProfile{
	Family:   FamilyEightBitDo,
	Name:     "8BitDo",
	Patterns: []string{"8bitdo", "8bit do", "2dc8"},
	Buttons: withDPad(map[int]string{
		0:  "A",
		1:  "B",
		2:  "X",
		3:  "Y",
		4:  "L",
		5:  "R",
		6:  "L2",
		7:  "R2",
		8:  "Select",
		9:  "Start",
		10: "L3",
		11: "R3",
		16: "Home",
	}),
	Axes:     standardAxes,
	Deadzone: 0.12,
}

// Nintendo labels are positional opposites: the south button reads B.
var switchProProfile = &ControllerProfile{
	Family:   FamilySwitchPro,
	Name:     "Switch Pro",
	Patterns: []string{"pro controller", "nintendo", "switch", "057e", "joy-con"},
	Buttons: withDPad(map[int]string{
		0:  "B",
		1:  "A",
		2:  "Y",
		3:  "X",
		4:  "L",
		5:  "R",
		6:  "ZL",
		7:  "ZR",
		8:  "Minus",
		9:  "Plus",
		10: "LStick",
		11: "RStick",
		16: "Home",
		17: "Capture",
	}),
	Axes:     standardAxes,
	Deadzone: 0.12,
}

var directInputProfile = &ControllerProfile{
	Family:   FamilyDirectInput,
	Name:     "Generic DirectInput",
	Patterns: []string{"directinput", "dinput"},
	Buttons: withDPad(map[int]string{
		0:  "Button1",
		1:  "Button2",
		2:  "Button3",
		3:  "Button4",
		4:  "Button5",
		5:  "Button6",
		6:  "Button7",
		7:  "Button8",
		8:  "Button9",
		9:  "Button10",
		10: "Button11",
		11: "Button12",
		16: "Button13",
	}),
	Axes:     standardAxes,
	Deadzone: 0.20,
}

// Identification priority: vendor families first, generic fallback last.
var catalog = []*ControllerProfile{
	xboxProfile,
	playstationProfile,
	eightBitDoProfile,
	switchProProfile,
	directInputProfile,
}

// Families returns the families in identification priority order.
func Families() []Family {
	out := make([]Family, len(catalog))
	for i, p := range catalog {
		out[i] = p.Family
	}
	return out
}

// Profile returns the catalog profile for f, or the DirectInput profile.
func Profile(f Family) *ControllerProfile {
	for _, p := range catalog {
		if p.Family == f {
			return p
		}
	}
	return directInputProfile
}
