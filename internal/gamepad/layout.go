package gamepad

import (
	"fmt"
	"math"
)

// Layout translates SDL joystick indices into the standard raw order used
// by the catalog. SDL reports indices in driver order, which differs by vendor.
type Layout struct {
	Name    string
	buttons map[int32]int // SDL button index -> standard index
	// Trigger axes are folded into standard buttons 6 and 7.
	leftTrigger, rightTrigger int32
	hasHat                    bool
}

const noAxis int32 = -1

var xboxLayout = &Layout{
	Name: "xbox",
	buttons: map[int32]int{
		0:  0,  // A
		1:  1,  // B
		2:  2,  // X
		3:  3,  // Y
		4:  4,  // LB
		5:  5,  // RB
		6:  8,  // View
		7:  9,  // Menu
		8:  10, // LS
		9:  11, // RS
		10: 16, // Guide
	},
	leftTrigger:  4,
	rightTrigger: 5,
	hasHat:       true,
}

var playStationLayout = &Layout{
	Name: "playstation",
	buttons: map[int32]int{
		0:  0,  // Cross
		1:  1,  // Circle
		2:  2,  // Square
		3:  3,  // Triangle
		4:  8,  // Share / Create
		5:  16, // PS
		6:  9,  // Options
		7:  10, // L3
		8:  11, // R3
		9:  4,  // L1
		10: 5,  // R1
		11: 12, // d-pad reported as buttons on some drivers
		12: 13,
		13: 14,
		14: 15,
		15: 17, // Touchpad
	},
	leftTrigger:  4,
	rightTrigger: 5,
	hasHat:       true,
}

var switchProLayout = &Layout{
	Name: "switch_pro",
	buttons: map[int32]int{
		0:  0,
		1:  1,
		2:  2,
		3:  3,
		4:  4,
		5:  5,
		6:  8,
		7:  9,
		8:  10,
		9:  11,
		10: 16,
		11: 6, // ZL
		12: 7, // ZR
		13: 17,
	},
	leftTrigger:  noAxis,
	rightTrigger: noAxis,
	hasHat:       true,
}

// Generic pads keep driver order: SDL index n is "Button n+1".
var genericLayout = &Layout{
	Name: "generic",
	buttons: map[int32]int{
		0: 0, 1: 1, 2: 2, 3: 3, 4: 4, 5: 5,
		6: 6, 7: 7, 8: 8, 9: 9, 10: 10, 11: 11,
		12: 16,
	},
	leftTrigger:  noAxis,
	rightTrigger: noAxis,
	hasHat:       true,
}

type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*Layout{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxLayout, // Xbox 360
	{0x045E, 0x02FF}: xboxLayout, // Xbox One
	{0x045E, 0x0B12}: xboxLayout, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxLayout, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playStationLayout, // DualSense
	{0x054C, 0x09CC}: playStationLayout, // DualShock 4 v2
	{0x054C, 0x05C4}: playStationLayout, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProLayout,
}

var knownVendors = map[uint16]*Layout{
	0x045E: xboxLayout,
	0x054C: playStationLayout,
	0x057E: switchProLayout,
}

// FormatDeviceID renders an id string in the shape browsers use, so the
// vendor hex patterns in the catalog match SDL devices too.
func FormatDeviceID(name string, vendorID, productID uint16) string {
	return fmt.Sprintf("%s (Vendor: %04x Product: %04x)", name, vendorID, productID)
}

// LayoutFor returns the layout for a device, trying the exact vendor/product
// pair, then the vendor, then the generic layout.
func LayoutFor(vendorID, productID uint16) *Layout {
	if l, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return l
	}
	if l, ok := knownVendors[vendorID]; ok {
		return l
	}
	return genericLayout
}

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08

	triggerPressed = 0.5
)

// StandardButtons is the length of a frame in the standard raw order.
const StandardButtons = 18

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// RawJoystick is what the layout needs to read from one SDL joystick.
type RawJoystick struct {
	Buttons []bool
	Axes    []int16
	Hat     uint8 // state of hat 0
	Hats    int
}

// Translate builds a standard-order frame from raw joystick readings.
func (l *Layout) Translate(j RawJoystick) RawFrame {
	frame := RawFrame{
		Buttons: make([]bool, StandardButtons),
		Axes:    make([]float64, 4),
	}
	for i, pressed := range j.Buttons {
		if !pressed {
			continue
		}
		if std, ok := l.buttons[int32(i)]; ok {
			frame.Buttons[std] = true
		}
	}
	for i := 0; i < 4 && i < len(j.Axes); i++ {
		frame.Axes[i] = NormalizeAxis(j.Axes[i])
	}
	trigger := func(axis int32, std int) {
		if axis == noAxis || int(axis) >= len(j.Axes) {
			return
		}
		if NormalizeTrigger(j.Axes[axis], math.MinInt16, math.MaxInt16) > triggerPressed {
			frame.Buttons[std] = true
		}
	}
	trigger(l.leftTrigger, 6)
	trigger(l.rightTrigger, 7)
	if l.hasHat && j.Hats > 0 {
		frame.Buttons[12] = frame.Buttons[12] || j.Hat&hatUp != 0
		frame.Buttons[13] = frame.Buttons[13] || j.Hat&hatDown != 0
		frame.Buttons[14] = frame.Buttons[14] || j.Hat&hatLeft != 0
		frame.Buttons[15] = frame.Buttons[15] || j.Hat&hatRight != 0
	}
	return frame
}

// MotorLevel maps a [0,1] motor strength onto the 16-bit rumble range.
func MotorLevel(v float64) uint16 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return math.MaxUint16
	}
	return uint16(math.Round(v * math.MaxUint16))
}
