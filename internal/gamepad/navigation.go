package gamepad

// Intent is an abstract navigation action.
type Intent int

const (
	IntentUp Intent = iota
	IntentDown
	IntentLeft
	IntentRight
	IntentConfirm
	IntentCancel
	IntentMenu
	IntentBack
	IntentLeftBumper
	IntentRightBumper
	IntentStickClick
	intentCount
)

var intentNames = [intentCount]string{
	"up", "down", "left", "right",
	"confirm", "cancel", "menu", "back",
	"leftBumper", "rightBumper", "stickClick",
}

func (i Intent) String() string {
	if i < 0 || i >= intentCount {
		return "unknown"
	}
	return intentNames[i]
}

// Intents lists every intent in declaration order.
func Intents() []Intent {
	out := make([]Intent, intentCount)
	for i := range out {
		out[i] = Intent(i)
	}
	return out
}

// DefaultDirectionalThreshold is the stick deflection that counts as a
// directional intent.
const DefaultDirectionalThreshold = 0.7

// NavigationIntentFrame is the set of intents active on one tick.
type NavigationIntentFrame struct {
	Up          bool `json:"up"`
	Down        bool `json:"down"`
	Left        bool `json:"left"`
	Right       bool `json:"right"`
	Confirm     bool `json:"confirm"`
	Cancel      bool `json:"cancel"`
	Menu        bool `json:"menu"`
	Back        bool `json:"back"`
	LeftBumper  bool `json:"leftBumper"`
	RightBumper bool `json:"rightBumper"`
	StickClick  bool `json:"stickClick"`
}

func (f *NavigationIntentFrame) field(i Intent) *bool {
	switch i {
	case IntentUp:
		return &f.Up
	case IntentDown:
		return &f.Down
	case IntentLeft:
		return &f.Left
	case IntentRight:
		return &f.Right
	case IntentConfirm:
		return &f.Confirm
	case IntentCancel:
		return &f.Cancel
	case IntentMenu:
		return &f.Menu
	case IntentBack:
		return &f.Back
	case IntentLeftBumper:
		return &f.LeftBumper
	case IntentRightBumper:
		return &f.RightBumper
	case IntentStickClick:
		return &f.StickClick
	}
	return nil
}

// Has reports whether intent i is set.
func (f NavigationIntentFrame) Has(i Intent) bool {
	p := f.field(i)
	return p != nil && *p
}

// Any reports whether at least one intent is set.
func (f NavigationIntentFrame) Any() bool {
	return f != NavigationIntentFrame{}
}

// Active returns the set intents in declaration order.
func (f NavigationIntentFrame) Active() []Intent {
	var out []Intent
	for _, i := range Intents() {
		if f.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// buttonIntents is the table every family must fill: one semantic button
// name per button-driven intent.
var buttonIntents = map[Family]map[Intent]string{
	FamilyXbox: {
		IntentConfirm:     "A",
		IntentCancel:      "B",
		IntentMenu:        "Menu",
		IntentBack:        "View",
		IntentLeftBumper:  "LB",
		IntentRightBumper: "RB",
		IntentStickClick:  "LS",
	},
	FamilyPlayStation: {
		IntentConfirm:     "Cross",
		IntentCancel:      "Circle",
		IntentMenu:        "Options",
		IntentBack:        "Share",
		IntentLeftBumper:  "L1",
		IntentRightBumper: "R1",
		IntentStickClick:  "L3",
	},
	FamilyEightBitDo: {
		IntentConfirm:     "A",
		IntentCancel:      "B",
		IntentMenu:        "Start",
		IntentBack:        "Select",
		IntentLeftBumper:  "L",
		IntentRightBumper: "R",
		IntentStickClick:  "L3",
	},
	FamilySwitchPro: {
		IntentConfirm:     "A",
		IntentCancel:      "B",
		IntentMenu:        "Plus",
		IntentBack:        "Minus",
		IntentLeftBumper:  "L",
		IntentRightBumper: "R",
		IntentStickClick:  "LStick",
	},
	FamilyDirectInput: {
		IntentConfirm:     "Button1",
		IntentCancel:      "Button2",
		IntentMenu:        "Button10",
		IntentBack:        "Button9",
		IntentLeftBumper:  "Button5",
		IntentRightBumper: "Button6",
		IntentStickClick:  "Button11",
	},
}

var directionalButtons = map[Intent]string{
	IntentUp:    DPadUp,
	IntentDown:  DPadDown,
	IntentLeft:  DPadLeft,
	IntentRight: DPadRight,
}

// ButtonFor returns the semantic button name that drives intent i for
// family f. Unknown families use the DirectInput row.
func ButtonFor(f Family, i Intent) string {
	if name, ok := directionalButtons[i]; ok {
		return name
	}
	row, ok := buttonIntents[f]
	if !ok {
		row = buttonIntents[FamilyDirectInput]
	}
	return row[i]
}

// mapIntents turns a sample into intents. Buttons and the d-pad fire on
// rising edges; the left stick fires on every tick it is deflected past
// threshold.
func mapIntents(f Family, s Sample, threshold float64) NavigationIntentFrame {
	var frame NavigationIntentFrame
	for _, i := range Intents() {
		*frame.field(i) = s.ButtonEdges[ButtonFor(f, i)]
	}
	stick := s.LeftStick
	frame.Up = frame.Up || stick.Y < -threshold
	frame.Down = frame.Down || stick.Y > threshold
	frame.Left = frame.Left || stick.X < -threshold
	frame.Right = frame.Right || stick.X > threshold
	return frame
}
