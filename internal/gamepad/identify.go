package gamepad

import (
	"strings"

	"github.com/pkg/errors"
)

// HostShell identifies a constrained host environment that is known to
// misreport button indices for some families.
type HostShell int

const (
	ShellNone HostShell = iota
	ShellSteam
)

func (s HostShell) String() string {
	switch s {
	case ShellSteam:
		return "steam"
	default:
		return "none"
	}
}

// ParseShell parses a configured shell name. "auto" defers to DetectShell.
func ParseShell(name string, getenv func(string) string) (HostShell, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return DetectShell(getenv), nil
	case "none":
		return ShellNone, nil
	case "steam":
		return ShellSteam, nil
	}
	return ShellNone, errors.Errorf("unknown host shell %q", name)
}

// DetectShell reports ShellSteam when running under Steam Big Picture,
// Game Mode or a Steam-launched process.
func DetectShell(getenv func(string) string) HostShell {
	if getenv == nil {
		return ShellNone
	}
	for _, key := range []string{"SteamDeck", "SteamGamepadUI", "SteamAppId", "SteamClientLaunch"} {
		if v := getenv(key); v != "" && v != "0" {
			return ShellSteam
		}
	}
	return ShellNone
}

// IndexOverride layers extra index bindings onto a family's profile when
// running inside a given shell. An override index replaces the base binding
// there; bindings at other indices are kept.
type IndexOverride struct {
	Family  Family
	Shell   HostShell
	Buttons map[int]string
}

// Steam Input reports triggers as axes and shifts select/start down into the
// trigger slots for non-Xbox pads. The entries replace the trigger names at
// 6/7; select/start stay bound at 8/9 as well.
var shellOverrides = []IndexOverride{
	{Family: FamilyPlayStation, Shell: ShellSteam, Buttons: map[int]string{6: "Share", 7: "Options"}},
	{Family: FamilySwitchPro, Shell: ShellSteam, Buttons: map[int]string{6: "Minus", 7: "Plus"}},
	{Family: FamilyEightBitDo, Shell: ShellSteam, Buttons: map[int]string{6: "Select", 7: "Start"}},
}

// Identify resolves a raw device id to a family and profile. Matching is a
// case-insensitive substring test over Families() in priority order; the
// first family with a matching pattern wins. Unmatched ids resolve to the
// DirectInput profile.
func Identify(deviceID string, shell HostShell) (Family, *ControllerProfile) {
	p := match(strings.ToLower(deviceID))
	return p.Family, applyOverrides(p, shell)
}

func match(lowerID string) *ControllerProfile {
	if lowerID == "" {
		return directInputProfile
	}
	for _, p := range catalog {
		if p.matches(lowerID) {
			return p
		}
	}
	return directInputProfile
}

func applyOverrides(p *ControllerProfile, shell HostShell) *ControllerProfile {
	if shell == ShellNone {
		return p
	}
	extra := map[int]string{}
	for _, o := range shellOverrides {
		if o.Family != p.Family || o.Shell != shell {
			continue
		}
		for i, n := range o.Buttons {
			extra[i] = n
		}
	}
	if len(extra) == 0 {
		return p
	}
	return p.WithButtons(extra)
}
