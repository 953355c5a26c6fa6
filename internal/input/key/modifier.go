package key

import "strings"

// Modifier is a set of modifiers in the bit order of the low nibble of a
// HID boot-report modifier byte: Ctrl, Shift, Alt, GUI.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCtrl  Modifier = 1 << 0
	ModShift Modifier = 1 << 1
	ModAlt   Modifier = 1 << 2 // Option on macOS
	ModGUI   Modifier = 1 << 3 // Command on macOS, Windows key elsewhere

	ModAll = ModCtrl | ModShift | ModAlt | ModGUI
)

// modifierOrder is the order used by String.
var modifierOrder = [...]struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModGUI, "GUI"},
}

// Has reports whether m shares any bit with mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// HasShift reports whether Shift is set.
func (m Modifier) HasShift() bool { return m.Has(ModShift) }

// With returns m plus mod.
func (m Modifier) With(mod Modifier) Modifier { return m | mod }

// Without returns m minus mod.
func (m Modifier) Without(mod Modifier) Modifier { return m &^ mod }

// IsEmpty reports whether no modifier is set.
func (m Modifier) IsEmpty() bool { return m == ModNone }

// Codes returns the left and right key codes of every modifier in m,
// in bit order.
func (m Modifier) Codes() []Code {
	var codes []Code
	for bit := 0; bit < 4; bit++ {
		if m.Has(1 << bit) {
			codes = append(codes, CodeControlLeft+Code(bit), CodeControlRight+Code(bit))
		}
	}
	return codes
}

// LeftCode returns the left-hand key of a single modifier, or CodeNone
// when m does not have exactly one bit set.
func (m Modifier) LeftCode() Code {
	if m == ModNone || m&(m-1) != 0 || m&^ModAll != 0 {
		return CodeNone
	}
	bit := 0
	for m>>bit != 1 {
		bit++
	}
	return CodeControlLeft + Code(bit)
}

// String returns names joined with "+", e.g. "Ctrl+Shift".
func (m Modifier) String() string {
	var b strings.Builder
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			if b.Len() > 0 {
				b.WriteByte('+')
			}
			b.WriteString(o.name)
		}
	}
	return b.String()
}

var modifierNames = map[string]Modifier{
	"ctrl": ModCtrl, "control": ModCtrl,
	"shift": ModShift,
	"alt":   ModAlt, "option": ModAlt, "opt": ModAlt,
	"gui": ModGUI, "cmd": ModGUI, "command": ModGUI, "meta": ModGUI, "win": ModGUI, "super": ModGUI,
}

// ModifierFromName returns the modifier for a case-insensitive name such
// as "ctrl" or "command", or ModNone.
func ModifierFromName(name string) Modifier {
	return modifierNames[strings.ToLower(strings.TrimSpace(name))]
}

// ModifiersFromNames combines names. On an unknown name it returns the
// modifiers so far and that name.
func ModifiersFromNames(names []string) (Modifier, string) {
	var m Modifier
	for _, n := range names {
		mod := ModifierFromName(n)
		if mod == ModNone {
			return m, n
		}
		m = m.With(mod)
	}
	return m, ""
}
