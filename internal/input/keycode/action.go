package keycode

import (
	"fmt"
	"strings"

	"github.com/dshills/keypipe/internal/input/key"
)

// Kind identifies which Action variant is active.
type Kind uint8

const (
	// KindTransparent defers to the next lower active layer.
	KindTransparent Kind = iota

	// KindOpaque stops layer fallthrough with no action.
	KindOpaque

	// KindKey is a standard key with modifier overrides.
	KindKey

	// KindLayer is a momentary or toggle layer operation.
	KindLayer

	// KindCustom is dispatched to a custom keycode handler.
	KindCustom

	// KindMidi is a MIDI note.
	KindMidi
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindTransparent:
		return "transparent"
	case KindOpaque:
		return "opaque"
	case KindKey:
		return "key"
	case KindLayer:
		return "layer"
	case KindCustom:
		return "custom"
	case KindMidi:
		return "midi"
	default:
		return "unknown"
	}
}

// LayerID identifies a layer within one profile. Layer 0 is the base layer.
type LayerID uint8

// BaseLayer is the always-active bottom layer.
const BaseLayer LayerID = 0

// LayerOp distinguishes the two layer activation styles.
type LayerOp uint8

const (
	// LayerMomentary is active only while the triggering key is held.
	LayerMomentary LayerOp = 1

	// LayerToggle flips layer membership on each press.
	LayerToggle LayerOp = 2
)

// String returns the layer operation macro name.
func (op LayerOp) String() string {
	switch op {
	case LayerMomentary:
		return "MO"
	case LayerToggle:
		return "TG"
	default:
		return "LAYER?"
	}
}

// Action is the decoded meaning of a keymap table entry.
// Only the fields belonging to Kind are meaningful.
type Action struct {
	Kind Kind

	// Key fields
	Code     key.Code
	Mods     key.Modifier
	AntiMods key.Modifier

	// Layer fields
	Op    LayerOp
	Layer LayerID

	// Custom fields
	Custom CustomID

	// Midi fields
	Note uint8
}

// Transparent returns the transparent action.
func Transparent() Action {
	return Action{Kind: KindTransparent}
}

// Opaque returns the opaque (no action) action.
func Opaque() Action {
	return Action{Kind: KindOpaque}
}

// NoAction is the result of a resolution that produced nothing to emit.
var NoAction = Opaque()

// Key returns a plain key action.
func Key(code key.Code) Action {
	return Action{Kind: KindKey, Code: code}
}

// KeyWith returns a key action with forced and anti modifiers.
// A modifier present in both sets is treated as forced off.
func KeyWith(code key.Code, mods, anti key.Modifier) Action {
	return Action{Kind: KindKey, Code: code, Mods: mods &^ anti, AntiMods: anti}
}

// Momentary returns a momentary layer action.
func Momentary(layer LayerID) Action {
	return Action{Kind: KindLayer, Op: LayerMomentary, Layer: layer}
}

// Toggle returns a toggle layer action.
func Toggle(layer LayerID) Action {
	return Action{Kind: KindLayer, Op: LayerToggle, Layer: layer}
}

// Custom returns a custom keycode action.
func Custom(id CustomID) Action {
	return Action{Kind: KindCustom, Custom: id & maxCustomID}
}

// Midi returns a MIDI note action.
func Midi(note uint8) Action {
	return Action{Kind: KindMidi, Note: note & 0x7f}
}

// With forces the given modifiers on for a key action.
// Non-key actions are returned unchanged.
func (a Action) With(mods key.Modifier) Action {
	if a.Kind != KindKey {
		return a
	}
	a.Mods |= mods
	a.AntiMods &^= mods
	return a
}

// Without forces the given modifiers off for a key action.
// Non-key actions are returned unchanged.
func (a Action) Without(mods key.Modifier) Action {
	if a.Kind != KindKey {
		return a
	}
	a.AntiMods |= mods
	a.Mods &^= mods
	return a
}

// Shift returns a with shift forced on.
func Shift(a Action) Action { return a.With(key.ModShift) }

// Unshift returns a with shift forced off.
func Unshift(a Action) Action { return a.Without(key.ModShift) }

// Ctrl returns a with control forced on.
func Ctrl(a Action) Action { return a.With(key.ModCtrl) }

// Alt returns a with alt forced on.
func Alt(a Action) Action { return a.With(key.ModAlt) }

// GUI returns a with gui forced on.
func GUI(a Action) Action { return a.With(key.ModGUI) }

// Ungui returns a with gui forced off.
func Ungui(a Action) Action { return a.Without(key.ModGUI) }

// IsTransparent reports whether a defers to lower layers.
func (a Action) IsTransparent() bool {
	return a.Kind == KindTransparent
}

// IsNone reports whether a emits nothing (opaque or transparent).
func (a Action) IsNone() bool {
	return a.Kind == KindOpaque || a.Kind == KindTransparent
}

// Family returns the custom handler family for custom and MIDI actions.
// Other kinds return FamilyNone.
func (a Action) Family() Family {
	switch a.Kind {
	case KindCustom:
		return a.Custom.Family()
	case KindMidi:
		return FamilyMIDINote
	default:
		return FamilyNone
	}
}

// Word encodes a into its table representation.
func (a Action) Word() Word {
	return Encode(a)
}

// String formats a as a spec string with numeric layer ids.
func (a Action) String() string {
	return Format(a, nil)
}

// Format formats a as a spec string. layerName, if non-nil, names layers;
// unknown layers fall back to their number.
func Format(a Action, layerName func(LayerID) (string, bool)) string {
	switch a.Kind {
	case KindTransparent:
		return "___"
	case KindOpaque:
		return "XXX"
	case KindKey:
		return formatKey(a)
	case KindLayer:
		name := fmt.Sprintf("%d", a.Layer)
		if layerName != nil {
			if n, ok := layerName(a.Layer); ok {
				name = n
			}
		}
		return fmt.Sprintf("%s(%s)", a.Op, name)
	case KindCustom:
		return a.Custom.String()
	case KindMidi:
		return fmt.Sprintf("NOTE(%s)", NoteName(a.Note))
	default:
		return "INVALID"
	}
}

// modWrappers lists wrapper macros in nesting order, outermost first.
var modWrappers = []struct {
	mod      key.Modifier
	on, anti string
}{
	{key.ModGUI, "G", "UG"},
	{key.ModAlt, "A", "UA"},
	{key.ModCtrl, "C", "UC"},
	{key.ModShift, "S", "US"},
}

func formatKey(a Action) string {
	inner := a.Code.String()
	if a.Code == key.CodeNone {
		inner = ""
	}

	var b strings.Builder
	closing := 0
	for _, w := range modWrappers {
		switch {
		case a.Mods.Has(w.mod):
			b.WriteString(w.on + "(")
			closing++
		case a.AntiMods.Has(w.mod):
			b.WriteString(w.anti + "(")
			closing++
		}
	}
	b.WriteString(inner)
	b.WriteString(strings.Repeat(")", closing))
	return b.String()
}
