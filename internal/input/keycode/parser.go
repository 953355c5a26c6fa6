package keycode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/keypipe/internal/input/key"
)

// Parse errors
var (
	ErrEmptySpec        = errors.New("empty keycode specification")
	ErrInvalidSpec      = errors.New("invalid keycode specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in keycode specification")
	ErrUnknownLayer     = errors.New("unknown layer")
	ErrUnknownCustom    = errors.New("unknown custom key")
)

// Parser parses keymap spec strings into Actions.
// Name lookups are optional; without them only numeric arguments are accepted.
type Parser struct {
	// Layer resolves a layer name to its id.
	Layer func(name string) (LayerID, bool)

	// Custom resolves a named custom key within a family.
	Custom func(family Family, name string) (CustomID, bool)
}

// Parse parses spec using numeric layer and custom arguments only.
func Parse(spec string) (Action, error) {
	var p Parser
	return p.Parse(spec)
}

// MustParse parses a spec and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Action {
	a, err := Parse(spec)
	if err != nil {
		panic("invalid keycode specification: " + spec + ": " + err.Error())
	}
	return a
}

// wrapperMods maps wrapper macro names to (forced, cleared) modifiers.
var wrapperMods = map[string][2]key.Modifier{
	"S":       {key.ModShift, 0},
	"SHIFT":   {key.ModShift, 0},
	"US":      {0, key.ModShift},
	"UNSHIFT": {0, key.ModShift},
	"C":       {key.ModCtrl, 0},
	"CTRL":    {key.ModCtrl, 0},
	"UC":      {0, key.ModCtrl},
	"UNCTRL":  {0, key.ModCtrl},
	"A":       {key.ModAlt, 0},
	"ALT":     {key.ModAlt, 0},
	"UA":      {0, key.ModAlt},
	"UNALT":   {0, key.ModAlt},
	"G":       {key.ModGUI, 0},
	"GUI":     {key.ModGUI, 0},
	"UG":      {0, key.ModGUI},
	"UNGUI":   {0, key.ModGUI},
}

// Parse parses a spec string.
//
// Supported formats:
//   - Sentinels: "___", "_", "TRNS" (transparent), "XXX", "NO" (opaque)
//   - Keys: "TAB", "HID_KEY_TAB", "KC_TAB", "a"
//   - Wrappers: "S(TAB)", "US(APOSTROPHE)", "UG(C(S(TAB)))", "C()" (bare ctrl)
//   - Chords: "Ctrl+Shift+Tab"
//   - Layers: "MO(num)", "TG(2)", "LM(CONTROL_LEFT, tab)" (plain modifier)
//   - Custom: "DUAL(name)", "MAC(name)", "LUA(n)", "CH(5)", "OCT(-1)", "CUSTOM(0x105)"
//   - MIDI: "NOTE(C4)", "NOTE(C#4)", "MIDI(60)"
//   - Raw words: "0x00020000"
func (p *Parser) Parse(spec string) (Action, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Action{}, ErrEmptySpec
	}

	switch strings.ToUpper(spec) {
	case "___", "_", "TRNS", "TRANSPARENT":
		return Transparent(), nil
	case "XXX", "NO", "OPAQUE":
		return Opaque(), nil
	}

	if strings.HasPrefix(spec, "0x") || strings.HasPrefix(spec, "0X") {
		v, err := strconv.ParseUint(spec[2:], 16, 32)
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
		}
		return DecodeStrict(Word(v))
	}

	if open := strings.IndexByte(spec, '('); open >= 0 {
		if !strings.HasSuffix(spec, ")") {
			return Action{}, fmt.Errorf("%w: %q", ErrUnmatchedBracket, spec)
		}
		name := strings.ToUpper(strings.TrimSpace(spec[:open]))
		inner := spec[open+1 : len(spec)-1]
		if strings.Count(inner, "(") != strings.Count(inner, ")") {
			return Action{}, fmt.Errorf("%w: %q", ErrUnmatchedBracket, spec)
		}
		return p.parseMacro(name, inner)
	}
	if strings.ContainsAny(spec, ")") {
		return Action{}, fmt.Errorf("%w: %q", ErrUnmatchedBracket, spec)
	}

	if strings.Contains(spec, "+") && len(spec) > 1 {
		return parseChord(spec)
	}

	code, ok := key.CodeFromName(spec)
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, spec)
	}
	return Key(code), nil
}

// parseMacro parses NAME(inner) forms.
func (p *Parser) parseMacro(name, inner string) (Action, error) {
	inner = strings.TrimSpace(inner)

	if mods, ok := wrapperMods[name]; ok {
		base := Action{Kind: KindKey}
		if inner != "" {
			a, err := p.Parse(inner)
			if err != nil {
				return Action{}, err
			}
			if a.Kind != KindKey {
				return Action{}, fmt.Errorf("%w: %s() wraps non-key %q", ErrInvalidSpec, name, inner)
			}
			base = a
		}
		if mods[0] != 0 {
			return base.With(mods[0]), nil
		}
		return base.Without(mods[1]), nil
	}

	switch name {
	case "MO", "TG":
		layer, err := p.layerArg(inner)
		if err != nil {
			return Action{}, err
		}
		if name == "MO" {
			return Momentary(layer), nil
		}
		return Toggle(layer), nil
	case "LM":
		// Layer-modifier entries are plain modifiers in this firmware.
		parts := strings.SplitN(inner, ",", 2)
		return p.Parse(parts[0])
	case "DUAL":
		return p.customArg(FamilyDualRole, DualRoleBase, inner)
	case "MAC":
		return p.customArg(FamilyMacRemap, MacRemapBase, inner)
	case "LUA":
		return p.customArg(FamilyScript, ScriptBase, inner)
	case "CH":
		n, err := intArg(inner, 0, 15)
		if err != nil {
			return Action{}, err
		}
		return Channel(n), nil
	case "OCT":
		n, err := intArg(inner, -octaveZeroIndex, octaveZeroIndex-1)
		if err != nil {
			return Action{}, err
		}
		return Octave(n), nil
	case "CUSTOM":
		v, err := strconv.ParseUint(inner, 0, 32)
		if err != nil || CustomID(v) > maxCustomID {
			return Action{}, fmt.Errorf("%w: custom id %q", ErrInvalidSpec, inner)
		}
		return Custom(CustomID(v)), nil
	case "NOTE", "MIDI":
		note, err := ParseNote(inner)
		if err != nil {
			return Action{}, err
		}
		return Midi(note), nil
	default:
		return Action{}, fmt.Errorf("%w: unknown macro %q", ErrInvalidSpec, name)
	}
}

func (p *Parser) layerArg(arg string) (LayerID, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 || n > 255 {
			return 0, fmt.Errorf("%w: layer %d out of range", ErrInvalidSpec, n)
		}
		return LayerID(n), nil
	}
	if p.Layer != nil {
		if id, ok := p.Layer(arg); ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, arg)
}

func (p *Parser) customArg(family Family, base CustomID, arg string) (Action, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 || n > 255 {
			return Action{}, fmt.Errorf("%w: %s index %d out of range", ErrInvalidSpec, family, n)
		}
		return Custom(base + CustomID(n)), nil
	}
	if p.Custom != nil {
		if id, ok := p.Custom(family, arg); ok {
			return Custom(id), nil
		}
	}
	return Action{}, fmt.Errorf("%w: %s %q", ErrUnknownCustom, family, arg)
}

func intArg(arg string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSpec, arg)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %d out of range [%d, %d]", ErrInvalidSpec, n, lo, hi)
	}
	return n, nil
}

// parseChord parses "Ctrl+Shift+Tab" style notation.
func parseChord(spec string) (Action, error) {
	parts := strings.Split(spec, "+")
	var mods key.Modifier
	for _, part := range parts[:len(parts)-1] {
		mod := key.ModifierFromName(part)
		if mod == key.ModNone {
			return Action{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, part)
		}
		mods = mods.With(mod)
	}

	last := strings.TrimSpace(parts[len(parts)-1])
	code, ok := key.CodeFromName(last)
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, last)
	}
	return KeyWith(code, mods, 0), nil
}
