package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/keymap"
)

// QMKMeta is the header of a QMK configurator keymap.
type QMKMeta struct {
	Keyboard string
	Keymap   string
	Layout   string
}

// qmkWrapper matches QMK modifier wrappers such as LSFT( and RCTL(.
var qmkWrapper = regexp.MustCompile(`\b[LR]?(SFT|CTL|ALT|GUI|CMD|WIN|OPT)\(`)

var qmkWrapperNames = map[string]string{
	"SFT": "S(", "CTL": "C(", "ALT": "A(", "OPT": "A(",
	"GUI": "G(", "CMD": "G(", "WIN": "G(",
}

// fromQMK rewrites a QMK keycode as a keycode spec.
func fromQMK(code string) string {
	code = strings.TrimSpace(code)
	switch strings.ToUpper(code) {
	case "KC_TRNS", "KC_TRANSPARENT", "_______":
		return "___"
	case "KC_NO", "XXXXXXX":
		return "XXX"
	}
	return qmkWrapper.ReplaceAllStringFunc(code, func(m string) string {
		sub := qmkWrapper.FindStringSubmatch(m)
		return qmkWrapperNames[sub[1]]
	})
}

// ImportQMK converts a QMK configurator keymap into a single-pipe profile.
// Layers are named "base", "layer1", "layer2", ... Keycodes with no
// equivalent become XXX and are returned as warnings.
func ImportQMK(source string, data []byte) (*Profile, []string, error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, &ParseError{Path: source, Message: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	layersJSON := root.Get("layers")
	if !layersJSON.IsArray() {
		return nil, nil, fmt.Errorf("%w: %s has no layers array", ErrNotQMK, source)
	}

	p := NewProfile()
	p.Source = source
	p.Name = root.Get("keymap").String()
	if p.Name == "" {
		p.Name = "qmk"
	}
	p.Description = strings.TrimSpace(root.Get("keyboard").String() + " " + root.Get("layout").String())

	pipe := PipeConfig{Name: "main", ID: 1, Layers: make(map[string][]string)}
	var warnings []string
	var parser keycode.Parser

	for i, layerJSON := range layersJSON.Array() {
		name := "base"
		if i > 0 {
			name = fmt.Sprintf("layer%d", i)
		}
		p.Layers = append(p.Layers, name)

		var specs []string
		for pos, kc := range layerJSON.Array() {
			spec := fromQMK(kc.String())
			if _, err := parser.Parse(spec); err != nil {
				warnings = append(warnings, fmt.Sprintf("layer %d position %d: %s has no equivalent", i, pos, kc.String()))
				spec = "XXX"
			}
			specs = append(specs, spec)
		}
		if len(specs) > pipe.Positions {
			pipe.Positions = len(specs)
		}
		pipe.Layers[name] = specs
	}
	if len(p.Layers) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no layers", ErrNotQMK, source)
	}
	p.Pipes = []PipeConfig{pipe}
	return p, warnings, nil
}

// qmkNames holds QMK names that differ from KC_<name>.
var qmkNames = map[key.Code]string{
	key.CodeBracketLeft:  "KC_LBRC",
	key.CodeBracketRight: "KC_RBRC",
	key.CodeBackslash:    "KC_BSLS",
	key.CodeSemicolon:    "KC_SCLN",
	key.CodeApostrophe:   "KC_QUOT",
	key.CodeGrave:        "KC_GRV",
	key.CodeComma:        "KC_COMM",
	key.CodePeriod:       "KC_DOT",
	key.CodeSlash:        "KC_SLSH",
	key.CodeCapsLock:     "KC_CAPS",
	key.CodePrintScreen:  "KC_PSCR",
	key.CodeScrollLock:   "KC_SCRL",
	key.CodePageUp:       "KC_PGUP",
	key.CodePageDown:     "KC_PGDN",
	key.CodeArrowRight:   "KC_RGHT",
	key.CodeArrowLeft:    "KC_LEFT",
	key.CodeArrowDown:    "KC_DOWN",
	key.CodeArrowUp:      "KC_UP",
	key.CodeNumLock:      "KC_NUM",
	key.CodeControlLeft:  "KC_LCTL",
	key.CodeShiftLeft:    "KC_LSFT",
	key.CodeAltLeft:      "KC_LALT",
	key.CodeGUILeft:      "KC_LGUI",
	key.CodeControlRight: "KC_RCTL",
	key.CodeShiftRight:   "KC_RSFT",
	key.CodeAltRight:     "KC_RALT",
	key.CodeGUIRight:     "KC_RGUI",
}

// qmkModWrappers lists QMK wrappers outermost first.
var qmkModWrappers = []struct {
	mod  key.Modifier
	name string
}{
	{key.ModGUI, "LGUI"},
	{key.ModAlt, "LALT"},
	{key.ModCtrl, "LCTL"},
	{key.ModShift, "LSFT"},
}

// toQMK formats a as a QMK keycode. ok is false when a is not fully
// representable; the returned code is then the closest approximation.
func toQMK(a keycode.Action) (code string, ok bool) {
	switch a.Kind {
	case keycode.KindTransparent:
		return "KC_TRNS", true
	case keycode.KindOpaque:
		return "KC_NO", true
	case keycode.KindLayer:
		return fmt.Sprintf("%s(%d)", a.Op, a.Layer), true
	case keycode.KindKey:
	default:
		return "KC_NO", false
	}

	mods := a.Mods
	base := qmkNames[a.Code]
	if base == "" {
		base = "KC_" + a.Code.String()
	}
	if a.Code == key.CodeNone {
		// A bare chord of one modifier is that modifier key.
		left := mods.LeftCode()
		if left == key.CodeNone {
			return "KC_NO", false
		}
		base, mods = qmkNames[left], 0
	}

	var b strings.Builder
	closing := 0
	for _, w := range qmkModWrappers {
		if mods.Has(w.mod) {
			b.WriteString(w.name + "(")
			closing++
		}
	}
	b.WriteString(base)
	b.WriteString(strings.Repeat(")", closing))
	return b.String(), a.AntiMods == 0
}

// ExportQMK writes the keymap bound to pipe as QMK configurator JSON.
// Actions QMK cannot express are written as their closest keycode and
// reported as warnings.
func ExportQMK(kb *Keyboard, pipe keymap.PipeID, meta QMKMeta) ([]byte, []string, error) {
	km := kb.Registry.Get(pipe)
	if km == nil {
		return nil, nil, fmt.Errorf("%w: %d", keymap.ErrUnknownPipe, pipe)
	}
	if meta.Keymap == "" {
		meta.Keymap = kb.Profile.Name
	}

	out := []byte(`{"version":1}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, value)
		}
	}
	set("keyboard", meta.Keyboard)
	set("keymap", meta.Keymap)
	set("layout", meta.Layout)
	set("layers", []string{})

	var warnings []string
	for l := 0; l < kb.Layers.Len(); l++ {
		id := keycode.LayerID(l)
		row := make([]string, km.Positions())
		for pos := range row {
			a := km.Action(id, pos)
			code, ok := toQMK(a)
			if !ok {
				name, _ := kb.LayerName(id)
				warnings = append(warnings, fmt.Sprintf("layer %s position %d: %s exported as %s", name, pos, kb.Format(a), code))
			}
			row[pos] = code
		}
		set("layers.-1", row)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("encoding QMK keymap: %w", err)
	}
	return out, warnings, nil
}
