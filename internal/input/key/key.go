package key

import (
	"fmt"
	"strings"
)

// Code is a USB HID keyboard usage (usage page 0x07).
type Code uint8

const (
	// CodeNone represents no key.
	CodeNone Code = 0x00

	// Letters
	CodeA Code = 0x04
	CodeB Code = 0x05
	CodeC Code = 0x06
	CodeD Code = 0x07
	CodeE Code = 0x08
	CodeF Code = 0x09
	CodeG Code = 0x0a
	CodeH Code = 0x0b
	CodeI Code = 0x0c
	CodeJ Code = 0x0d
	CodeK Code = 0x0e
	CodeL Code = 0x0f
	CodeM Code = 0x10
	CodeN Code = 0x11
	CodeO Code = 0x12
	CodeP Code = 0x13
	CodeQ Code = 0x14
	CodeR Code = 0x15
	CodeS Code = 0x16
	CodeT Code = 0x17
	CodeU Code = 0x18
	CodeV Code = 0x19
	CodeW Code = 0x1a
	CodeX Code = 0x1b
	CodeY Code = 0x1c
	CodeZ Code = 0x1d

	// Digits
	Code1 Code = 0x1e
	Code2 Code = 0x1f
	Code3 Code = 0x20
	Code4 Code = 0x21
	Code5 Code = 0x22
	Code6 Code = 0x23
	Code7 Code = 0x24
	Code8 Code = 0x25
	Code9 Code = 0x26
	Code0 Code = 0x27

	// Control and punctuation
	CodeEnter        Code = 0x28
	CodeEscape       Code = 0x29
	CodeBackspace    Code = 0x2a
	CodeTab          Code = 0x2b
	CodeSpace        Code = 0x2c
	CodeMinus        Code = 0x2d
	CodeEqual        Code = 0x2e
	CodeBracketLeft  Code = 0x2f
	CodeBracketRight Code = 0x30
	CodeBackslash    Code = 0x31
	CodeSemicolon    Code = 0x33
	CodeApostrophe   Code = 0x34
	CodeGrave        Code = 0x35
	CodeComma        Code = 0x36
	CodePeriod       Code = 0x37
	CodeSlash        Code = 0x38
	CodeCapsLock     Code = 0x39

	// Function keys
	CodeF1  Code = 0x3a
	CodeF2  Code = 0x3b
	CodeF3  Code = 0x3c
	CodeF4  Code = 0x3d
	CodeF5  Code = 0x3e
	CodeF6  Code = 0x3f
	CodeF7  Code = 0x40
	CodeF8  Code = 0x41
	CodeF9  Code = 0x42
	CodeF10 Code = 0x43
	CodeF11 Code = 0x44
	CodeF12 Code = 0x45

	// Navigation
	CodePrintScreen Code = 0x46
	CodeScrollLock  Code = 0x47
	CodePause       Code = 0x48
	CodeInsert      Code = 0x49
	CodeHome        Code = 0x4a
	CodePageUp      Code = 0x4b
	CodeDelete      Code = 0x4c
	CodeEnd         Code = 0x4d
	CodePageDown    Code = 0x4e
	CodeArrowRight  Code = 0x4f
	CodeArrowLeft   Code = 0x50
	CodeArrowDown   Code = 0x51
	CodeArrowUp     Code = 0x52
	CodeNumLock     Code = 0x53

	// Modifier keys
	CodeControlLeft  Code = 0xe0
	CodeShiftLeft    Code = 0xe1
	CodeAltLeft      Code = 0xe2
	CodeGUILeft      Code = 0xe3
	CodeControlRight Code = 0xe4
	CodeShiftRight   Code = 0xe5
	CodeAltRight     Code = 0xe6
	CodeGUIRight     Code = 0xe7
)

// codeNames holds the canonical display name for each known code.
var codeNames = map[Code]string{
	CodeNone: "NONE",
	CodeA:    "A", CodeB: "B", CodeC: "C", CodeD: "D", CodeE: "E", CodeF: "F",
	CodeG: "G", CodeH: "H", CodeI: "I", CodeJ: "J", CodeK: "K", CodeL: "L",
	CodeM: "M", CodeN: "N", CodeO: "O", CodeP: "P", CodeQ: "Q", CodeR: "R",
	CodeS: "S", CodeT: "T", CodeU: "U", CodeV: "V", CodeW: "W", CodeX: "X",
	CodeY: "Y", CodeZ: "Z",
	Code1: "1", Code2: "2", Code3: "3", Code4: "4", Code5: "5",
	Code6: "6", Code7: "7", Code8: "8", Code9: "9", Code0: "0",
	CodeEnter:        "ENTER",
	CodeEscape:       "ESCAPE",
	CodeBackspace:    "BACKSPACE",
	CodeTab:          "TAB",
	CodeSpace:        "SPACE",
	CodeMinus:        "MINUS",
	CodeEqual:        "EQUAL",
	CodeBracketLeft:  "BRACKET_LEFT",
	CodeBracketRight: "BRACKET_RIGHT",
	CodeBackslash:    "BACKSLASH",
	CodeSemicolon:    "SEMICOLON",
	CodeApostrophe:   "APOSTROPHE",
	CodeGrave:        "GRAVE",
	CodeComma:        "COMMA",
	CodePeriod:       "PERIOD",
	CodeSlash:        "SLASH",
	CodeCapsLock:     "CAPS_LOCK",
	CodeF1:           "F1", CodeF2: "F2", CodeF3: "F3", CodeF4: "F4",
	CodeF5: "F5", CodeF6: "F6", CodeF7: "F7", CodeF8: "F8",
	CodeF9: "F9", CodeF10: "F10", CodeF11: "F11", CodeF12: "F12",
	CodePrintScreen:  "PRINT_SCREEN",
	CodeScrollLock:   "SCROLL_LOCK",
	CodePause:        "PAUSE",
	CodeInsert:       "INSERT",
	CodeHome:         "HOME",
	CodePageUp:       "PAGE_UP",
	CodeDelete:       "DELETE",
	CodeEnd:          "END",
	CodePageDown:     "PAGE_DOWN",
	CodeArrowRight:   "ARROW_RIGHT",
	CodeArrowLeft:    "ARROW_LEFT",
	CodeArrowDown:    "ARROW_DOWN",
	CodeArrowUp:      "ARROW_UP",
	CodeNumLock:      "NUM_LOCK",
	CodeControlLeft:  "CONTROL_LEFT",
	CodeShiftLeft:    "SHIFT_LEFT",
	CodeAltLeft:      "ALT_LEFT",
	CodeGUILeft:      "GUI_LEFT",
	CodeControlRight: "CONTROL_RIGHT",
	CodeShiftRight:   "SHIFT_RIGHT",
	CodeAltRight:     "ALT_RIGHT",
	CodeGUIRight:     "GUI_RIGHT",
}

// codeAliases maps additional lowercase names to codes.
var codeAliases = map[string]Code{
	"esc":      CodeEscape,
	"return":   CodeEnter,
	"cr":       CodeEnter,
	"bs":       CodeBackspace,
	"del":      CodeDelete,
	"ins":      CodeInsert,
	"pgup":     CodePageUp,
	"pgdn":     CodePageDown,
	"up":       CodeArrowUp,
	"down":     CodeArrowDown,
	"left":     CodeArrowLeft,
	"right":    CodeArrowRight,
	"lbracket": CodeBracketLeft,
	"rbracket": CodeBracketRight,
	"quote":    CodeApostrophe,
	"backtick": CodeGrave,
	"lctrl":    CodeControlLeft,
	"lctl":     CodeControlLeft,
	"rctrl":    CodeControlRight,
	"lshift":   CodeShiftLeft,
	"lsft":     CodeShiftLeft,
	"rshift":   CodeShiftRight,
	"lalt":     CodeAltLeft,
	"ralt":     CodeAltRight,
	"lgui":     CodeGUILeft,
	"rgui":     CodeGUIRight,
	"lcmd":     CodeGUILeft,
	"rcmd":     CodeGUIRight,
	"ent":      CodeEnter,
	"bspc":     CodeBackspace,
	"spc":      CodeSpace,
	"mins":     CodeMinus,
	"eql":      CodeEqual,
	"bsls":     CodeBackslash,
	"scln":     CodeSemicolon,
	"quot":     CodeApostrophe,
	"grv":      CodeGrave,
	"comm":     CodeComma,
	"dot":      CodePeriod,
	"slsh":     CodeSlash,
	"lbrc":     CodeBracketLeft,
	"rbrc":     CodeBracketRight,
	"capslock": CodeCapsLock,
	"caps":     CodeCapsLock,
	"pscr":     CodePrintScreen,
	"scrl":     CodeScrollLock,
	"pause":    CodePause,
	"rght":     CodeArrowRight,
	"num":      CodeNumLock,
	"rctl":     CodeControlRight,
	"rsft":     CodeShiftRight,
}

// nameMap maps lowercase names to codes. Built from codeNames and codeAliases.
var nameMap map[string]Code

func init() {
	nameMap = make(map[string]Code, len(codeNames)+len(codeAliases))
	for code, name := range codeNames {
		nameMap[strings.ToLower(name)] = code
		// Also accept names without underscores ("bracketleft")
		nameMap[strings.ReplaceAll(strings.ToLower(name), "_", "")] = code
	}
	for alias, code := range codeAliases {
		nameMap[alias] = code
	}
}

// String returns the canonical name for the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(c))
}

// IsModifierKey returns true for the eight modifier usages (0xE0-0xE7).
func (c Code) IsModifierKey() bool {
	return c >= CodeControlLeft && c <= CodeGUIRight
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (c Code) IsFunctionKey() bool {
	return c >= CodeF1 && c <= CodeF12
}

// IsArrowKey returns true if this is an arrow key.
func (c Code) IsArrowKey() bool {
	return c >= CodeArrowRight && c <= CodeArrowUp
}

// Modifier returns the modifier bit asserted by a modifier key.
// Returns ModNone for non-modifier codes.
func (c Code) Modifier() Modifier {
	if !c.IsModifierKey() {
		return ModNone
	}
	// Left and right variants share a bit: E0/E4 ctrl, E1/E5 shift, ...
	return Modifier(1 << ((uint8(c) - uint8(CodeControlLeft)) % 4))
}

// CodeFromName returns the Code for a given name (case-insensitive).
// HID_KEY_ and KC_ prefixes are accepted. Returns false if not recognized.
func CodeFromName(name string) (Code, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "hid_key_")
	name = strings.TrimPrefix(name, "kc_")
	if name == "" {
		return CodeNone, false
	}
	c, ok := nameMap[name]
	return c, ok
}
