package key

import (
	"testing"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeNone, "NONE"},
		{CodeA, "A"},
		{Code1, "1"},
		{CodeTab, "TAB"},
		{CodeBracketLeft, "BRACKET_LEFT"},
		{CodeF12, "F12"},
		{CodeGUILeft, "GUI_LEFT"},
		{Code(0x99), "0x99"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("Code.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeFromName(t *testing.T) {
	tests := []struct {
		name   string
		want   Code
		wantOK bool
	}{
		{"tab", CodeTab, true},
		{"TAB", CodeTab, true},
		{"HID_KEY_TAB", CodeTab, true},
		{"KC_TAB", CodeTab, true},
		{"bracket_left", CodeBracketLeft, true},
		{"bracketleft", CodeBracketLeft, true},
		{"lbrc", CodeBracketLeft, true},
		{"esc", CodeEscape, true},
		{"f4", CodeF4, true},
		{"lgui", CodeGUILeft, true},
		{"ALT_LEFT", CodeAltLeft, true},
		{"  space ", CodeSpace, true},
		{"1", Code1, true},
		{"", CodeNone, false},
		{"hyper", CodeNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CodeFromName(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("CodeFromName(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("CodeFromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCodeNamesRoundTrip(t *testing.T) {
	for code, name := range codeNames {
		got, ok := CodeFromName(name)
		if !ok || got != code {
			t.Errorf("CodeFromName(%q) = %v, %v; want %v", name, got, ok, code)
		}
	}
}

func TestCodeModifier(t *testing.T) {
	tests := []struct {
		code Code
		want Modifier
	}{
		{CodeControlLeft, ModCtrl},
		{CodeControlRight, ModCtrl},
		{CodeShiftLeft, ModShift},
		{CodeShiftRight, ModShift},
		{CodeAltLeft, ModAlt},
		{CodeAltRight, ModAlt},
		{CodeGUILeft, ModGUI},
		{CodeGUIRight, ModGUI},
		{CodeTab, ModNone},
		{CodeA, ModNone},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if got := tt.code.Modifier(); got != tt.want {
				t.Errorf("Code.Modifier() = %v, want %v", got, tt.want)
			}
			if got := tt.code.IsModifierKey(); got != (tt.want != ModNone) {
				t.Errorf("Code.IsModifierKey() = %v", got)
			}
		})
	}
}

func TestCodeClassification(t *testing.T) {
	if !CodeF1.IsFunctionKey() || !CodeF12.IsFunctionKey() {
		t.Error("F1 and F12 should be function keys")
	}
	if CodeTab.IsFunctionKey() {
		t.Error("Tab should not be a function key")
	}
	if !CodeArrowUp.IsArrowKey() || !CodeArrowRight.IsArrowKey() {
		t.Error("arrow keys not classified")
	}
	if CodeHome.IsArrowKey() {
		t.Error("Home should not be an arrow key")
	}
}
