package hid

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func lastReport(t *testing.T, buf *bytes.Buffer) Report {
	t.Helper()
	b := buf.Bytes()
	if len(b) < ReportSize || len(b)%ReportSize != 0 {
		t.Fatalf("buffer holds %d bytes", len(b))
	}
	var r Report
	copy(r[:], b[len(b)-ReportSize:])
	return r
}

func TestKeyboardPlainKey(t *testing.T) {
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, nil)

	kb.Register(key.CodeA, 0, 0)
	if got := lastReport(t, &buf); got != (Report{0, 0, 0x04}) {
		t.Errorf("report = %v", got)
	}

	kb.Unregister(key.CodeA)
	if got := lastReport(t, &buf); got != (Report{}) {
		t.Errorf("report after release = %v", got)
	}
	if kb.Reports() != 2 {
		t.Errorf("Reports() = %d, want 2", kb.Reports())
	}
}

func TestKeyboardModifiers(t *testing.T) {
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, nil)

	kb.Register(key.CodeShiftRight, 0, 0)
	if !kb.IsModifierHeld(key.CodeShiftRight) || kb.IsModifierHeld(key.CodeShiftLeft) {
		t.Error("only right shift should be held")
	}
	if got := lastReport(t, &buf).Modifiers(); got != 0x20 {
		t.Errorf("modifiers = %#x, want 0x20", got)
	}

	kb.Register(key.CodeTab, key.ModCtrl, 0)
	if got := lastReport(t, &buf).Modifiers(); got != 0x21 {
		t.Errorf("modifiers = %#x, want 0x21", got)
	}
	if kb.IsModifierHeld(key.CodeControlLeft) {
		t.Error("forced modifiers should not count as held keys")
	}
}

func TestKeyboardAntiModifiers(t *testing.T) {
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, nil)

	kb.Register(key.CodeGUILeft, 0, 0)
	kb.Register(key.CodeTab, key.ModCtrl|key.ModShift, key.ModGUI)

	r := lastReport(t, &buf)
	if r.Modifiers() != 0x03 {
		t.Errorf("modifiers = %#x, want ctrl+shift without gui", r.Modifiers())
	}

	kb.Unregister(key.CodeTab)
	if got := lastReport(t, &buf).Modifiers(); got != 0x08 {
		t.Errorf("gui should return after release, modifiers = %#x", got)
	}
}

func TestKeyboardDuplicateUnregister(t *testing.T) {
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, nil)

	kb.Register(key.CodeA, 0, 0)
	kb.Unregister(key.CodeA)
	n := buf.Len()

	kb.Unregister(key.CodeA)
	kb.Unregister(key.CodeGUILeft)
	if buf.Len() != n {
		t.Error("duplicate unregister should not write a report")
	}
}

func TestKeyboardRefcount(t *testing.T) {
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, nil)

	kb.Register(key.CodeShiftLeft, 0, 0)
	kb.Register(key.CodeShiftLeft, 0, 0)
	kb.Unregister(key.CodeShiftLeft)
	if !kb.IsModifierHeld(key.CodeShiftLeft) {
		t.Error("shift registered twice should survive one unregister")
	}
	kb.Unregister(key.CodeShiftLeft)
	if kb.IsModifierHeld(key.CodeShiftLeft) {
		t.Error("shift should be released")
	}
}

func TestKeyboardSameCodeChords(t *testing.T) {
	type reg struct {
		code       key.Code
		mods, anti key.Modifier
	}
	tests := []struct {
		name string
		regs []reg
		// mods after all registrations, then after each unregister
		mods []byte
		keys int
	}{
		{
			name: "two bare chords",
			regs: []reg{{key.CodeNone, key.ModCtrl, 0}, {key.CodeNone, key.ModShift, 0}},
			mods: []byte{0x03, 0x01, 0x00},
		},
		{
			name: "shifted and plain tab",
			regs: []reg{{key.CodeTab, key.ModShift, 0}, {key.CodeTab, 0, 0}},
			mods: []byte{0x02, 0x02, 0x00},
			keys: 1,
		},
		{
			name: "plain then shifted tab",
			regs: []reg{{key.CodeTab, 0, 0}, {key.CodeTab, key.ModShift, 0}},
			mods: []byte{0x02, 0x00, 0x00},
			keys: 1,
		},
		{
			name: "anti-modifier follows its registration",
			regs: []reg{{key.CodeGUILeft, 0, 0}, {key.CodeTab, 0, 0}, {key.CodeTab, key.ModShift, key.ModGUI}},
			mods: []byte{0x02, 0x08, 0x08},
			keys: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			kb := NewKeyboard(&buf, nil)
			for _, r := range tt.regs {
				kb.Register(r.code, r.mods, r.anti)
			}
			if got := kb.Report().Modifiers(); got != tt.mods[0] {
				t.Errorf("modifiers = %#x, want %#x", got, tt.mods[0])
			}
			if got := len(kb.Report().Keys()); got != tt.keys {
				t.Errorf("keys = %d, want %d", got, tt.keys)
			}

			code := tt.regs[len(tt.regs)-1].code
			for i, want := range tt.mods[1:] {
				kb.Unregister(code)
				if got := kb.Report().Modifiers(); got != want {
					t.Errorf("after unregister %d: modifiers = %#x, want %#x", i+1, got, want)
				}
			}
		})
	}
}

func TestKeyboardRollover(t *testing.T) {
	base, hook := test.NewNullLogger()
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, logging.FromLogrus(base))

	codes := []key.Code{key.CodeA, key.CodeB, key.CodeC, key.CodeD, key.CodeE, key.CodeF, key.CodeG}
	for _, c := range codes {
		kb.Register(c, 0, 0)
	}

	r := lastReport(t, &buf)
	if len(r.Keys()) != MaxKeys {
		t.Errorf("Keys() = %v", r.Keys())
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatal("rollover should log a warning")
	}
	if err, _ := entry.Data[logrus.ErrorKey].(error); !errors.Is(err, ErrRollover) {
		t.Errorf("logged error = %v", entry.Data[logrus.ErrorKey])
	}

	// The dropped key was never registered.
	n := buf.Len()
	kb.Unregister(key.CodeG)
	if buf.Len() != n {
		t.Error("unregistering a dropped key should be a no-op")
	}
}

func TestKeyboardBareChord(t *testing.T) {
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, nil)

	kb.Register(key.CodeNone, key.ModCtrl, 0)
	r := lastReport(t, &buf)
	if r.Modifiers() != 0x01 || len(r.Keys()) != 0 {
		t.Errorf("report = %v", r)
	}
	kb.Unregister(key.CodeNone)
	if lastReport(t, &buf) != (Report{}) {
		t.Error("chord should release")
	}
}

func TestKeyboardReset(t *testing.T) {
	var buf bytes.Buffer
	kb := NewKeyboard(&buf, nil)

	kb.Register(key.CodeAltLeft, 0, 0)
	kb.Register(key.CodeX, 0, 0)
	kb.Reset()

	if lastReport(t, &buf) != (Report{}) {
		t.Error("Reset should write an empty report")
	}
	if kb.IsModifierHeld(key.CodeAltLeft) {
		t.Error("alt should be released after Reset")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Register(key.CodeGUILeft, 0, 0)
	r.Register(key.CodeTab, key.ModShift, key.ModGUI)
	r.Unregister(key.CodeTab)

	if !r.IsModifierHeld(key.CodeGUILeft) {
		t.Error("gui should be held")
	}
	if r.Held(key.CodeTab) {
		t.Error("tab should be released")
	}
	if r.Count(OpRegister, key.CodeTab) != 1 || r.Count(OpUnregister, key.CodeTab) != 1 {
		t.Errorf("calls = %v", r.Calls)
	}
	want := "register GUI_LEFT\nregister TAB +Shift -GUI\nunregister TAB"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	var zero Recorder
	zero.Register(key.CodeA, 0, 0)
	if !zero.Held(key.CodeA) {
		t.Error("zero Recorder should track registrations")
	}

	var buf bytes.Buffer
	r2 := NewRecorder()
	r2.Next = NewKeyboard(&buf, nil)
	r2.Register(key.CodeControlLeft, 0, 0)
	if !r2.IsModifierHeld(key.CodeControlLeft) || buf.Len() != ReportSize {
		t.Error("recorder should forward to Next")
	}
}
