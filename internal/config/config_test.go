package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dshills/keypipe/internal/config/loader"
	"github.com/dshills/keypipe/internal/hid"
	"github.com/dshills/keypipe/internal/input"
	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/keymap"
	"github.com/dshills/keypipe/internal/midi"
)

func buildBuiltin(t *testing.T, name string) (*Keyboard, *hid.Recorder, *midi.Recorder) {
	t.Helper()
	p, err := Builtin(name)
	if err != nil {
		t.Fatalf("Builtin(%q) error = %v", name, err)
	}
	rec := hid.NewRecorder()
	notes := midi.NewRecorder()
	kb, err := Build(p, Options{HID: rec, MIDI: notes})
	if err != nil {
		t.Fatalf("Build(%q) error = %v", name, err)
	}
	return kb, rec, notes
}

func run(kb *Keyboard, events ...input.Event) {
	for _, ev := range events {
		kb.Handler.HandleEvent(ev)
	}
}

func TestBuiltinNames(t *testing.T) {
	want := []string{"default", "mac"}
	if got := BuiltinNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("BuiltinNames() = %v, want %v", got, want)
	}
	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			kb, _, _ := buildBuiltin(t, name)
			if !kb.Profile.IsBuiltin() {
				t.Errorf("Source = %q, want builtin", kb.Profile.Source)
			}
		})
	}
	if _, err := Builtin("nope"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("Builtin(nope) error = %v", err)
	}
}

func TestMacProfileMirrorsPipes(t *testing.T) {
	kb, _, _ := buildBuiltin(t, "mac")

	want := []keymap.PipeID{1, 2, 4, 5}
	if got := kb.Registry.Pipes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Pipes() = %v, want %v", got, want)
	}
	if kb.Registry.Get(1) != kb.Registry.Get(4) || kb.Registry.Get(2) != kb.Registry.Get(5) {
		t.Error("mirrored slots should share one keymap")
	}
	if kb.Registry.Get(0) != nil || kb.Registry.Get(3) != nil {
		t.Error("unassigned slots should be unbound")
	}
}

func TestMacAltTab(t *testing.T) {
	kb, rec, _ := buildBuiltin(t, "mac")

	// Hold option, tap the ctrl_or_stab thumb twice, release option.
	run(kb,
		input.Press(1, 14),
		input.Press(1, 6), input.Release(1, 6),
		input.Press(1, 6), input.Release(1, 6),
		input.Release(1, 14),
	)

	want := []hid.Call{
		hid.Reg(key.CodeAltLeft, 0, 0),
		hid.Unreg(key.CodeAltLeft),
		hid.Reg(key.CodeGUILeft, 0, 0),
		hid.Reg(key.CodeTab, key.ModShift, 0),
		hid.Unreg(key.CodeTab),
		hid.Reg(key.CodeTab, key.ModShift, 0),
		hid.Unreg(key.CodeTab),
		hid.Unreg(key.CodeGUILeft),
	}
	if !reflect.DeepEqual(rec.Calls, want) {
		t.Errorf("calls:\n%s\nwant:\n%v", rec, want)
	}
}

func TestMacCommandTab(t *testing.T) {
	kb, rec, _ := buildBuiltin(t, "mac")

	run(kb,
		input.Press(4, 7), // command on the mirrored left pipe
		input.Press(1, 20),
		input.Release(1, 20),
		input.Release(4, 7),
	)

	want := []hid.Call{
		hid.Reg(key.CodeGUILeft, 0, 0),
		hid.Reg(key.CodeTab, key.ModCtrl, key.ModGUI),
		hid.Unreg(key.CodeTab),
		hid.Unreg(key.CodeGUILeft),
	}
	if !reflect.DeepEqual(rec.Calls, want) {
		t.Errorf("calls:\n%s\nwant:\n%v", rec, want)
	}
}

func TestMacNumLayer(t *testing.T) {
	kb, rec, _ := buildBuiltin(t, "mac")

	run(kb, input.Press(1, 20), input.Press(2, 2), input.Release(1, 20), input.Release(2, 2))

	want := []hid.Call{
		hid.Reg(key.CodeF7, 0, 0),
		hid.Unreg(key.CodeF7),
	}
	if !reflect.DeepEqual(rec.Calls, want) {
		t.Errorf("calls:\n%s\nwant:\n%v", rec, want)
	}
	if !kb.Stack.BaseOnly() {
		t.Errorf("Active() = %v after release", kb.Stack.Active())
	}
}

func TestDefaultDualRole(t *testing.T) {
	tests := []struct {
		name   string
		events []input.Event
		want   []hid.Call
	}{
		{
			name:   "plain tab",
			events: []input.Event{input.Press(1, 0), input.Release(1, 0)},
			want:   []hid.Call{hid.Reg(key.CodeTab, 0, 0), hid.Unreg(key.CodeTab)},
		},
		{
			name: "alt f4",
			events: []input.Event{
				input.Press(1, 14), input.Press(1, 0), input.Release(1, 0), input.Release(1, 14),
			},
			want: []hid.Call{
				hid.Reg(key.CodeAltLeft, 0, 0),
				hid.Reg(key.CodeF4, 0, 0),
				hid.Unreg(key.CodeF4),
				hid.Unreg(key.CodeAltLeft),
			},
		},
		{
			name: "ctrl shift tab",
			events: []input.Event{
				input.Press(1, 7), input.Press(1, 6), input.Release(1, 7), input.Release(1, 6),
			},
			want: []hid.Call{
				hid.Reg(key.CodeControlLeft, 0, 0),
				hid.Reg(key.CodeTab, key.ModShift, 0),
				hid.Unreg(key.CodeControlLeft),
				hid.Unreg(key.CodeTab),
			},
		},
		{
			name:   "num layer",
			events: []input.Event{input.Press(1, 20), input.Press(1, 2), input.Release(1, 2), input.Release(1, 20)},
			want:   []hid.Call{hid.Reg(key.Code7, 0, 0), hid.Unreg(key.Code7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb, rec, _ := buildBuiltin(t, "default")
			run(kb, tt.events...)
			if !reflect.DeepEqual(rec.Calls, tt.want) {
				t.Errorf("calls:\n%s\nwant:\n%v", rec, tt.want)
			}
			if kb.Handler.HeldCount() != 0 {
				t.Errorf("HeldCount() = %d", kb.Handler.HeldCount())
			}
		})
	}
}

func TestDefaultPad(t *testing.T) {
	kb, _, notes := buildBuiltin(t, "default")

	run(kb,
		input.Press(3, 13), input.Release(3, 13), // CH(1)
		input.Press(3, 14), input.Release(3, 14), // OCT(+1)
		input.Press(3, 1),
		input.Press(3, 7), input.Release(3, 7), // OCT(0) while the note sounds
		input.Release(3, 1),
	)

	want := []midi.Message{
		midi.ProgramChangeMsg(1, 1),
		midi.NoteOnMsg(72, 100, 1),
		midi.NoteOffMsg(72, 0, 1),
	}
	if !reflect.DeepEqual(notes.Messages, want) {
		t.Errorf("messages:\n%s\nwant:\n%v", notes, want)
	}
}

func TestKeyboardFormat(t *testing.T) {
	kb, _, _ := buildBuiltin(t, "mac")
	km := kb.Registry.Get(1)

	tests := []struct {
		pos  int
		want string
	}{
		{6, "MAC(ctrl_or_stab)"},
		{7, "MAC(mac_command)"},
		{0, "TAB"},
	}
	for _, tt := range tests {
		if got := kb.Format(km.Action(0, tt.pos)); got != tt.want {
			t.Errorf("Format(pos %d) = %q, want %q", tt.pos, got, tt.want)
		}
	}
	if got := kb.Format(keycode.Momentary(2)); got != "MO(num)" {
		t.Errorf("Format(MO(2)) = %q", got)
	}
}

func TestKeyboardClose(t *testing.T) {
	kb, rec, _ := buildBuiltin(t, "mac")
	run(kb, input.Press(1, 7), input.Press(1, 13))
	kb.Close()

	if rec.Held(key.CodeGUILeft) || rec.Held(key.CodeShiftLeft) {
		t.Errorf("keys still held after Close:\n%s", rec)
	}
}

const userProfile = `
name = "mine"
layers = ["base", "num"]

[midi]
channel = 2

[[pipe]]
name = "only"
id = 1
positions = 3

[pipe.layers]
base = ["A", "MO(num)"]
num = ["B"]
`

func TestFindFS(t *testing.T) {
	fsys := loader.FromFS(fstest.MapFS{
		"conf/mine.toml":  {Data: []byte(userProfile)},
		"other/mine.toml": {Data: []byte(strings.Replace(userProfile, `"mine"`, `"other"`, 1))},
	})

	tests := []struct {
		ref, dir string
		want     string
		err      error
	}{
		{"mine", "conf", "mine", nil},
		{"other/mine.toml", "conf", "other", nil},
		{"mac", "conf", "mac", nil},
		{"missing", "conf", "", ErrUnknownProfile},
		{"conf/missing.toml", "", "", ErrFileNotFound},
		{"conf/mine.ini", "", "", loader.ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			p, err := FindFS(fsys, tt.ref, tt.dir)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("FindFS() error = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindFS() error = %v", err)
			}
			if p.Name != tt.want {
				t.Errorf("Name = %q, want %q", p.Name, tt.want)
			}
		})
	}
}

func TestDecodeDefaultsAndPadding(t *testing.T) {
	p, err := Decode("mine.toml", loader.FormatTOML, []byte(userProfile))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if p.MIDI.Velocity != 100 || !p.MIDI.ProgramOnChannel || p.MIDI.Channel != 2 {
		t.Errorf("MIDI = %+v", p.MIDI)
	}

	kb, err := Build(p, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	km := kb.Registry.Get(1)
	if a := km.Action(0, 2); a.Kind != keycode.KindTransparent {
		t.Errorf("padded entry = %v, want transparent", a)
	}
	if a := km.Action(1, 0); a != keycode.Key(key.CodeB) {
		t.Errorf("num[0] = %v", a)
	}
}

func TestDecodeUnknownField(t *testing.T) {
	_, err := Decode("bad.toml", loader.FormatTOML, []byte("bogus = 1\n"+userProfile))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	orig, err := Builtin("mac")
	if err != nil {
		t.Fatal(err)
	}
	for _, format := range []loader.Format{loader.FormatTOML, loader.FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := Encode(orig, format)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode("round", format, data)
			if err != nil {
				t.Fatalf("Decode() error = %v\n%s", err, data)
			}
			got.Source = orig.Source
			if !reflect.DeepEqual(got, orig) {
				t.Errorf("round trip mismatch:\n%s", data)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
		path   string
		code   ValidationErrorCode
	}{
		{"no name", func(p *Profile) { p.Name = "" }, "name", ErrCodeRequiredMissing},
		{"channel", func(p *Profile) { p.MIDI.Channel = 16 }, "midi.channel", ErrCodeOutOfRange},
		{"velocity", func(p *Profile) { p.MIDI.Velocity = 0 }, "midi.velocity", ErrCodeOutOfRange},
		{"dup layer", func(p *Profile) { p.Layers = append(p.Layers, "NUM") }, "layers", ErrCodeOutOfRange},
		{"dup name", func(p *Profile) {
			p.MacCompanions[1].Name = "mac_alt"
		}, "mac_companion[1].name", ErrCodeDuplicate},
		{"chord holder", func(p *Profile) {
			p.MacCompanions[0].Chords[0].Holder = "hyper"
		}, "mac_companion[0].chords[0].holder", ErrCodeUnknownReference},
		{"holder modifier", func(p *Profile) {
			p.MacHolders[0].Modifier = "TAB"
		}, "mac_holder[0].modifier", ErrCodeUnknownReference},
		{"slot range", func(p *Profile) { p.Pipes[0].ID = 8 }, "pipe[0].id", ErrCodeOutOfRange},
		{"slot reuse", func(p *Profile) { p.Pipes[1].Mirror = []int{4} }, "pipe[1].id", ErrCodeDuplicate},
		{"layer name", func(p *Profile) {
			p.Pipes[0].Layers["fn"] = []string{"A"}
		}, "pipe.left.layers.fn", ErrCodeUnknownReference},
		{"row length", func(p *Profile) {
			p.Pipes[0].Layers["num"] = append(p.Pipes[0].Layers["num"], "A")
		}, "pipe.left.layers.num", ErrCodeOutOfRange},
		{"no pipes", func(p *Profile) { p.Pipes = nil }, "pipe", ErrCodeRequiredMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Builtin("mac")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(p)

			err = p.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() error = %v", err)
			}
			for _, ve := range ValidationErrors(err) {
				if ve.Path == tt.path && ve.Code == tt.code {
					return
				}
			}
			t.Errorf("no %s error at %s in %v", tt.code, tt.path, err)
		})
	}
}

func TestBuildReportsBadSpecs(t *testing.T) {
	p, err := Builtin("mac")
	if err != nil {
		t.Fatal(err)
	}
	p.Pipes[0].Layers["base"][1] = "HYPER"
	p.Pipes[1].Layers["sym"][0] = "MAC(nobody)"

	_, err = Build(p, Options{})
	errs := ValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2", err)
	}
	for _, ve := range errs {
		if ve.Code != ErrCodeInvalidSpec {
			t.Errorf("%s: code = %s", ve.Path, ve.Code)
		}
	}
	if errs[0].Path != "pipe.left.layers.base[1]" {
		t.Errorf("path = %q", errs[0].Path)
	}
}

func TestApplyEnv(t *testing.T) {
	p := NewProfile()
	env := loader.NewEnvLoaderFrom(loader.EnvPrefix, []string{
		"KEYPIPE_MIDI_CHANNEL=9",
		"KEYPIPE_MIDI_VELOCITY=64",
		"KEYPIPE_MIDI_PROGRAM_ON_CHANNEL=false",
		"HOME=/root",
	})
	if err := ApplyEnv(p, env); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	want := MIDIConfig{Channel: 9, Velocity: 64}
	if p.MIDI != want {
		t.Errorf("MIDI = %+v, want %+v", p.MIDI, want)
	}

	bad := loader.NewEnvLoaderFrom(loader.EnvPrefix, []string{"KEYPIPE_MIDI_CHANNEL=nine"})
	if err := ApplyEnv(p, bad); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("ApplyEnv(bad) error = %v", err)
	}
}

func TestReadSettings(t *testing.T) {
	env := loader.NewEnvLoaderFrom(loader.EnvPrefix, []string{
		"KEYPIPE_LOG_LEVEL=debug",
		"KEYPIPE_LOG_JSON=1",
		"KEYPIPE_CONFIG_DIR=/etc/keypipe",
		"KEYPIPE_PROFILE=mac",
	})
	want := Settings{LogLevel: "debug", LogJSON: true, ConfigDir: "/etc/keypipe", Profile: "mac"}
	if got := ReadSettings(env); got != want {
		t.Errorf("ReadSettings() = %+v, want %+v", got, want)
	}
}

const scriptProfile = `
name = "scripted"
layers = ["base"]
script = "handlers.lua"

[[pipe]]
name = "main"
id = 1
positions = 1

[pipe.layers]
base = ["LUA(0)"]
`

func TestBuildScript(t *testing.T) {
	p, err := Decode("/profiles/scripted.toml", loader.FormatTOML, []byte(scriptProfile))
	if err != nil {
		t.Fatal(err)
	}

	var readPath string
	rec := hid.NewRecorder()
	kb, err := Build(p, Options{
		HID: rec,
		ReadFile: func(path string) ([]byte, error) {
			readPath = path
			return []byte(`function on_press(n) kb.press("S(TAB)") end`), nil
		},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer kb.Close()

	if readPath != "/profiles/handlers.lua" {
		t.Errorf("script path = %q", readPath)
	}
	run(kb, input.Press(1, 0), input.Release(1, 0))
	want := []hid.Call{hid.Reg(key.CodeTab, key.ModShift, 0), hid.Unreg(key.CodeTab)}
	if !reflect.DeepEqual(rec.Calls, want) {
		t.Errorf("calls:\n%s", rec)
	}
}
