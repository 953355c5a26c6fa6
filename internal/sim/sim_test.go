package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/hid"
	"github.com/dshills/keypipe/internal/input"
	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/midi"
)

func newSim(t *testing.T, profile string, opts Options) *Sim {
	t.Helper()
	p, err := config.Builtin(profile)
	if err != nil {
		t.Fatalf("Builtin(%q) error = %v", profile, err)
	}
	s, err := New(p, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestDefaultLayoutSkipsMirrors(t *testing.T) {
	s := newSim(t, "mac", Options{})
	rows := s.Layout().Rows()

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Pipe != 1 || rows[1].Pipe != 2 {
		t.Errorf("row pipes = %d, %d", rows[0].Pipe, rows[1].Pipe)
	}

	tests := []struct {
		r    rune
		want Slot
	}{
		{'q', Slot{1, 0}},
		{'u', Slot{1, 6}},
		{'z', Slot{1, 14}},
		{'m', Slot{1, 20}},
		{'Z', Slot{2, 14}},
	}
	for _, tt := range tests {
		if got, ok := s.Layout().Lookup(tt.r); !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %v, %v, want %v", tt.r, got, ok, tt.want)
		}
	}
	if _, ok := s.Layout().Lookup('1'); ok {
		t.Error("pad row should be unbound for a profile without a third table")
	}
}

func TestKeyLatches(t *testing.T) {
	var reports bytes.Buffer
	s := newSim(t, "mac", Options{Reports: &reports})

	d, ok := s.Key('a')
	if !ok || d.Outcome != input.OutcomeDispatched {
		t.Fatalf("Key(a) = %+v, %v", d, ok)
	}
	if !s.Held(Slot{1, 7}) {
		t.Error("slot 1/7 should be latched")
	}
	if got := s.Status().Report.Modifiers(); got != 0x08 {
		t.Errorf("modifiers = %#x, want GUI", got)
	}

	s.Key('a')
	if s.Held(Slot{1, 7}) {
		t.Error("second Key(a) should release")
	}
	if got := s.Status().Report; got != (hid.Report{}) {
		t.Errorf("report = %v, want empty", got)
	}
	if reports.Len() != 2*hid.ReportSize {
		t.Errorf("wrote %d bytes, want two reports", reports.Len())
	}

	if _, ok := s.Key('!'); ok {
		t.Error("unbound key should report false")
	}
}

func TestMutedPipes(t *testing.T) {
	s := newSim(t, "mac", Options{Muted: input.PipeFilter{2, 5}})

	if d, _ := s.Key('Z'); d.Outcome != input.OutcomeConsumed {
		t.Errorf("Key(Z) outcome = %v, want consumed", d.Outcome)
	}
	if s.Held(Slot{2, 14}) {
		t.Error("a muted press should not latch")
	}
	if d, _ := s.Key('a'); d.Outcome != input.OutcomeDispatched {
		t.Errorf("Key(a) outcome = %v, want dispatched", d.Outcome)
	}

	// The filter survives a reload.
	p, err := config.Builtin("mac")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Load(p); err != nil {
		t.Fatal(err)
	}
	if d, _ := s.Key('Z'); d.Outcome != input.OutcomeConsumed {
		t.Errorf("Key(Z) after Load outcome = %v, want consumed", d.Outcome)
	}
}

func TestAltTabThenReleaseAll(t *testing.T) {
	s := newSim(t, "mac", Options{})
	s.Key('z')
	s.Key('u')

	st := s.Status()
	if st.Report.Modifiers() != 0x08|0x02 {
		t.Errorf("modifiers = %#x, want GUI+Shift", st.Report.Modifiers())
	}
	if keys := st.Report.Keys(); !reflect.DeepEqual(keys, []key.Code{key.CodeTab}) {
		t.Errorf("keys = %v", keys)
	}
	wantHeld := []string{"1/14 MAC(mac_alt)", "1/6 MAC(ctrl_or_stab)"}
	if !reflect.DeepEqual(st.Held, wantHeld) {
		t.Errorf("Held = %v, want %v", st.Held, wantHeld)
	}

	s.ReleaseAll()
	st = s.Status()
	if st.Report != (hid.Report{}) || len(st.Held) != 0 {
		t.Errorf("after ReleaseAll: report %v held %v", st.Report, st.Held)
	}
	if last := st.Recent[len(st.Recent)-1]; last != "released all" {
		t.Errorf("last recent = %q", last)
	}
}

func TestStatusLayers(t *testing.T) {
	s := newSim(t, "mac", Options{})
	if got := s.Status().Layers; !reflect.DeepEqual(got, []string{"Base"}) {
		t.Errorf("Layers = %v", got)
	}
	s.Key('Z')
	if got := s.Status().Layers; !reflect.DeepEqual(got, []string{"Sym", "Base"}) {
		t.Errorf("Layers = %v", got)
	}
}

func TestPadMIDI(t *testing.T) {
	extra := midi.NewRecorder()
	s := newSim(t, "default", Options{MIDI: extra})

	s.Key('2')
	s.Key('2')

	want := []midi.Message{midi.NoteOnMsg(60, 100, 0), midi.NoteOffMsg(60, 0, 0)}
	if !reflect.DeepEqual(extra.Messages, want) {
		t.Errorf("messages = %v, want %v", extra.Messages, want)
	}
	if st := s.Status(); len(st.MIDI) != 2 {
		t.Errorf("Status().MIDI = %v", st.MIDI)
	}

	for i := 0; i < 2*maxRecent; i++ {
		s.Key('2')
	}
	if st := s.Status(); len(st.MIDI) != maxRecent || len(st.Recent) != maxRecent {
		t.Errorf("history not bounded: %d midi, %d recent", len(st.MIDI), len(st.Recent))
	}
}

func TestLoadReleasesOldProfile(t *testing.T) {
	s := newSim(t, "mac", Options{})
	s.Key('a')

	p, err := config.Builtin("default")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Load(p); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	st := s.Status()
	if st.Profile != "default" {
		t.Errorf("Profile = %q", st.Profile)
	}
	if st.Report != (hid.Report{}) {
		t.Errorf("report = %v after reload", st.Report)
	}
	if len(s.Layout().Rows()) != 3 {
		t.Errorf("rows = %d, want 3", len(s.Layout().Rows()))
	}
}

const reloadProfile = `
name = "%s"
layers = ["base"]

[[pipe]]
name = "main"
id = 1
positions = 2

[pipe.layers]
base = ["A", "B"]
`

func TestReloader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.toml")
	write := func(data string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write(strings.Replace(reloadProfile, "%s", "first", 1))
	p, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	done := make(chan error, 16)
	var prepared atomic.Int32
	r, err := WatchProfile(s, path, ReloadOptions{
		Prepare: func(p *config.Profile) error {
			prepared.Add(1)
			return nil
		},
		Done: func(err error) { done <- err },
	})
	if err != nil {
		t.Fatalf("WatchProfile() error = %v", err)
	}
	defer r.Close()

	wait := func(wantErr bool) {
		t.Helper()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case err := <-done:
				if (err != nil) == wantErr {
					return
				}
			case <-timeout:
				t.Fatal("timed out waiting for reload")
			}
		}
	}

	write(strings.Replace(reloadProfile, "%s", "second", 1))
	wait(false)
	if got := s.Status().Profile; got != "second" {
		t.Errorf("Profile = %q, want second", got)
	}
	if prepared.Load() == 0 {
		t.Error("Prepare was not called")
	}

	write("name = ")
	wait(true)
	if got := s.Status().Profile; got != "second" {
		t.Errorf("Profile = %q after failed reload", got)
	}
}
