package keymap

import (
	"errors"
	"testing"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/layer"
)

func TestNewKeymap(t *testing.T) {
	km := NewKeymap("left", 4).WithSource("test")

	if km.Name != "left" {
		t.Errorf("Name = %q, want %q", km.Name, "left")
	}
	if km.Positions() != 4 {
		t.Errorf("Positions() = %d, want 4", km.Positions())
	}
	if km.Layers() != 0 {
		t.Errorf("Layers() = %d, want 0", km.Layers())
	}
	if km.Word(layer.Base, 0) != keycode.WordTransparent {
		t.Error("undefined layer should read transparent")
	}
}

func TestKeymapSet(t *testing.T) {
	km := NewKeymap("left", 3)

	if err := km.SetAction(2, 1, keycode.Key(key.CodeTab)); err != nil {
		t.Fatalf("SetAction() error = %v", err)
	}
	if !km.HasLayer(2) || km.HasLayer(1) {
		t.Error("only layer 2 should have a row")
	}
	if got := km.Action(2, 1); got != keycode.Key(key.CodeTab) {
		t.Errorf("Action(2, 1) = %v", got)
	}
	if err := km.Set(0, 3, 0); !errors.Is(err, ErrPositionRange) {
		t.Errorf("Set out of range error = %v", err)
	}
	if km.Word(2, 99) != keycode.WordTransparent {
		t.Error("position out of range should read transparent")
	}
}

func TestKeymapSetRow(t *testing.T) {
	km := NewKeymap("left", 3)
	tab := keycode.Encode(keycode.Key(key.CodeTab))

	if err := km.SetRow(0, []keycode.Word{tab}); err != nil {
		t.Fatalf("SetRow() error = %v", err)
	}
	row := km.Row(0)
	if len(row) != 3 || row[0] != tab || row[1] != keycode.WordTransparent {
		t.Errorf("Row(0) = %v", row)
	}
	if err := km.SetRow(1, make([]keycode.Word, 4)); !errors.Is(err, ErrPositionRange) {
		t.Errorf("long row error = %v", err)
	}
	if km.Row(5) != nil {
		t.Error("Row of undefined layer should be nil")
	}
}

func TestKeymapValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Keymap
		wantErr error
	}{
		{
			name: "valid",
			build: func() *Keymap {
				km := NewKeymap("ok", 2)
				_ = km.SetAction(0, 0, keycode.Shift(keycode.Key(key.CodeA)))
				_ = km.SetAction(0, 1, keycode.Momentary(1))
				return km
			},
		},
		{
			name:    "no positions",
			build:   func() *Keymap { return NewKeymap("empty", 0) },
			wantErr: ErrNoPositions,
		},
		{
			name: "malformed word",
			build: func() *Keymap {
				km := NewKeymap("bad", 2)
				_ = km.Set(1, 1, 0x05000000)
				return km
			},
			wantErr: keycode.ErrMalformedWord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeymapClone(t *testing.T) {
	km := NewKeymap("left", 2)
	_ = km.SetAction(0, 0, keycode.Key(key.CodeA))

	clone := km.Clone()
	_ = clone.SetAction(0, 0, keycode.Key(key.CodeB))

	if km.Action(0, 0) != keycode.Key(key.CodeA) {
		t.Error("modifying clone should not affect original")
	}
}

func TestRegistryBind(t *testing.T) {
	r := NewRegistry()
	left := NewKeymap("left", 2)
	right := NewKeymap("right", 2)

	if err := r.Bind(1, left); err != nil {
		t.Fatalf("Bind(1) error = %v", err)
	}
	if err := r.Bind(4, left); err != nil {
		t.Fatalf("Bind(4) error = %v", err)
	}
	if err := r.Bind(2, right); err != nil {
		t.Fatalf("Bind(2) error = %v", err)
	}
	if err := r.Bind(1, right); !errors.Is(err, ErrPipeBound) {
		t.Errorf("rebind error = %v", err)
	}
	if err := r.Bind(MaxPipes, right); !errors.Is(err, ErrPipeRange) {
		t.Errorf("range error = %v", err)
	}
	if err := r.Bind(3, nil); !errors.Is(err, ErrNilKeymap) {
		t.Errorf("nil error = %v", err)
	}

	if got := r.Pipes(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 4 {
		t.Errorf("Pipes() = %v", got)
	}
	if got := r.Keymaps(); len(got) != 2 {
		t.Errorf("Keymaps() returned %d, want 2", len(got))
	}
	if id, err := r.Lookup("RIGHT"); err != nil || id != 2 {
		t.Errorf("Lookup(RIGHT) = %d, %v", id, err)
	}
	if _, err := r.Lookup("thumb"); !errors.Is(err, ErrUnknownPipe) {
		t.Errorf("Lookup(thumb) error = %v", err)
	}

	r.Unbind(1)
	if r.Get(1) != nil {
		t.Error("Get(1) after Unbind should be nil")
	}
	if r.Get(200) != nil {
		t.Error("Get out of range should be nil")
	}
}
