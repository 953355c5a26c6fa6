package keymap

import (
	"errors"
	"fmt"

	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/layer"
)

// Table errors
var (
	ErrPositionRange = errors.New("position out of range")
	ErrNoPositions   = errors.New("keymap has no positions")
)

// Keymap holds the keycode table for one pipe.
type Keymap struct {
	// Name is the pipe name, e.g. "left".
	Name string

	// Source indicates where this keymap was defined.
	// Examples: "builtin:mac", "file:/home/me/board.toml"
	Source string

	positions int

	// layers is indexed by layer id. A nil row leaves the layer
	// transparent for every position.
	layers [][]keycode.Word
}

// NewKeymap creates an empty keymap with the given number of positions.
func NewKeymap(name string, positions int) *Keymap {
	return &Keymap{
		Name:      name,
		positions: positions,
		layers:    make([][]keycode.Word, 0, 4),
	}
}

// WithSource sets the source for this keymap.
func (k *Keymap) WithSource(source string) *Keymap {
	k.Source = source
	return k
}

// Positions returns the number of positions per layer.
func (k *Keymap) Positions() int {
	return k.positions
}

// Layers returns one past the highest layer id that has a row.
func (k *Keymap) Layers() int {
	return len(k.layers)
}

// HasLayer reports whether the keymap defines a row for l.
func (k *Keymap) HasLayer(l layer.ID) bool {
	return int(l) < len(k.layers) && k.layers[l] != nil
}

func (k *Keymap) row(l layer.ID) []keycode.Word {
	for int(l) >= len(k.layers) {
		k.layers = append(k.layers, nil)
	}
	if k.layers[l] == nil {
		k.layers[l] = make([]keycode.Word, k.positions)
	}
	return k.layers[l]
}

// SetRow replaces the row for layer l. Rows shorter than the keymap are
// padded with transparent entries.
func (k *Keymap) SetRow(l layer.ID, words []keycode.Word) error {
	if len(words) > k.positions {
		return fmt.Errorf("%w: layer %d has %d entries, keymap %q has %d positions",
			ErrPositionRange, l, len(words), k.Name, k.positions)
	}
	r := k.row(l)
	copy(r, words)
	for i := len(words); i < len(r); i++ {
		r[i] = keycode.WordTransparent
	}
	return nil
}

// Set stores a raw word at (l, pos).
func (k *Keymap) Set(l layer.ID, pos int, w keycode.Word) error {
	if pos < 0 || pos >= k.positions {
		return fmt.Errorf("%w: %d (keymap %q has %d)", ErrPositionRange, pos, k.Name, k.positions)
	}
	k.row(l)[pos] = w
	return nil
}

// SetAction encodes a and stores it at (l, pos).
func (k *Keymap) SetAction(l layer.ID, pos int, a keycode.Action) error {
	return k.Set(l, pos, keycode.Encode(a))
}

// Word returns the raw word at (l, pos). Undefined layers and positions
// out of range are transparent.
func (k *Keymap) Word(l layer.ID, pos int) keycode.Word {
	if pos < 0 || pos >= k.positions || int(l) >= len(k.layers) {
		return keycode.WordTransparent
	}
	r := k.layers[l]
	if r == nil {
		return keycode.WordTransparent
	}
	return r[pos]
}

// Action decodes the word at (l, pos).
func (k *Keymap) Action(l layer.ID, pos int) keycode.Action {
	return keycode.Decode(k.Word(l, pos))
}

// Row returns a copy of the row for l, or nil if the layer is undefined.
func (k *Keymap) Row(l layer.ID) []keycode.Word {
	if !k.HasLayer(l) {
		return nil
	}
	out := make([]keycode.Word, k.positions)
	copy(out, k.layers[l])
	return out
}

// Validate checks every word in the table and reports the first malformed
// entry.
func (k *Keymap) Validate() error {
	if k.positions <= 0 {
		return fmt.Errorf("keymap %q: %w", k.Name, ErrNoPositions)
	}
	for l, r := range k.layers {
		for pos, w := range r {
			if _, err := keycode.DecodeStrict(w); err != nil {
				return fmt.Errorf("keymap %q layer %d position %d: %w", k.Name, l, pos, err)
			}
		}
	}
	return nil
}

// Clone creates a deep copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	clone := &Keymap{
		Name:      k.Name,
		Source:    k.Source,
		positions: k.positions,
		layers:    make([][]keycode.Word, len(k.layers)),
	}
	for i, r := range k.layers {
		if r == nil {
			continue
		}
		clone.layers[i] = make([]keycode.Word, len(r))
		copy(clone.layers[i], r)
	}
	return clone
}
