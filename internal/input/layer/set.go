package layer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/keypipe/internal/input/keycode"
)

// ID identifies a layer within one profile.
type ID = keycode.LayerID

// Base is the always-active bottom layer.
const Base = keycode.BaseLayer

// MaxLayers is the number of distinct layer ids a word can address.
const MaxLayers = 256

// Set errors
var (
	ErrUnknownLayer   = errors.New("unknown layer")
	ErrDuplicateLayer = errors.New("duplicate layer name")
	ErrNoLayers       = errors.New("at least one layer (base) is required")
	ErrTooManyLayers  = errors.New("too many layers")
)

// Set binds layer names to ids for one profile.
// The first name is the base layer.
type Set struct {
	names []string
	index map[string]ID
}

// NewSet creates a layer set from ordered names. Names are matched
// case-insensitively.
func NewSet(names ...string) (*Set, error) {
	if len(names) == 0 {
		return nil, ErrNoLayers
	}
	if len(names) > MaxLayers {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyLayers, len(names), MaxLayers)
	}

	s := &Set{
		names: make([]string, 0, len(names)),
		index: make(map[string]ID, len(names)),
	}
	for i, name := range names {
		norm := normalize(name)
		if norm == "" {
			return nil, fmt.Errorf("layer %d: empty name", i)
		}
		if _, dup := s.index[norm]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLayer, name)
		}
		s.index[norm] = ID(i)
		s.names = append(s.names, strings.TrimSpace(name))
	}
	return s, nil
}

// MustSet creates a layer set and panics on error.
func MustSet(names ...string) *Set {
	s, err := NewSet(names...)
	if err != nil {
		panic(err)
	}
	return s
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ID returns the id bound to name.
func (s *Set) ID(name string) (ID, bool) {
	id, ok := s.index[normalize(name)]
	return id, ok
}

// Lookup returns the id bound to name, or ErrUnknownLayer.
func (s *Set) Lookup(name string) (ID, error) {
	id, ok := s.ID(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return id, nil
}

// Name returns the name of the layer with the given id.
func (s *Set) Name(id ID) (string, bool) {
	if int(id) >= len(s.names) {
		return "", false
	}
	return s.names[id], true
}

// Contains reports whether id is declared in the set.
func (s *Set) Contains(id ID) bool {
	return int(id) < len(s.names)
}

// Len returns the number of declared layers.
func (s *Set) Len() int {
	return len(s.names)
}

// Names returns the declared names in id order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
