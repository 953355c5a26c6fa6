package custom

import (
	"fmt"
	"strings"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
)

// HolderState is the tri-state of a mac modifier holder.
type HolderState uint8

const (
	// HolderReleased means the holder key is up.
	HolderReleased HolderState = iota

	// HolderRegistered means the holder's own modifier is asserted.
	HolderRegistered

	// HolderConverted means a companion swapped the modifier for its
	// conversion target, which stays asserted until the holder releases.
	HolderConverted
)

// String returns the state name.
func (s HolderState) String() string {
	switch s {
	case HolderReleased:
		return "released"
	case HolderRegistered:
		return "registered"
	case HolderConverted:
		return "converted"
	default:
		return "unknown"
	}
}

// HolderDef defines a modifier holder key such as MAC_ALT.
type HolderDef struct {
	Name string

	// Modifier is the modifier key usage asserted while held.
	Modifier key.Code

	// ConvertTo replaces Modifier the first time a companion fires while
	// the holder is held. CodeNone never converts.
	ConvertTo key.Code
}

// Chord maps a held holder to the action a companion emits.
type Chord struct {
	Holder string
	Action keycode.Action
}

// CompanionDef defines a key whose action depends on which holder is down.
type CompanionDef struct {
	Name string

	// Default is emitted when no chord's holder is held.
	Default keycode.Action

	// Chords are checked in order; the first held holder wins.
	Chords []Chord
}

type holder struct {
	def   HolderDef
	state HolderState
	count int
}

type companion struct {
	def    CompanionDef
	chords []int // holder index per chord
}

// MacRemap handles the mac modifier-remap family. Holders take ids first,
// companions follow, both in declaration order.
type MacRemap struct {
	holders    []holder
	companions []companion
	presses    pressSet
}

// NewMacRemap creates a mac remap handler.
func NewMacRemap(holders []HolderDef, companions []CompanionDef) (*MacRemap, error) {
	if len(holders)+len(companions) > maxPerFamily {
		return nil, fmt.Errorf("%w: %d mac keys", ErrTooManyKeys, len(holders)+len(companions))
	}

	m := &MacRemap{presses: newPressSet()}
	seen := make(map[string]bool)
	index := make(map[string]int, len(holders))

	for i, hd := range holders {
		if !hd.Modifier.IsModifierKey() {
			return nil, fmt.Errorf("holder %q: %w: %s", hd.Name, ErrNotModifier, hd.Modifier)
		}
		if hd.ConvertTo != key.CodeNone && !hd.ConvertTo.IsModifierKey() {
			return nil, fmt.Errorf("holder %q: %w: %s", hd.Name, ErrNotModifier, hd.ConvertTo)
		}
		name := strings.ToLower(hd.Name)
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, hd.Name)
		}
		seen[name] = true
		index[name] = i
		m.holders = append(m.holders, holder{def: hd})
	}

	for _, cd := range companions {
		name := strings.ToLower(cd.Name)
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, cd.Name)
		}
		seen[name] = true
		c := companion{def: cd, chords: make([]int, len(cd.Chords))}
		for j, ch := range cd.Chords {
			hi, ok := index[strings.ToLower(ch.Holder)]
			if !ok {
				return nil, fmt.Errorf("companion %q: %w: %q", cd.Name, ErrUnknownHolder, ch.Holder)
			}
			c.chords[j] = hi
		}
		m.companions = append(m.companions, c)
	}
	return m, nil
}

// ID returns the custom id of the named holder or companion.
func (m *MacRemap) ID(name string) (keycode.CustomID, bool) {
	for i, h := range m.holders {
		if strings.EqualFold(h.def.Name, name) {
			return keycode.MacRemapBase + keycode.CustomID(i), true
		}
	}
	for i, c := range m.companions {
		if strings.EqualFold(c.def.Name, name) {
			return keycode.MacRemapBase + keycode.CustomID(len(m.holders)+i), true
		}
	}
	return 0, false
}

// Name returns the name bound to id.
func (m *MacRemap) Name(id keycode.CustomID) (string, bool) {
	i := id.Index()
	switch {
	case i < 0:
		return "", false
	case i < len(m.holders):
		return m.holders[i].def.Name, true
	case i < len(m.holders)+len(m.companions):
		return m.companions[i-len(m.holders)].def.Name, true
	}
	return "", false
}

// State returns the state of the named holder.
func (m *MacRemap) State(name string) HolderState {
	for _, h := range m.holders {
		if strings.EqualFold(h.def.Name, name) {
			return h.state
		}
	}
	return HolderReleased
}

// Defines implements Handler.
func (m *MacRemap) Defines(id keycode.CustomID) bool {
	i := id.Index()
	return i >= 0 && i < len(m.holders)+len(m.companions)
}

// Press implements Handler.
func (m *MacRemap) Press(id keycode.CustomID, host Host) (Token, bool) {
	i := id.Index()
	switch {
	case i < 0:
		return TokenNone, false
	case i < len(m.holders):
		m.pressHolder(&m.holders[i], host)
		return TokenNone, true
	case i < len(m.holders)+len(m.companions):
		return m.pressCompanion(&m.companions[i-len(m.holders)], host), true
	}
	return TokenNone, false
}

// Release implements Handler.
func (m *MacRemap) Release(id keycode.CustomID, tok Token, host Host) {
	i := id.Index()
	if i >= 0 && i < len(m.holders) {
		m.releaseHolder(&m.holders[i], host)
		return
	}
	if presses, ok := m.presses.take(tok); ok {
		releaseAll(host, presses)
	}
}

func (m *MacRemap) pressHolder(h *holder, host Host) {
	h.count++
	if h.count > 1 {
		return
	}
	h.state = HolderRegistered
	host.PressAction(keycode.Key(h.def.Modifier))
}

func (m *MacRemap) releaseHolder(h *holder, host Host) {
	if h.count == 0 {
		return
	}
	h.count--
	if h.count > 0 {
		return
	}
	switch h.state {
	case HolderConverted:
		host.ReleaseAction(keycode.Key(h.def.ConvertTo), TokenNone)
	case HolderRegistered:
		host.ReleaseAction(keycode.Key(h.def.Modifier), TokenNone)
	}
	h.state = HolderReleased
}

func (m *MacRemap) pressCompanion(c *companion, host Host) Token {
	a := c.def.Default
	for j, hi := range c.chords {
		h := &m.holders[hi]
		if h.state == HolderReleased {
			continue
		}
		if h.state == HolderRegistered && h.def.ConvertTo != key.CodeNone {
			host.ReleaseAction(keycode.Key(h.def.Modifier), TokenNone)
			host.PressAction(keycode.Key(h.def.ConvertTo))
			h.state = HolderConverted
		}
		a = c.def.Chords[j].Action
		break
	}
	inner := host.PressAction(a)
	return m.presses.hold([]nested{{action: a, inner: inner}})
}
