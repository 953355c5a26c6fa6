package custom

import (
	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/logging"
)

// Token is an opaque value returned by a press and passed back on release.
type Token uint32

// TokenNone is the inert token. Releasing it does nothing.
const TokenNone Token = 0

// Host dispatches ordinary actions on behalf of a handler.
type Host interface {
	// PressAction performs the press-time dispatch of a and returns the
	// token needed to undo it.
	PressAction(a keycode.Action) Token

	// ReleaseAction undoes a dispatch made by PressAction.
	ReleaseAction(a keycode.Action, tok Token)

	// IsModifierHeld reports whether the modifier key usage code is held.
	IsModifierHeld(code key.Code) bool

	// BaseOnly reports whether the base layer is the only active layer.
	BaseOnly() bool
}

// Handler is one custom keycode family.
type Handler interface {
	// Defines reports whether id is bound to a definition.
	Defines(id keycode.CustomID) bool

	// Press handles a press of id. ok is false if id is not defined.
	Press(id keycode.CustomID, host Host) (tok Token, ok bool)

	// Release undoes the press that returned tok.
	Release(id keycode.CustomID, tok Token, host Host)
}

// Dispatcher routes custom and MIDI actions to handler families.
type Dispatcher struct {
	log      *logging.Logger
	handlers map[keycode.Family]Handler
	midi     *MIDI
}

// NewDispatcher creates a dispatcher with no families installed.
func NewDispatcher(log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Dispatcher{
		log:      log.WithComponent("custom"),
		handlers: make(map[keycode.Family]Handler),
	}
}

// Use installs h for family.
func (d *Dispatcher) Use(family keycode.Family, h Handler) *Dispatcher {
	d.handlers[family] = h
	return d
}

// UseDualRole installs the dual-role family.
func (d *Dispatcher) UseDualRole(h *DualRole) *Dispatcher {
	return d.Use(keycode.FamilyDualRole, h)
}

// UseMacRemap installs the mac modifier-remap family.
func (d *Dispatcher) UseMacRemap(h *MacRemap) *Dispatcher {
	return d.Use(keycode.FamilyMacRemap, h)
}

// UseScript installs the Lua script family.
func (d *Dispatcher) UseScript(h *Script) *Dispatcher {
	return d.Use(keycode.FamilyScript, h)
}

// UseMIDI installs the MIDI handler for note, channel and octave keys.
func (d *Dispatcher) UseMIDI(h *MIDI) *Dispatcher {
	d.midi = h
	d.handlers[keycode.FamilyMIDIChannel] = h
	d.handlers[keycode.FamilyMIDIOctave] = h
	return d
}

// Handles reports whether a press of a would reach a handler.
func (d *Dispatcher) Handles(a keycode.Action) bool {
	if a.Kind == keycode.KindMidi {
		return d.midi != nil
	}
	if a.Kind != keycode.KindCustom {
		return false
	}
	h, ok := d.handlers[a.Custom.Family()]
	return ok && h.Defines(a.Custom)
}

// Register dispatches the press of a custom or MIDI action.
// Undefined ids are logged and produce an inert token.
func (d *Dispatcher) Register(a keycode.Action, host Host) Token {
	switch a.Kind {
	case keycode.KindMidi:
		if d.midi == nil {
			d.missing(a)
			return TokenNone
		}
		return d.midi.PressNote(a.Note)
	case keycode.KindCustom:
		h, ok := d.handlers[a.Custom.Family()]
		if !ok {
			d.missing(a)
			return TokenNone
		}
		tok, ok := h.Press(a.Custom, host)
		if !ok {
			d.missing(a)
			return TokenNone
		}
		return tok
	default:
		d.log.Warn("not a custom action: %s", a)
		return TokenNone
	}
}

// Unregister undoes the press that returned tok.
func (d *Dispatcher) Unregister(a keycode.Action, tok Token, host Host) {
	switch a.Kind {
	case keycode.KindMidi:
		if d.midi != nil {
			d.midi.ReleaseNote(tok)
		}
	case keycode.KindCustom:
		if h, ok := d.handlers[a.Custom.Family()]; ok {
			h.Release(a.Custom, tok, host)
		}
	}
}

func (d *Dispatcher) missing(a keycode.Action) {
	if a.Kind == keycode.KindMidi {
		d.log.WithField("family", a.Family()).Warn("missing keycode %s", a)
		return
	}
	d.log.WithField("family", a.Family()).Warn("missing keycode 0x%04X", uint32(a.Custom))
}

// anyHeld reports whether any modifier in mods is held on either side.
func anyHeld(host Host, mods key.Modifier) bool {
	for _, code := range mods.Codes() {
		if host.IsModifierHeld(code) {
			return true
		}
	}
	return false
}

// nested is an action a handler pressed through the host.
type nested struct {
	action keycode.Action
	inner  Token
}

// pressSet tracks nested presses awaiting release.
type pressSet struct {
	next    Token
	pending map[Token][]nested
}

func newPressSet() pressSet {
	return pressSet{pending: make(map[Token][]nested)}
}

// hold stores presses and returns a fresh token for them.
func (p *pressSet) hold(presses []nested) Token {
	p.next++
	if p.next == TokenNone {
		p.next++
	}
	p.pending[p.next] = presses
	return p.next
}

// take removes and returns the presses stored under tok.
func (p *pressSet) take(tok Token) ([]nested, bool) {
	presses, ok := p.pending[tok]
	if ok {
		delete(p.pending, tok)
	}
	return presses, ok
}

// releaseAll undoes presses in reverse order.
func releaseAll(host Host, presses []nested) {
	for i := len(presses) - 1; i >= 0; i-- {
		host.ReleaseAction(presses[i].action, presses[i].inner)
	}
}
