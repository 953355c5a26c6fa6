package hid

import (
	"github.com/dshills/keypipe/internal/input/key"
)

// Sink receives key registrations from the lifecycle manager.
type Sink interface {
	// Register asserts code with forced modifiers mods and force-cleared
	// modifiers anti for as long as code stays registered.
	Register(code key.Code, mods, anti key.Modifier)

	// Unregister releases code. Unregistering a code that is not
	// registered is a no-op.
	Unregister(code key.Code)
}

// ModifierState answers whether a modifier key usage is held.
type ModifierState interface {
	IsModifierHeld(code key.Code) bool
}

// StateSink is a Sink that can also report modifier state.
type StateSink interface {
	Sink
	ModifierState
}
