package layer

import (
	"github.com/dshills/keypipe/internal/input/keycode"
)

// entry is one activation on the stack.
type entry struct {
	layer ID
	op    keycode.LayerOp
}

// ChangeCallback is called after the active layer list changes.
// active is ordered highest precedence first and ends with Base.
type ChangeCallback func(active []ID)

// Stack tracks active layers in activation order.
type Stack struct {
	// entries holds activations above the base layer, oldest first.
	entries []entry

	// callbacks are notified on membership changes.
	callbacks []ChangeCallback
}

// NewStack creates a stack with only the base layer active.
func NewStack() *Stack {
	return &Stack{
		entries: make([]entry, 0, 8),
	}
}

// ActivateMomentary pushes a momentary activation of layer.
// Activating the base layer is a no-op.
func (s *Stack) ActivateMomentary(layer ID) {
	if layer == Base {
		return
	}
	s.entries = append(s.entries, entry{layer: layer, op: keycode.LayerMomentary})
	s.notify()
}

// DeactivateMomentary removes the most recent momentary activation of layer.
// Toggle activations of the same layer are left in place.
// Returns false if no momentary activation was found.
func (s *Stack) DeactivateMomentary(layer ID) bool {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.layer == layer && e.op == keycode.LayerMomentary {
			s.remove(i)
			s.notify()
			return true
		}
	}
	return false
}

// Toggle flips the toggle membership of layer and reports whether it is
// now toggled on. Toggling the base layer is a no-op that returns true.
func (s *Stack) Toggle(layer ID) bool {
	if layer == Base {
		return true
	}
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.layer == layer && e.op == keycode.LayerToggle {
			s.remove(i)
			s.notify()
			return false
		}
	}
	s.entries = append(s.entries, entry{layer: layer, op: keycode.LayerToggle})
	s.notify()
	return true
}

func (s *Stack) remove(i int) {
	copy(s.entries[i:], s.entries[i+1:])
	s.entries = s.entries[:len(s.entries)-1]
}

// Active returns the active layers, highest precedence first, ending with
// Base. A layer activated more than once appears at its most recent position.
func (s *Stack) Active() []ID {
	return s.AppendActive(make([]ID, 0, len(s.entries)+1))
}

// AppendActive appends the active layers to dst in precedence order.
func (s *Stack) AppendActive(dst []ID) []ID {
	start := len(dst)
	for i := len(s.entries) - 1; i >= 0; i-- {
		l := s.entries[i].layer
		if !containsID(dst[start:], l) {
			dst = append(dst, l)
		}
	}
	return append(dst, Base)
}

func containsID(ids []ID, id ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// IsActive reports whether layer is currently active.
func (s *Stack) IsActive(layer ID) bool {
	if layer == Base {
		return true
	}
	for _, e := range s.entries {
		if e.layer == layer {
			return true
		}
	}
	return false
}

// IsToggled reports whether layer has a toggle activation.
func (s *Stack) IsToggled(layer ID) bool {
	for _, e := range s.entries {
		if e.layer == layer && e.op == keycode.LayerToggle {
			return true
		}
	}
	return false
}

// BaseOnly reports whether the base layer is the only active layer.
func (s *Stack) BaseOnly() bool {
	return len(s.entries) == 0
}

// Top returns the highest-precedence active layer.
func (s *Stack) Top() ID {
	if len(s.entries) == 0 {
		return Base
	}
	return s.entries[len(s.entries)-1].layer
}

// Depth returns the number of activations above the base layer.
func (s *Stack) Depth() int {
	return len(s.entries)
}

// Reset drops every activation, leaving only the base layer.
func (s *Stack) Reset() {
	if len(s.entries) == 0 {
		return
	}
	s.entries = s.entries[:0]
	s.notify()
}

// OnChange registers a callback for layer changes.
// Returns a function to unregister the callback.
func (s *Stack) OnChange(callback ChangeCallback) func() {
	s.callbacks = append(s.callbacks, callback)
	index := len(s.callbacks) - 1

	return func() {
		// Remove callback by setting to nil (preserves indices)
		if index < len(s.callbacks) {
			s.callbacks[index] = nil
		}
	}
}

func (s *Stack) notify() {
	if len(s.callbacks) == 0 {
		return
	}
	active := s.Active()
	for _, cb := range s.callbacks {
		if cb != nil {
			cb(active)
		}
	}
}
