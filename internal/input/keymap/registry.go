package keymap

import (
	"errors"
	"fmt"
	"strings"
)

// MaxPipes is the number of pipe slots.
const MaxPipes = 8

// PipeID identifies a pipe slot.
type PipeID uint8

// Registry errors
var (
	ErrUnknownPipe = errors.New("unknown pipe")
	ErrPipeRange   = errors.New("pipe id out of range")
	ErrPipeBound   = errors.New("pipe slot already bound")
	ErrNilKeymap   = errors.New("cannot bind nil keymap")
)

// Registry binds keymaps to pipe slots.
// Unbound slots resolve to no action.
type Registry struct {
	slots [MaxPipes]*Keymap
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Bind assigns km to the pipe slot id. The same keymap may be bound to
// several slots.
func (r *Registry) Bind(id PipeID, km *Keymap) error {
	if km == nil {
		return ErrNilKeymap
	}
	if int(id) >= MaxPipes {
		return fmt.Errorf("%w: %d", ErrPipeRange, id)
	}
	if cur := r.slots[id]; cur != nil && cur != km {
		return fmt.Errorf("%w: %d is %q", ErrPipeBound, id, cur.Name)
	}
	r.slots[id] = km
	return nil
}

// Unbind clears the pipe slot id.
func (r *Registry) Unbind(id PipeID) {
	if int(id) < MaxPipes {
		r.slots[id] = nil
	}
}

// Get returns the keymap bound to id, or nil.
func (r *Registry) Get(id PipeID) *Keymap {
	if int(id) >= MaxPipes {
		return nil
	}
	return r.slots[id]
}

// Lookup returns the lowest pipe id whose keymap has the given name.
func (r *Registry) Lookup(name string) (PipeID, error) {
	for i, km := range r.slots {
		if km != nil && strings.EqualFold(km.Name, name) {
			return PipeID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPipe, name)
}

// Pipes returns the bound pipe ids in ascending order.
func (r *Registry) Pipes() []PipeID {
	ids := make([]PipeID, 0, MaxPipes)
	for i, km := range r.slots {
		if km != nil {
			ids = append(ids, PipeID(i))
		}
	}
	return ids
}

// Keymaps returns each distinct bound keymap once, in pipe order.
func (r *Registry) Keymaps() []*Keymap {
	out := make([]*Keymap, 0, MaxPipes)
	for _, km := range r.slots {
		if km == nil {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == km {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, km)
		}
	}
	return out
}

// Validate validates every bound keymap.
func (r *Registry) Validate() error {
	for _, km := range r.Keymaps() {
		if err := km.Validate(); err != nil {
			return err
		}
	}
	return nil
}
