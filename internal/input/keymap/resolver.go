package keymap

import (
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/layer"
)

// Resolver maps (pipe, position) to an action using the active layers.
// It is not safe for concurrent use.
type Resolver struct {
	registry *Registry
	stack    *layer.Stack

	// scratch avoids allocating the active layer list per event.
	scratch []layer.ID
}

// NewResolver creates a resolver over registry and stack.
func NewResolver(registry *Registry, stack *layer.Stack) *Resolver {
	return &Resolver{
		registry: registry,
		stack:    stack,
		scratch:  make([]layer.ID, 0, 8),
	}
}

// Registry returns the pipe registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Stack returns the layer stack.
func (r *Resolver) Stack() *layer.Stack {
	return r.stack
}

// Resolve returns the action for pos on pipe under the current layer stack.
// Unbound pipes and positions out of range resolve to keycode.NoAction.
func (r *Resolver) Resolve(pipe PipeID, pos int) keycode.Action {
	r.scratch = r.stack.AppendActive(r.scratch[:0])
	return r.ResolveIn(pipe, pos, r.scratch)
}

// ResolveIn resolves against an explicit active layer list, highest
// precedence first.
func (r *Resolver) ResolveIn(pipe PipeID, pos int, active []layer.ID) keycode.Action {
	km := r.registry.Get(pipe)
	if km == nil || pos < 0 || pos >= km.Positions() {
		return keycode.NoAction
	}
	for _, l := range active {
		a := keycode.Decode(km.Word(l, pos))
		if a.IsTransparent() {
			continue
		}
		return a
	}
	return keycode.NoAction
}

// Step is one layer visited during resolution.
type Step struct {
	Layer  layer.ID
	Word   keycode.Word
	Action keycode.Action
}

// Trace records how a position resolved.
type Trace struct {
	Pipe     PipeID
	Position int
	Steps    []Step
	Result   keycode.Action

	// Exhausted is set when every active layer was transparent.
	Exhausted bool
}

// Explain resolves like Resolve and records every layer visited.
func (r *Resolver) Explain(pipe PipeID, pos int) Trace {
	t := Trace{Pipe: pipe, Position: pos, Result: keycode.NoAction}
	km := r.registry.Get(pipe)
	if km == nil || pos < 0 || pos >= km.Positions() {
		return t
	}
	for _, l := range r.stack.Active() {
		w := km.Word(l, pos)
		a := keycode.Decode(w)
		t.Steps = append(t.Steps, Step{Layer: l, Word: w, Action: a})
		if a.IsTransparent() {
			continue
		}
		t.Result = a
		return t
	}
	t.Exhausted = true
	return t
}
