// Package keymap holds the per-pipe keycode tables and resolves physical
// key positions to actions against the active layer stack.
//
// # Key Concepts
//
// Keymap: A named table of encoded keycode words indexed by layer and
// position. One Keymap describes one pipe, a cluster of physical positions
// such as the left or right half of a split board.
//
// Registry: Eight pipe slots. A slot holds a Keymap or nothing; the same
// Keymap may be bound to several slots.
//
// Resolver: The resolution engine. All pipes consult one shared layer.Stack.
//
// # Resolution
//
// Active layers are walked from highest precedence to the base layer:
//
//   - Transparent ("___") falls through to the next active layer
//   - Opaque ("XXX") stops the walk with no action
//   - Anything else is the result
//
// Precedence is activation order, never layer number. A walk that reaches
// past the base layer produces no action.
//
// # Usage
//
//	km := keymap.NewKeymap("left", 36)
//	km.SetAction(layer.Base, 0, keycode.Key(key.CodeTab))
//
//	reg := keymap.NewRegistry()
//	reg.Bind(1, km)
//
//	r := keymap.NewResolver(reg, stack)
//	action := r.Resolve(1, 0)
package keymap
