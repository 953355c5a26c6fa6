// Package layer tracks which keymap layers are active and in what order.
//
// The Stack holds every active layer above the base layer, ordered by
// activation time. Lookups walk it from the most recently activated layer
// down to the base layer, so precedence follows activation order and never
// the numeric layer id:
//
//	toggle(game)          active: game, base
//	momentary(num)        active: num, game, base
//	release num           active: game, base
//	toggle(game)          active: base
//
// Layers are declared by name in a Set. Ids are assigned per profile at
// load time, with index 0 always the base layer.
//
// A Stack is not safe for concurrent use. Key events are serialized by the
// caller, which is the only writer.
package layer
