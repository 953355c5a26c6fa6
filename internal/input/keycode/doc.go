// Package keycode encodes and decodes the 32-bit action word stored in
// keymap tables.
//
// A word resolves to exactly one Action variant:
//
//   - Transparent: defer to the next lower active layer (word 0)
//   - Opaque: no action, stop layer fallthrough (word 0xFFFFFFFF)
//   - Key: a HID usage with forced-on and forced-off modifier sets
//   - Layer: momentary or toggle activation of a layer
//   - Custom: an id dispatched to a custom keycode handler family
//   - Midi: a MIDI note
//
// # Word Layout
//
//	bits 31..24  kind    0 key/layer, 1 custom, 2 midi
//	bits 23..20  anti-modifiers (ctrl, shift, alt, gui)
//	bits 19..16  modifiers (ctrl, shift, alt, gui)
//	bits 15..8   opcode  0 key, 1 momentary, 2 toggle
//	bits  7..0   HID usage or layer id
//
// Custom words carry a 24-bit id, MIDI words a 7-bit note. Words that fit
// none of these shapes are malformed: DecodeStrict reports ErrMalformedWord
// and Decode treats them as Opaque.
//
// # Spec Strings
//
// Keymap authors write actions as spec strings, parsed by Parser:
//
//	"___"            transparent
//	"XXX"            opaque
//	"TAB", "KC_A"    plain keys
//	"S(TAB)"         shift+tab
//	"US(QUOTE)"      apostrophe with shift forced off
//	"Ctrl+Shift+Tab" readable chord
//	"MO(num)"        momentary layer, by name or number
//	"TG(game)"       toggle layer
//	"DUAL(name)"     dual-role key
//	"MAC(name)"      mac modifier-remap key
//	"CH(5)" "OCT(-1)" MIDI channel and octave keys
//	"NOTE(C4)"       MIDI note (also "MIDI(60)")
package keycode
