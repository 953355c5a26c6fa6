// Package custom implements the custom keycode handler families: dual-role
// keys, mac modifier-remap keys, MIDI channel/octave/note keys and
// Lua-scripted keys.
//
// Handlers never talk to the HID sink or layer stack directly. They press
// and release ordinary actions through a Host, which is the key lifecycle
// manager, so a nested action is undone exactly as the host would undo it
// for a physical key.
//
// Every press returns a Token. The lifecycle manager stores it with the
// position and hands it back on release, so release never depends on state
// that changed while the key was held.
//
// Handler state lives in handler instances. Nothing here is global, and
// nothing is safe for concurrent use.
package custom
