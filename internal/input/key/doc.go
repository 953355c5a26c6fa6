// Package key provides HID key usage codes and modifier sets.
//
// This package defines the two leaf types every other input package builds on:
//
//   - Code: a USB HID keyboard usage (page 0x07), e.g. CodeA, CodeTab,
//     CodeGUILeft
//   - Modifier: a set over {Ctrl, Shift, Alt, GUI}, laid out like the low
//     nibble of a HID boot-report modifier byte
//
// # Key Names
//
// Codes can be looked up by name (case-insensitive), with common aliases:
//
//   - Plain names: "a", "tab", "enter", "f4", "space"
//   - HID style: "HID_KEY_TAB", "KC_TAB"
//   - Aliases: "esc", "bs", "del", "pgup", "lgui", "lctrl"
//
// Modifier keys (left and right Ctrl/Shift/Alt/GUI) map onto the same
// Modifier bit, so a held right shift and a held left shift are both
// reported as ModShift.
package key
