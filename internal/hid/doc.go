// Package hid defines the HID sink the key lifecycle emits into and provides
// a 6-key boot-protocol keyboard that writes 8-byte input reports.
//
// A boot report is
//
//	[modifiers, reserved, k1, k2, k3, k4, k5, k6]
//
// where the modifier byte carries one bit per modifier key usage
// (0xE0 left control through 0xE7 right GUI).
package hid
