// Package midi defines the MIDI sink used by the MIDI custom keycodes and
// provides a raw-byte encoder, a recorder, a fan-out tee and a software
// synthesizer for monitoring notes on the local sound card.
package midi
