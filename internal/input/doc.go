// Package input is the key lifecycle manager of keypipe.
//
// The input package turns serialized (pipe, position, pressed) events from a
// matrix scanner into HID registrations, layer changes and custom keycode
// dispatches, and guarantees each press is undone exactly once on release.
//
// # Architecture
//
// The lifecycle manager cooperates with:
//
//   - keymap.Resolver: resolves a position against the active layers
//   - layer.Stack: momentary and toggled layers
//   - hid.Sink: standard key registration
//   - CustomDispatcher: dual-role, mac remap, MIDI and scripted keys
//
// # Press and Release
//
// A press resolves the position once and records the resolved action with
// the token its dispatch returned. A release never resolves again; it
// replays the recorded dispatch in reverse. This keeps a key that was
// pressed on one layer from leaking when the layer changes before release:
//
//	MO(n)   press activates layer n, release deactivates it
//	TG(n)   press toggles layer n, release does nothing
//	key     press registers, release unregisters the same code
//	custom  press and release go to the handler with the stored token
//
// Releases of idle positions and repeated presses of held positions are
// ignored.
//
// # Concurrency
//
// A Handler is single-threaded. Events must be serialized by the caller;
// nothing in the event path blocks or locks.
//
// # Usage
//
//	h := input.NewHandler(input.DefaultConfig(), resolver, stack, keyboard, dispatcher, log)
//
//	for ev := range scanner.Events() {
//	    h.HandleEvent(ev)
//	}
//	h.ReleaseAll()
package input
