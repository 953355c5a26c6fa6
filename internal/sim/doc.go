// Package sim runs a keyboard profile against terminal input.
//
// A terminal reports key presses but not releases, so the simulator treats
// each mapped key as a latch: typing it once presses the position and
// typing it again releases it. Escape releases every held position.
//
// The default layout gives each distinct pipe table one row of terminal
// keys. Mirrored pipes share a table and get no row of their own.
//
// Usage:
//
//	s, err := sim.New(profile, sim.Options{MIDI: synth})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	view := sim.NewView(screen, s)
//	return view.Run(ctx)
package sim
