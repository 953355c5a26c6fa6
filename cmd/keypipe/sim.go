package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/config/loader"
	"github.com/dshills/keypipe/internal/midi"
	"github.com/dshills/keypipe/internal/sim"
)

// errNoTerminal is returned by sim when stdin or stdout is not a terminal.
var errNoTerminal = errors.New("sim needs an interactive terminal")

func getCmdSim(gs *globalState) *cobra.Command {
	var (
		monitor  bool
		disabled []string
	)
	cmd := &cobra.Command{
		Use:   "sim [profile]",
		Short: "Try a profile interactively",
		Long: `Run a profile against the terminal keyboard.

Each pipe table gets one row of keys. A key latches: type it once to press
the position and again to release it. Escape releases everything and
Ctrl-C quits. Profile files are reloaded when they change on disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gs.isTTY {
				return errNoTerminal
			}
			p, err := gs.loadProfile(gs.profileRef(args))
			if err != nil {
				return err
			}

			muted, err := pipeFilter(p, disabled)
			if err != nil {
				return err
			}

			var out midi.Sink
			if monitor {
				synth := midi.NewSynth(midi.DefaultSampleRate, 5*time.Millisecond, 150*time.Millisecond)
				if err := synth.Play(); err != nil {
					return err
				}
				defer synth.Close()
				out = synth
			}

			screen, err := gs.newScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			// Log lines would tear the screen.
			log := gs.log
			log.SetOutput(io.Discard)

			s, err := sim.New(p, sim.Options{MIDI: out, Log: log, Muted: muted})
			if err != nil {
				return err
			}
			defer s.Close()

			view := sim.NewView(screen, s)
			if !p.IsBuiltin() {
				r, err := sim.WatchProfile(s, p.Source, sim.ReloadOptions{
					Prepare: func(p *config.Profile) error {
						return config.ApplyEnv(p, loader.NewEnvLoaderFrom(loader.EnvPrefix, gs.env))
					},
					Done: view.Refresh,
					Log:  log,
				})
				if err != nil {
					return err
				}
				defer r.Close()
			}

			err = view.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&monitor, "monitor", false, "play MIDI notes through the speaker")
	cmd.Flags().StringSliceVar(&disabled, "disable-pipe", nil, "ignore presses on the named `pipe` (repeatable)")
	return cmd
}
