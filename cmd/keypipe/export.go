package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/config/loader"
	"github.com/dshills/keypipe/internal/input/keymap"
)

type exportFlags struct {
	qmk      string
	format   string
	output   string
	pipe     string
	keyboard string
	layout   string
}

func getCmdExport(gs *globalState) *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export [profile]",
		Short: "Write a profile as TOML, YAML or QMK JSON",
		Long: `Write a profile in another format.

With --qmk, one pipe's table is written as a QMK configurator keymap.
Actions QMK cannot express are written as their closest keycode and
reported on stderr.`,
		Example: `  keypipe export mac --qmk mac-left.json --pipe left
  keypipe export default --format yaml -o default.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gs.loadProfile(gs.profileRef(args))
			if err != nil {
				return err
			}
			if flags.qmk != "" {
				return exportQMK(cmd.OutOrStdout(), cmd.ErrOrStderr(), gs, p, flags)
			}

			format, err := loader.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			data, err := config.Encode(p, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), flags.output, data)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.qmk, "qmk", "", "write a QMK configurator keymap to `file` (- for stdout)")
	f.StringVar(&flags.format, "format", "toml", "output format (toml, yaml)")
	f.StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&flags.pipe, "pipe", "", "pipe to export with --qmk (default the first)")
	f.StringVar(&flags.keyboard, "keyboard", "", "QMK keyboard name")
	f.StringVar(&flags.layout, "layout", "", "QMK layout macro")
	return cmd
}

func exportQMK(stdout, stderr io.Writer, gs *globalState, p *config.Profile, flags exportFlags) error {
	kb, err := config.Build(p, config.Options{Log: gs.log})
	if err != nil {
		return err
	}
	defer kb.Close()

	var pipe keymap.PipeID
	if flags.pipe != "" {
		pc, ok := p.Pipe(flags.pipe)
		if !ok {
			return fmt.Errorf("%w: %q", keymap.ErrUnknownPipe, flags.pipe)
		}
		pipe = keymap.PipeID(pc.ID)
	} else {
		pipe = keymap.PipeID(p.Pipes[0].ID)
	}

	data, warnings, err := config.ExportQMK(kb, pipe, config.QMKMeta{
		Keyboard: flags.keyboard,
		Layout:   flags.layout,
	})
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	return writeOutput(stdout, flags.qmk, data)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
