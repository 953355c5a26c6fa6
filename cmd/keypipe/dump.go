package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/input/keymap"
	"github.com/dshills/keypipe/internal/input/layer"
)

// dumpColumns is the row width used when positions divide evenly.
const dumpColumns = 7

type dumpFlags struct {
	layer   string
	pipe    string
	explain string
}

func getCmdDump(gs *globalState) *cobra.Command {
	var flags dumpFlags
	cmd := &cobra.Command{
		Use:   "dump [profile]",
		Short: "Print resolved keymap tables",
		Long: `Print each pipe's table as it resolves with one layer active over the
base layer. Transparent entries show the action they fall through to.

With --explain pipe/pos, print every layer visited while resolving that
position instead.`,
		Example: `  keypipe dump mac --layer sym
  keypipe dump default --pipe pad
  keypipe dump mac --layer num --explain 2/3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gs.loadProfile(gs.profileRef(args))
			if err != nil {
				return err
			}
			kb, err := config.Build(p, config.Options{Log: gs.log})
			if err != nil {
				return err
			}
			defer kb.Close()

			var layers []layer.ID
			if flags.layer != "" {
				id, err := kb.Layers.Lookup(flags.layer)
				if err != nil {
					return err
				}
				layers = []layer.ID{id}
			} else {
				for i := 0; i < kb.Layers.Len(); i++ {
					layers = append(layers, layer.ID(i))
				}
			}

			if flags.explain != "" {
				return explain(cmd.OutOrStdout(), kb, flags.explain, layers)
			}
			return dumpTables(cmd.OutOrStdout(), kb, flags.pipe, layers)
		},
	}
	cmd.Flags().StringVar(&flags.layer, "layer", "", "only this layer")
	cmd.Flags().StringVar(&flags.pipe, "pipe", "", "only this pipe")
	cmd.Flags().StringVar(&flags.explain, "explain", "", "trace resolution of `pipe/pos`")
	return cmd
}

func dumpTables(w io.Writer, kb *config.Keyboard, pipeName string, layers []layer.ID) error {
	title := cases.Title(language.English)
	found := false
	for _, pc := range kb.Profile.Pipes {
		if pipeName != "" && !strings.EqualFold(pc.Name, pipeName) {
			continue
		}
		found = true
		pipe := keymap.PipeID(pc.ID)
		km := kb.Registry.Get(pipe)

		cols := km.Positions()
		if cols%dumpColumns == 0 {
			cols = dumpColumns
		}
		for _, l := range layers {
			name, _ := kb.LayerName(l)
			fmt.Fprintf(w, "%s %v / %s\n", pc.Name, pc.SlotIDs(), title.String(name))

			active := []layer.ID{l}
			if l != layer.Base {
				active = append(active, layer.Base)
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for pos := 0; pos < km.Positions(); pos++ {
				sep := "\t"
				if (pos+1)%cols == 0 || pos == km.Positions()-1 {
					sep = "\n"
				}
				fmt.Fprintf(tw, "%s%s", kb.Format(kb.Resolver.ResolveIn(pipe, pos, active)), sep)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", keymap.ErrUnknownPipe, pipeName)
	}
	return nil
}

// parseSlot parses "pipe/pos".
func parseSlot(s string) (keymap.PipeID, int, error) {
	pipeStr, posStr, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q, want pipe/pos", s)
	}
	pipe, err := strconv.ParseUint(strings.TrimSpace(pipeStr), 10, 8)
	if err != nil || pipe >= keymap.MaxPipes {
		return 0, 0, fmt.Errorf("invalid pipe in %q", s)
	}
	pos, err := strconv.Atoi(strings.TrimSpace(posStr))
	if err != nil || pos < 0 {
		return 0, 0, fmt.Errorf("invalid position in %q", s)
	}
	return keymap.PipeID(pipe), pos, nil
}

// explain activates layers momentarily and traces one position.
func explain(w io.Writer, kb *config.Keyboard, slot string, layers []layer.ID) error {
	pipe, pos, err := parseSlot(slot)
	if err != nil {
		return err
	}
	for _, l := range layers {
		kb.Stack.ActivateMomentary(l)
	}
	defer kb.Stack.Reset()

	t := kb.Resolver.Explain(pipe, pos)
	fmt.Fprintf(w, "%d/%d\n", t.Pipe, t.Position)
	for _, step := range t.Steps {
		name, _ := kb.LayerName(step.Layer)
		fmt.Fprintf(w, "  %-8s %s  %s\n", name, step.Word, kb.Format(step.Action))
	}
	switch {
	case len(t.Steps) == 0:
		fmt.Fprintln(w, "  unbound")
	case t.Exhausted:
		fmt.Fprintln(w, "  every layer transparent")
	}
	fmt.Fprintf(w, "= %s\n", kb.Format(t.Result))
	return nil
}
