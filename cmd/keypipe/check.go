package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/keypipe/internal/config"
)

func getCmdCheck(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "check [profile]",
		Short: "Load and validate a profile",
		Long: `Load a profile, validate it and build its keymaps.

Every validation error is reported with the setting it refers to.`,
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "profile %s (%s)\n", p.Name, p.Source)
			fmt.Fprintf(out, "  layers: %s\n", strings.Join(p.Layers, ", "))
			for _, pc := range p.Pipes {
				fmt.Fprintf(out, "  pipe %s: slots %v, %d positions\n", pc.Name, pc.SlotIDs(), pc.Positions)
			}
			fmt.Fprintf(out, "  custom keys: %d dual-role, %d mac, script %s\n",
				len(p.DualRole), len(p.MacHolders)+len(p.MacCompanions), orNone(p.Script))
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
