package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/config/loader"
	"github.com/dshills/keypipe/internal/logging"
)

// globalState holds what every command shares. Tests replace the streams,
// the environment and the screen constructor.
type globalState struct {
	ctx context.Context

	stdIn  io.Reader
	stdOut io.Writer
	stdErr io.Writer
	env    []string

	// isTTY reports whether stdin and stdout are terminals.
	isTTY bool

	newScreen func() (tcell.Screen, error)

	flags    globalFlags
	settings config.Settings
	log      *logging.Logger
}

type globalFlags struct {
	logLevel  string
	logJSON   bool
	configDir string
}

func newGlobalState(ctx context.Context) *globalState {
	return &globalState{
		ctx:       ctx,
		stdIn:     os.Stdin,
		stdOut:    os.Stdout,
		stdErr:    os.Stderr,
		env:       os.Environ(),
		isTTY:     term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
		newScreen: tcell.NewScreen,
		log:       logging.Nop(),
	}
}

func newRootCommand(gs *globalState) *cobra.Command {
	root := &cobra.Command{
		Use:   "keypipe",
		Short: "Keycode resolution for split keyboards",
		Long: `keypipe resolves key positions through layered keymaps into HID key
registrations and MIDI messages.

A profile is a TOML or YAML file, a QMK configurator JSON keymap, or the
name of a profile in the config directory or built in (default, mac).`,
		Version:           fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: gs.persistentPreRunE,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&gs.flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&gs.flags.logJSON, "log-json", false, "write logs as JSON")
	flags.StringVar(&gs.flags.configDir, "config-dir", "", "directory searched for named profiles")

	root.AddCommand(
		getCmdCheck(gs),
		getCmdDump(gs),
		getCmdReplay(gs),
		getCmdSim(gs),
		getCmdExport(gs),
	)
	return root
}

// persistentPreRunE merges environment settings under explicit flags and
// sets up logging.
func (gs *globalState) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	gs.settings = config.ReadSettings(loader.NewEnvLoaderFrom(loader.EnvPrefix, gs.env))

	flags := cmd.Flags()
	if flags.Changed("log-level") || gs.settings.LogLevel == "" {
		gs.settings.LogLevel = gs.flags.logLevel
	}
	if flags.Changed("log-json") {
		gs.settings.LogJSON = gs.flags.logJSON
	}
	if flags.Changed("config-dir") {
		gs.settings.ConfigDir = gs.flags.configDir
	}

	level, err := logging.ParseLevel(gs.settings.LogLevel)
	if err != nil {
		return err
	}
	gs.log = logging.New(logging.Config{Level: level, Output: gs.stdErr, JSON: gs.settings.LogJSON})
	return nil
}

// profileRef returns the profile named on the command line, or the
// KEYPIPE_PROFILE setting, or "default".
func (gs *globalState) profileRef(args []string) string {
	switch {
	case len(args) > 0:
		return args[0]
	case gs.settings.Profile != "":
		return gs.settings.Profile
	default:
		return "default"
	}
}

// loadProfile finds a profile and applies environment overrides.
func (gs *globalState) loadProfile(ref string) (*config.Profile, error) {
	p, err := config.Find(ref, gs.settings.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(p, loader.NewEnvLoaderFrom(loader.EnvPrefix, gs.env)); err != nil {
		return nil, err
	}
	gs.log.Debug("loaded profile %s from %s", p.Name, p.Source)
	return p, nil
}

// execute runs the command line and returns the process exit code.
func execute(gs *globalState, args []string) int {
	root := newRootCommand(gs)
	root.SetArgs(args)
	root.SetIn(gs.stdIn)
	root.SetOut(gs.stdOut)
	root.SetErr(gs.stdErr)

	if err := root.ExecuteContext(gs.ctx); err != nil {
		printError(gs.stdErr, err)
		return 1
	}
	return 0
}

// printError prints err, one line per validation error.
func printError(w io.Writer, err error) {
	verrs := config.ValidationErrors(err)
	if len(verrs) == 0 {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	for _, ve := range verrs {
		fmt.Fprintf(w, "  %s\n", ve)
	}
	fmt.Fprintf(w, "Error: %d validation errors\n", len(verrs))
}
