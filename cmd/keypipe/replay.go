package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/hid"
	"github.com/dshills/keypipe/internal/input"
	"github.com/dshills/keypipe/internal/input/keymap"
	"github.com/dshills/keypipe/internal/midi"
)

func getCmdReplay(gs *globalState) *cobra.Command {
	var disabled []string
	cmd := &cobra.Command{
		Use:   "replay <profile> <events-file>",
		Short: "Run recorded key events through a profile",
		Long: `Run key events through a profile and print every HID and MIDI call.

Each line of the events file is "pipe pos down" or "pipe pos up"; "pipe/pos"
is also accepted. Blank lines and lines starting with # are skipped. Use -
to read events from stdin. Keys still held at the end are released.`,
		Example: `  printf '1 14 down\n1 6 down\n1 6 up\n1 14 up\n' | keypipe replay mac -`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gs.loadProfile(args[0])
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			events, err := parseEvents(in)
			if err != nil {
				return err
			}

			mute, err := pipeFilter(p, disabled)
			if err != nil {
				return err
			}
			return replay(cmd.OutOrStdout(), gs, p, events, mute)
		},
	}
	cmd.Flags().StringSliceVar(&disabled, "disable-pipe", nil, "ignore presses on the named `pipe` (repeatable)")
	return cmd
}

// pipeFilter returns a filter for the slots of the named pipes.
func pipeFilter(p *config.Profile, names []string) (input.PipeFilter, error) {
	var f input.PipeFilter
	for _, name := range names {
		pc, ok := p.Pipe(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", keymap.ErrUnknownPipe, name)
		}
		for _, id := range pc.SlotIDs() {
			f = append(f, keymap.PipeID(id))
		}
	}
	return f, nil
}

// parseEvents reads one event per line.
func parseEvents(r io.Reader) ([]input.Event, error) {
	var events []input.Event
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 {
			fields = append(strings.SplitN(fields[0], "/", 2), fields[1])
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want \"pipe pos down|up\", got %q", n, line)
		}
		pipe, pos, err := parseSlot(fields[0] + "/" + fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		switch strings.ToLower(fields[2]) {
		case "down", "press":
			events = append(events, input.Press(pipe, pos))
		case "up", "release":
			events = append(events, input.Release(pipe, pos))
		default:
			return nil, fmt.Errorf("line %d: unknown transition %q", n, fields[2])
		}
	}
	return events, sc.Err()
}

// replayOutput prints sink calls made since the last flush.
type replayOutput struct {
	w        io.Writer
	hid      *hid.Recorder
	midi     *midi.Recorder
	hidSeen  int
	midiSeen int
}

func (o *replayOutput) flush() {
	for _, c := range o.hid.Calls[o.hidSeen:] {
		fmt.Fprintf(o.w, "    hid  %s\n", c)
	}
	for _, m := range o.midi.Messages[o.midiSeen:] {
		fmt.Fprintf(o.w, "    midi %s\n", m)
	}
	o.hidSeen, o.midiSeen = len(o.hid.Calls), len(o.midi.Messages)
}

func replay(w io.Writer, gs *globalState, p *config.Profile, events []input.Event, mute input.PipeFilter) error {
	out := &replayOutput{w: w, hid: hid.NewRecorder(), midi: midi.NewRecorder()}
	session := uuid.NewString()
	log := gs.log.WithField("session", session)

	kb, err := config.Build(p, config.Options{HID: out.hid, MIDI: out.midi, Log: log})
	if err != nil {
		return err
	}
	defer kb.Close()
	if len(mute) > 0 {
		kb.Handler.Hooks().Add("disable-pipe", input.HookPriorityFirst, mute)
	}

	fmt.Fprintf(w, "# session %s profile %s\n", session, p.Name)
	for _, ev := range events {
		d := kb.Handler.HandleEvent(ev)
		fmt.Fprintf(w, "%-10s %-24s %s\n", ev, kb.Format(d.Action), d.Outcome)
		out.flush()
	}

	if kb.Handler.HeldCount() > 0 {
		fmt.Fprintf(w, "release all (%d held)\n", kb.Handler.HeldCount())
		kb.Handler.ReleaseAll()
		out.flush()
	}

	m := kb.Handler.Metrics().Snapshot()
	fmt.Fprintf(w, "# %d presses, %d releases, %d unmatched, %d repeated, %d no-action, %d filtered\n",
		m.Presses, m.Releases, m.UnmatchedRelease, m.RepeatedPresses, m.NoActionPresses, m.HookConsumptions)
	return nil
}
