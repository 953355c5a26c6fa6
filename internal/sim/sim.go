package sim

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/hid"
	"github.com/dshills/keypipe/internal/input"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/logging"
	"github.com/dshills/keypipe/internal/midi"
)

// maxRecent bounds the event and MIDI history kept for display.
const maxRecent = 8

// Options configures a simulator.
type Options struct {
	// MIDI receives MIDI output in addition to the simulator's own record.
	MIDI midi.Sink

	// Reports receives each HID boot report. Default: discarded.
	Reports io.Writer

	// Log is the diagnostic sink. Default: logging.Nop().
	Log *logging.Logger

	// Muted lists pipe slots whose presses are ignored. It applies to
	// every profile loaded later as well.
	Muted input.PipeFilter
}

// Status is a snapshot of the simulator for display.
type Status struct {
	Session string
	Profile string

	// Layers lists active layer names, highest precedence first.
	Layers []string

	// Held lists held positions with their press-time actions.
	Held []string

	Report    hid.Report
	Channel   uint8
	Transpose int

	Recent []string
	MIDI   []string

	Metrics input.MetricsSnapshot
}

// Sim drives a built keyboard from latching terminal keys.
type Sim struct {
	mu sync.Mutex

	kb     *config.Keyboard
	layout Layout

	// down holds latched slots and their press-time actions.
	down  map[Slot]keycode.Action
	order []Slot

	keyboard *hid.Keyboard
	notes    *midi.Recorder
	midiOut  midi.Sink

	log     *logging.Logger
	muted   input.PipeFilter
	session string
	recent  []string
}

// New builds p and returns a simulator for it.
func New(p *config.Profile, opts Options) (*Sim, error) {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.Reports == nil {
		opts.Reports = io.Discard
	}

	s := &Sim{
		down:    make(map[Slot]keycode.Action),
		notes:   midi.NewRecorder(),
		muted:   opts.Muted,
		session: uuid.NewString(),
	}
	s.log = opts.Log.WithComponent("sim").WithField("session", s.session)
	s.keyboard = hid.NewKeyboard(opts.Reports, opts.Log)
	s.midiOut = s.notes
	if opts.MIDI != nil {
		s.midiOut = midi.Tee{s.notes, opts.MIDI}
	}

	kb, err := s.build(p)
	if err != nil {
		return nil, err
	}
	s.kb = kb
	s.layout = DefaultLayout(kb.Registry)
	s.log.Info("simulating profile %s", p.Name)
	return s, nil
}

func (s *Sim) build(p *config.Profile) (*config.Keyboard, error) {
	kb, err := config.Build(p, config.Options{
		HID:  s.keyboard,
		MIDI: s.midiOut,
		Log:  s.log,
	})
	if err != nil {
		return nil, err
	}
	if len(s.muted) > 0 {
		kb.Handler.Hooks().Add("muted", input.HookPriorityFirst, s.muted)
	}
	return kb, nil
}

// Load replaces the running profile. Every held position is released on
// the old keyboard first. On error the old profile keeps running.
func (s *Sim) Load(p *config.Profile) error {
	kb, err := s.build(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseAllLocked()
	s.kb.Close()
	s.kb = kb
	s.layout = DefaultLayout(kb.Registry)
	s.pushRecent(fmt.Sprintf("loaded %s", p.Name))
	s.log.Info("reloaded profile %s", p.Name)
	return nil
}

// Key toggles the position bound to r. ok is false if r is unbound.
func (s *Sim) Key(r rune) (d input.Dispatch, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.layout.Lookup(r)
	if !ok {
		return input.Dispatch{}, false
	}

	ev := input.Press(slot.Pipe, slot.Position)
	if _, held := s.down[slot]; held {
		ev = input.Release(slot.Pipe, slot.Position)
	}
	d = s.kb.Handler.HandleEvent(ev)

	switch {
	case d.Outcome == input.OutcomeConsumed:
	case ev.Pressed:
		s.down[slot] = d.Action
		s.order = append(s.order, slot)
	default:
		s.drop(slot)
	}

	s.pushRecent(fmt.Sprintf("%s %s %s", ev, s.kb.Format(d.Action), d.Outcome))
	s.trimMIDI()
	return d, true
}

func (s *Sim) drop(slot Slot) {
	delete(s.down, slot)
	for i, o := range s.order {
		if o == slot {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *Sim) pushRecent(line string) {
	s.recent = append(s.recent, line)
	if n := len(s.recent); n > maxRecent {
		s.recent = s.recent[n-maxRecent:]
	}
}

func (s *Sim) trimMIDI() {
	if n := len(s.notes.Messages); n > maxRecent {
		s.notes.Messages = append(s.notes.Messages[:0], s.notes.Messages[n-maxRecent:]...)
	}
}

// ReleaseAll releases every held position.
func (s *Sim) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseAllLocked()
}

func (s *Sim) releaseAllLocked() {
	if len(s.order) == 0 && s.kb.Handler.HeldCount() == 0 {
		return
	}
	s.kb.Handler.ReleaseAll()
	s.down = make(map[Slot]keycode.Action)
	s.order = s.order[:0]
	s.pushRecent("released all")
	s.trimMIDI()
}

// Close releases every held position and frees the keyboard.
func (s *Sim) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseAllLocked()
	s.kb.Close()
}

// Held reports whether slot is latched down.
func (s *Sim) Held(slot Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.down[slot]
	return ok
}

// Layout returns the current key layout.
func (s *Sim) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Session returns the simulator session id.
func (s *Sim) Session() string {
	return s.session
}

// Status returns a display snapshot.
func (s *Sim) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := cases.Title(language.English)
	st := Status{
		Session:   s.session,
		Profile:   s.kb.Profile.Name,
		Report:    s.keyboard.Report(),
		Channel:   s.kb.MIDI.Channel(),
		Transpose: s.kb.MIDI.Transpose(),
		Recent:    append([]string(nil), s.recent...),
		Metrics:   s.kb.Handler.Metrics().Snapshot(),
	}
	for _, id := range s.kb.Stack.Active() {
		name, ok := s.kb.LayerName(id)
		if !ok {
			name = fmt.Sprintf("layer %d", id)
		}
		st.Layers = append(st.Layers, title.String(name))
	}
	for _, slot := range s.order {
		st.Held = append(st.Held, fmt.Sprintf("%d/%d %s", slot.Pipe, slot.Position, s.kb.Format(s.down[slot])))
	}
	for _, m := range s.notes.Messages {
		st.MIDI = append(st.MIDI, m.String())
	}
	return st
}
