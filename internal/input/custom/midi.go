package custom

import (
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/logging"
	"github.com/dshills/keypipe/internal/midi"
)

// MIDIConfig configures the MIDI handler.
type MIDIConfig struct {
	// Channel is the initial channel, 0-15.
	Channel uint8

	// Velocity is the note-on velocity, 1-127.
	Velocity uint8

	// ProgramOnChannel sends a program change numbered after the channel
	// whenever a channel key selects a channel.
	ProgramOnChannel bool
}

// DefaultMIDIConfig returns channel 0, velocity 100, program change on.
func DefaultMIDIConfig() MIDIConfig {
	return MIDIConfig{Channel: 0, Velocity: 100, ProgramOnChannel: true}
}

// noteToken marks a token that carries a sounding note.
const noteToken Token = 1 << 31

// MIDI handles note keys and the channel and octave families.
type MIDI struct {
	sink      midi.Sink
	log       *logging.Logger
	cfg       MIDIConfig
	channel   uint8
	transpose int
}

// NewMIDI creates a MIDI handler emitting to sink.
func NewMIDI(sink midi.Sink, cfg MIDIConfig, log *logging.Logger) *MIDI {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.Velocity == 0 || cfg.Velocity > midi.MaxNote {
		cfg.Velocity = DefaultMIDIConfig().Velocity
	}
	return &MIDI{
		sink:    sink,
		log:     log.WithComponent("midi"),
		cfg:     cfg,
		channel: cfg.Channel & 0x0f,
	}
}

// Channel returns the current channel.
func (m *MIDI) Channel() uint8 {
	return m.channel
}

// Transpose returns the current transpose in semitones.
func (m *MIDI) Transpose() int {
	return m.transpose
}

// Defines implements Handler for channel and octave keys.
func (m *MIDI) Defines(id keycode.CustomID) bool {
	f := id.Family()
	return f == keycode.FamilyMIDIChannel || f == keycode.FamilyMIDIOctave
}

// Press implements Handler for channel and octave keys.
func (m *MIDI) Press(id keycode.CustomID, _ Host) (Token, bool) {
	switch id.Family() {
	case keycode.FamilyMIDIChannel:
		m.channel = uint8(id.Index())
		if m.cfg.ProgramOnChannel {
			m.sink.ProgramChange(m.channel, m.channel)
		}
		return TokenNone, true
	case keycode.FamilyMIDIOctave:
		m.transpose = 12 * id.Index()
		return TokenNone, true
	default:
		return TokenNone, false
	}
}

// Release implements Handler. Channel and octave keys act on press only.
func (m *MIDI) Release(keycode.CustomID, Token, Host) {}

// PressNote sends a note-on for note shifted by the current transpose on
// the current channel. Notes shifted out of range are dropped.
func (m *MIDI) PressNote(note uint8) Token {
	n := int(note) + m.transpose
	if n < 0 || n > midi.MaxNote {
		m.log.Warn("note %d transposed by %d is out of range, dropped", note, m.transpose)
		return TokenNone
	}
	m.sink.NoteOn(uint8(n), m.cfg.Velocity, m.channel)
	return noteToken | Token(m.channel)<<8 | Token(n)
}

// ReleaseNote sends the note-off matching the note-on that returned tok.
func (m *MIDI) ReleaseNote(tok Token) {
	if tok&noteToken == 0 {
		return
	}
	note := uint8(tok & 0x7f)
	ch := uint8(tok>>8) & 0x0f
	m.sink.NoteOff(note, 0, ch)
}
