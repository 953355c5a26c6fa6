package midi

import "fmt"

// Channels is the number of MIDI channels.
const Channels = 16

// MaxNote is the highest MIDI note number.
const MaxNote = 127

// Sink receives MIDI messages. Channels are 0-15.
type Sink interface {
	NoteOn(note, velocity, channel uint8)
	NoteOff(note, velocity, channel uint8)
	ProgramChange(channel, program uint8)
}

// Type is a MIDI message type.
type Type uint8

const (
	TypeNoteOn Type = iota + 1
	TypeNoteOff
	TypeProgramChange
)

// String returns the message type name.
func (t Type) String() string {
	switch t {
	case TypeNoteOn:
		return "note_on"
	case TypeNoteOff:
		return "note_off"
	case TypeProgramChange:
		return "program_change"
	default:
		return "unknown"
	}
}

// Message is one MIDI message.
type Message struct {
	Type     Type
	Channel  uint8
	Note     uint8
	Velocity uint8
	Program  uint8
}

// String formats the message for logs and replay output.
func (m Message) String() string {
	switch m.Type {
	case TypeProgramChange:
		return fmt.Sprintf("%s ch=%d program=%d", m.Type, m.Channel, m.Program)
	default:
		return fmt.Sprintf("%s ch=%d note=%d vel=%d", m.Type, m.Channel, m.Note, m.Velocity)
	}
}

// NoteOnMsg builds a note-on message.
func NoteOnMsg(note, velocity, channel uint8) Message {
	return Message{Type: TypeNoteOn, Note: note, Velocity: velocity, Channel: channel}
}

// NoteOffMsg builds a note-off message.
func NoteOffMsg(note, velocity, channel uint8) Message {
	return Message{Type: TypeNoteOff, Note: note, Velocity: velocity, Channel: channel}
}

// ProgramChangeMsg builds a program-change message.
func ProgramChangeMsg(channel, program uint8) Message {
	return Message{Type: TypeProgramChange, Channel: channel, Program: program}
}

// Deliver sends m to s.
func Deliver(s Sink, m Message) {
	switch m.Type {
	case TypeNoteOn:
		s.NoteOn(m.Note, m.Velocity, m.Channel)
	case TypeNoteOff:
		s.NoteOff(m.Note, m.Velocity, m.Channel)
	case TypeProgramChange:
		s.ProgramChange(m.Channel, m.Program)
	}
}

// Tee fans every message out to several sinks in order.
type Tee []Sink

// NoteOn implements Sink.
func (t Tee) NoteOn(note, velocity, channel uint8) {
	for _, s := range t {
		s.NoteOn(note, velocity, channel)
	}
}

// NoteOff implements Sink.
func (t Tee) NoteOff(note, velocity, channel uint8) {
	for _, s := range t {
		s.NoteOff(note, velocity, channel)
	}
}

// ProgramChange implements Sink.
func (t Tee) ProgramChange(channel, program uint8) {
	for _, s := range t {
		s.ProgramChange(channel, program)
	}
}

// Discard drops every message.
var Discard Sink = discard{}

type discard struct{}

func (discard) NoteOn(uint8, uint8, uint8)  {}
func (discard) NoteOff(uint8, uint8, uint8) {}
func (discard) ProgramChange(uint8, uint8)  {}
