package midi

import "strings"

// Recorder records every message it receives.
type Recorder struct {
	Messages []Message
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NoteOn implements Sink.
func (r *Recorder) NoteOn(note, velocity, channel uint8) {
	r.Messages = append(r.Messages, NoteOnMsg(note, velocity, channel))
}

// NoteOff implements Sink.
func (r *Recorder) NoteOff(note, velocity, channel uint8) {
	r.Messages = append(r.Messages, NoteOffMsg(note, velocity, channel))
}

// ProgramChange implements Sink.
func (r *Recorder) ProgramChange(channel, program uint8) {
	r.Messages = append(r.Messages, ProgramChangeMsg(channel, program))
}

// Sounding returns notes with a note-on not yet matched by a note-off,
// keyed by channel<<8 | note.
func (r *Recorder) Sounding() map[uint16]int {
	out := make(map[uint16]int)
	for _, m := range r.Messages {
		k := uint16(m.Channel)<<8 | uint16(m.Note)
		switch m.Type {
		case TypeNoteOn:
			out[k]++
		case TypeNoteOff:
			if out[k] > 0 {
				out[k]--
			}
			if out[k] == 0 {
				delete(out, k)
			}
		}
	}
	return out
}

// Reset clears recorded messages.
func (r *Recorder) Reset() {
	r.Messages = r.Messages[:0]
}

// String returns one message per line.
func (r *Recorder) String() string {
	lines := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		lines[i] = m.String()
	}
	return strings.Join(lines, "\n")
}
