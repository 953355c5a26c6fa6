package midi

import (
	"io"

	"github.com/dshills/keypipe/internal/logging"
)

// Status bytes, channel in the low nibble.
const (
	StatusNoteOff       = 0x80
	StatusNoteOn        = 0x90
	StatusProgramChange = 0xc0
)

// Encoder writes MIDI 1.0 byte messages to an io.Writer.
type Encoder struct {
	w   io.Writer
	log *logging.Logger
	buf [3]byte
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer, log *logging.Logger) *Encoder {
	if log == nil {
		log = logging.Nop()
	}
	return &Encoder{w: w, log: log.WithComponent("midi")}
}

// NoteOn implements Sink.
func (e *Encoder) NoteOn(note, velocity, channel uint8) {
	e.write(StatusNoteOn|channel&0x0f, note&0x7f, velocity&0x7f)
}

// NoteOff implements Sink.
func (e *Encoder) NoteOff(note, velocity, channel uint8) {
	e.write(StatusNoteOff|channel&0x0f, note&0x7f, velocity&0x7f)
}

// ProgramChange implements Sink.
func (e *Encoder) ProgramChange(channel, program uint8) {
	e.buf[0] = StatusProgramChange | channel&0x0f
	e.buf[1] = program & 0x7f
	e.flush(2)
}

func (e *Encoder) write(status, data1, data2 byte) {
	e.buf[0], e.buf[1], e.buf[2] = status, data1, data2
	e.flush(3)
}

func (e *Encoder) flush(n int) {
	if _, err := e.w.Write(e.buf[:n]); err != nil {
		e.log.WithError(err).Warn("midi write failed")
	}
}

// Decode parses a byte stream written by Encoder. Unknown status bytes are
// skipped.
func Decode(b []byte) []Message {
	var out []Message
	for len(b) > 0 {
		status := b[0]
		ch := status & 0x0f
		switch status & 0xf0 {
		case StatusNoteOn, StatusNoteOff:
			if len(b) < 3 {
				return out
			}
			typ := TypeNoteOn
			if status&0xf0 == StatusNoteOff {
				typ = TypeNoteOff
			}
			out = append(out, Message{Type: typ, Channel: ch, Note: b[1], Velocity: b[2]})
			b = b[3:]
		case StatusProgramChange:
			if len(b) < 2 {
				return out
			}
			out = append(out, ProgramChangeMsg(ch, b[1]))
			b = b[2:]
		default:
			b = b[1:]
		}
	}
	return out
}
