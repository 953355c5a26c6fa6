package hid

import (
	"fmt"
	"strings"

	"github.com/dshills/keypipe/internal/input/key"
)

// Op is a recorded sink operation.
type Op uint8

const (
	OpRegister Op = iota + 1
	OpUnregister
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpRegister:
		return "register"
	case OpUnregister:
		return "unregister"
	default:
		return "unknown"
	}
}

// Call is one recorded sink call.
type Call struct {
	Op   Op
	Code key.Code
	Mods key.Modifier
	Anti key.Modifier
}

// String formats the call as "register TAB +Shift -GUI".
func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Op.String())
	b.WriteByte(' ')
	b.WriteString(c.Code.String())
	if !c.Mods.IsEmpty() {
		b.WriteString(" +" + c.Mods.String())
	}
	if !c.Anti.IsEmpty() {
		b.WriteString(" -" + c.Anti.String())
	}
	return b.String()
}

// Reg is shorthand for a register call.
func Reg(code key.Code, mods, anti key.Modifier) Call {
	return Call{Op: OpRegister, Code: code, Mods: mods, Anti: anti}
}

// Unreg is shorthand for an unregister call.
func Unreg(code key.Code) Call {
	return Call{Op: OpUnregister, Code: code}
}

// Recorder is a StateSink that records every call. Modifier state follows
// registered modifier key usages, like Keyboard.
type Recorder struct {
	Calls []Call

	held map[key.Code]int

	// Next receives every call after it is recorded, if set.
	Next Sink
}

// NewRecorder creates an empty recorder. The zero value is also ready to use.
func NewRecorder() *Recorder {
	return &Recorder{held: make(map[key.Code]int)}
}

// Register implements Sink.
func (r *Recorder) Register(code key.Code, mods, anti key.Modifier) {
	r.Calls = append(r.Calls, Reg(code, mods, anti))
	if r.held == nil {
		r.held = make(map[key.Code]int)
	}
	r.held[code]++
	if r.Next != nil {
		r.Next.Register(code, mods, anti)
	}
}

// Unregister implements Sink.
func (r *Recorder) Unregister(code key.Code) {
	r.Calls = append(r.Calls, Unreg(code))
	if r.held[code] > 0 {
		r.held[code]--
	}
	if r.Next != nil {
		r.Next.Unregister(code)
	}
}

// IsModifierHeld implements ModifierState.
func (r *Recorder) IsModifierHeld(code key.Code) bool {
	if ms, ok := r.Next.(ModifierState); ok {
		return ms.IsModifierHeld(code)
	}
	return code.IsModifierKey() && r.held[code] > 0
}

// Held reports whether code has more registrations than unregistrations.
func (r *Recorder) Held(code key.Code) bool {
	return r.held[code] > 0
}

// Count returns how many recorded calls match op and code.
func (r *Recorder) Count(op Op, code key.Code) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op && c.Code == code {
			n++
		}
	}
	return n
}

// Reset clears recorded calls and held state.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
	r.held = make(map[key.Code]int)
}

// String returns one call per line.
func (r *Recorder) String() string {
	lines := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

// GoString helps test failure output.
func (r *Recorder) GoString() string {
	return fmt.Sprintf("hid.Recorder{%d calls}", len(r.Calls))
}
