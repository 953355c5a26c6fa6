package hid

import (
	"errors"
	"fmt"
	"io"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/logging"
)

// ReportSize is the length of a boot keyboard input report.
const ReportSize = 8

// MaxKeys is the number of non-modifier key slots in a boot report.
const MaxKeys = 6

// ErrRollover is reported when a seventh non-modifier key is registered.
var ErrRollover = errors.New("hid: key rollover exceeded")

// Report is one boot keyboard input report.
type Report [ReportSize]byte

// Modifiers returns the modifier byte.
func (r Report) Modifiers() byte { return r[0] }

// Keys returns the non-empty key slots.
func (r Report) Keys() []key.Code {
	out := make([]key.Code, 0, MaxKeys)
	for _, b := range r[2:] {
		if b != 0 {
			out = append(out, key.Code(b))
		}
	}
	return out
}

// String formats the report as hex bytes.
func (r Report) String() string {
	return fmt.Sprintf("% x", r[:])
}

// chord is one registration of a code with its forced modifiers.
type chord struct {
	mods key.Modifier
	anti key.Modifier
	seq  uint64
}

// held is one registered non-modifier code. Each registration keeps its
// own chord; unregister removes the most recent one.
type held struct {
	code key.Code
	regs []chord
}

// Keyboard tracks registered keys and writes a boot report to an
// io.Writer on every change. It is not safe for concurrent use.
type Keyboard struct {
	w   io.Writer
	log *logging.Logger

	// modKeys counts registrations of each modifier usage 0xE0..0xE7.
	modKeys [8]int

	// keys holds registered non-modifier codes in registration order.
	keys []held
	seq  uint64

	last    Report
	reports int
}

// NewKeyboard creates a keyboard writing reports to w.
func NewKeyboard(w io.Writer, log *logging.Logger) *Keyboard {
	if log == nil {
		log = logging.Nop()
	}
	return &Keyboard{
		w:    w,
		log:  log.WithComponent("hid"),
		keys: make([]held, 0, MaxKeys),
	}
}

// Register implements Sink.
func (k *Keyboard) Register(code key.Code, mods, anti key.Modifier) {
	if code.IsModifierKey() {
		k.modKeys[code-key.CodeControlLeft]++
		k.flush()
		return
	}

	k.seq++
	c := chord{mods: mods, anti: anti, seq: k.seq}
	if i := k.find(code); i >= 0 {
		k.keys[i].regs = append(k.keys[i].regs, c)
		k.flush()
		return
	}

	if code != key.CodeNone && k.slotsUsed() >= MaxKeys {
		k.log.WithError(ErrRollover).Warn("dropping %s", code)
		return
	}
	k.keys = append(k.keys, held{code: code, regs: []chord{c}})
	k.flush()
}

// Unregister implements Sink.
func (k *Keyboard) Unregister(code key.Code) {
	if code.IsModifierKey() {
		idx := code - key.CodeControlLeft
		if k.modKeys[idx] == 0 {
			return
		}
		k.modKeys[idx]--
		k.flush()
		return
	}

	i := k.find(code)
	if i < 0 {
		return
	}
	h := &k.keys[i]
	h.regs = h.regs[:len(h.regs)-1]
	if len(h.regs) == 0 {
		k.keys = append(k.keys[:i], k.keys[i+1:]...)
	}
	k.flush()
}

// IsModifierHeld implements ModifierState. It reports whether the modifier
// key usage code is registered; modifiers forced by other keys do not count.
func (k *Keyboard) IsModifierHeld(code key.Code) bool {
	if !code.IsModifierKey() {
		return false
	}
	return k.modKeys[code-key.CodeControlLeft] > 0
}

func (k *Keyboard) find(code key.Code) int {
	for i := range k.keys {
		if k.keys[i].code == code {
			return i
		}
	}
	return -1
}

func (k *Keyboard) slotsUsed() int {
	n := 0
	for _, h := range k.keys {
		if h.code != key.CodeNone {
			n++
		}
	}
	return n
}

// Report builds the current report.
func (k *Keyboard) Report() Report {
	var r Report

	var mods byte
	for i, n := range k.modKeys {
		if n > 0 {
			mods |= 1 << i
		}
	}

	// The latest registration carrying anti-modifiers wins.
	var anti key.Modifier
	var antiSeq uint64
	for _, h := range k.keys {
		for _, c := range h.regs {
			mods |= byte(c.mods)
			if c.anti != 0 && c.seq > antiSeq {
				anti, antiSeq = c.anti, c.seq
			}
		}
	}
	// Anti-modifiers clear both the left and right bit.
	mods &^= byte(anti) | byte(anti)<<4
	r[0] = mods

	slot := 2
	for _, h := range k.keys {
		if h.code == key.CodeNone {
			continue
		}
		r[slot] = byte(h.code)
		slot++
	}
	return r
}

// Reports returns the number of reports written.
func (k *Keyboard) Reports() int {
	return k.reports
}

func (k *Keyboard) flush() {
	r := k.Report()
	if r == k.last && k.reports > 0 {
		return
	}
	k.last = r
	k.reports++
	if k.w == nil {
		return
	}
	if _, err := k.w.Write(r[:]); err != nil {
		k.log.WithError(err).Warn("report write failed")
	}
}

// Reset releases every key and writes an empty report if anything was held.
func (k *Keyboard) Reset() {
	dirty := len(k.keys) > 0
	for i := range k.modKeys {
		if k.modKeys[i] > 0 {
			dirty = true
		}
		k.modKeys[i] = 0
	}
	k.keys = k.keys[:0]
	if dirty {
		k.flush()
	}
}
