package sim

import (
	"github.com/dshills/keypipe/internal/input/keymap"
)

// Slot is one physical key position.
type Slot struct {
	Pipe     keymap.PipeID
	Position int
}

// LayoutRow binds a run of terminal keys to one pipe's positions.
type LayoutRow struct {
	Pipe keymap.PipeID
	Name string
	Keys []rune
}

// Layout maps terminal keys to key positions.
type Layout struct {
	rows []LayoutRow
	keys map[rune]Slot
}

// defaultRows are assigned to pipe tables in pipe id order.
var defaultRows = []string{
	"qwertyuasdfghjzxcvbnm",
	"QWERTYUASDFGHJZXCVBNM",
	"1234567890-=[];',./\\`",
}

// DefaultLayout assigns one row of terminal keys to each distinct table in
// reg, lowest pipe id first.
func DefaultLayout(reg *keymap.Registry) Layout {
	l := Layout{keys: make(map[rune]Slot)}
	seen := make(map[*keymap.Keymap]bool)

	for _, id := range reg.Pipes() {
		if len(l.rows) == len(defaultRows) {
			break
		}
		km := reg.Get(id)
		if seen[km] {
			continue
		}
		seen[km] = true

		keys := []rune(defaultRows[len(l.rows)])
		if n := km.Positions(); n < len(keys) {
			keys = keys[:n]
		}
		for pos, r := range keys {
			l.keys[r] = Slot{Pipe: id, Position: pos}
		}
		l.rows = append(l.rows, LayoutRow{Pipe: id, Name: km.Name, Keys: keys})
	}
	return l
}

// Lookup returns the slot bound to r.
func (l Layout) Lookup(r rune) (Slot, bool) {
	s, ok := l.keys[r]
	return s, ok
}

// Rows returns the layout rows in pipe order.
func (l Layout) Rows() []LayoutRow {
	return l.rows
}
