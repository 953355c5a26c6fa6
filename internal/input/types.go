package input

import (
	"fmt"

	"github.com/dshills/keypipe/internal/input/custom"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/keymap"
)

// Event is one key transition reported by the matrix scanner.
type Event struct {
	Pipe     keymap.PipeID
	Position int
	Pressed  bool
}

// Press returns a press event.
func Press(pipe keymap.PipeID, pos int) Event {
	return Event{Pipe: pipe, Position: pos, Pressed: true}
}

// Release returns a release event.
func Release(pipe keymap.PipeID, pos int) Event {
	return Event{Pipe: pipe, Position: pos}
}

// String returns "pipe/pos down" or "pipe/pos up".
func (e Event) String() string {
	state := "up"
	if e.Pressed {
		state = "down"
	}
	return fmt.Sprintf("%d/%d %s", e.Pipe, e.Position, state)
}

// Outcome classifies how an event was handled.
type Outcome uint8

const (
	// OutcomeDispatched means a press dispatched an action or a release
	// undid one.
	OutcomeDispatched Outcome = iota

	// OutcomeNoAction means a press resolved to no action. The position is
	// still held so its release is matched.
	OutcomeNoAction

	// OutcomeIgnored means a release of an idle position or a repeated
	// press of a held position.
	OutcomeIgnored

	// OutcomeConsumed means a hook consumed the event.
	OutcomeConsumed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeNoAction:
		return "no-action"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeConsumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// Dispatch describes what the lifecycle manager did with an event.
type Dispatch struct {
	Outcome Outcome

	// Action is the press-time action. On release it is the action that
	// was undone.
	Action keycode.Action

	// Token is the dispatch token stored with the position.
	Token custom.Token
}

// CustomDispatcher handles custom and MIDI actions.
type CustomDispatcher interface {
	Register(a keycode.Action, host custom.Host) custom.Token
	Unregister(a keycode.Action, tok custom.Token, host custom.Host)
}
