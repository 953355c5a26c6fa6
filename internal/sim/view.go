package sim

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHeld    = tcell.StyleDefault.Reverse(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// refreshEvent asks the view to redraw, optionally showing an error.
type refreshEvent struct {
	tcell.EventTime
	err error
}

// View draws a simulator on a tcell screen and feeds it key events.
type View struct {
	screen tcell.Screen
	sim    *Sim
	err    error
}

// NewView creates a view. The screen must already be initialized.
func NewView(screen tcell.Screen, s *Sim) *View {
	return &View{screen: screen, sim: s}
}

// Refresh requests a redraw from any goroutine. A non-nil err is shown on
// the status line until the next refresh.
func (v *View) Refresh(err error) {
	ev := &refreshEvent{err: err}
	ev.SetEventNow()
	_ = v.screen.PostEvent(ev)
}

// Run processes events until Ctrl-C, Ctrl-Q, ctx cancellation, or the
// screen is finalized. Every held position is released on return.
func (v *View) Run(ctx context.Context) error {
	defer v.sim.ReleaseAll()

	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if !v.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			v.screen.Sync()
		case *refreshEvent:
			v.err = ev.err
		}
		v.Draw()
	}
}

// handleKey returns false when the view should exit.
func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return false
	case tcell.KeyEscape:
		v.sim.ReleaseAll()
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			r := ev.Rune()
			return r != 'c' && r != 'q'
		}
		v.sim.Key(ev.Rune())
	}
	return true
}

// Draw renders the simulator state.
func (v *View) Draw() {
	st := v.sim.Status()
	layout := v.sim.Layout()

	v.screen.Clear()
	w, h := v.screen.Size()
	y := 0
	line := func(x int, text string, style tcell.Style) int {
		if y < h {
			x = drawText(v.screen, x, y, w, text, style)
		}
		return x
	}

	line(0, fmt.Sprintf("keypipe sim  %s  session %s", st.Profile, st.Session[:8]), styleTitle)
	y += 2

	x := line(0, "layers  ", styleLabel)
	line(x, strings.Join(st.Layers, " > "), styleDefault)
	y++
	x = line(0, "held    ", styleLabel)
	line(x, strings.Join(st.Held, ", "), styleDefault)
	y++
	x = line(0, "report  ", styleLabel)
	line(x, st.Report.String(), styleDefault)
	y++
	x = line(0, "midi    ", styleLabel)
	line(x, fmt.Sprintf("channel %d  transpose %+d", st.Channel, st.Transpose), styleDefault)
	y += 2

	for _, row := range layout.Rows() {
		x := line(0, fmt.Sprintf("%-8s", row.Name), styleLabel)
		for pos, r := range row.Keys {
			style := styleDefault
			if v.sim.Held(Slot{Pipe: row.Pipe, Position: pos}) {
				style = styleHeld
			}
			x = line(x, string(r), style)
			x = line(x, " ", styleDefault)
		}
		y++
	}
	y++

	for _, s := range st.Recent {
		line(0, s, styleDefault)
		y++
	}
	for _, s := range st.MIDI {
		line(0, s, styleLabel)
		y++
	}

	y = h - 1
	if v.err != nil {
		line(0, v.err.Error(), styleError)
	} else {
		line(0, fmt.Sprintf("presses %d  releases %d  |  keys latch  Esc release all  Ctrl-C quit",
			st.Metrics.Presses, st.Metrics.Releases), styleLabel)
	}
	v.screen.Show()
}

// drawText writes text at (x, y), clipped to width w, and returns the
// column after the last cell written.
func drawText(screen tcell.Screen, x, y, w int, text string, style tcell.Style) int {
	for _, r := range text {
		if x >= w {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
