package sim

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(100, 30)
	t.Cleanup(screen.Fini)
	return screen
}

func screenRow(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		if runes := cells[y*w+x].Runes; len(runes) > 0 {
			b.WriteRune(runes[0])
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func TestViewDraw(t *testing.T) {
	screen := newScreen(t)
	s := newSim(t, "mac", Options{})
	s.Key('Z')

	v := NewView(screen, s)
	v.Draw()

	if got := screenRow(screen, 0); !strings.HasPrefix(got, "keypipe sim  mac  session ") {
		t.Errorf("title = %q", got)
	}
	if got := screenRow(screen, 2); got != "layers  Sym > Base" {
		t.Errorf("layers row = %q", got)
	}
	if got := screenRow(screen, 3); got != "held    2/14 MO(sym)" {
		t.Errorf("held row = %q", got)
	}
	if got := screenRow(screen, 7); !strings.HasPrefix(got, "left    q w e") {
		t.Errorf("layout row = %q", got)
	}
}

func TestViewRun(t *testing.T) {
	screen := newScreen(t)
	s := newSim(t, "mac", Options{})

	screen.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'S', tcell.ModNone)
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)

	v := NewView(screen, s)
	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st := s.Status()
	if st.Metrics.Presses != 2 {
		t.Errorf("presses = %d, want 2", st.Metrics.Presses)
	}
	if len(st.Held) != 0 || st.Report.Modifiers() != 0 {
		t.Errorf("keys still held after Run: %v", st.Held)
	}
}

func TestViewRunCancel(t *testing.T) {
	screen := newScreen(t)
	s := newSim(t, "mac", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewView(screen, s)
	if err := v.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestViewRefreshShowsError(t *testing.T) {
	screen := newScreen(t)
	s := newSim(t, "mac", Options{})
	v := NewView(screen, s)

	v.Refresh(errors.New("reload failed"))
	screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)
	if err := v.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := screenRow(screen, 29); got != "reload failed" {
		t.Errorf("status line = %q", got)
	}
}
