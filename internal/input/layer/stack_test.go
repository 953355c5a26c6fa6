package layer

import (
	"errors"
	"reflect"
	"testing"
)

func TestStackInitial(t *testing.T) {
	s := NewStack()

	if got := s.Active(); !reflect.DeepEqual(got, []ID{Base}) {
		t.Errorf("Active() = %v, want [0]", got)
	}
	if !s.BaseOnly() {
		t.Error("new stack should be base-only")
	}
	if s.Top() != Base {
		t.Errorf("Top() = %d, want base", s.Top())
	}
	if !s.IsActive(Base) {
		t.Error("base layer should always be active")
	}
}

func TestStackMomentary(t *testing.T) {
	s := NewStack()
	s.ActivateMomentary(3)

	if got := s.Active(); !reflect.DeepEqual(got, []ID{3, Base}) {
		t.Errorf("Active() = %v, want [3 0]", got)
	}

	if !s.DeactivateMomentary(3) {
		t.Error("DeactivateMomentary(3) should find activation")
	}
	if !s.BaseOnly() {
		t.Errorf("Active() = %v after deactivate", s.Active())
	}
	if s.DeactivateMomentary(3) {
		t.Error("second DeactivateMomentary(3) should report false")
	}
}

func TestStackToggle(t *testing.T) {
	s := NewStack()

	if !s.Toggle(2) {
		t.Error("first Toggle(2) should activate")
	}
	if !s.IsToggled(2) || !s.IsActive(2) {
		t.Error("layer 2 should be toggled on")
	}
	if s.Toggle(2) {
		t.Error("second Toggle(2) should deactivate")
	}
	if s.IsActive(2) {
		t.Error("layer 2 should be inactive")
	}
}

func TestStackPrecedenceIsActivationOrder(t *testing.T) {
	s := NewStack()
	s.Toggle(5)
	s.ActivateMomentary(1)

	want := []ID{1, 5, Base}
	if got := s.Active(); !reflect.DeepEqual(got, want) {
		t.Errorf("Active() = %v, want %v", got, want)
	}
	if s.Top() != 1 {
		t.Errorf("Top() = %d, want 1", s.Top())
	}
}

func TestStackBaseCannotBeRemoved(t *testing.T) {
	s := NewStack()
	s.ActivateMomentary(Base)
	if !s.Toggle(Base) {
		t.Error("Toggle(base) should report active")
	}
	s.DeactivateMomentary(Base)
	s.Reset()

	if got := s.Active(); !reflect.DeepEqual(got, []ID{Base}) {
		t.Errorf("Active() = %v, want [0]", got)
	}
}

func TestStackMomentaryDoesNotRemoveToggle(t *testing.T) {
	s := NewStack()
	s.Toggle(2)
	s.ActivateMomentary(2)
	s.DeactivateMomentary(2)

	if !s.IsToggled(2) {
		t.Error("momentary release should leave the toggle in place")
	}
	if got := s.Active(); !reflect.DeepEqual(got, []ID{2, Base}) {
		t.Errorf("Active() = %v, want [2 0]", got)
	}
}

func TestStackDuplicateMomentaryDedup(t *testing.T) {
	s := NewStack()
	s.ActivateMomentary(3)
	s.ActivateMomentary(4)
	s.ActivateMomentary(3)

	if got := s.Active(); !reflect.DeepEqual(got, []ID{3, 4, Base}) {
		t.Errorf("Active() = %v, want [3 4 0]", got)
	}

	s.DeactivateMomentary(3)
	if got := s.Active(); !reflect.DeepEqual(got, []ID{4, 3, Base}) {
		t.Errorf("Active() = %v, want [4 3 0]", got)
	}
	if s.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", s.Depth())
	}
}

func TestStackAppendActive(t *testing.T) {
	s := NewStack()
	s.ActivateMomentary(2)

	buf := []ID{9}
	got := s.AppendActive(buf)
	if !reflect.DeepEqual(got, []ID{9, 2, Base}) {
		t.Errorf("AppendActive() = %v", got)
	}
}

func TestStackOnChange(t *testing.T) {
	s := NewStack()
	var seen [][]ID
	unregister := s.OnChange(func(active []ID) {
		seen = append(seen, active)
	})

	s.ActivateMomentary(1)
	s.Toggle(2)
	s.DeactivateMomentary(1)
	s.DeactivateMomentary(7) // not found, no notification

	want := [][]ID{{1, Base}, {2, 1, Base}, {2, Base}}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("callbacks = %v, want %v", seen, want)
	}

	unregister()
	s.Reset()
	if len(seen) != len(want) {
		t.Error("callback invoked after unregister")
	}
}

func TestSet(t *testing.T) {
	s, err := NewSet("base", "Tab", "num")
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}

	if id, ok := s.ID("tab"); !ok || id != 1 {
		t.Errorf("ID(tab) = %d, %v", id, ok)
	}
	if id, ok := s.ID("NUM"); !ok || id != 2 {
		t.Errorf("ID(NUM) = %d, %v", id, ok)
	}
	if name, ok := s.Name(1); !ok || name != "Tab" {
		t.Errorf("Name(1) = %q, %v", name, ok)
	}
	if _, ok := s.Name(3); ok {
		t.Error("Name(3) should not exist")
	}
	if s.Len() != 3 || !s.Contains(2) || s.Contains(3) {
		t.Error("Len/Contains mismatch")
	}
	if _, err := s.Lookup("sym"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("Lookup(sym) error = %v", err)
	}
}

func TestSetErrors(t *testing.T) {
	if _, err := NewSet(); !errors.Is(err, ErrNoLayers) {
		t.Errorf("NewSet() error = %v", err)
	}
	if _, err := NewSet("base", "Num", "num"); !errors.Is(err, ErrDuplicateLayer) {
		t.Errorf("duplicate error = %v", err)
	}
	if _, err := NewSet("base", " "); err == nil {
		t.Error("empty name should fail")
	}
	many := make([]string, MaxLayers+1)
	for i := range many {
		many[i] = string(rune('a'+i%26)) + string(rune('0'+i/26%10)) + string(rune('a'+i/260))
	}
	if _, err := NewSet(many...); !errors.Is(err, ErrTooManyLayers) {
		t.Errorf("too many error = %v", err)
	}
}
