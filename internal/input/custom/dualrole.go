package custom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
)

// Definition errors
var (
	ErrTooManyKeys   = errors.New("too many custom keys in family")
	ErrDuplicateName = errors.New("duplicate custom key name")
	ErrUnknownHolder = errors.New("unknown mac holder")
	ErrNotModifier   = errors.New("not a modifier key")
)

// maxPerFamily is the number of ids in one custom family range.
const maxPerFamily = 256

// DualRoleDef defines one dual-role key.
type DualRoleDef struct {
	// Name is used by tables as DUAL(name).
	Name string

	// HeldAny selects the modifiers that trigger the active branch when
	// any of them is held on either side.
	HeldAny key.Modifier

	// BaseOnly additionally requires the base layer to be the only
	// active layer.
	BaseOnly bool

	// Active is emitted when the condition holds, Inactive otherwise.
	Active   keycode.Action
	Inactive keycode.Action
}

// Condition reports whether the active branch applies for host.
func (d DualRoleDef) Condition(host Host) bool {
	if !anyHeld(host, d.HeldAny) {
		return false
	}
	return !d.BaseOnly || host.BaseOnly()
}

// DualRole handles the dual-role family. Definitions are numbered in
// declaration order.
type DualRole struct {
	defs    []DualRoleDef
	presses pressSet
}

// NewDualRole creates a dual-role handler.
func NewDualRole(defs ...DualRoleDef) (*DualRole, error) {
	if len(defs) > maxPerFamily {
		return nil, fmt.Errorf("%w: %d dual-role keys", ErrTooManyKeys, len(defs))
	}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		name := strings.ToLower(d.Name)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, d.Name)
		}
		seen[name] = true
	}
	return &DualRole{defs: defs, presses: newPressSet()}, nil
}

// ID returns the custom id of the named definition.
func (h *DualRole) ID(name string) (keycode.CustomID, bool) {
	for i, d := range h.defs {
		if strings.EqualFold(d.Name, name) {
			return keycode.DualRoleBase + keycode.CustomID(i), true
		}
	}
	return 0, false
}

// Defs returns the definitions in id order.
func (h *DualRole) Defs() []DualRoleDef {
	return h.defs
}

// Defines implements Handler.
func (h *DualRole) Defines(id keycode.CustomID) bool {
	i := id.Index()
	return i >= 0 && i < len(h.defs)
}

// Press implements Handler.
func (h *DualRole) Press(id keycode.CustomID, host Host) (Token, bool) {
	i := id.Index()
	if i < 0 || i >= len(h.defs) {
		return TokenNone, false
	}
	d := h.defs[i]
	a := d.Inactive
	if d.Condition(host) {
		a = d.Active
	}
	inner := host.PressAction(a)
	return h.presses.hold([]nested{{action: a, inner: inner}}), true
}

// Release implements Handler.
func (h *DualRole) Release(_ keycode.CustomID, tok Token, host Host) {
	if presses, ok := h.presses.take(tok); ok {
		releaseAll(host, presses)
	}
}
