package input

import (
	"time"

	"github.com/dshills/keypipe/internal/hid"
	"github.com/dshills/keypipe/internal/input/custom"
	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/keymap"
	"github.com/dshills/keypipe/internal/input/layer"
	"github.com/dshills/keypipe/internal/logging"
)

// Config configures the lifecycle handler.
type Config struct {
	// EnableHooks runs registered hooks around every event (default: true).
	EnableHooks bool

	// EnableMetrics collects event counters and latency (default: true).
	EnableMetrics bool

	// TraceEvents logs every event at debug level (default: false).
	TraceEvents bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableHooks:   true,
		EnableMetrics: true,
	}
}

// position identifies one physical key.
type position struct {
	pipe keymap.PipeID
	pos  int
}

// held is the press-time record of a pressed position.
type held struct {
	action keycode.Action
	token  custom.Token
}

// Handler is the key lifecycle manager. It resolves each press once,
// remembers what it dispatched, and undoes exactly that on release.
//
// Handler is not safe for concurrent use; events must be delivered from a
// single goroutine.
type Handler struct {
	config   Config
	resolver *keymap.Resolver
	stack    *layer.Stack
	sink     hid.Sink
	custom   CustomDispatcher
	log      *logging.Logger

	held  map[position]held
	order []position

	hooks   *HookManager
	metrics *Metrics
}

// NewHandler creates a lifecycle handler. A nil stack uses the resolver's
// stack. A nil custom dispatcher makes every custom and MIDI action inert.
func NewHandler(cfg Config, resolver *keymap.Resolver, stack *layer.Stack, sink hid.Sink, custom CustomDispatcher, log *logging.Logger) *Handler {
	if stack == nil {
		stack = resolver.Stack()
	}
	if log == nil {
		log = logging.Nop()
	}
	metrics := NewMetrics()
	metrics.SetEnabled(cfg.EnableMetrics)
	hooks := NewHookManager()
	hooks.SetEnabled(cfg.EnableHooks)

	return &Handler{
		config:   cfg,
		resolver: resolver,
		stack:    stack,
		sink:     sink,
		custom:   custom,
		log:      log.WithComponent("lifecycle"),
		held:     make(map[position]held),
		hooks:    hooks,
		metrics:  metrics,
	}
}

// HandleEvent processes one press or release and reports what was done.
func (h *Handler) HandleEvent(ev Event) Dispatch {
	start := time.Now()

	// A held position's release always runs so its dispatch is undone.
	if !h.releasesHeld(ev) && h.hooks.RunPreEvent(&ev) {
		d := Dispatch{Outcome: OutcomeConsumed}
		h.metrics.record(d, ev.Pressed, 0)
		return d
	}

	var d Dispatch
	if ev.Pressed {
		d = h.press(ev)
	} else {
		d = h.release(ev)
	}

	h.metrics.record(d, ev.Pressed, time.Since(start))
	if h.config.TraceEvents {
		h.log.Debug("%s: %s %s", ev, d.Outcome, d.Action)
	}
	h.hooks.RunPostEvent(ev, d)
	return d
}

func (h *Handler) releasesHeld(ev Event) bool {
	return !ev.Pressed && h.Pressed(ev.Pipe, ev.Position)
}

func (h *Handler) press(ev Event) Dispatch {
	p := position{pipe: ev.Pipe, pos: ev.Position}
	if _, ok := h.held[p]; ok {
		return Dispatch{Outcome: OutcomeIgnored}
	}

	a := h.resolver.Resolve(ev.Pipe, ev.Position)
	if a.IsNone() {
		h.hold(p, held{action: keycode.Opaque()})
		return Dispatch{Outcome: OutcomeNoAction, Action: a}
	}

	tok := h.PressAction(a)
	h.hold(p, held{action: a, token: tok})
	return Dispatch{Outcome: OutcomeDispatched, Action: a, Token: tok}
}

func (h *Handler) release(ev Event) Dispatch {
	p := position{pipe: ev.Pipe, pos: ev.Position}
	rec, ok := h.held[p]
	if !ok {
		return Dispatch{Outcome: OutcomeIgnored}
	}
	h.drop(p)

	if rec.action.IsNone() {
		return Dispatch{Outcome: OutcomeNoAction, Action: rec.action}
	}
	h.ReleaseAction(rec.action, rec.token)
	return Dispatch{Outcome: OutcomeDispatched, Action: rec.action, Token: rec.token}
}

func (h *Handler) hold(p position, rec held) {
	h.held[p] = rec
	h.order = append(h.order, p)
}

func (h *Handler) drop(p position) {
	delete(h.held, p)
	for i, q := range h.order {
		if q == p {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}

// PressAction dispatches the press of a and returns the token that undoes it.
func (h *Handler) PressAction(a keycode.Action) custom.Token {
	switch a.Kind {
	case keycode.KindKey:
		h.sink.Register(a.Code, a.Mods, a.AntiMods)
		return custom.Token(a.Word())

	case keycode.KindLayer:
		switch a.Op {
		case keycode.LayerMomentary:
			h.stack.ActivateMomentary(a.Layer)
		case keycode.LayerToggle:
			h.stack.Toggle(a.Layer)
		}
		return custom.Token(a.Word())

	case keycode.KindCustom, keycode.KindMidi:
		if h.custom == nil || !h.handles(a) {
			h.metrics.RecordUnknownCustom()
		}
		if h.custom == nil {
			h.log.WithField("family", a.Family()).Warn("missing keycode %s", a)
			return custom.TokenNone
		}
		return h.custom.Register(a, h)
	}
	return custom.TokenNone
}

// ReleaseAction undoes a dispatch made by PressAction.
func (h *Handler) ReleaseAction(a keycode.Action, tok custom.Token) {
	switch a.Kind {
	case keycode.KindKey:
		h.sink.Unregister(a.Code)

	case keycode.KindLayer:
		if a.Op == keycode.LayerMomentary {
			h.stack.DeactivateMomentary(a.Layer)
		}

	case keycode.KindCustom, keycode.KindMidi:
		if h.custom != nil {
			h.custom.Unregister(a, tok, h)
		}
	}
}

// handles reports whether the dispatcher claims a family for a.
func (h *Handler) handles(a keycode.Action) bool {
	if c, ok := h.custom.(interface{ Handles(keycode.Action) bool }); ok {
		return c.Handles(a)
	}
	return true
}

// IsModifierHeld reports whether the modifier key usage code is asserted.
// Sinks that cannot report modifier state always answer false.
func (h *Handler) IsModifierHeld(code key.Code) bool {
	if ms, ok := h.sink.(hid.ModifierState); ok {
		return ms.IsModifierHeld(code)
	}
	return false
}

// BaseOnly reports whether only the base layer is active.
func (h *Handler) BaseOnly() bool {
	return h.stack.BaseOnly()
}

// Pressed reports whether a position is currently held.
func (h *Handler) Pressed(pipe keymap.PipeID, pos int) bool {
	_, ok := h.held[position{pipe: pipe, pos: pos}]
	return ok
}

// HeldCount returns the number of held positions.
func (h *Handler) HeldCount() int {
	return len(h.held)
}

// ReleaseAll releases every held position in press order. Hooks are not
// consulted so nothing stays asserted.
func (h *Handler) ReleaseAll() {
	pending := make([]position, len(h.order))
	copy(pending, h.order)
	for _, p := range pending {
		d := h.release(Release(p.pipe, p.pos))
		h.metrics.record(d, false, 0)
	}
}

// Stack returns the layer stack.
func (h *Handler) Stack() *layer.Stack {
	return h.stack
}

// Resolver returns the resolution engine.
func (h *Handler) Resolver() *keymap.Resolver {
	return h.resolver
}

// Hooks returns the hook manager.
func (h *Handler) Hooks() *HookManager {
	return h.hooks
}

// Metrics returns the metrics tracker.
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}
