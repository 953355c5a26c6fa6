package input

import (
	"sort"

	"github.com/dshills/keypipe/internal/input/keymap"
)

// Hook intercepts key events around the lifecycle manager.
type Hook interface {
	// PreEvent runs before a press or an unmatched release is handled.
	// Returning true consumes the event: nothing is resolved and no
	// position changes state. Releases of held positions skip PreEvent.
	PreEvent(event *Event) bool

	// PostEvent runs after the event is handled.
	PostEvent(event Event, d Dispatch)
}

// HookPriority orders hooks. Lower values run first; equal priorities run
// in registration order.
type HookPriority int

const (
	HookPriorityFirst  HookPriority = -100
	HookPriorityNormal HookPriority = 0
	HookPriorityLast   HookPriority = 100
)

type hookEntry struct {
	name     string
	priority HookPriority
	hook     Hook
}

// HookManager runs hooks in priority order. Like the Handler that owns it,
// it is not safe for concurrent use.
type HookManager struct {
	entries  []hookEntry
	disabled bool
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *HookManager {
	return &HookManager{}
}

// Add registers hook under name. An empty name cannot be removed.
func (m *HookManager) Add(name string, priority HookPriority, hook Hook) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].priority > priority
	})
	m.entries = append(m.entries, hookEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = hookEntry{name: name, priority: priority, hook: hook}
}

// Remove unregisters every hook named name and reports whether any was
// found.
func (m *HookManager) Remove(name string) bool {
	if name == "" {
		return false
	}
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.name != name {
			kept = append(kept, e)
		}
	}
	found := len(kept) != len(m.entries)
	m.entries = kept
	return found
}

// SetEnabled turns hook execution on or off.
func (m *HookManager) SetEnabled(enabled bool) {
	m.disabled = !enabled
}

// Len returns the number of registered hooks.
func (m *HookManager) Len() int {
	return len(m.entries)
}

// RunPreEvent runs PreEvent hooks until one consumes the event.
func (m *HookManager) RunPreEvent(event *Event) bool {
	if m.disabled {
		return false
	}
	for _, e := range m.entries {
		if e.hook.PreEvent(event) {
			return true
		}
	}
	return false
}

// RunPostEvent runs every PostEvent hook.
func (m *HookManager) RunPostEvent(event Event, d Dispatch) {
	if m.disabled {
		return
	}
	for _, e := range m.entries {
		e.hook.PostEvent(event, d)
	}
}

// FuncHook adapts functions to Hook. Nil functions do nothing.
type FuncHook struct {
	Pre  func(*Event) bool
	Post func(Event, Dispatch)
}

func (h FuncHook) PreEvent(event *Event) bool {
	return h.Pre != nil && h.Pre(event)
}

func (h FuncHook) PostEvent(event Event, d Dispatch) {
	if h.Post != nil {
		h.Post(event, d)
	}
}

// PipeFilter consumes presses on the listed pipes. It disables half of a
// split keyboard without unbinding its keymap; keys already held there
// still release.
type PipeFilter []keymap.PipeID

func (f PipeFilter) PreEvent(event *Event) bool {
	for _, p := range f {
		if p == event.Pipe {
			return true
		}
	}
	return false
}

func (PipeFilter) PostEvent(Event, Dispatch) {}
