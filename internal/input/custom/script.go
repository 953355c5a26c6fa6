package custom

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/logging"
)

// Script handles the Lua-scripted family. The script defines global
// functions on_press(n) and on_release(n), where n is the LUA(n) index, and
// drives the keyboard through the kb table:
//
//	kb.press(spec)    press an action, e.g. kb.press("S(TAB)")
//	kb.release(spec)  release an action pressed by this key
//	kb.tap(spec)      press and release
//	kb.held(mod)      true if "ctrl", "shift", "alt" or "gui" is held
//	kb.log(msg)       write an info diagnostic
//
// Actions still pressed when on_release returns are released in reverse
// order. Lua errors are logged and never reach the caller.
type Script struct {
	L      *lua.LState
	name   string
	log    *logging.Logger
	parser keycode.Parser

	// host and frame are set only while a callback runs.
	host  Host
	frame *[]nested

	presses pressSet
}

// NewScript loads Lua source. name is used in diagnostics.
func NewScript(name, source string, parser keycode.Parser, log *logging.Logger) (*Script, error) {
	if log == nil {
		log = logging.Nop()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	s := &Script{
		L:       L,
		name:    name,
		log:     log.WithComponent("script").WithField("script", name),
		parser:  parser,
		presses: newPressSet(),
	}
	s.install()

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading script %s: %w", name, err)
	}
	return s, nil
}

// openSafeLibraries opens the Lua libraries without file or process access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func (s *Script) install() {
	kb := s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"press":   s.luaPress,
		"release": s.luaRelease,
		"tap":     s.luaTap,
		"held":    s.luaHeld,
		"log":     s.luaLog,
	})
	s.L.SetGlobal("kb", kb)
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.L.Close()
}

// Defines implements Handler. Every id is defined once on_press exists.
func (s *Script) Defines(keycode.CustomID) bool {
	return s.hasFunc("on_press")
}

// Press implements Handler.
func (s *Script) Press(id keycode.CustomID, host Host) (Token, bool) {
	if !s.hasFunc("on_press") {
		return TokenNone, false
	}
	frame := make([]nested, 0, 2)
	s.call(host, &frame, "on_press", id.Index())
	return s.presses.hold(frame), true
}

// Release implements Handler.
func (s *Script) Release(id keycode.CustomID, tok Token, host Host) {
	frame, ok := s.presses.take(tok)
	if !ok {
		return
	}
	if s.hasFunc("on_release") {
		s.call(host, &frame, "on_release", id.Index())
	}
	releaseAll(host, frame)
}

func (s *Script) hasFunc(name string) bool {
	_, ok := s.L.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (s *Script) call(host Host, frame *[]nested, fn string, index int) {
	s.host, s.frame = host, frame
	defer func() {
		s.host, s.frame = nil, nil
		if r := recover(); r != nil {
			s.log.Error("%s(%d) panicked: %v", fn, index, r)
		}
	}()

	err := s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal(fn),
		NRet:    0,
		Protect: true,
	}, lua.LNumber(index))
	if err != nil {
		s.log.WithError(err).Warn("%s(%d) failed", fn, index)
	}
}

func (s *Script) checkAction(L *lua.LState) (keycode.Action, bool) {
	spec := L.CheckString(1)
	a, err := s.parser.Parse(spec)
	if err != nil {
		L.RaiseError("kb: %v", err)
		return keycode.NoAction, false
	}
	if s.host == nil {
		L.RaiseError("kb: %s called outside a key callback", spec)
		return keycode.NoAction, false
	}
	return a, true
}

func (s *Script) luaPress(L *lua.LState) int {
	a, ok := s.checkAction(L)
	if !ok {
		return 0
	}
	inner := s.host.PressAction(a)
	*s.frame = append(*s.frame, nested{action: a, inner: inner})
	return 0
}

func (s *Script) luaRelease(L *lua.LState) int {
	a, ok := s.checkAction(L)
	if !ok {
		return 0
	}
	frame := *s.frame
	for i := len(frame) - 1; i >= 0; i-- {
		if frame[i].action == a {
			s.host.ReleaseAction(a, frame[i].inner)
			*s.frame = append(frame[:i], frame[i+1:]...)
			return 0
		}
	}
	s.log.Debug("kb.release(%s): not pressed by this key", a)
	return 0
}

func (s *Script) luaTap(L *lua.LState) int {
	a, ok := s.checkAction(L)
	if !ok {
		return 0
	}
	inner := s.host.PressAction(a)
	s.host.ReleaseAction(a, inner)
	return 0
}

func (s *Script) luaHeld(L *lua.LState) int {
	mod := key.ModifierFromName(L.CheckString(1))
	held := s.host != nil && !mod.IsEmpty() && anyHeld(s.host, mod)
	L.Push(lua.LBool(held))
	return 1
}

func (s *Script) luaLog(L *lua.LState) int {
	s.log.Info("%s", L.CheckString(1))
	return 0
}
