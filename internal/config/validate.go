package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keymap"
	"github.com/dshills/keypipe/internal/input/layer"
	"github.com/dshills/keypipe/internal/midi"
)

// validator accumulates validation errors.
type validator struct {
	errs []error
}

func (v *validator) add(path string, code ValidationErrorCode, value any, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
		Value:   value,
		Code:    code,
	})
}

func (v *validator) err() error {
	return errors.Join(v.errs...)
}

// Validate checks the profile's structure: names, ranges and references.
// Keycode specs are checked by Build, which can resolve custom key names.
func (p *Profile) Validate() error {
	var v validator

	if strings.TrimSpace(p.Name) == "" {
		v.add("name", ErrCodeRequiredMissing, nil, "profile name is required")
	}

	set, err := layer.NewSet(p.Layers...)
	if err != nil {
		v.add("layers", ErrCodeOutOfRange, p.Layers, "%v", err)
	}

	if p.MIDI.Channel < 0 || p.MIDI.Channel >= midi.Channels {
		v.add("midi.channel", ErrCodeOutOfRange, p.MIDI.Channel, "must be 0-%d", midi.Channels-1)
	}
	if p.MIDI.Velocity < 1 || p.MIDI.Velocity > midi.MaxNote {
		v.add("midi.velocity", ErrCodeOutOfRange, p.MIDI.Velocity, "must be 1-%d", midi.MaxNote)
	}

	names := make(map[string]string)
	claim := func(path, name string) {
		if strings.TrimSpace(name) == "" {
			v.add(path+".name", ErrCodeRequiredMissing, nil, "name is required")
			return
		}
		lower := strings.ToLower(name)
		if prev, ok := names[lower]; ok {
			v.add(path+".name", ErrCodeDuplicate, name, "already defined at %s", prev)
			return
		}
		names[lower] = path
	}

	for i, d := range p.DualRole {
		path := fmt.Sprintf("dual_role[%d]", i)
		claim(path, d.Name)
		if _, bad := key.ModifiersFromNames(d.HeldAny); bad != "" {
			v.add(path+".held_any", ErrCodeUnknownReference, bad, "unknown modifier")
		}
		if len(d.HeldAny) == 0 && !d.BaseOnly {
			v.add(path+".held_any", ErrCodeRequiredMissing, nil, "at least one modifier is required")
		}
	}

	holders := make(map[string]bool)
	for i, h := range p.MacHolders {
		path := fmt.Sprintf("mac_holder[%d]", i)
		claim(path, h.Name)
		holders[strings.ToLower(h.Name)] = true
		if c, ok := key.CodeFromName(h.Modifier); !ok || !c.IsModifierKey() {
			v.add(path+".modifier", ErrCodeUnknownReference, h.Modifier, "not a modifier key")
		}
		if h.ConvertTo != "" {
			if c, ok := key.CodeFromName(h.ConvertTo); !ok || !c.IsModifierKey() {
				v.add(path+".convert_to", ErrCodeUnknownReference, h.ConvertTo, "not a modifier key")
			}
		}
	}
	for i, c := range p.MacCompanions {
		path := fmt.Sprintf("mac_companion[%d]", i)
		claim(path, c.Name)
		for j, ch := range c.Chords {
			if !holders[strings.ToLower(ch.Holder)] {
				v.add(fmt.Sprintf("%s.chords[%d].holder", path, j), ErrCodeUnknownReference, ch.Holder, "no such mac holder")
			}
		}
	}

	if len(p.Pipes) == 0 {
		v.add("pipe", ErrCodeRequiredMissing, nil, "at least one pipe is required")
	}
	slots := make(map[int]string)
	pipeNames := make(map[string]bool)
	for i, pc := range p.Pipes {
		path := fmt.Sprintf("pipe[%d]", i)
		if pc.Name == "" {
			v.add(path+".name", ErrCodeRequiredMissing, nil, "pipe name is required")
		} else if pipeNames[pc.Name] {
			v.add(path+".name", ErrCodeDuplicate, pc.Name, "duplicate pipe name")
		}
		pipeNames[pc.Name] = true

		for _, id := range pc.SlotIDs() {
			if id < 0 || id >= keymap.MaxPipes {
				v.add(path+".id", ErrCodeOutOfRange, id, "pipe id must be 0-%d", keymap.MaxPipes-1)
				continue
			}
			if prev, ok := slots[id]; ok {
				v.add(path+".id", ErrCodeDuplicate, id, "pipe slot already used by %s", prev)
				continue
			}
			slots[id] = pc.Name
		}

		if pc.Positions <= 0 {
			v.add(path+".positions", ErrCodeOutOfRange, pc.Positions, "must be positive")
		}
		for name, specs := range pc.Layers {
			lpath := fmt.Sprintf("pipe.%s.layers.%s", pc.Name, name)
			if set != nil {
				if _, ok := set.ID(name); !ok {
					v.add(lpath, ErrCodeUnknownReference, name, "no such layer")
				}
			}
			if pc.Positions > 0 && len(specs) > pc.Positions {
				v.add(lpath, ErrCodeOutOfRange, len(specs), "more entries than the pipe's %d positions", pc.Positions)
			}
		}
	}

	return v.err()
}
