package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/keypipe/internal/hid"
	"github.com/dshills/keypipe/internal/input"
	"github.com/dshills/keypipe/internal/input/custom"
	"github.com/dshills/keypipe/internal/input/key"
	"github.com/dshills/keypipe/internal/input/keycode"
	"github.com/dshills/keypipe/internal/input/keymap"
	"github.com/dshills/keypipe/internal/input/layer"
	"github.com/dshills/keypipe/internal/logging"
	"github.com/dshills/keypipe/internal/midi"
)

// Options configures Build.
type Options struct {
	// HID receives key registrations. Default: a new hid.Recorder.
	HID hid.Sink

	// MIDI receives note and program messages. Default: midi.Discard.
	MIDI midi.Sink

	// Log is the diagnostic sink. Default: logging.Nop().
	Log *logging.Logger

	// Handler configures the lifecycle handler. Default: input.DefaultConfig().
	Handler *input.Config

	// ReadFile reads the profile's script. Default: os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// Keyboard is a profile built into a runnable keyboard core.
type Keyboard struct {
	Profile *Profile
	Layers  *layer.Set
	Parser  keycode.Parser

	Registry *keymap.Registry
	Stack    *layer.Stack
	Resolver *keymap.Resolver

	Dispatcher *custom.Dispatcher
	DualRole   *custom.DualRole
	MacRemap   *custom.MacRemap
	MIDI       *custom.MIDI
	Script     *custom.Script

	Handler *input.Handler
	HID     hid.Sink
}

// Build validates p and assembles its keyboard.
func Build(p *Profile, opts Options) (*Keyboard, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.HID == nil {
		opts.HID = hid.NewRecorder()
	}
	if opts.MIDI == nil {
		opts.MIDI = midi.Discard
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	log := opts.Log.WithField("profile", p.Name)

	layers, err := layer.NewSet(p.Layers...)
	if err != nil {
		return nil, err
	}
	kb := &Keyboard{Profile: p, Layers: layers, HID: opts.HID}

	var v validator
	layerOnly := keycode.Parser{Layer: layers.ID}

	kb.DualRole, err = custom.NewDualRole(buildDualRole(p, layerOnly, &v)...)
	if err != nil {
		return nil, err
	}
	holders, companions := buildMacRemap(p, layerOnly, &v)
	kb.MacRemap, err = custom.NewMacRemap(holders, companions)
	if err != nil {
		return nil, err
	}

	kb.Parser = keycode.Parser{
		Layer: layers.ID,
		Custom: func(family keycode.Family, name string) (keycode.CustomID, bool) {
			switch family {
			case keycode.FamilyDualRole:
				return kb.DualRole.ID(name)
			case keycode.FamilyMacRemap:
				return kb.MacRemap.ID(name)
			default:
				return 0, false
			}
		},
	}

	kb.Registry = keymap.NewRegistry()
	for _, pc := range p.Pipes {
		km := buildKeymap(pc, layers, kb.Parser, &v).WithSource(p.Source)
		for _, id := range pc.SlotIDs() {
			if err := kb.Registry.Bind(keymap.PipeID(id), km); err != nil {
				return nil, err
			}
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	kb.Dispatcher = custom.NewDispatcher(log).
		UseDualRole(kb.DualRole).
		UseMacRemap(kb.MacRemap)

	kb.MIDI = custom.NewMIDI(opts.MIDI, custom.MIDIConfig{
		Channel:          uint8(p.MIDI.Channel),
		Velocity:         uint8(p.MIDI.Velocity),
		ProgramOnChannel: p.MIDI.ProgramOnChannel,
	}, log)
	kb.Dispatcher.UseMIDI(kb.MIDI)

	if p.Script != "" {
		path := p.Script
		if !filepath.IsAbs(path) && p.Source != "" {
			path = filepath.Join(filepath.Dir(p.Source), path)
		}
		src, err := opts.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading script: %w", err)
		}
		kb.Script, err = custom.NewScript(filepath.Base(path), string(src), kb.Parser, log)
		if err != nil {
			return nil, err
		}
		kb.Dispatcher.UseScript(kb.Script)
	}

	cfg := input.DefaultConfig()
	if opts.Handler != nil {
		cfg = *opts.Handler
	}
	kb.Stack = layer.NewStack()
	kb.Resolver = keymap.NewResolver(kb.Registry, kb.Stack)
	kb.Handler = input.NewHandler(cfg, kb.Resolver, kb.Stack, opts.HID, kb.Dispatcher, log)
	return kb, nil
}

func buildDualRole(p *Profile, parser keycode.Parser, v *validator) []custom.DualRoleDef {
	defs := make([]custom.DualRoleDef, 0, len(p.DualRole))
	for i, d := range p.DualRole {
		path := fmt.Sprintf("dual_role[%d]", i)
		mods, _ := key.ModifiersFromNames(d.HeldAny)
		defs = append(defs, custom.DualRoleDef{
			Name:     d.Name,
			HeldAny:  mods,
			BaseOnly: d.BaseOnly,
			Active:   parseSpec(parser, v, path+".active", d.Active),
			Inactive: parseSpec(parser, v, path+".inactive", d.Inactive),
		})
	}
	return defs
}

func buildMacRemap(p *Profile, parser keycode.Parser, v *validator) ([]custom.HolderDef, []custom.CompanionDef) {
	holders := make([]custom.HolderDef, 0, len(p.MacHolders))
	for _, h := range p.MacHolders {
		mod, _ := key.CodeFromName(h.Modifier)
		var convert key.Code
		if h.ConvertTo != "" {
			convert, _ = key.CodeFromName(h.ConvertTo)
		}
		holders = append(holders, custom.HolderDef{Name: h.Name, Modifier: mod, ConvertTo: convert})
	}

	companions := make([]custom.CompanionDef, 0, len(p.MacCompanions))
	for i, c := range p.MacCompanions {
		path := fmt.Sprintf("mac_companion[%d]", i)
		def := custom.CompanionDef{
			Name:    c.Name,
			Default: parseSpec(parser, v, path+".default", c.Default),
		}
		for j, ch := range c.Chords {
			def.Chords = append(def.Chords, custom.Chord{
				Holder: ch.Holder,
				Action: parseSpec(parser, v, fmt.Sprintf("%s.chords[%d].chord", path, j), ch.Chord),
			})
		}
		companions = append(companions, def)
	}
	return holders, companions
}

func buildKeymap(pc PipeConfig, layers *layer.Set, parser keycode.Parser, v *validator) *keymap.Keymap {
	km := keymap.NewKeymap(pc.Name, pc.Positions)
	for _, name := range pc.LayerNames(layers) {
		id, _ := layers.ID(name)
		for pos, spec := range pc.Layers[name] {
			path := fmt.Sprintf("pipe.%s.layers.%s[%d]", pc.Name, name, pos)
			a := parseSpec(parser, v, path, spec)
			if err := km.SetAction(id, pos, a); err != nil {
				v.add(path, ErrCodeOutOfRange, pos, "%v", err)
			}
		}
	}
	return km
}

// parseSpec parses spec, recording a failure and returning Opaque.
func parseSpec(parser keycode.Parser, v *validator, path, spec string) keycode.Action {
	a, err := parser.Parse(spec)
	if err != nil {
		v.add(path, ErrCodeInvalidSpec, spec, "%v", err)
		return keycode.Opaque()
	}
	return a
}

// LayerName returns the name of a layer id.
func (k *Keyboard) LayerName(id layer.ID) (string, bool) {
	return k.Layers.Name(id)
}

// Format formats an action with the profile's layer names.
func (k *Keyboard) Format(a keycode.Action) string {
	if a.Kind == keycode.KindCustom {
		switch a.Custom.Family() {
		case keycode.FamilyDualRole:
			if defs := k.DualRole.Defs(); a.Custom.Index() < len(defs) {
				return fmt.Sprintf("DUAL(%s)", defs[a.Custom.Index()].Name)
			}
		case keycode.FamilyMacRemap:
			if name, ok := k.MacRemap.Name(a.Custom); ok {
				return fmt.Sprintf("MAC(%s)", name)
			}
		}
	}
	return keycode.Format(a, k.Layers.Name)
}

// Close releases every held key and frees the script state.
func (k *Keyboard) Close() {
	k.Handler.ReleaseAll()
	if k.Script != nil {
		k.Script.Close()
	}
}
