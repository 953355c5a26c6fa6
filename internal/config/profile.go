package config

import (
	"sort"

	"github.com/dshills/keypipe/internal/input/layer"
)

// Profile is a keyboard profile as written in a profile file.
type Profile struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty"`

	// Layers names the layers; index 0 is the base layer.
	Layers []string `toml:"layers" yaml:"layers"`

	MIDI MIDIConfig `toml:"midi" yaml:"midi"`

	DualRole      []DualRoleConfig     `toml:"dual_role,omitempty" yaml:"dual_role,omitempty"`
	MacHolders    []MacHolderConfig    `toml:"mac_holder,omitempty" yaml:"mac_holder,omitempty"`
	MacCompanions []MacCompanionConfig `toml:"mac_companion,omitempty" yaml:"mac_companion,omitempty"`

	// Script is a Lua file, relative to the profile file.
	Script string `toml:"script,omitempty" yaml:"script,omitempty"`

	Pipes []PipeConfig `toml:"pipe" yaml:"pipe"`

	// Source is the file the profile was loaded from.
	Source string `toml:"-" yaml:"-"`
}

// MIDIConfig holds the MIDI handler settings.
type MIDIConfig struct {
	Channel          int  `toml:"channel" yaml:"channel"`
	Velocity         int  `toml:"velocity" yaml:"velocity"`
	ProgramOnChannel bool `toml:"program_on_channel" yaml:"program_on_channel"`
}

// DualRoleConfig defines a dual-role key, referenced as DUAL(name).
type DualRoleConfig struct {
	Name     string   `toml:"name" yaml:"name"`
	HeldAny  []string `toml:"held_any" yaml:"held_any"`
	BaseOnly bool     `toml:"base_only,omitempty" yaml:"base_only,omitempty"`
	Active   string   `toml:"active" yaml:"active"`
	Inactive string   `toml:"inactive" yaml:"inactive"`
}

// MacHolderConfig defines a mac modifier holder, referenced as MAC(name).
type MacHolderConfig struct {
	Name      string `toml:"name" yaml:"name"`
	Modifier  string `toml:"modifier" yaml:"modifier"`
	ConvertTo string `toml:"convert_to,omitempty" yaml:"convert_to,omitempty"`
}

// MacCompanionConfig defines a key whose action depends on held holders.
type MacCompanionConfig struct {
	Name    string        `toml:"name" yaml:"name"`
	Default string        `toml:"default" yaml:"default"`
	Chords  []ChordConfig `toml:"chords" yaml:"chords"`
}

// ChordConfig is the action a companion emits while a holder is held.
type ChordConfig struct {
	Holder string `toml:"holder" yaml:"holder"`
	Chord  string `toml:"chord" yaml:"chord"`
}

// PipeConfig is one pipe's keymap.
type PipeConfig struct {
	Name string `toml:"name" yaml:"name"`

	// ID is the pipe slot, 0-7. Mirror binds the same table to more slots.
	ID     int   `toml:"id" yaml:"id"`
	Mirror []int `toml:"mirror,omitempty" yaml:"mirror,omitempty"`

	Positions int `toml:"positions" yaml:"positions"`

	// Layers maps layer names to one spec per position. Short rows are
	// padded with transparent entries.
	Layers map[string][]string `toml:"layers" yaml:"layers"`
}

// SlotIDs returns ID followed by the mirror ids.
func (pc PipeConfig) SlotIDs() []int {
	return append([]int{pc.ID}, pc.Mirror...)
}

// LayerNames returns the pipe's layer names in the order of set, with
// names unknown to set sorted last.
func (pc PipeConfig) LayerNames(set *layer.Set) []string {
	names := make([]string, 0, len(pc.Layers))
	for name := range pc.Layers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, aok := set.ID(names[i])
		b, bok := set.ID(names[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// NewProfile returns an empty profile with MIDI defaults applied. Decoding
// into it keeps defaults for keys the file omits.
func NewProfile() *Profile {
	return &Profile{
		MIDI: MIDIConfig{Velocity: 100, ProgramOnChannel: true},
	}
}

// Pipe returns the pipe config with the given name.
func (p *Profile) Pipe(name string) (*PipeConfig, bool) {
	for i := range p.Pipes {
		if p.Pipes[i].Name == name {
			return &p.Pipes[i], true
		}
	}
	return nil, false
}
