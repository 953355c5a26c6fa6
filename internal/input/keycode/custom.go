package keycode

import "fmt"

// CustomID is the payload of a custom keycode word.
type CustomID uint32

const maxCustomID CustomID = 0x00ffffff

// Family is the closed set of custom keycode handler variants.
// Ranges are fixed so that every id maps to exactly one family.
type Family uint8

const (
	// FamilyNone is returned for non-custom actions.
	FamilyNone Family = iota

	// FamilyDualRole is a generic dual-role key (ids 0x000-0x0FF).
	FamilyDualRole

	// FamilyMacRemap is a mac modifier holder or companion (ids 0x100-0x1FF).
	FamilyMacRemap

	// FamilyMIDIChannel selects the MIDI channel (ids 0x200-0x20F).
	FamilyMIDIChannel

	// FamilyMIDIOctave sets the octave transpose (ids 0x210-0x21F).
	FamilyMIDIOctave

	// FamilyMIDINote is a MIDI note word (not a custom id range).
	FamilyMIDINote

	// FamilyScript is a Lua-scripted key (ids 0x300-0x3FF).
	FamilyScript

	// FamilyUnknown is any other id.
	FamilyUnknown
)

// Custom id range bases.
const (
	DualRoleBase    CustomID = 0x000
	MacRemapBase    CustomID = 0x100
	MIDIChannelBase CustomID = 0x200
	MIDIOctaveBase  CustomID = 0x210
	ScriptBase      CustomID = 0x300

	familySpan      CustomID = 0x100
	midiSpan        CustomID = 0x10
	octaveZeroIndex          = 8
)

// String returns a human-readable family name.
func (f Family) String() string {
	switch f {
	case FamilyNone:
		return "none"
	case FamilyDualRole:
		return "dual-role"
	case FamilyMacRemap:
		return "mac-remap"
	case FamilyMIDIChannel:
		return "midi-channel"
	case FamilyMIDIOctave:
		return "midi-octave"
	case FamilyMIDINote:
		return "midi-note"
	case FamilyScript:
		return "script"
	default:
		return "unknown"
	}
}

// Family classifies the id into its handler family.
func (id CustomID) Family() Family {
	switch {
	case id < MacRemapBase:
		return FamilyDualRole
	case id < MIDIChannelBase:
		return FamilyMacRemap
	case id < MIDIOctaveBase:
		return FamilyMIDIChannel
	case id < MIDIOctaveBase+midiSpan:
		return FamilyMIDIOctave
	case id >= ScriptBase && id < ScriptBase+familySpan:
		return FamilyScript
	default:
		return FamilyUnknown
	}
}

// Index returns the id's offset within its family range.
func (id CustomID) Index() int {
	switch id.Family() {
	case FamilyDualRole:
		return int(id - DualRoleBase)
	case FamilyMacRemap:
		return int(id - MacRemapBase)
	case FamilyMIDIChannel:
		return int(id - MIDIChannelBase)
	case FamilyMIDIOctave:
		return int(id-MIDIOctaveBase) - octaveZeroIndex
	case FamilyScript:
		return int(id - ScriptBase)
	default:
		return int(id)
	}
}

// String formats the id as a spec string.
func (id CustomID) String() string {
	switch id.Family() {
	case FamilyDualRole:
		return fmt.Sprintf("DUAL(%d)", id.Index())
	case FamilyMacRemap:
		return fmt.Sprintf("MAC(%d)", id.Index())
	case FamilyMIDIChannel:
		return fmt.Sprintf("CH(%d)", id.Index())
	case FamilyMIDIOctave:
		return fmt.Sprintf("OCT(%+d)", id.Index())
	case FamilyScript:
		return fmt.Sprintf("LUA(%d)", id.Index())
	default:
		return fmt.Sprintf("CUSTOM(0x%04X)", uint32(id))
	}
}

// DualRole returns the custom action for dual-role key n (0-255).
func DualRole(n int) Action {
	return Custom(DualRoleBase + CustomID(n&0xff))
}

// MacRemap returns the custom action for mac remap key n (0-255).
func MacRemap(n int) Action {
	return Custom(MacRemapBase + CustomID(n&0xff))
}

// Channel returns the custom action selecting MIDI channel ch (0-15).
func Channel(ch int) Action {
	return Custom(MIDIChannelBase + CustomID(ch&0x0f))
}

// Octave returns the custom action setting the octave transpose (-8..+7).
func Octave(octave int) Action {
	return Custom(MIDIOctaveBase + CustomID((octave+octaveZeroIndex)&0x0f))
}

// Script returns the custom action for Lua-scripted key n (0-255).
func Script(n int) Action {
	return Custom(ScriptBase + CustomID(n&0xff))
}
