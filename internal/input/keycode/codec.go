package keycode

import (
	"errors"
	"fmt"

	"github.com/dshills/keypipe/internal/input/key"
)

// Word is the encoded form of an Action as stored in keymap tables.
type Word uint32

// Reserved sentinel words.
const (
	WordTransparent Word = 0x00000000
	WordOpaque      Word = 0xffffffff
)

// Word field layout.
const (
	kindShift = 24
	antiShift = 20
	modShift  = 16
	opShift   = 8

	kindKey    = 0x00
	kindCustom = 0x01
	kindMidi   = 0x02

	opKey       = 0x00
	opMomentary = 0x01
	opToggle    = 0x02

	nibble   = 0x0f
	byteMask = 0xff
)

// ErrMalformedWord is returned by DecodeStrict for words that match no variant.
var ErrMalformedWord = errors.New("malformed keycode word")

// Encode converts an Action into its word representation.
// A key action with no code and no modifiers has no encoding of its own and
// is encoded as Opaque; every other conforming action round-trips through
// Decode unchanged.
func Encode(a Action) Word {
	switch a.Kind {
	case KindTransparent:
		return WordTransparent
	case KindOpaque:
		return WordOpaque
	case KindKey:
		if a.Code == key.CodeNone && a.Mods == key.ModNone && a.AntiMods == key.ModNone {
			return WordOpaque
		}
		return Word(a.Code) |
			Word(a.Mods&key.ModAll)<<modShift |
			Word(a.AntiMods&key.ModAll)<<antiShift
	case KindLayer:
		op := Word(opMomentary)
		if a.Op == LayerToggle {
			op = opToggle
		}
		return op<<opShift | Word(a.Layer)
	case KindCustom:
		return kindCustom<<kindShift | Word(a.Custom&maxCustomID)
	case KindMidi:
		return kindMidi<<kindShift | Word(a.Note&0x7f)
	default:
		return WordOpaque
	}
}

// Decode converts a word into an Action. Malformed words decode as Opaque.
func Decode(w Word) Action {
	a, err := DecodeStrict(w)
	if err != nil {
		return Opaque()
	}
	return a
}

// DecodeStrict converts a word into an Action, reporting malformed words.
func DecodeStrict(w Word) (Action, error) {
	switch w {
	case WordTransparent:
		return Transparent(), nil
	case WordOpaque:
		return Opaque(), nil
	}

	switch w >> kindShift {
	case kindKey:
		return decodeKeyWord(w)
	case kindCustom:
		return Custom(CustomID(w) & maxCustomID), nil
	case kindMidi:
		if w&^(kindMidi<<kindShift|0x7f) != 0 {
			return Opaque(), malformed(w, "midi word has stray bits")
		}
		return Midi(uint8(w & 0x7f)), nil
	default:
		return Opaque(), malformed(w, "unknown kind")
	}
}

func decodeKeyWord(w Word) (Action, error) {
	low := uint8(w & byteMask)
	op := (w >> opShift) & byteMask
	mods := key.Modifier((w >> modShift) & nibble)
	anti := key.Modifier((w >> antiShift) & nibble)

	switch op {
	case opKey:
		if mods&anti != 0 {
			return Opaque(), malformed(w, "modifier both forced and cleared")
		}
		return Action{Kind: KindKey, Code: key.Code(low), Mods: mods, AntiMods: anti}, nil
	case opMomentary, opToggle:
		if mods != 0 || anti != 0 {
			return Opaque(), malformed(w, "layer word has modifier bits")
		}
		if op == opMomentary {
			return Momentary(LayerID(low)), nil
		}
		return Toggle(LayerID(low)), nil
	default:
		return Opaque(), malformed(w, "unknown opcode")
	}
}

func malformed(w Word, reason string) error {
	return fmt.Errorf("%w: 0x%08X: %s", ErrMalformedWord, uint32(w), reason)
}

// String formats the word as hex.
func (w Word) String() string {
	return fmt.Sprintf("0x%08X", uint32(w))
}
