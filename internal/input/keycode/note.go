package keycode

import (
	"fmt"
	"strconv"
	"strings"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI note number as a name with octave, where
// middle C (60) is "C4".
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}

// ParseNote parses a MIDI note given as a number ("60") or a name with
// octave ("C4", "c#4", "Db3", "A-1").
func ParseNote(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("%w: note %d out of range", ErrInvalidSpec, n)
		}
		return uint8(n), nil
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty note", ErrInvalidSpec)
	}

	upper := strings.ToUpper(s)
	semitone := -1
	for i, n := range noteNames {
		if len(n) == 1 && upper[0] == n[0] {
			semitone = i
			break
		}
	}
	if semitone < 0 {
		return 0, fmt.Errorf("%w: note %q", ErrInvalidSpec, s)
	}

	rest := upper[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		semitone++
		rest = rest[1:]
	case strings.HasPrefix(rest, "B") && len(rest) > 1:
		semitone--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: note %q", ErrInvalidSpec, s)
	}
	n := (octave+1)*12 + semitone
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("%w: note %q out of range", ErrInvalidSpec, s)
	}
	return uint8(n), nil
}
