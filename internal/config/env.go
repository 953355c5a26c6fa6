package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/keypipe/internal/config/loader"
)

// Settings are process settings read from the environment.
type Settings struct {
	LogLevel  string
	LogJSON   bool
	ConfigDir string
	Profile   string
}

// ReadSettings reads process settings from KEYPIPE_ variables.
func ReadSettings(env *loader.EnvLoader) Settings {
	vals := env.Load()
	s := Settings{
		LogLevel:  vals["log.level"],
		ConfigDir: vals["paths.configDir"],
		Profile:   vals["profile"],
	}
	s.LogJSON, _ = strconv.ParseBool(vals["log.json"])
	return s
}

// ApplyEnv overrides profile MIDI settings from KEYPIPE_ variables:
// KEYPIPE_MIDI_CHANNEL, KEYPIPE_MIDI_VELOCITY and
// KEYPIPE_MIDI_PROGRAM_ON_CHANNEL.
func ApplyEnv(p *Profile, env *loader.EnvLoader) error {
	vals := env.Load()
	var v validator

	setInt := func(path string, dst *int) {
		raw, ok := vals[path]
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			v.add("env "+path, ErrCodeOutOfRange, raw, "not an integer")
			return
		}
		*dst = n
	}
	setInt("midi.channel", &p.MIDI.Channel)
	setInt("midi.velocity", &p.MIDI.Velocity)

	if raw, ok := vals["midi.programOnChannel"]; ok && raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			v.add("env midi.programOnChannel", ErrCodeOutOfRange, raw, "not a boolean")
		} else {
			p.MIDI.ProgramOnChannel = b
		}
	}

	if err := v.err(); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}
