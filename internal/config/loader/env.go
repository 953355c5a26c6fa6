package loader

import (
	"os"
	"sort"
	"strings"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "KEYPIPE_"

// EnvLoader collects settings from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "KEYPIPE_")
	mapping map[string]string // Env var -> setting path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "KEYPIPE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom creates a loader reading a fixed environment, given as
// KEY=value strings.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":     "log.level",
		prefix + "LOG_JSON":      "log.json",
		prefix + "CONFIG_DIR":    "paths.configDir",
		prefix + "PROFILE":       "profile",
		prefix + "MIDI_CHANNEL":  "midi.channel",
		prefix + "MIDI_VELOCITY": "midi.velocity",
	}
}

// Load returns settings keyed by dotted path. Mapped variables use their
// mapping; other prefixed variables are converted by name, so
// KEYPIPE_MIDI_PROGRAM_ON_CHANNEL becomes midi.programOnChannel.
// Empty values are kept.
func (l *EnvLoader) Load() map[string]string {
	settings := make(map[string]string)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if path, mapped := l.mapping[name]; mapped {
			settings[path] = value
			continue
		}
		settings[l.envToPath(name)] = value
	}
	return settings
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, path string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = path
}

// Variables returns the mapped variable names, sorted.
func (l *EnvLoader) Variables() []string {
	names := make([]string, 0, len(l.mapping))
	for name := range l.mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// envToPath converts KEYPIPE_MIDI_PROGRAM_ON_CHANNEL to midi.programOnChannel.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	parts := strings.Split(name, "_")

	// First part is the section
	result := []string{strings.ToLower(parts[0])}

	// Remaining parts form the setting name in camelCase
	if len(parts) > 1 {
		settingParts := parts[1:]
		settingName := strings.ToLower(settingParts[0])
		for _, part := range settingParts[1:] {
			if len(part) > 0 {
				settingName += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
			}
		}
		result = append(result, settingName)
	}

	return strings.Join(result, ".")
}
