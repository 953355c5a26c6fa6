package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/keypipe/internal/config/loader"
)

//go:embed profiles/*.toml
var builtinFS embed.FS

// builtinPrefix marks the Source of built-in profiles.
const builtinPrefix = "builtin:"

// profileExts lists the extensions tried when finding a profile by name.
var profileExts = []string{".toml", ".yaml", ".yml", ".json"}

// Load reads a profile file, choosing the format by extension.
func Load(path string) (*Profile, error) {
	return LoadFS(loader.DefaultFS(), path)
}

// LoadFS reads a profile file from fsys.
func LoadFS(fsys loader.FileSystem, path string) (*Profile, error) {
	format, err := loader.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	p, err := Decode(path, format, data)
	if err != nil {
		return nil, err
	}
	p.Source = path
	return p, nil
}

// Decode decodes profile data in the given format. QMK JSON is imported;
// entries that have no keycode equivalent become XXX.
func Decode(source string, format loader.Format, data []byte) (*Profile, error) {
	if format == loader.FormatJSON {
		p, _, err := ImportQMK(source, data)
		return p, err
	}
	dec, _, err := loader.Codec(format)
	if err != nil {
		return nil, err
	}
	p := NewProfile()
	if err := dec.Decode(source, data, p); err != nil {
		return nil, err
	}
	p.Source = source
	return p, nil
}

// Encode writes p in the given structured format.
func Encode(p *Profile, format loader.Format) ([]byte, error) {
	_, enc, err := loader.Codec(format)
	if err != nil {
		return nil, err
	}
	return enc.Encode(p)
}

// Builtin returns a built-in profile by name.
func Builtin(name string) (*Profile, error) {
	file := path.Join("profiles", strings.ToLower(name)+".toml")
	p, err := LoadFS(loader.FromFS(builtinFS), file)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
		}
		return nil, err
	}
	p.Source = builtinPrefix + strings.ToLower(name)
	return p, nil
}

// BuiltinNames returns the names of the built-in profiles, sorted.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("profiles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether p came from a built-in profile.
func (p *Profile) IsBuiltin() bool {
	return strings.HasPrefix(p.Source, builtinPrefix)
}

// Find resolves ref to a profile. ref is a file path if it has a profile
// extension or a path separator; otherwise it is a name looked up in dir
// and then among the built-in profiles.
func Find(ref, dir string) (*Profile, error) {
	return FindFS(loader.DefaultFS(), ref, dir)
}

// FindFS is Find on an explicit file system.
func FindFS(fsys loader.FileSystem, ref, dir string) (*Profile, error) {
	if _, err := loader.FormatFromPath(ref); err == nil || strings.ContainsRune(ref, filepath.Separator) {
		return LoadFS(fsys, ref)
	}
	if dir != "" {
		for _, ext := range profileExts {
			candidate := filepath.Join(dir, ref+ext)
			if _, err := fsys.Stat(candidate); err == nil {
				return LoadFS(fsys, candidate)
			}
		}
	}
	return Builtin(ref)
}
