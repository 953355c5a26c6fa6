// Package loader decodes profile files.
//
// Profiles are written in TOML or YAML; the format is chosen by file
// extension. Environment variables with a fixed prefix override selected
// settings after a profile is decoded.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for files whose extension has no decoder.
var ErrUnknownFormat = errors.New("unknown profile format")

// Format identifies a profile file format.
type Format uint8

const (
	// FormatTOML is a .toml profile.
	FormatTOML Format = iota + 1
	// FormatYAML is a .yaml or .yml profile.
	FormatYAML
	// FormatJSON is a QMK configurator .json keymap.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatFromPath returns the format selected by path's extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseFormat parses a format name or extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json", "qmk":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Decoder decodes profile data into a value.
type Decoder interface {
	// Decode decodes data read from source into v.
	Decode(source string, data []byte, v any) error
}

// Encoder encodes a value as profile data.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Codec returns the decoder and encoder for a structured format.
func Codec(f Format) (Decoder, Encoder, error) {
	switch f {
	case FormatTOML:
		l := NewTOMLLoader()
		return l, l, nil
	case FormatYAML:
		l := NewYAMLLoader()
		return l, l, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s has no profile codec", ErrUnknownFormat, f)
	}
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// fsAdapter serves a FileSystem from an fs.FS such as an embed.FS.
type fsAdapter struct {
	fsys fs.FS
}

// FromFS adapts an fs.FS.
func FromFS(fsys fs.FS) FileSystem {
	return fsAdapter{fsys: fsys}
}

func (a fsAdapter) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(a.fsys, path)
}

func (a fsAdapter) Stat(path string) (fs.FileInfo, error) {
	return fs.Stat(a.fsys, path)
}

// ParseError represents an error while parsing a profile file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadFile decodes the file at path from fsys into v, choosing the decoder
// by extension. JSON files are not decoded here; use FormatFromPath first.
func LoadFile(fsys FileSystem, path string, v any) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	dec, _, err := Codec(f)
	if err != nil {
		return err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading profile %s: %w", path, err)
	}
	return dec.Decode(path, data, v)
}
