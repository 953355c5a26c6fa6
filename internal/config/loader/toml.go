package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader decodes TOML profiles.
type TOMLLoader struct {
	fs     FileSystem
	strict bool
}

// NewTOMLLoader creates a strict TOML loader on the OS file system.
func NewTOMLLoader() *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS())
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fs FileSystem) *TOMLLoader {
	return &TOMLLoader{fs: fs, strict: true}
}

// SetStrict controls whether unknown keys are rejected (default: true).
func (l *TOMLLoader) SetStrict(strict bool) {
	l.strict = strict
}

// LoadFrom decodes the file at path into v.
func (l *TOMLLoader) LoadFrom(path string, v any) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading profile %s: %w", path, err)
	}
	return l.Decode(path, data, v)
}

// LoadFromReader decodes TOML from r into v.
func (l *TOMLLoader) LoadFromReader(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading profile: %w", err)
	}
	return l.Decode("<reader>", data, v)
}

// Decode implements Decoder.
func (l *TOMLLoader) Decode(source string, data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	if l.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) && len(serr.Errors) > 0 {
			perr.Line, perr.Column = serr.Errors[0].Position()
			perr.Message = "unknown key " + fmt.Sprint(serr.Errors[0].Key())
		}
		return perr
	}
	return nil
}

// Encode implements Encoder.
func (l *TOMLLoader) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding toml: %w", err)
	}
	return buf.Bytes(), nil
}
