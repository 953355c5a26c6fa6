package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLLoader decodes YAML profiles.
type YAMLLoader struct {
	fs     FileSystem
	strict bool
}

// NewYAMLLoader creates a strict YAML loader on the OS file system.
func NewYAMLLoader() *YAMLLoader {
	return NewYAMLLoaderWithFS(DefaultFS())
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fs FileSystem) *YAMLLoader {
	return &YAMLLoader{fs: fs, strict: true}
}

// SetStrict controls whether unknown keys are rejected (default: true).
func (l *YAMLLoader) SetStrict(strict bool) {
	l.strict = strict
}

// LoadFrom decodes the file at path into v.
func (l *YAMLLoader) LoadFrom(path string, v any) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading profile %s: %w", path, err)
	}
	return l.Decode(path, data, v)
}

// LoadFromReader decodes YAML from r into v.
func (l *YAMLLoader) LoadFromReader(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading profile: %w", err)
	}
	return l.Decode("<reader>", data, v)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Decode implements Decoder. An empty document decodes to nothing.
func (l *YAMLLoader) Decode(source string, data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(l.strict)
	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		perr.Message = terr.Errors[0]
	}
	if m := yamlLine.FindStringSubmatch(perr.Message); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
	}
	return perr
}

// Encode implements Encoder.
func (l *YAMLLoader) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}
