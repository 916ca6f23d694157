package serial

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format names a document codec.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the codec for a file path by its extension.
//
// Parameters:
//   - path: file path
//
// Returns:
//   - Format: the matching format
//   - error: ErrUnknownFormat for unrecognized extensions
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Marshal encodes doc in the given format.
func Marshal(doc *Value, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = EncodeJSON(&buf, doc)
	case FormatYAML:
		err = EncodeYAML(&buf, doc)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data in the given format.
func Unmarshal(data []byte, format Format) (*Value, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(bytes.NewReader(data))
	case FormatYAML:
		return DecodeYAML(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteFile encodes doc by the extension of path and writes it.
func WriteFile(path string, doc *Value) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads path and decodes it by its extension.
func ReadFile(path string) (*Value, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data, format)
}
