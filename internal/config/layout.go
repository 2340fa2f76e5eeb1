package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"painel/internal/parser"

	"gopkg.in/yaml.v3"
)

// LoadLayout returns the default layout overlaid with the YAML file at path.
// Keys absent from the file keep their defaults; lists are replaced whole.
// An empty path yields the defaults.
func LoadLayout(path string) (parser.Layout, error) {
	layout := parser.DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return parser.Layout{}, fmt.Errorf("read layout file: %w", err)
	}
	if err := decodeLayout(data, &layout); err != nil {
		return parser.Layout{}, fmt.Errorf("decode layout file %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return parser.Layout{}, err
	}
	return layout, nil
}

func decodeLayout(data []byte, layout *parser.Layout) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(layout); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
