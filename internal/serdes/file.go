package serdes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("serdes: unsupported payload format")

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// LoadPayload reads a raw payload from a .json, .yaml or .yml file.
func LoadPayload(fs afero.Fs, path string) (RawPayload, error) {
	f, err := formatOf(path)
	if err != nil {
		return RawPayload{}, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return RawPayload{}, err
	}

	var doc any
	switch f {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return RawPayload{}, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, path, err)
		}
		doc = normalizeNumbers(doc)
	case formatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return RawPayload{}, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, path, err)
		}
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return RawPayload{}, fmt.Errorf("%w: %s: top level is not an object", ErrMalformedPayload, path)
	}
	return DecodePayload(m)
}

// SavePayload writes p to path in the format its extension names.
func SavePayload(fs afero.Fs, path string, p RawPayload) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatJSON:
		data, err = json.MarshalIndent(p, "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

// normalizeNumbers replaces json.Number with int64 when the number is
// integral and float64 otherwise, so JSON and YAML payloads carry the same
// Go types.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeNumbers(e)
		}
		return x
	}
	return v
}
