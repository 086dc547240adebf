// Package loader reads sidebar registries from JSON, YAML or TOML files.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/enclava/sidebars/pkg/schema"
	"github.com/enclava/sidebars/pkg/sidebar"
)

// Format is a supported file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported sidebar file format")

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads and validates the sidebar file at path.
func Load(path string) (*sidebar.Registry, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidebars: %w", err)
	}

	r, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("sidebars loaded", "path", path, "sidebars", r.Names())
	return r, nil
}

// Parse decodes data in the given format, checks it against the JSON
// Schema and the structural rules, and returns the registry.
func Parse(data []byte, format Format) (*sidebar.Registry, error) {
	raw, err := decode(data, format)
	if err != nil {
		return nil, err
	}

	// round-trip through JSON so every format reaches the schema and the
	// typed decoder as the same plain values
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize sidebars: %w", err)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("failed to normalize sidebars: %w", err)
	}
	if err := validator.Validate(doc); err != nil {
		return nil, err
	}

	var sidebars map[string][]sidebar.Entry
	if err := json.Unmarshal(normalized, &sidebars); err != nil {
		return nil, fmt.Errorf("failed to decode sidebars: %w", err)
	}

	names := make([]string, 0, len(sidebars))
	for name := range sidebars {
		names = append(names, name)
	}
	sort.Strings(names)

	r := sidebar.New()
	for _, name := range names {
		if err := r.Define(name, sidebars[name]...); err != nil {
			return nil, err
		}
	}

	if err := sidebar.Validate(r); err != nil {
		return nil, err
	}

	return r, nil
}

func decode(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		if err := checkDuplicateNames(data); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	// an empty YAML document decodes to nil; treat it as no sidebars
	if raw == nil {
		raw = map[string]any{}
	}

	return raw, nil
}

// checkDuplicateNames rejects a JSON object that names the same sidebar
// twice; encoding/json would otherwise keep only the last definition.
func checkDuplicateNames(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
		name, _ := tok.(string)
		if seen[name] {
			return fmt.Errorf("%w: %q", sidebar.ErrDuplicateName, name)
		}
		seen[name] = true

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	return nil
}
