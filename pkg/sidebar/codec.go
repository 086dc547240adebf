package sidebar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	typeDoc      = "doc"
	typeCategory = "category"
)

// ErrUnknownType is returned when decoding an entry with an unsupported "type".
var ErrUnknownType = errors.New("unknown sidebar item type")

// wireEntry is the object form of an entry as the site framework reads it.
// A document without label is written as a bare string instead.
type wireEntry struct {
	Type        string  `json:"type" yaml:"type"`
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	Label       string  `json:"label,omitempty" yaml:"label,omitempty"`
	Collapsible *bool   `json:"collapsible,omitempty" yaml:"collapsible,omitempty"`
	Collapsed   *bool   `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Items       []Entry `json:"items,omitempty" yaml:"items,omitempty"`
}

func (e Entry) toWire() (any, error) {
	switch e.Kind {
	case KindDoc:
		if e.Label == "" {
			return e.ID, nil
		}
		return wireEntry{Type: typeDoc, ID: e.ID, Label: e.Label}, nil
	case KindCategory:
		items := e.Items
		if items == nil {
			items = []Entry{}
		}
		return struct {
			Type        string  `json:"type" yaml:"type"`
			Label       string  `json:"label" yaml:"label"`
			Collapsible *bool   `json:"collapsible,omitempty" yaml:"collapsible,omitempty"`
			Collapsed   *bool   `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
			Items       []Entry `json:"items" yaml:"items"`
		}{typeCategory, e.Label, e.Collapsible, e.Collapsed, items}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, e.Kind)
	}
}

func (w wireEntry) toEntry() (Entry, error) {
	switch w.Type {
	case typeDoc:
		return Entry{Kind: KindDoc, ID: w.ID, Label: w.Label}, nil
	case typeCategory:
		return Entry{
			Kind:        KindCategory,
			Label:       w.Label,
			Collapsible: w.Collapsible,
			Collapsed:   w.Collapsed,
			Items:       w.Items,
		}, nil
	default:
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	w, err := e.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. It accepts a bare document
// id string or a typed object.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = Doc(id)
		return nil
	}

	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	entry, err := w.toEntry()
	if err != nil {
		return err
	}
	*e = entry
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Entry) MarshalYAML() (any, error) {
	return e.toWire()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var id string
		if err := node.Decode(&id); err != nil {
			return err
		}
		*e = Doc(id)
		return nil
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: sidebar item must be a string or a mapping", node.Line)
	}

	var w wireEntry
	if err := node.Decode(&w); err != nil {
		return err
	}

	entry, err := w.toEntry()
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*e = entry
	return nil
}

// MarshalJSON writes the registry as an object of sidebars keyed by name.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Export())
}

// MarshalYAML writes the registry as a mapping of sidebars keyed by name.
func (r *Registry) MarshalYAML() (any, error) {
	return r.Export(), nil
}
