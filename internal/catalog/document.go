package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// listDocument accepts either a bare list of records or an object holding
// the list under one of keys.
type listDocument[T any] struct {
	keys  []string
	items []T
}

func (d *listDocument[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &d.items)
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	for _, key := range d.keys {
		if raw, ok := wrapped[key]; ok {
			return json.Unmarshal(raw, &d.items)
		}
	}
	return fmt.Errorf("expected a list or an object with one of [%s]", strings.Join(d.keys, ", "))
}

func (d *listDocument[T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		return n.Decode(&d.items)
	}

	var wrapped map[string]yaml.Node
	if err := n.Decode(&wrapped); err != nil {
		return err
	}
	for _, key := range d.keys {
		if node, ok := wrapped[key]; ok {
			return node.Decode(&d.items)
		}
	}
	return fmt.Errorf("expected a list or a mapping with one of [%s]", strings.Join(d.keys, ", "))
}
