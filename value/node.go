// Package value resolves schema driven property values into identified value
// nodes and formats them back into CSS text.
package value

import (
	"encoding/json"
	"fmt"
)

// Node is one resolved value anywhere in a property value tree.
//
// Value holds a string, a float64, a *Node or a []any whose elements are
// *Node or primitives.
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Ref   string `json:"ref,omitempty"`
	Value any    `json:"value"`
}

// Key returns schema key used to format the node.
func (n *Node) Key() string {
	if n.Ref != "" {
		return n.Ref
	}
	return n.Type
}

// Clone makes a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Value = cloneValue(n.Value)
	return &c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// Equal compares two value trees structurally, ids included.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case *Node:
		y, ok := b.(*Node)
		if !ok || (x == nil) != (y == nil) {
			return false
		}
		if x == nil {
			return true
		}
		return x.ID == y.ID && x.Type == y.Type && x.Ref == y.Ref && Equal(x.Value, y.Value)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

// UnmarshalJSON restores nested objects as *Node so decoded documents have the
// same shapes Resolve produces.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    string          `json:"id"`
		Type  string          `json:"type"`
		Ref   string          `json:"ref"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.ID, n.Type, n.Ref = raw.ID, raw.Type, raw.Ref
	if len(raw.Value) == 0 {
		n.Value = nil
		return nil
	}
	v, err := decodeValue(raw.Value)
	if err != nil {
		return fmt.Errorf("value of %q: %w", raw.ID, err)
	}
	n.Value = v
	return nil
}

func decodeValue(data json.RawMessage) (any, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch probe.(type) {
	case map[string]any:
		child := &Node{}
		if err := json.Unmarshal(data, child); err != nil {
			return nil, err
		}
		return child, nil
	case []any:
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return probe, nil
}
