package value

import (
	"fmt"

	"go.uber.org/zap"

	"wcb/schema"
)

// DefaultMaxDepth caps reference expansion.
const DefaultMaxDepth = 16

// Engine resolves raw values against schema registry and formats resolved
// values back into CSS text. Engine holds no mutable state and may be shared.
type Engine struct {
	reg      *schema.Registry
	ids      IDSource
	maxDepth int
	log      *zap.Logger
}

// New creates value engine. Nil ids means random ids of default length,
// non-positive maxDepth means DefaultMaxDepth.
func New(reg *schema.Registry, ids IDSource, maxDepth int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if ids == nil {
		ids = NewIDSource(DefaultIDLength)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{reg: reg, ids: ids, maxDepth: maxDepth, log: log.Named("value")}
}

func (e *Engine) Registry() *schema.Registry { return e.reg }

// NewID returns fresh identifier from engine's id source.
func (e *Engine) NewID() string { return e.ids.NewID() }

// Resolve turns raw value into resolved value tree. References "{key}" are
// expanded into nodes carrying fresh ids, objects without id are stamped,
// arrays are resolved element by element. Nodes which already have an id are
// returned as is.
func (e *Engine) Resolve(raw any) any {
	return e.resolve(raw, nil)
}

// ResolveNode is Resolve for callers which need a node. Resolved primitives are
// reported as not ok.
func (e *Engine) ResolveNode(raw any) (*Node, bool) {
	n, ok := e.Resolve(raw).(*Node)
	return n, ok && n != nil
}

// NewProperty creates top level value node for CSS property key seeded from
// property schema.
func (e *Engine) NewProperty(key string) (*Node, error) {
	p, ok := e.reg.Property(key)
	if !ok {
		return nil, fmt.Errorf("property %q: %w", key, schema.ErrUnknownProperty)
	}
	return &Node{ID: e.ids.NewID(), Type: key, Value: e.Resolve(p.Seed())}, nil
}

func (e *Engine) resolve(raw any, path []string) any {
	switch v := raw.(type) {
	case string:
		key, ok := schema.Ref(v)
		if !ok {
			return v
		}
		return e.expand(key, v, path)
	case *Node:
		if v == nil || v.ID != "" {
			return v
		}
		n := *v
		n.ID = e.ids.NewID()
		n.Value = e.resolve(v.Value, path)
		return &n
	case map[string]any:
		return e.fromMap(v, path)
	case []any:
		out := make([]any, len(v))
		for i, el := range v {
			out[i] = e.resolve(el, path)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, el := range v {
			out[i] = e.resolve(el, path)
		}
		return out
	}
	return number(raw)
}

// expand resolves reference to input type key. Unknown keys, cycles and too
// deep chains keep the raw reference string.
func (e *Engine) expand(key, raw string, path []string) any {
	if len(path) >= e.maxDepth {
		e.log.Warn("Reference expansion is too deep, keeping raw value", zap.String("ref", raw), zap.Strings("path", path))
		return raw
	}
	for _, p := range path {
		if p == key {
			e.log.Warn("Reference cycle detected, keeping raw value", zap.String("ref", raw), zap.Strings("path", path))
			return raw
		}
	}
	in, ok := e.reg.Input(key)
	if !ok {
		e.log.Debug("Unknown input type reference, keeping raw value", zap.String("ref", raw))
		return raw
	}

	n := &Node{ID: e.ids.NewID(), Type: key}
	if kind := in.Kind(); !kind.KeepsKey() {
		n.Type = kind.String()
		if n.Type != key {
			n.Ref = key
		}
	}
	n.Value = e.resolve(in.Base().Default, append(path[:len(path):len(path)], key))
	if num, ok := in.(*schema.NumberInput); ok {
		if f, ok := n.Value.(float64); ok {
			n.Value = num.Clamp(f)
		}
	}
	return n
}

func (e *Engine) fromMap(m map[string]any, path []string) any {
	n := &Node{}
	n.ID, _ = m["id"].(string)
	n.Type, _ = m["type"].(string)
	n.Ref, _ = m["ref"].(string)
	if n.ID != "" {
		n.Value = adopt(m["value"])
		return n
	}
	n.ID = e.ids.NewID()
	n.Value = e.resolve(m["value"], path)
	return n
}

// adopt converts already resolved generic data into node shapes without
// touching ids or references.
func adopt(v any) any {
	switch t := v.(type) {
	case map[string]any:
		n := &Node{}
		n.ID, _ = t["id"].(string)
		n.Type, _ = t["type"].(string)
		n.Ref, _ = t["ref"].(string)
		n.Value = adopt(t["value"])
		return n
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = adopt(el)
		}
		return out
	}
	return number(v)
}

func number(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}

// Walk calls fn for every node of value tree in pre-order.
func Walk(v any, fn func(*Node)) {
	switch t := v.(type) {
	case *Node:
		if t == nil {
			return
		}
		fn(t)
		Walk(t.Value, fn)
	case []any:
		for _, el := range t {
			Walk(el, fn)
		}
	}
}
