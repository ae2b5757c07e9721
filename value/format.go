package value

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wcb/schema"
)

// lookup finds input schema for key. Property keys map to their input type.
func (e *Engine) lookup(key string) (schema.Input, bool) {
	if in, ok := e.reg.Input(key); ok {
		return in, true
	}
	if p, ok := e.reg.Property(key); ok {
		return e.reg.Input(p.Inputs)
	}
	return nil, false
}

// Format renders value as CSS text. Nodes are formatted with their own schema,
// arrays are joined with separator of key's schema which template is applied
// afterwards. Unknown schema degrades to plain string form of the value.
func (e *Engine) Format(v any, key string) string {
	switch t := v.(type) {
	case *Node:
		return e.formatNode(t)
	case []any:
		in, ok := e.lookup(key)
		if !ok {
			return e.join(t, nil)
		}
		return in.Base().Apply(e.join(t, in))
	}
	return primitive(v)
}

// FormatProperty renders top level property node as declaration using
// property template, e.g. "display: flex;".
func (e *Engine) FormatProperty(n *Node) (string, bool) {
	if n == nil {
		return "", false
	}
	p, ok := e.reg.Property(n.Type)
	if !ok {
		e.log.Debug("Unknown property, skipping", zap.String("property", n.Type), zap.String("id", n.ID))
		return "", false
	}
	return p.Apply(e.Format(n.Value, n.Type)), true
}

func (e *Engine) formatNode(n *Node) string {
	if n == nil {
		return ""
	}
	in, ok := e.lookup(n.Key())
	if !ok {
		e.log.Debug("Unknown input type, using raw value", zap.String("type", n.Key()), zap.String("id", n.ID))
	}
	var s string
	switch t := n.Value.(type) {
	case *Node:
		s = e.formatNode(t)
	case []any:
		s = e.join(t, in)
	default:
		s = primitive(t)
	}
	if !ok {
		return s
	}
	return in.Base().Apply(s)
}

func (e *Engine) join(items []any, in schema.Input) string {
	sep := " "
	if in != nil {
		sep = in.Base().Sep()
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if n, ok := it.(*Node); ok {
			parts = append(parts, e.formatNode(n))
			continue
		}
		parts = append(parts, primitive(it))
	}
	return strings.Join(parts, sep)
}

func primitive(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
