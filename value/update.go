package value

import (
	"slices"

	"go.uber.org/zap"

	"wcb/schema"
)

// UpdateNested replaces value of the node addressed by idPath, which starts
// with root's own id, with Resolve(raw). Nodes along the path are copied,
// everything else is shared with root. Stale paths and values refused by the
// target schema leave root as is and report false.
func (e *Engine) UpdateNested(root *Node, idPath []string, raw any) (*Node, bool) {
	n, ok := e.update(root, idPath, raw)
	if !ok {
		e.log.Debug("Nested value not updated", zap.Strings("path", idPath))
		return root, false
	}
	return n, true
}

// Find returns node addressed by idPath.
func Find(root *Node, idPath []string) (*Node, bool) {
	if root == nil || len(idPath) == 0 || root.ID != idPath[0] {
		return nil, false
	}
	cur := root
	for _, id := range idPath[1:] {
		next, ok := child(cur, id)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func child(n *Node, id string) (*Node, bool) {
	switch v := n.Value.(type) {
	case *Node:
		if v != nil && v.ID == id {
			return v, true
		}
	case []any:
		for _, el := range v {
			if c, ok := el.(*Node); ok && c.ID == id {
				return c, true
			}
		}
	}
	return nil, false
}

func (e *Engine) update(n *Node, idPath []string, raw any) (*Node, bool) {
	if n == nil || len(idPath) == 0 || n.ID != idPath[0] {
		return nil, false
	}
	if len(idPath) == 1 {
		v, ok := e.accept(n, e.Resolve(raw))
		if !ok {
			return nil, false
		}
		c := *n
		c.Value = v
		return &c, true
	}

	next := idPath[1]
	switch v := n.Value.(type) {
	case *Node:
		if v == nil || v.ID != next {
			return nil, false
		}
		updated, ok := e.update(v, idPath[1:], raw)
		if !ok {
			return nil, false
		}
		c := *n
		c.Value = updated
		return &c, true
	case []any:
		for i, el := range v {
			cn, isNode := el.(*Node)
			if !isNode || cn.ID != next {
				continue
			}
			updated, ok := e.update(cn, idPath[1:], raw)
			if !ok {
				return nil, false
			}
			items := slices.Clone(v)
			items[i] = updated
			c := *n
			c.Value = items
			return &c, true
		}
	}
	return nil, false
}

// accept checks new value against schema of the target node. Numbers are
// clamped into range, keywords must be among selection options.
func (e *Engine) accept(n *Node, v any) (any, bool) {
	in, ok := e.lookup(n.Key())
	if !ok {
		return v, true
	}
	switch t := in.(type) {
	case *schema.NumberInput:
		if f, ok := v.(float64); ok {
			return t.Clamp(f), true
		}
	case *schema.SelectionInput:
		if s, ok := v.(string); ok && !t.Allows(s) {
			e.log.Debug("Keyword is not allowed", zap.String("type", n.Key()), zap.String("keyword", s))
			return nil, false
		}
	}
	return v, true
}
