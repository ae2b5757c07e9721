package document

import (
	"fmt"

	"github.com/xlab/treeprint"
	"go.uber.org/multierr"

	"wcb/schema"
	"wcb/value"
)

// Validate checks document consistency and reports every problem found.
// Dangling class references are reported too even though rendering tolerates
// them.
func (e *Engine) Validate(d *Document) (errs error) {
	if d == nil || d.TreeData == nil {
		return fmt.Errorf("document has no element tree")
	}

	classes := make(map[string]bool)
	if d.CssData != nil {
		for _, c := range d.CssData.Classes {
			if classes[c.ID] {
				errs = multierr.Append(errs, fmt.Errorf("duplicate class id %q", c.ID))
			}
			classes[c.ID] = true
			errs = multierr.Append(errs, e.validateClass(c))
		}
	}

	ids := make(map[string]bool)
	Walk(d.TreeData, func(n *TreeNode, _ int) bool {
		if ids[n.ID] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate element id %q", n.ID))
		}
		ids[n.ID] = true
		if _, ok := e.reg.Element(n.Tag); !ok {
			errs = multierr.Append(errs, fmt.Errorf("element %q: <%s>: %w", n.ID, n.Tag, schema.ErrUnknownElement))
		}
		if e.reg.IsVoidElement(n.Tag) && len(n.Childrens) > 0 {
			errs = multierr.Append(errs, fmt.Errorf("void element %q <%s> has %d children", n.ID, n.Tag, len(n.Childrens)))
		}
		for _, c := range n.Classes {
			if !classes[c] {
				errs = multierr.Append(errs, fmt.Errorf("element %q refers to missing class %q", n.ID, c))
			}
		}
		for _, a := range n.Attributes {
			if a.Name == "style" || a.Name == "class" {
				errs = multierr.Append(errs, fmt.Errorf("element %q stores structural attribute %q", n.ID, a.Name))
			}
		}
		return true
	})
	return errs
}

func (e *Engine) validateClass(c *CssClass) (errs error) {
	ids := make(map[string]bool)
	for _, p := range c.Properties {
		if _, ok := e.reg.Property(p.Type); !ok {
			errs = multierr.Append(errs, fmt.Errorf("class %q property %q: %w", c.ID, p.Type, schema.ErrUnknownProperty))
		}
		value.Walk(p, func(n *value.Node) {
			if n.ID == "" {
				errs = multierr.Append(errs, fmt.Errorf("class %q has value without id", c.ID))
				return
			}
			if ids[n.ID] {
				errs = multierr.Append(errs, fmt.Errorf("class %q has duplicate value id %q", c.ID, n.ID))
			}
			ids[n.ID] = true
		})
	}
	return errs
}

// Dump renders element tree for debugging.
func Dump(root *TreeNode) string {
	if root == nil {
		return ""
	}
	tp := treeprint.New()
	addNode(tp, root)
	return tp.String()
}

func addNode(tp treeprint.Tree, n *TreeNode) {
	if len(n.Childrens) == 0 {
		tp.AddNode(label(n))
		return
	}
	branch := tp.AddBranch(label(n))
	for _, c := range n.Childrens {
		addNode(branch, c)
	}
}

func label(n *TreeNode) string {
	s := fmt.Sprintf("<%s> #%s", n.Tag, n.ID)
	for _, c := range n.Classes {
		s += " ." + c
	}
	if n.Title != "" {
		s += fmt.Sprintf(" %q", n.Title)
	}
	return s
}
