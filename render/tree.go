package render

import (
	"sort"

	"wcb/css"
	"wcb/document"
	"wcb/selection"
)

// Element is one node of the render tree used by the live preview.
type Element struct {
	ID         string
	Tag        string
	Classes    []string
	Style      css.Declarations // class styles with inline style on top
	Inline     css.Declarations // inline style only
	Attributes []document.Attribute
	Content    string
	Children   []*Element
}

// RenderTree builds render tree for the document. Style of each element is
// class styles merged in class order with inline style on top. Classes which
// no longer exist contribute nothing.
func (r *Renderer) RenderTree(d *document.Document) *Element {
	if d == nil || d.TreeData == nil {
		return nil
	}
	return r.element(d.TreeData, r.ClassStyles(d.CssData))
}

func (r *Renderer) element(n *document.TreeNode, styles map[string]css.Declarations) *Element {
	el := &Element{
		ID:         n.ID,
		Tag:        n.Tag,
		Classes:    n.Classes,
		Inline:     r.inline(n),
		Attributes: n.Attributes,
		Content:    n.Content,
	}
	for _, c := range n.Classes {
		el.Style = el.Style.Merge(styles[c])
	}
	el.Style = el.Style.Merge(el.Inline)
	if r.values.Registry().IsVoidElement(n.Tag) {
		return el
	}
	for _, c := range n.Childrens {
		el.Children = append(el.Children, r.element(c, styles))
	}
	return el
}

// inline parses inline style of node in key order. Selection overlay keys are
// shown as the properties they stand for, on top of user style.
func (r *Renderer) inline(n *document.TreeNode) css.Declarations {
	keys := make([]string, 0, len(n.InlineStyle))
	for k := range n.InlineStyle {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out, overlay css.Declarations
	for _, k := range keys {
		v := r.parser.ParseValue(n.InlineStyle[k])
		if v.Raw == "" {
			v.Raw = n.InlineStyle[k]
		}
		if p, ok := selection.Property(k); ok {
			overlay = overlay.Set(p, v)
			continue
		}
		out = out.Set(k, v)
	}
	return out.Merge(overlay)
}
