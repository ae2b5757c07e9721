package document

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"wcb/common"
	"wcb/css"
	"wcb/schema"
	"wcb/value"
)

// DefaultTag is the tag of freshly created elements.
const DefaultTag = "div"

// Engine applies structural edits to documents. It keeps no state between
// calls, every operation takes a snapshot and returns a new one.
type Engine struct {
	reg        *schema.Registry
	values     *value.Engine
	parser     *css.Parser
	defaultTag string
	log        *zap.Logger
}

// NewEngine creates document engine. Empty defaultTag means DefaultTag.
func NewEngine(values *value.Engine, defaultTag string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultTag == "" {
		defaultTag = DefaultTag
	}
	return &Engine{
		reg:        values.Registry(),
		values:     values,
		parser:     css.NewParser(log),
		defaultTag: defaultTag,
		log:        log.Named("tree"),
	}
}

func (e *Engine) Values() *value.Engine      { return e.values }
func (e *Engine) Registry() *schema.Registry { return e.reg }

func (e *Engine) miss(op, id string) Result {
	e.log.Debug("Element not found", zap.String("op", op), zap.String("id", id))
	return Result{}
}

// CreateElement appends new default element to children of parentID. Void
// parents are refused.
func (e *Engine) CreateElement(root *TreeNode, parentID string) (*TreeNode, Result) {
	parent := Find(root, parentID)
	if parent == nil {
		return root, e.miss("create", parentID)
	}
	if e.reg.IsVoidElement(parent.Tag) {
		e.log.Warn("Void element cannot have children", zap.String("id", parentID), zap.String("tag", parent.Tag))
		return root, refused(fmt.Sprintf("<%s> cannot contain other elements", parent.Tag))
	}

	child := NewNode(e.values.NewID(), e.defaultTag)
	out, _ := update(root, parentID, func(n *TreeNode) bool {
		n.Childrens = append(slices.Clip(n.Childrens), child)
		return true
	})
	return out, created(child.ID)
}

// DeleteElement removes element with its whole subtree. Root cannot be deleted.
func (e *Engine) DeleteElement(root *TreeNode, id string) (*TreeNode, Result) {
	if root == nil {
		return root, e.miss("delete", id)
	}
	if root.ID == id {
		e.log.Warn("Refusing to delete root element", zap.String("id", id))
		return root, refused("The root element cannot be deleted")
	}
	parent := Parent(root, id)
	if parent == nil {
		return root, e.miss("delete", id)
	}
	out, _ := update(root, parent.ID, func(n *TreeNode) bool {
		n.Childrens = slices.DeleteFunc(slices.Clone(n.Childrens), func(c *TreeNode) bool { return c.ID == id })
		return true
	})
	return out, done()
}

// MoveElement relocates sourceID relative to targetID. Moving inside a void
// element falls back to placing after it. Moves that would put an element
// inside its own subtree are refused before anything changes.
func (e *Engine) MoveElement(root *TreeNode, sourceID, targetID string, pos common.DropPosition) (*TreeNode, Result) {
	log := e.log.With(zap.String("source", sourceID), zap.String("target", targetID), zap.Stringer("position", pos))

	norm, err := common.ParseDropPosition(string(pos))
	if err != nil {
		log.Warn("Unknown drop position", zap.Error(err))
		return root, refused(fmt.Sprintf("Unknown drop position %q", pos))
	}
	pos = norm
	if root == nil {
		return root, e.miss("move", sourceID)
	}
	if sourceID == root.ID {
		log.Warn("Refusing to move root element")
		return root, refused("The root element cannot be moved")
	}
	srcPath := Path(root, sourceID)
	if srcPath == nil || Find(root, targetID) == nil {
		return root, e.miss("move", sourceID)
	}
	source := srcPath[len(srcPath)-1]
	if Contains(source, targetID) {
		log.Warn("Refusing to move element into itself")
		return root, refused("An element cannot be moved into itself or its descendants")
	}

	// detach
	oldParent := srcPath[len(srcPath)-2].shallow()
	oldParent.Childrens = slices.DeleteFunc(slices.Clone(oldParent.Childrens), func(c *TreeNode) bool { return c.ID == sourceID })
	detached := rebuild(srcPath[:len(srcPath)-1], oldParent)

	res := done()
	if pos == common.DropPositionInside {
		target := Find(detached, targetID)
		if !e.reg.IsVoidElement(target.Tag) {
			out, _ := update(detached, targetID, func(n *TreeNode) bool {
				n.Childrens = append(slices.Clip(n.Childrens), source)
				return true
			})
			return out, res
		}
		log.Warn("Target is a void element, placing after it", zap.String("tag", target.Tag))
		res = warned(fmt.Sprintf("<%s> cannot contain other elements, element was placed after it", target.Tag))
		pos = common.DropPositionAfter
	}

	parent := Parent(detached, targetID)
	if parent == nil {
		// target is root, nowhere to put a sibling
		log.Warn("Target has no parent, move rolled back")
		return root, notify(false, common.NotificationTypeWarning, "Element cannot be placed next to the root element")
	}
	out, _ := update(detached, parent.ID, func(n *TreeNode) bool {
		idx := childIndex(n, targetID)
		if pos == common.DropPositionAfter {
			idx++
		}
		n.Childrens = slices.Insert(slices.Clone(n.Childrens), idx, source)
		return true
	})
	return out, res
}

// UpdateTag changes element tag. Unknown tags are refused as well as void tags
// for elements which have children.
func (e *Engine) UpdateTag(root *TreeNode, id, tag string) (*TreeNode, Result) {
	if _, ok := e.reg.Element(tag); !ok {
		e.log.Warn("Unknown tag", zap.String("id", id), zap.String("tag", tag))
		return root, refused(fmt.Sprintf("Unknown element <%s>", tag))
	}
	n := Find(root, id)
	if n == nil {
		return root, e.miss("tag", id)
	}
	if e.reg.IsVoidElement(tag) && len(n.Childrens) > 0 {
		e.log.Warn("Void tag on element with children", zap.String("id", id), zap.String("tag", tag))
		return root, refused(fmt.Sprintf("Move children out before changing tag to <%s>", tag))
	}
	out, _ := update(root, id, func(n *TreeNode) bool {
		n.Tag = tag
		return true
	})
	return out, done()
}

// UpdateTitle sets human label of element.
func (e *Engine) UpdateTitle(root *TreeNode, id, title string) (*TreeNode, Result) {
	out, ok := update(root, id, func(n *TreeNode) bool {
		n.Title = title
		return true
	})
	if !ok {
		return root, e.miss("title", id)
	}
	return out, done()
}

// UpdateContent sets text payload of element.
func (e *Engine) UpdateContent(root *TreeNode, id, content string) (*TreeNode, Result) {
	out, ok := update(root, id, func(n *TreeNode) bool {
		n.Content = content
		return true
	})
	if !ok {
		return root, e.miss("content", id)
	}
	return out, done()
}

// SetAttribute sets or adds attribute allowed for element's tag.
func (e *Engine) SetAttribute(root *TreeNode, id, name, val string) (*TreeNode, Result) {
	n := Find(root, id)
	if n == nil {
		return root, e.miss("attribute", id)
	}
	if !e.reg.AttributeAllowed(n.Tag, name) {
		e.log.Warn("Attribute not allowed", zap.String("id", id), zap.String("tag", n.Tag), zap.String("attribute", name))
		return root, refused(fmt.Sprintf("Attribute %q is not allowed on <%s>", name, n.Tag))
	}
	out, _ := update(root, id, func(n *TreeNode) bool {
		attrs := slices.Clone(n.Attributes)
		if i := slices.IndexFunc(attrs, func(a Attribute) bool { return a.Name == name }); i >= 0 {
			attrs[i].Value = val
		} else {
			attrs = append(attrs, Attribute{Name: name, Value: val})
		}
		n.Attributes = attrs
		return true
	})
	return out, done()
}

// RemoveAttribute drops attribute from element.
func (e *Engine) RemoveAttribute(root *TreeNode, id, name string) (*TreeNode, Result) {
	out, ok := update(root, id, func(n *TreeNode) bool {
		if _, ok := n.Attribute(name); !ok {
			return false
		}
		n.Attributes = slices.DeleteFunc(slices.Clone(n.Attributes), func(a Attribute) bool { return a.Name == name })
		return true
	})
	if !ok {
		return root, e.miss("attribute", id)
	}
	return out, done()
}

// SetInlineStyle sets inline CSS property on element. Value must parse as a
// number, a dimension or a keyword list.
func (e *Engine) SetInlineStyle(root *TreeNode, id, property, val string) (*TreeNode, Result) {
	if v := e.parser.ParseValue(val); !v.IsNumeric() && !v.IsKeyword() {
		e.log.Warn("Malformed inline style value", zap.String("id", id), zap.String("property", property), zap.String("value", val))
		return root, refused(fmt.Sprintf("%q is not a valid value for %s", val, property))
	}
	out, ok := update(root, id, func(n *TreeNode) bool {
		style := maps.Clone(n.InlineStyle)
		if style == nil {
			style = make(map[string]string, 1)
		}
		style[property] = val
		n.InlineStyle = style
		return true
	})
	if !ok {
		return root, e.miss("style", id)
	}
	return out, done()
}

// RemoveInlineStyle removes listed inline CSS properties from element. Other
// properties are kept.
func (e *Engine) RemoveInlineStyle(root *TreeNode, id string, properties ...string) (*TreeNode, Result) {
	out, ok := update(root, id, func(n *TreeNode) bool {
		style := maps.Clone(n.InlineStyle)
		for _, p := range properties {
			delete(style, p)
		}
		n.InlineStyle = style
		return true
	})
	if !ok {
		return root, e.miss("style", id)
	}
	return out, done()
}

// AssignClass adds class reference to element. Assigning twice is a no-op.
func (e *Engine) AssignClass(root *TreeNode, id, classID string) (*TreeNode, Result) {
	n := Find(root, id)
	if n == nil {
		return root, e.miss("assign", id)
	}
	if n.HasClass(classID) {
		return root, done()
	}
	out, _ := update(root, id, func(n *TreeNode) bool {
		n.Classes = append(slices.Clip(n.Classes), classID)
		return true
	})
	return out, done()
}

// UnassignClass removes class reference from element.
func (e *Engine) UnassignClass(root *TreeNode, id, classID string) (*TreeNode, Result) {
	out, ok := update(root, id, func(n *TreeNode) bool {
		if !n.HasClass(classID) {
			return false
		}
		n.Classes = slices.DeleteFunc(slices.Clone(n.Classes), func(c string) bool { return c == classID })
		return true
	})
	if !ok {
		return root, e.miss("unassign", id)
	}
	return out, done()
}
