package selection

import (
	"strings"

	"go.uber.org/zap"

	"wcb/document"
)

// Prefix namespaces inline style keys owned by the overlay. Keys under it are
// custom properties, so they never collide with user style.
const Prefix = "--wcb-"

// Inline style keys owned by the overlay.
const (
	OutlineKey       = Prefix + "outline"
	OutlineOffsetKey = Prefix + "outline-offset"
)

var reserved = []string{OutlineKey, OutlineOffsetKey}

// Reserved reports whether inline style key belongs to the overlay namespace.
func Reserved(key string) bool {
	return strings.HasPrefix(key, Prefix)
}

// Property returns CSS property shown for overlay key.
func Property(key string) (string, bool) {
	return strings.CutPrefix(key, Prefix)
}

// Highlight is inline style put on the selected element.
type Highlight struct {
	Outline       string
	OutlineOffset string
}

// DefaultHighlight is used when configuration does not provide one.
var DefaultHighlight = Highlight{Outline: "2px dashed #1e90ff", OutlineOffset: "2px"}

// Overlay tracks selected element and its parent, keeping the highlight on the
// selected element only.
type Overlay struct {
	engine    *document.Engine
	highlight Highlight
	selection string
	parent    string
	log       *zap.Logger
}

// New creates overlay with nothing selected. Empty highlight fields fall back
// to DefaultHighlight.
func New(engine *document.Engine, highlight Highlight, log *zap.Logger) *Overlay {
	if log == nil {
		log = zap.NewNop()
	}
	if highlight.Outline == "" {
		highlight.Outline = DefaultHighlight.Outline
	}
	if highlight.OutlineOffset == "" {
		highlight.OutlineOffset = DefaultHighlight.OutlineOffset
	}
	return &Overlay{engine: engine, highlight: highlight, log: log.Named("selection")}
}

// Selection returns id of selected element, empty if none.
func (o *Overlay) Selection() string { return o.selection }

// SelectionParent returns id of parent of selected element. Empty when nothing
// is selected or root itself is selected.
func (o *Overlay) SelectionParent() string { return o.parent }

// Active reports whether highlight is currently shown.
func (o *Overlay) Active() bool { return o.selection != "" }

// SelectNode moves selection to id and returns tree with highlight moved.
// Selecting already selected element leaves highlight alone and resets parent
// to the root.
func (o *Overlay) SelectNode(root *document.TreeNode, id string) *document.TreeNode {
	if root == nil {
		return root
	}
	if id == o.selection {
		o.parent = root.ID
		return root
	}
	if document.Find(root, id) == nil {
		o.log.Debug("Selected element not found", zap.String("id", id))
		return root
	}

	out := o.unmark(root)
	o.selection = id
	o.parent = parentID(out, id)
	out = o.mark(out)

	o.log.Debug("Selected", zap.String("id", id), zap.String("parent", o.parent))
	return out
}

// Refresh recomputes parent after tree changed. Selection is dropped when the
// selected element no longer exists.
func (o *Overlay) Refresh(root *document.TreeNode) {
	if o.selection == "" {
		return
	}
	if document.Find(root, o.selection) == nil {
		o.log.Debug("Selected element is gone", zap.String("id", o.selection))
		o.selection, o.parent = "", ""
		return
	}
	o.parent = parentID(root, o.selection)
}

// Clear removes highlight and drops selection.
func (o *Overlay) Clear(root *document.TreeNode) *document.TreeNode {
	out := o.unmark(root)
	o.selection, o.parent = "", ""
	return out
}

// Strip returns tree with highlight removed but keeps selection, used before
// persisting or exporting.
func (o *Overlay) Strip(root *document.TreeNode) *document.TreeNode {
	return o.unmark(root)
}

func (o *Overlay) mark(root *document.TreeNode) *document.TreeNode {
	out, _ := o.engine.SetInlineStyle(root, o.selection, OutlineKey, o.highlight.Outline)
	out, _ = o.engine.SetInlineStyle(out, o.selection, OutlineOffsetKey, o.highlight.OutlineOffset)
	return out
}

func (o *Overlay) unmark(root *document.TreeNode) *document.TreeNode {
	if o.selection == "" {
		return root
	}
	out, _ := o.engine.RemoveInlineStyle(root, o.selection, reserved...)
	return out
}

func parentID(root *document.TreeNode, id string) string {
	if p := document.Parent(root, id); p != nil {
		return p.ID
	}
	return ""
}
