// Package document defines the persisted document model and the engine
// mutating it. All mutations are copy-on-write: a snapshot is never changed
// once built, operations return a new snapshot sharing untouched subtrees.
package document

import (
	"slices"

	"wcb/value"
)

// CurrentVersion is the document format version produced by this package.
const CurrentVersion = 2.1

// Attribute is a single HTML attribute. "style" and "class" are never stored
// here, they are kept structurally on the node.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TreeNode is one element of the document tree.
type TreeNode struct {
	ID          string            `json:"id"`
	Tag         string            `json:"tag"`
	Title       string            `json:"title"`
	Classes     []string          `json:"classes"`
	InlineStyle map[string]string `json:"inlineStyle"`
	Content     string            `json:"content"`
	Attributes  []Attribute       `json:"attributes"`
	Childrens   []*TreeNode       `json:"childrens"`
}

// NewNode returns empty element.
func NewNode(id, tag string) *TreeNode {
	return &TreeNode{
		ID:          id,
		Tag:         tag,
		Classes:     []string{},
		InlineStyle: map[string]string{},
		Attributes:  []Attribute{},
		Childrens:   []*TreeNode{},
	}
}

// shallow copies node itself. Slices and map still share storage with the
// original and have to be cloned before modification.
func (n *TreeNode) shallow() *TreeNode {
	c := *n
	return &c
}

// Attribute returns value of named attribute.
func (n *TreeNode) Attribute(name string) (string, bool) {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasClass reports whether node references class id.
func (n *TreeNode) HasClass(id string) bool {
	return slices.Contains(n.Classes, id)
}

// CssClass is a named set of properties rendered as ".{ID} { ... }".
type CssClass struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Properties []*value.Node `json:"properties"`
	Categories []string      `json:"categories"`
}

func (c *CssClass) shallow() *CssClass {
	cc := *c
	return &cc
}

// Property returns top level property node by its id.
func (c *CssClass) Property(id string) (*value.Node, int) {
	for i, p := range c.Properties {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// PropertyByType returns first property node of given CSS property key.
func (c *CssClass) PropertyByType(key string) (*value.Node, bool) {
	for _, p := range c.Properties {
		if p.Type == key {
			return p, true
		}
	}
	return nil, false
}

// CssTree owns every class definition of a document.
type CssTree struct {
	Classes []*CssClass `json:"classes"`
}

// Class returns class by id and its index.
func (t *CssTree) Class(id string) (*CssClass, int) {
	if t == nil {
		return nil, -1
	}
	for i, c := range t.Classes {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// ClassByName returns class with given display name.
func (t *CssTree) ClassByName(name string) (*CssClass, bool) {
	if t == nil {
		return nil, false
	}
	for _, c := range t.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Without returns tree lacking class id. Element references are not touched,
// see SweepClassRefs.
func (t *CssTree) Without(id string) *CssTree {
	_, i := t.Class(id)
	if i < 0 {
		return t
	}
	return &CssTree{Classes: slices.Delete(slices.Clone(t.Classes), i, i+1)}
}

// withClass returns tree where class at index i is replaced by c.
func (t *CssTree) withClass(i int, c *CssClass) *CssTree {
	classes := slices.Clone(t.Classes)
	classes[i] = c
	return &CssTree{Classes: classes}
}

// Document is the persisted unit: element tree plus class tree.
type Document struct {
	Version  float64   `json:"version"`
	TreeData *TreeNode `json:"treeData"`
	CssData  *CssTree  `json:"cssData"`
}

// New returns empty current version document with a root element.
func New(rootID, rootTag string) *Document {
	return &Document{
		Version:  CurrentVersion,
		TreeData: NewNode(rootID, rootTag),
		CssData:  &CssTree{Classes: []*CssClass{}},
	}
}

// WithTree returns document sharing class tree with d.
func (d *Document) WithTree(root *TreeNode) *Document {
	c := *d
	c.TreeData = root
	return &c
}

// WithCss returns document sharing element tree with d.
func (d *Document) WithCss(t *CssTree) *Document {
	c := *d
	c.CssData = t
	return &c
}
