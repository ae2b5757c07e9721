package document

import (
	"slices"
)

// Find returns node with id using pre-order search.
func Find(root *TreeNode, id string) *TreeNode {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, c := range root.Childrens {
		if n := Find(c, id); n != nil {
			return n
		}
	}
	return nil
}

// Path returns chain of nodes from root down to node with id, nil when there
// is no such node.
func Path(root *TreeNode, id string) []*TreeNode {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return []*TreeNode{root}
	}
	for _, c := range root.Childrens {
		if p := Path(c, id); p != nil {
			return append([]*TreeNode{root}, p...)
		}
	}
	return nil
}

// Parent returns parent of node with id. Root and unknown ids have none.
func Parent(root *TreeNode, id string) *TreeNode {
	p := Path(root, id)
	if len(p) < 2 {
		return nil
	}
	return p[len(p)-2]
}

// Contains reports whether node with id is n itself or one of its
// descendants.
func Contains(n *TreeNode, id string) bool {
	return Find(n, id) != nil
}

// Walk visits every node in pre-order. Returning false from fn skips node's
// children.
func Walk(root *TreeNode, fn func(n *TreeNode, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *TreeNode, depth int, fn func(*TreeNode, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Childrens {
		walk(c, depth+1, fn)
	}
}

func childIndex(parent *TreeNode, id string) int {
	return slices.IndexFunc(parent.Childrens, func(c *TreeNode) bool { return c.ID == id })
}

// rebuild replaces last node of path with leaf and copies every ancestor on
// the way up. Returns new root, subtrees off the path are shared.
func rebuild(path []*TreeNode, leaf *TreeNode) *TreeNode {
	cur := leaf
	for i := len(path) - 2; i >= 0; i-- {
		parent := path[i].shallow()
		parent.Childrens = slices.Clone(parent.Childrens)
		parent.Childrens[childIndex(path[i], path[i+1].ID)] = cur
		cur = parent
	}
	return cur
}

// update applies fn to a copy of node with id and returns new root. When node
// is missing or fn refuses the change original root is returned.
func update(root *TreeNode, id string, fn func(n *TreeNode) bool) (*TreeNode, bool) {
	path := Path(root, id)
	if path == nil {
		return root, false
	}
	n := path[len(path)-1].shallow()
	if !fn(n) {
		return root, false
	}
	return rebuild(path, n), true
}

// SweepClassRefs removes class id from every element referencing it. Only
// nodes which change are copied.
func SweepClassRefs(root *TreeNode, classID string) *TreeNode {
	if root == nil {
		return nil
	}
	var children []*TreeNode
	for i, c := range root.Childrens {
		nc := SweepClassRefs(c, classID)
		if nc != c && children == nil {
			children = slices.Clone(root.Childrens)
		}
		if children != nil {
			children[i] = nc
		}
	}
	if children == nil && !root.HasClass(classID) {
		return root
	}
	out := root.shallow()
	if children != nil {
		out.Childrens = children
	}
	if root.HasClass(classID) {
		out.Classes = slices.DeleteFunc(slices.Clone(root.Classes), func(c string) bool { return c == classID })
	}
	return out
}
