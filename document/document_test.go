package document

import (
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"wcb/common"
	"wcb/schema"
	"wcb/value"
)

func newEngine(t *testing.T, ids value.IDSource) *Engine {
	t.Helper()
	return NewEngine(value.New(schema.Default(), ids, 0, zaptest.NewLogger(t)), "", zaptest.NewLogger(t))
}

// node builds element with children for tests.
func node(id, tag string, children ...*TreeNode) *TreeNode {
	n := NewNode(id, tag)
	n.Childrens = append(n.Childrens, children...)
	return n
}

func childIDs(n *TreeNode) string {
	ids := make([]string, 0, len(n.Childrens))
	for _, c := range n.Childrens {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, ",")
}

func TestCreateElement(t *testing.T) {
	e := newEngine(t, value.NewIDSource(8))

	root := node("root", "div")
	out, res := e.CreateElement(root, "root")
	if !res.Success {
		t.Fatalf("CreateElement failed: %+v", res)
	}
	if len(out.Childrens) != 1 {
		t.Fatalf("expected 1 child, got %d", len(out.Childrens))
	}
	child := out.Childrens[0]
	if child.Tag != "div" {
		t.Errorf("tag = %q, want div", child.Tag)
	}
	if len(child.ID) != 8 || child.ID != res.Created {
		t.Errorf("unexpected id %q (created %q)", child.ID, res.Created)
	}
	if len(child.Classes) != 0 || child.Content != "" || len(child.Childrens) != 0 {
		t.Errorf("new element is not empty: %+v", child)
	}
	if len(root.Childrens) != 0 {
		t.Error("original snapshot was modified")
	}

	if same, res := e.CreateElement(root, "missing"); same != root || res.Success {
		t.Error("missing parent must be a no-op")
	}
}

func TestCreateElementVoid(t *testing.T) {
	e := newEngine(t, value.Sequence("n"))
	reg := schema.Default()

	for _, tag := range reg.Tags() {
		if !reg.IsVoidElement(tag) {
			continue
		}
		t.Run(tag, func(t *testing.T) {
			root := node("root", "div", node("v", tag))
			out, res := e.CreateElement(root, "v")
			if out != root {
				t.Error("tree changed")
			}
			if res.Success || res.Notification == nil || res.Notification.Type != common.NotificationTypeError {
				t.Errorf("unexpected result %+v", res)
			}
		})
	}
}

func TestDeleteElement(t *testing.T) {
	e := newEngine(t, value.Sequence("n"))

	keep := node("keep", "p")
	root := node("root", "div", node("a", "section", node("a1", "p")), keep)

	if out, res := e.DeleteElement(root, "root"); out != root || res.Success {
		t.Error("root deletion must be refused")
	}
	if out, res := e.DeleteElement(root, "nope"); out != root || res.Success {
		t.Error("unknown id must be a no-op")
	}

	out, res := e.DeleteElement(root, "a")
	if !res.Success {
		t.Fatal("delete failed")
	}
	if got := childIDs(out); got != "keep" {
		t.Errorf("children = %s", got)
	}
	if Find(out, "a1") != nil {
		t.Error("subtree was not removed")
	}
	if out.Childrens[0] != keep {
		t.Error("untouched sibling should be shared")
	}
	if got := childIDs(root); got != "a,keep" {
		t.Errorf("original snapshot changed: %s", got)
	}
}

func TestMoveElement(t *testing.T) {
	e := newEngine(t, value.Sequence("n"))

	build := func() *TreeNode {
		return node("root", "div",
			node("a", "div"),
			node("b", "section", node("b1", "p"), node("b2", "p")),
			node("img", "img"),
		)
	}

	tests := []struct {
		name           string
		source         string
		target         string
		pos            common.DropPosition
		success        bool
		notification   common.NotificationType
		wantRoot       string
		wantB          string
		expectNoChange bool
	}{
		{"before", "a", "b2", common.DropPositionBefore, true, "", "b,img", "b1,a,b2", false},
		{"after", "a", "b2", common.DropPositionAfter, true, "", "b,img", "b1,b2,a", false},
		{"inside", "a", "b", common.DropPositionInside, true, "", "b,img", "b1,b2,a", false},
		{"up", "b1", "a", common.DropPositionBefore, true, "", "b1,a,b,img", "b2", false},
		{"void falls back to after", "a", "img", common.DropPositionInside, true, common.NotificationTypeWarning, "b,img,a", "b1,b2", false},
		{"into itself", "b", "b", common.DropPositionInside, false, common.NotificationTypeError, "a,b,img", "b1,b2", true},
		{"into descendant", "b", "b1", common.DropPositionInside, false, common.NotificationTypeError, "a,b,img", "b1,b2", true},
		{"next to descendant", "b", "b2", common.DropPositionAfter, false, common.NotificationTypeError, "a,b,img", "b1,b2", true},
		{"root", "root", "a", common.DropPositionInside, false, common.NotificationTypeError, "a,b,img", "b1,b2", true},
		{"next to root", "a", "root", common.DropPositionAfter, false, common.NotificationTypeWarning, "a,b,img", "b1,b2", true},
		{"missing", "zz", "a", common.DropPositionAfter, false, "", "a,b,img", "b1,b2", true},
		{"bad position", "a", "b", common.DropPosition("over"), false, common.NotificationTypeError, "a,b,img", "b1,b2", true},
		{"upper case inside", "a", "b", common.DropPosition("INSIDE"), true, "", "b,img", "b1,b2,a", false},
		{"mixed case after", "a", "b2", common.DropPosition("After"), true, "", "b,img", "b1,b2,a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := build()
			out, res := e.MoveElement(root, tt.source, tt.target, tt.pos)
			if res.Success != tt.success {
				t.Errorf("Success = %v, want %v", res.Success, tt.success)
			}
			if tt.notification == "" && res.Notification != nil {
				t.Errorf("unexpected notification %+v", res.Notification)
			}
			if tt.notification != "" && (res.Notification == nil || res.Notification.Type != tt.notification) {
				t.Errorf("notification = %+v, want %s", res.Notification, tt.notification)
			}
			if tt.expectNoChange && out != root {
				t.Error("tree must not change")
			}
			if got := childIDs(out); got != tt.wantRoot {
				t.Errorf("root children = %s, want %s", got, tt.wantRoot)
			}
			if got := childIDs(Find(out, "b")); got != tt.wantB {
				t.Errorf("b children = %s, want %s", got, tt.wantB)
			}
			if got := childIDs(root); got != "a,b,img" {
				t.Errorf("original snapshot changed: %s", got)
			}
		})
	}
}

func TestMoveIntoOwnSubtreeAlwaysFails(t *testing.T) {
	e := newEngine(t, value.Sequence("n"))

	root := node("root", "div",
		node("a", "div",
			node("a1", "div", node("a11", "span"), node("a12", "img")),
			node("a2", "ul", node("a21", "li")),
		),
		node("b", "div"),
	)
	before := Dump(root)

	Walk(root, func(n *TreeNode, _ int) bool {
		Walk(n, func(d *TreeNode, _ int) bool {
			out, res := e.MoveElement(root, n.ID, d.ID, common.DropPositionInside)
			if res.Success || out != root {
				t.Errorf("move %s inside %s succeeded", n.ID, d.ID)
			}
			return true
		})
		return true
	})
	if after := Dump(root); after != before {
		t.Errorf("tree changed:\n%s", after)
	}
}

func TestUpdateTag(t *testing.T) {
	e := newEngine(t, value.Sequence("n"))
	reg := schema.Default()

	root := node("root", "div", node("p", "p", node("s", "span")), node("leaf", "div"))

	for _, tag := range reg.Tags() {
		if !reg.IsVoidElement(tag) {
			continue
		}
		if out, res := e.UpdateTag(root, "p", tag); out != root || res.Success {
			t.Errorf("void tag %s accepted for element with children", tag)
		}
	}

	out, res := e.UpdateTag(root, "leaf", "img")
	if !res.Success || Find(out, "leaf").Tag != "img" {
		t.Errorf("void tag refused for leaf: %+v", res)
	}
	if Find(root, "leaf").Tag != "div" {
		t.Error("original snapshot changed")
	}
	if out, res := e.UpdateTag(root, "leaf", "blink"); out != root || res.Success {
		t.Error("unknown tag accepted")
	}
}

func TestNodeEdits(t *testing.T) {
	e := newEngine(t, value.Sequence("n"))
	root := node("root", "div", node("img", "img"))

	out, res := e.SetAttribute(root, "img", "src", "a.png")
	if !res.Success {
		t.Fatal("src refused on img")
	}
	out, _ = e.SetAttribute(out, "img", "src", "b.png")
	if v, _ := Find(out, "img").Attribute("src"); v != "b.png" || len(Find(out, "img").Attributes) != 1 {
		t.Errorf("attribute not replaced: %+v", Find(out, "img").Attributes)
	}
	for _, name := range []string{"style", "class", "href"} {
		if _, res := e.SetAttribute(out, "img", name, "x"); res.Success {
			t.Errorf("attribute %s accepted on img", name)
		}
	}
	out, res = e.RemoveAttribute(out, "img", "src")
	if !res.Success || len(Find(out, "img").Attributes) != 0 {
		t.Error("RemoveAttribute failed")
	}

	out, _ = e.UpdateTitle(out, "img", "Logo")
	out, _ = e.UpdateContent(out, "root", "hello")
	out, _ = e.SetInlineStyle(out, "root", "color", "red")
	out, _ = e.SetInlineStyle(out, "root", "margin", "0")
	out, _ = e.RemoveInlineStyle(out, "root", "color")
	if Find(out, "img").Title != "Logo" || out.Content != "hello" {
		t.Error("title or content not updated")
	}
	if len(out.InlineStyle) != 1 || out.InlineStyle["margin"] != "0" {
		t.Errorf("inline style = %v", out.InlineStyle)
	}
	if len(root.InlineStyle) != 0 {
		t.Error("original snapshot changed")
	}
	for _, val := range []string{"", ";", "!"} {
		if same, res := e.SetInlineStyle(out, "root", "margin", val); res.Success || same != out {
			t.Errorf("malformed value %q accepted", val)
		}
	}
	for _, val := range []string{"0", "12px", "50%", "#fff", "1px solid red", "url(a.png)"} {
		if _, res := e.SetInlineStyle(out, "root", "margin", val); !res.Success {
			t.Errorf("value %q refused", val)
		}
	}

	out, _ = e.AssignClass(out, "img", "c1")
	out, _ = e.AssignClass(out, "img", "c1")
	if got := Find(out, "img").Classes; len(got) != 1 {
		t.Errorf("classes = %v", got)
	}
	out, res = e.UnassignClass(out, "img", "c1")
	if !res.Success || len(Find(out, "img").Classes) != 0 {
		t.Error("UnassignClass failed")
	}
}

func TestClasses(t *testing.T) {
	e := newEngine(t, value.Sequence("v"))

	css, c, res := e.AddClass(&CssTree{}, "primary")
	if !res.Success || c.Name != "primary" || len(c.Properties) != 1 {
		t.Fatalf("AddClass: %+v %+v", res, c)
	}
	if got, _ := e.Values().FormatProperty(c.Properties[0]); got != "display: flex;" {
		t.Errorf("seed property = %q", got)
	}

	again, same, _ := e.AddClass(css, "primary")
	if again != css || same != c {
		t.Error("adding existing class must be a no-op")
	}

	css, _, _ = e.AddClass(css, "secondary")
	if _, res := e.RenameClass(css, "secondary", "primary"); res.Success {
		t.Error("rename collision accepted")
	}
	if _, res := e.RenameClass(css, "ghost", "x"); res.Success {
		t.Error("rename of missing class accepted")
	}
	renamed, res := e.RenameClass(css, "secondary", "accent")
	if !res.Success {
		t.Fatal("rename failed")
	}
	if got, _ := renamed.Class("secondary"); got.Name != "accent" {
		t.Errorf("name = %q", got.Name)
	}
	if got, _ := css.Class("secondary"); got.Name != "secondary" {
		t.Error("original snapshot changed")
	}

	withCats, _ := e.SetCategories(renamed, "secondary", []string{"layout"})
	if got, _ := withCats.Class("secondary"); len(got.Categories) != 1 {
		t.Errorf("categories = %v", got.Categories)
	}
}

func TestProperties(t *testing.T) {
	e := newEngine(t, value.Sequence("v"))

	css, c, _ := e.AddClass(nil, "box")
	avail := strings.Join(e.AvailableProperties(c), ",")
	if !strings.Contains(avail, "flexDirection") || strings.Contains(avail, "gridTemplateColumns") || strings.Contains(avail, "display") {
		t.Errorf("available with flex: %s", avail)
	}

	display := c.Properties[0]
	mode := display.Value.(*value.Node)
	css, res := e.UpdatePropertyValue(css, "box", []string{display.ID, mode.ID}, "grid")
	if !res.Success {
		t.Fatal("update failed")
	}
	c, _ = css.Class("box")
	avail = strings.Join(e.AvailableProperties(c), ",")
	if !strings.Contains(avail, "gridTemplateColumns") || strings.Contains(avail, "flexDirection") {
		t.Errorf("available with grid: %s", avail)
	}

	css, res = e.AddProperty(css, "box", "gridTemplateColumns")
	if !res.Success || res.Created == "" {
		t.Fatal("AddProperty failed")
	}
	c, _ = css.Class("box")
	if len(c.Properties) != 2 || c.Properties[1].Type != "gridTemplateColumns" {
		t.Fatalf("properties = %+v", c.Properties)
	}
	if _, res := e.AddProperty(css, "box", "nope"); res.Success {
		t.Error("unknown property accepted")
	}

	if _, res := e.UpdatePropertyValue(css, "box", []string{"stale"}, 1); res.Success {
		t.Error("stale path accepted")
	}

	if _, res := e.RemoveProperty(css, "box", "ghost"); res.Success {
		t.Error("removing unknown property succeeded")
	}
	css, res = e.RemoveProperty(css, "box", c.Properties[1].ID)
	if !res.Success {
		t.Fatal("RemoveProperty failed")
	}
	if c, _ := css.Class("box"); len(c.Properties) != 1 {
		t.Errorf("properties left: %d", len(c.Properties))
	}
}

func TestRemoveClassSweepsReferences(t *testing.T) {
	e := newEngine(t, value.Sequence("v"))

	css, _, _ := e.AddClass(nil, "c1")
	css, _, _ = e.AddClass(css, "c2")
	root := node("root", "div",
		node("a", "div", node("a1", "p")),
		node("b", "div"),
	)
	root.Classes = []string{"c1"}
	root.Childrens[0].Childrens[0].Classes = []string{"c2", "c1"}
	root.Childrens[1].Classes = []string{"c2"}
	untouched := root.Childrens[1]

	doc := &Document{Version: CurrentVersion, TreeData: root, CssData: css}
	out, res := e.RemoveClass(doc, "c1")
	if !res.Success {
		t.Fatal("RemoveClass failed")
	}
	if c, _ := out.CssData.Class("c1"); c != nil {
		t.Error("class still present")
	}
	Walk(out.TreeData, func(n *TreeNode, _ int) bool {
		if n.HasClass("c1") {
			t.Errorf("element %s still refers to removed class", n.ID)
		}
		return true
	})
	if out.TreeData.Childrens[1] != untouched {
		t.Error("unaffected subtree should be shared")
	}
	if !doc.TreeData.HasClass("c1") {
		t.Error("original snapshot changed")
	}
	if err := e.Validate(out); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if same, res := e.RemoveClass(out, "c1"); same != out || res.Success {
		t.Error("removing missing class must be a no-op")
	}
}

func TestValidate(t *testing.T) {
	e := newEngine(t, value.Sequence("v"))

	css, _, _ := e.AddClass(nil, "c1")
	img := node("img", "img", node("x", "span"))
	root := node("root", "div", img, node("dup", "blink"), node("dup", "p"))
	root.Classes = []string{"gone"}
	root.Attributes = []Attribute{{Name: "style", Value: "color: red"}}

	err := e.Validate(&Document{Version: CurrentVersion, TreeData: root, CssData: css})
	// void with children, unknown tag, duplicate id, dangling class, structural attribute
	if n := len(multierr.Errors(err)); n != 5 {
		t.Errorf("got %d errors, want 5: %v", n, err)
	}
}

func TestDump(t *testing.T) {
	root := node("root", "div", node("a", "p"))
	root.Childrens[0].Classes = []string{"c1"}
	root.Childrens[0].Title = "Intro"

	out := Dump(root)
	for _, want := range []string{"<div> #root", `<p> #a .c1 "Intro"`} {
		if !strings.Contains(out, want) {
			t.Errorf("dump lacks %q:\n%s", want, out)
		}
	}
}
