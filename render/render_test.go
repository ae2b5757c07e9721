package render

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"wcb/document"
	"wcb/schema"
	"wcb/selection"
	"wcb/value"
)

type fixture struct {
	r   *Renderer
	doc *document.Document
}

// newFixture builds document: div.c1 (inline color) > [p "hi", img], with
// class c1 carrying display and gap.
func newFixture(t *testing.T) fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	values := value.New(schema.Default(), value.Sequence("v"), 0, log)
	eng := document.NewEngine(values, "", log)

	css, _, _ := eng.AddClass(nil, "c1")
	css, _ = eng.AddProperty(css, "c1", "gap")

	root := document.NewNode("root", "div")
	root.Classes = []string{"c1", "gone"}
	root.InlineStyle = map[string]string{"display": "block", "color": "red"}
	root.Content = "tail"
	p := document.NewNode("p", "p")
	p.Content = "hi"
	img := document.NewNode("img", "img")
	img.Attributes = []document.Attribute{{Name: "src", Value: "a.png"}}
	// never produced by the engine, rendering must still cope
	img.Childrens = []*document.TreeNode{document.NewNode("bad", "span")}
	root.Childrens = []*document.TreeNode{p, img}

	return fixture{
		r:   New(values, log),
		doc: &document.Document{Version: document.CurrentVersion, TreeData: root, CssData: css},
	}
}

func TestGenerateCSS(t *testing.T) {
	f := newFixture(t)

	got := f.r.GenerateCSS(f.doc.CssData)
	if len(got) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(got))
	}
	if got[0].ClassName != "c1" {
		t.Errorf("ClassName = %q", got[0].ClassName)
	}
	if want := ".c1 { display: flex; gap: 0px 0px; }"; got[0].CSSString != want {
		t.Errorf("CSSString = %q, want %q", got[0].CSSString, want)
	}
	if block := DeclarationBlock(got[0].CSSString); block != "display: flex; gap: 0px 0px;" {
		t.Errorf("DeclarationBlock = %q", block)
	}
}

func TestRenderTree(t *testing.T) {
	f := newFixture(t)

	root := f.r.RenderTree(f.doc)
	if got := root.Style.String(); got != "display: block; gap: 0px 0px; color: red;" {
		t.Errorf("merged style = %q", got)
	}
	if got := root.Inline.String(); got != "color: red; display: block;" {
		t.Errorf("inline style = %q", got)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if img := root.Children[1]; len(img.Children) != 0 {
		t.Error("void element rendered children")
	}
}

func TestToHTML(t *testing.T) {
	f := newFixture(t)

	got, err := f.r.ToHTML(f.doc)
	if err != nil {
		t.Fatal(err)
	}
	want := `<div class="c1 gone" style="display: block; gap: 0px 0px; color: red;"><p>hi</p><img src="a.png"/>tail</div>`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestToXHTML(t *testing.T) {
	f := newFixture(t)

	out, err := f.r.ToXHTML(f.doc, "Demo & test")
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<html xmlns="http://www.w3.org/1999/xhtml">`,
		`<title>Demo &amp; test</title>`,
		`<style type="text/css">`,
		`.c1 {`,
		`<div class="c1 gone" style="color: red; display: block;">`,
		`<img src="a.png"/>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("xhtml lacks %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "bad") {
		t.Error("void element children leaked into output")
	}
}

func TestPage(t *testing.T) {
	f := newFixture(t)

	page, err := f.r.Page(f.doc, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>Untitled</title>", "<style>", "  .c1 {", "<p>hi</p>"} {
		if !strings.Contains(page, want) {
			t.Errorf("page lacks %q:\n%s", want, page)
		}
	}

	title, err := f.r.ExpandTitle(f.doc, `{{ .Title | upper }} ({{ .Elements }} elements, {{ .Classes }} classes)`, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if title != "DEMO (4 elements, 1 classes)" {
		t.Errorf("title = %q", title)
	}
	if title, _ := f.r.ExpandTitle(f.doc, "", "fallback"); title != "fallback" {
		t.Errorf("empty template: %q", title)
	}
	if _, err := f.r.ExpandTitle(f.doc, "{{ .Nope", "x"); err == nil {
		t.Error("expected template error")
	}
}

func TestRenderTreeHighlight(t *testing.T) {
	f := newFixture(t)
	p := f.doc.TreeData.Childrens[0]
	p.InlineStyle = map[string]string{
		"outline":                  "1px solid red",
		selection.OutlineKey:       "2px dashed blue",
		selection.OutlineOffsetKey: "2px",
	}

	el := f.r.RenderTree(f.doc).Children[0]
	if got := el.Inline.String(); got != "outline: 2px dashed blue; outline-offset: 2px;" {
		t.Errorf("inline = %q", got)
	}
	if strings.Contains(el.Style.String(), selection.Prefix) {
		t.Errorf("overlay keys leaked into style: %q", el.Style.String())
	}
}
