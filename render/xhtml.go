package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"wcb/document"
)

// ToXHTML builds standalone XHTML document with generated stylesheet inlined
// into head.
func (r *Renderer) ToXHTML(d *document.Document, title string) ([]byte, error) {
	root := r.RenderTree(d)
	if root == nil {
		return nil, fmt.Errorf("document has no element tree")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")

	head := html.CreateElement("head")

	meta := head.CreateElement("meta")
	meta.CreateAttr("http-equiv", "Content-Type")
	meta.CreateAttr("content", "text/html; charset=utf-8")

	titleElem := head.CreateElement("title")
	titleElem.SetText(title)

	if sheet := r.Stylesheet(d.CssData); len(sheet.Rules) > 0 {
		style := head.CreateElement("style")
		style.CreateAttr("type", "text/css")
		style.SetText(sheet.String())
	}

	body := html.CreateElement("body")
	writeElement(body, root)

	doc.Indent(2)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("unable to write xhtml: %w", err)
	}
	return buf.Bytes(), nil
}

// writeElement mirrors render element under parent. Class styles live in the
// head stylesheet so only inline style is written on elements.
func writeElement(parent *etree.Element, el *Element) {
	e := parent.CreateElement(el.Tag)
	if len(el.Classes) > 0 {
		e.CreateAttr("class", strings.Join(el.Classes, " "))
	}
	if len(el.Inline) > 0 {
		e.CreateAttr("style", el.Inline.String())
	}
	for _, a := range el.Attributes {
		e.CreateAttr(a.Name, a.Value)
	}
	for _, c := range el.Children {
		writeElement(e, c)
	}
	if el.Content != "" {
		e.CreateText(el.Content)
	}
}
