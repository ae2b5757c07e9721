package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"wcb/document"
)

// ToHTML serializes the document element tree as HTML fragment. Element style
// is emitted as style attribute and class references as class attribute.
func (r *Renderer) ToHTML(d *document.Document) (string, error) {
	root := r.RenderTree(d)
	if root == nil {
		return "", nil
	}
	var sb strings.Builder
	if err := html.Render(&sb, htmlNode(root)); err != nil {
		return "", fmt.Errorf("unable to render html: %w", err)
	}
	return sb.String(), nil
}

func htmlNode(el *Element) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     el.Tag,
		DataAtom: atom.Lookup([]byte(el.Tag)),
	}
	if len(el.Classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(el.Classes, " ")})
	}
	if len(el.Style) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: el.Style.String()})
	}
	for _, a := range el.Attributes {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	if isVoid(n) {
		return n
	}
	for _, c := range el.Children {
		n.AppendChild(htmlNode(c))
	}
	if el.Content != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: el.Content})
	}
	return n
}

// isVoid mirrors the list html.Render refuses to give children to.
func isVoid(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img, atom.Input,
		atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
