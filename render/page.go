package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"wcb/document"
	"wcb/misc"
)

//go:embed page.html.tmpl
var pageTmpl string

// PageValues are variables available to page and title templates.
type PageValues struct {
	Title     string
	Classes   int
	Elements  int
	Version   float64
	Generator string
	CSS       string
	Body      string
}

// ExpandTitle expands title template against document statistics. Empty
// template yields fallback.
func (r *Renderer) ExpandTitle(d *document.Document, tmpl, fallback string) (string, error) {
	if tmpl == "" {
		return fallback, nil
	}
	values := r.pageValues(d, fallback)
	t, err := template.New("title").Funcs(sprig.FuncMap()).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("unable to parse title template: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand title template: %w", err)
	}
	return buf.String(), nil
}

// Page renders complete HTML page for preview: generated stylesheet in head and
// element tree in body.
func (r *Renderer) Page(d *document.Document, title string) (string, error) {
	body, err := r.ToHTML(d)
	if err != nil {
		return "", err
	}
	values := r.pageValues(d, title)
	values.Body = body
	values.CSS = r.Stylesheet(d.CssData).String()

	t, err := template.New("page").Funcs(sprig.FuncMap()).Parse(pageTmpl)
	if err != nil {
		return "", fmt.Errorf("unable to parse page template: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand page template: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) pageValues(d *document.Document, title string) PageValues {
	v := PageValues{
		Title:     title,
		Version:   d.Version,
		Generator: misc.GetAppName() + " " + misc.GetVersion(),
	}
	if d.CssData != nil {
		v.Classes = len(d.CssData.Classes)
	}
	document.Walk(d.TreeData, func(*document.TreeNode, int) bool {
		v.Elements++
		return true
	})
	return v
}
