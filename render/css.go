// Package render turns documents into CSS text, a render tree for live
// preview and HTML/XHTML exports.
package render

import (
	"strings"

	"go.uber.org/zap"

	"wcb/css"
	"wcb/document"
	"wcb/value"
)

// ClassCSS is generated rule of one class.
type ClassCSS struct {
	ClassName string `json:"className"`
	CSSString string `json:"cssString"`
}

// Renderer derives presentation from document snapshots. It holds no mutable
// state.
type Renderer struct {
	values *value.Engine
	parser *css.Parser
	log    *zap.Logger
}

func New(values *value.Engine, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		values: values,
		parser: css.NewParser(log),
		log:    log.Named("render"),
	}
}

// GenerateCSS emits ".{id} { ... }" rule for every class. Declarations follow
// property order of the class, unknown properties are skipped.
func (r *Renderer) GenerateCSS(t *document.CssTree) []ClassCSS {
	if t == nil {
		return nil
	}
	out := make([]ClassCSS, 0, len(t.Classes))
	for _, c := range t.Classes {
		fragments := make([]string, 0, len(c.Properties))
		for _, p := range c.Properties {
			if s, ok := r.values.FormatProperty(p); ok {
				fragments = append(fragments, s)
			}
		}
		out = append(out, ClassCSS{
			ClassName: c.ID,
			CSSString: "." + c.ID + " { " + strings.Join(fragments, " ") + " }",
		})
	}
	return out
}

// DeclarationBlock strips selector and braces from generated rule.
func DeclarationBlock(rule string) string {
	start := strings.IndexByte(rule, '{')
	end := strings.LastIndexByte(rule, '}')
	if start < 0 || end <= start {
		return strings.TrimSpace(rule)
	}
	return strings.TrimSpace(rule[start+1 : end])
}

// ClassStyles parses generated rules into declaration blocks keyed by class
// id.
func (r *Renderer) ClassStyles(t *document.CssTree) map[string]css.Declarations {
	generated := r.GenerateCSS(t)
	out := make(map[string]css.Declarations, len(generated))
	for _, g := range generated {
		out[g.ClassName] = r.parser.ParseDeclarations([]byte(DeclarationBlock(g.CSSString)))
	}
	return out
}

// Stylesheet returns generated rules as a stylesheet.
func (r *Renderer) Stylesheet(t *document.CssTree) *css.Stylesheet {
	var sb strings.Builder
	for _, g := range r.GenerateCSS(t) {
		sb.WriteString(g.CSSString)
		sb.WriteByte('\n')
	}
	sheet := r.parser.Parse([]byte(sb.String()))
	for _, w := range sheet.Warnings {
		r.log.Debug("Generated stylesheet warning", zap.String("warning", w))
	}
	return sheet
}
