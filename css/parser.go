package css

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets and declaration blocks.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Only plain rulesets are kept,
// @-rules are skipped with a warning.
func (p *Parser) Parse(data []byte) *Stylesheet {
	sheet := &Stylesheet{}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// End of input or error
			if parser.Err() != nil && parser.Err().Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(parser.Err()))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			p.skipAtRuleBlock(parser)
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			selectors := parseSelectors(data, parser.Values())
			decls := p.parseBlock(parser)

			// Create rules for each selector
			for _, selStr := range selectors {
				sel := p.parseSelector(selStr, sheet)
				if sel.IsSimple() {
					sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Declarations: decls})
				}
			}
		}
	}
}

// ParseDeclarations parses bare declaration block, i.e. content of a style
// attribute or a rule with selector and braces stripped.
func (p *Parser) ParseDeclarations(data []byte) Declarations {
	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, true)

	var decls Declarations
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if parser.Err() != nil && parser.Err().Error() != "EOF" {
				p.log.Debug("CSS declarations parse error", zap.Error(parser.Err()))
			}
			return decls

		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				decls = decls.Set(strings.ToLower(string(data)), parsePropertyValue(values))
			}
		}
	}
}

// ParseValue parses a single property value, e.g. "10px" or "repeat(2, 1fr)".
func (p *Parser) ParseValue(raw string) Value {
	decls := p.ParseDeclarations([]byte("x: " + raw))
	v, _ := decls.Get("x")
	return v
}

// parseSelectors extracts selector strings from token data.
func parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	// Split by comma for grouped selectors
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseBlock parses property declarations until EndRulesetGrammar.
func (p *Parser) parseBlock(parser *css.Parser) Declarations {
	var decls Declarations

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				decls = decls.Set(strings.ToLower(string(data)), parsePropertyValue(values))
			}

		case css.CustomPropertyGrammar:
			// CSS custom properties (--var) are not used by generated styles
			continue
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	if len(tokens) == 0 {
		return Value{}
	}

	// Build raw value string
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))

	val := Value{Raw: raw}

	// Handle single token cases
	if len(tokens) == 1 || (len(tokens) == 2 && tokens[1].TokenType == css.WhitespaceToken) {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		case css.URLToken:
			val.Keyword = string(t.Data)
		case css.HashToken:
			// Color value
			val.Keyword = string(t.Data)
		}
		return val
	}

	// Functions and multi-value properties keep raw value as keyword
	val.Keyword = raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// parseSelector parses a single selector string. Only element, class and
// element.class selectors are supported.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	if strings.ContainsAny(selStr, "+~>[: \t\n") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
		p.log.Debug("Skipping selector", zap.String("selector", selStr))
		return sel
	}

	if element, class, found := strings.Cut(selStr, "."); found {
		sel.Element = element
		sel.Class = class
	} else {
		sel.Element = selStr
	}
	return sel
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
