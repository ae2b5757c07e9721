package css

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "em", "px", "%", "fr", etc.
	Keyword string  // Keyword if applicable: "flex", "center", etc.
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    Value
}

// Declarations is an ordered declaration block. Property names are unique,
// setting an existing property keeps its position. Receivers are never
// modified.
type Declarations []Declaration

func (d Declarations) index(property string) int {
	for i := range d {
		if d[i].Property == property {
			return i
		}
	}
	return -1
}

// Get returns value of property.
func (d Declarations) Get(property string) (Value, bool) {
	if i := d.index(property); i >= 0 {
		return d[i].Value, true
	}
	return Value{}, false
}

// Set returns block with property set to v.
func (d Declarations) Set(property string, v Value) Declarations {
	if i := d.index(property); i >= 0 {
		c := slices.Clone(d)
		c[i].Value = v
		return c
	}
	return append(d[:len(d):len(d)], Declaration{Property: property, Value: v})
}

// Merge applies every declaration of other on top of d.
func (d Declarations) Merge(other Declarations) Declarations {
	for _, decl := range other {
		d = d.Set(decl.Property, decl.Value)
	}
	return d
}

// Delete returns block without property.
func (d Declarations) Delete(property string) Declarations {
	if i := d.index(property); i >= 0 {
		return append(d[:i:i], d[i+1:]...)
	}
	return d
}

// String returns declarations in "a: b; c: d;" form suitable for a style
// attribute.
func (d Declarations) String() string {
	parts := make([]string, 0, len(d))
	for _, decl := range d {
		parts = append(parts, decl.Property+": "+decl.Value.Raw+";")
	}
	return strings.Join(parts, " ")
}

// Selector represents a parsed CSS selector with its components.
type Selector struct {
	Raw     string // Original selector string
	Element string // Element name (e.g., "p", "h1") or empty for class-only
	Class   string // Class name without dot or empty
}

// IsSimple returns true if this is a simple selector (element, class, or element.class).
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.Class != ""
}

// Rule represents a single CSS rule (selector + declarations).
type Rule struct {
	Selector     Selector
	Declarations Declarations
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Rules    []Rule   // Rules in source order
	Warnings []string // Warnings for unsupported features
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Declaration order within a rule is preserved.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i := range s.Rules {
		n, err := writeRule(w, &s.Rules[i])
		total += int64(n)
		if err != nil {
			return total, err
		}

		// Add blank line between rules (except after last)
		if i < len(s.Rules)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// writeRule writes a single CSS rule to w.
func writeRule(w io.Writer, rule *Rule) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s {\n", rule.Selector.Raw)
	total += n
	if err != nil {
		return total, err
	}
	for _, decl := range rule.Declarations {
		n, err = fmt.Fprintf(w, "  %s: %s;\n", decl.Property, decl.Value.Raw)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}
