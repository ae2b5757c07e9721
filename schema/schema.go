// Package schema holds the static tables describing elements, CSS properties
// and the input types used to build property values.
package schema

import (
	"fmt"
	"strings"
)

// Shape of an input type value.
// ENUM(number, text, selection, option, composite, function, list)
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindSelection
	KindOption
	KindComposite
	KindFunction
	KindList
)

var kindNames = []string{"number", "text", "selection", "option", "composite", "function", "list"}

// KindNames returns a list of possible string values of Kind.
func KindNames() []string {
	return append([]string(nil), kindNames...)
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind attempts to convert a string to a Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return Kind(-1), fmt.Errorf("%s is not a valid Kind, try [%s]: %w", name, strings.Join(kindNames, ", "), ErrUnknownInputType)
}

// KeepsKey reports whether values of this kind are tagged with the input type
// key itself rather than with the generic kind name.
func (k Kind) KeepsKey() bool {
	switch k {
	case KindSelection, KindOption, KindList, KindComposite, KindNumber:
		return true
	}
	return false
}

const defaultSeparator = " "

// InputBase carries the fields every input type has.
type InputBase struct {
	Key       string
	Label     string
	Default   any
	Format    string
	Separator *string
}

func (b *InputBase) Base() *InputBase { return b }

// Sep returns the declared separator or a single space.
func (b *InputBase) Sep() string {
	if b.Separator == nil {
		return defaultSeparator
	}
	return *b.Separator
}

// Apply substitutes s into the format template. Missing template means s as is.
func (b *InputBase) Apply(s string) string {
	if b.Format == "" {
		return s
	}
	return strings.ReplaceAll(b.Format, "{value}", s)
}

// Input is one of the input type variants below. The set is closed.
type Input interface {
	Base() *InputBase
	Kind() Kind
	sealed()
}

type (
	NumberInput struct {
		InputBase
		Min, Max *float64
	}

	TextInput struct {
		InputBase
	}

	// SelectionInput picks one of a fixed set of keywords.
	SelectionInput struct {
		InputBase
		Options []string
	}

	// OptionInput picks one of several other input types by key.
	OptionInput struct {
		InputBase
		Options []string
	}

	CompositeInput struct {
		InputBase
	}

	FunctionInput struct {
		InputBase
	}

	// ListInput is a variable length sequence of Item values.
	ListInput struct {
		InputBase
		Item string
	}
)

func (*NumberInput) Kind() Kind    { return KindNumber }
func (*TextInput) Kind() Kind      { return KindText }
func (*SelectionInput) Kind() Kind { return KindSelection }
func (*OptionInput) Kind() Kind    { return KindOption }
func (*CompositeInput) Kind() Kind { return KindComposite }
func (*FunctionInput) Kind() Kind  { return KindFunction }
func (*ListInput) Kind() Kind      { return KindList }

func (*NumberInput) sealed()    {}
func (*TextInput) sealed()      {}
func (*SelectionInput) sealed() {}
func (*OptionInput) sealed()    {}
func (*CompositeInput) sealed() {}
func (*FunctionInput) sealed()  {}
func (*ListInput) sealed()      {}

// Clamp limits v to the declared range.
func (n *NumberInput) Clamp(v float64) float64 {
	if n.Min != nil && v < *n.Min {
		v = *n.Min
	}
	if n.Max != nil && v > *n.Max {
		v = *n.Max
	}
	return v
}

// Allows reports whether keyword is one of the options.
func (s *SelectionInput) Allows(keyword string) bool {
	for _, o := range s.Options {
		if o == keyword {
			return true
		}
	}
	return false
}

// Requirement gates a property on the value of another property of the same
// class.
type Requirement struct {
	Property string   `yaml:"property"`
	Value    string   `yaml:"value"`
	Values   []string `yaml:"values"`
}

// Accepts reports whether formatted value satisfies the requirement.
func (r *Requirement) Accepts(formatted string) bool {
	if r.Value != "" && r.Value == formatted {
		return true
	}
	for _, v := range r.Values {
		if v == formatted {
			return true
		}
	}
	return false
}

// Property describes one CSS property a class may carry.
type Property struct {
	Key         string
	Label       string
	Inputs      string
	Default     any
	Format      string
	Requirement *Requirement
}

// Seed returns the raw value a freshly added property starts from: explicit
// default when declared, a reference to its input type otherwise.
func (p *Property) Seed() any {
	if p.Default != nil {
		return p.Default
	}
	return "{" + p.Inputs + "}"
}

// Apply substitutes s into the property template.
func (p *Property) Apply(s string) string {
	if p.Format == "" {
		return s
	}
	return strings.ReplaceAll(p.Format, "{value}", s)
}

const voidType = "void"

// Element describes an HTML-like tag.
type Element struct {
	Tag        string
	Types      []string
	Attributes []string
}

func (e *Element) IsVoid() bool {
	for _, t := range e.Types {
		if t == voidType {
			return true
		}
	}
	return false
}

// Ref extracts the key from a "{key}" reference string.
func Ref(s string) (string, bool) {
	if len(s) < 3 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	key := s[1 : len(s)-1]
	if strings.ContainsAny(key, "{} \t\n") {
		return "", false
	}
	return key, true
}
