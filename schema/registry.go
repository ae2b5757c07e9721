package schema

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	yaml "gopkg.in/yaml.v3"
)

var (
	ErrUnknownInputType = errors.New("unknown input type")
	ErrUnknownProperty  = errors.New("unknown property")
	ErrUnknownElement   = errors.New("unknown element")
)

const (
	ElementsFile   = "elements.yaml"
	PropertiesFile = "properties.yaml"
	InputsFile     = "inputs.yaml"
)

//go:embed tables/*.yaml
var tables embed.FS

// Tags browsers treat as void. Any of them present in the element table must be
// marked void there.
var htmlVoid = []string{"area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "source", "track", "wbr"}

// Registry is the read-only lookup over all schema tables. Safe for
// concurrent use once loaded.
type Registry struct {
	global     []string
	elements   map[string]*Element
	properties map[string]*Property
	inputs     map[string]Input
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns registry built from embedded tables.
func Default() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(tables, "tables")
		if err == nil {
			defaultRegistry, err = Load(sub)
		}
		if err != nil {
			panic(fmt.Sprintf("embedded schema tables are broken: %v", err))
		}
	})
	return defaultRegistry
}

type (
	rawElements struct {
		GlobalAttributes []string `yaml:"globalAttributes"`
		Tags             map[string]struct {
			Types      []string `yaml:"types"`
			Attributes []string `yaml:"attributes"`
		} `yaml:"tags"`
	}

	rawProperty struct {
		Label       string       `yaml:"label"`
		Inputs      string       `yaml:"inputs"`
		Default     any          `yaml:"default"`
		Format      string       `yaml:"format"`
		Requirement *Requirement `yaml:"requirement"`
	}

	rawInput struct {
		Label     string   `yaml:"label"`
		InputType string   `yaml:"inputType"`
		Default   any      `yaml:"default"`
		Format    string   `yaml:"format"`
		Separator *string  `yaml:"separator"`
		Options   []string `yaml:"options"`
		Min       *float64 `yaml:"min"`
		Max       *float64 `yaml:"max"`
		Item      string   `yaml:"item"`
	}
)

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("unable to read schema table: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("unable to decode schema table %s: %w", name, err)
	}
	return nil
}

// Load reads schema tables from fsys and checks that they are consistent:
// every reference and every option names an existing input type.
func Load(fsys fs.FS) (*Registry, error) {
	var (
		re rawElements
		rp map[string]rawProperty
		ri map[string]rawInput
	)
	if err := decodeFile(fsys, ElementsFile, &re); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, PropertiesFile, &rp); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, InputsFile, &ri); err != nil {
		return nil, err
	}

	r := &Registry{
		global:     re.GlobalAttributes,
		elements:   make(map[string]*Element, len(re.Tags)),
		properties: make(map[string]*Property, len(rp)),
		inputs:     make(map[string]Input, len(ri)),
	}

	var errs error
	for tag, e := range re.Tags {
		r.elements[tag] = &Element{Tag: tag, Types: e.Types, Attributes: e.Attributes}
	}
	for key, in := range ri {
		input, err := buildInput(key, in)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		r.inputs[key] = input
	}
	for key, p := range rp {
		r.properties[key] = &Property{
			Key:         key,
			Label:       p.Label,
			Inputs:      p.Inputs,
			Default:     p.Default,
			Format:      p.Format,
			Requirement: p.Requirement,
		}
	}
	if errs != nil {
		return nil, errs
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	return r, nil
}

func buildInput(key string, in rawInput) (Input, error) {
	kind, err := ParseKind(in.InputType)
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", key, err)
	}
	base := InputBase{Key: key, Label: in.Label, Default: in.Default, Format: in.Format, Separator: in.Separator}
	switch kind {
	case KindNumber:
		return &NumberInput{InputBase: base, Min: in.Min, Max: in.Max}, nil
	case KindText:
		return &TextInput{InputBase: base}, nil
	case KindSelection:
		return &SelectionInput{InputBase: base, Options: in.Options}, nil
	case KindOption:
		return &OptionInput{InputBase: base, Options: in.Options}, nil
	case KindComposite:
		return &CompositeInput{InputBase: base}, nil
	case KindFunction:
		return &FunctionInput{InputBase: base}, nil
	case KindList:
		return &ListInput{InputBase: base, Item: in.Item}, nil
	}
	return nil, fmt.Errorf("input %q: %w", key, ErrUnknownInputType)
}

// refs collects every "{key}" reference found in a raw default value.
func refs(v any, out []string) []string {
	switch t := v.(type) {
	case string:
		if key, ok := Ref(t); ok {
			out = append(out, key)
		}
	case []any:
		for _, e := range t {
			out = refs(e, out)
		}
	case map[string]any:
		if typ, ok := t["type"].(string); ok {
			out = append(out, typ)
		}
		out = refs(t["value"], out)
	}
	return out
}

func (r *Registry) check() (errs error) {
	known := func(where, key string) {
		if _, ok := r.inputs[key]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("%s refers to %q: %w", where, key, ErrUnknownInputType))
		}
	}
	for _, key := range r.InputKeys() {
		in := r.inputs[key]
		for _, ref := range refs(in.Base().Default, nil) {
			known(fmt.Sprintf("input %q default", key), ref)
		}
		switch t := in.(type) {
		case *OptionInput:
			if len(t.Options) == 0 {
				errs = multierr.Append(errs, fmt.Errorf("option input %q has no options", key))
			}
			for _, o := range t.Options {
				known(fmt.Sprintf("option input %q", key), o)
			}
		case *SelectionInput:
			if len(t.Options) == 0 {
				errs = multierr.Append(errs, fmt.Errorf("selection input %q has no options", key))
			}
		case *ListInput:
			known(fmt.Sprintf("list input %q item", key), t.Item)
		}
	}
	for _, key := range r.PropertyKeys() {
		p := r.properties[key]
		known(fmt.Sprintf("property %q", key), p.Inputs)
		for _, ref := range refs(p.Default, nil) {
			known(fmt.Sprintf("property %q default", key), ref)
		}
		if p.Requirement != nil {
			if _, ok := r.properties[p.Requirement.Property]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("property %q requires %q: %w", key, p.Requirement.Property, ErrUnknownProperty))
			}
		}
	}
	for _, tag := range htmlVoid {
		if e, ok := r.elements[tag]; ok && !e.IsVoid() {
			errs = multierr.Append(errs, fmt.Errorf("element %q must be marked %s", tag, voidType))
		}
	}
	return errs
}

// Element returns element schema for tag.
func (r *Registry) Element(tag string) (*Element, bool) {
	e, ok := r.elements[tag]
	return e, ok
}

// IsVoidElement reports whether tag can never own children. Unknown tags are
// not void.
func (r *Registry) IsVoidElement(tag string) bool {
	if e, ok := r.elements[tag]; ok {
		return e.IsVoid()
	}
	return false
}

// AttributeAllowed checks attribute name against global and per tag
// allow-lists. Attributes "style" and "class" are structural and never allowed.
func (r *Registry) AttributeAllowed(tag, name string) bool {
	if name == "style" || name == "class" {
		return false
	}
	if strings.HasPrefix(name, "data-") || strings.HasPrefix(name, "aria-") {
		return true
	}
	for _, a := range r.global {
		if a == name {
			return true
		}
	}
	if e, ok := r.elements[tag]; ok {
		for _, a := range e.Attributes {
			if a == name {
				return true
			}
		}
	}
	return false
}

func (r *Registry) Property(key string) (*Property, bool) {
	p, ok := r.properties[key]
	return p, ok
}

func (r *Registry) Input(key string) (Input, bool) {
	in, ok := r.inputs[key]
	return in, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}

func (r *Registry) Tags() []string         { return sortedKeys(r.elements) }
func (r *Registry) PropertyKeys() []string { return sortedKeys(r.properties) }
func (r *Registry) InputKeys() []string    { return sortedKeys(r.inputs) }

// Label returns human readable name for a property or input key. Keys without
// a declared label get one derived from their camel case spelling.
func (r *Registry) Label(key string) string {
	if p, ok := r.properties[key]; ok && p.Label != "" {
		return p.Label
	}
	if in, ok := r.inputs[key]; ok && in.Base().Label != "" {
		return in.Base().Label
	}
	return cases.Title(language.English).String(splitCamel(key))
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, c := range s {
		if i > 0 && unicode.IsUpper(c) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return b.String()
}
