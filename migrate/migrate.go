package migrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/maruel/natural"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"

	"wcb/document"
	"wcb/value"
)

// ErrMalformed is returned for input which is not a document at all.
var ErrMalformed = errors.New("malformed document")

// LegacyVersion is assumed for documents without version.
const LegacyVersion = 1.0

// converter upgrades generic document in place and returns version it produced.
type converter func(m *Migrator, doc map[string]any) float64

var converters = map[float64]converter{
	1.0: (*Migrator).fromLegacy,
	2.0: (*Migrator).fromCategoryless,
}

var (
	// all element nodes below root
	descendants = jp.MustParseString("$..childrens[*]")
	// every class reference in the tree
	classRefs = jp.MustParseString("$..classes[*]")
)

// Migrator upgrades persisted documents to document.CurrentVersion.
type Migrator struct {
	values *value.Engine
	log    *zap.Logger
}

// New creates migrator. Fresh class and value ids come from values.
func New(values *value.Engine, log *zap.Logger) *Migrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{values: values, log: log.Named("migrate")}
}

// Load parses persisted document of any known version, upgrades it and decodes
// result. Unknown versions are accepted as is.
func (m *Migrator) Load(data []byte) (*document.Document, error) {
	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	doc, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, not an object", ErrMalformed, parsed)
	}

	m.Upgrade(doc)
	if refs := Dangling(doc); len(refs) > 0 {
		m.log.Warn("Document refers to missing classes", zap.Strings("classes", refs))
	}

	var out document.Document
	if err := json.Unmarshal([]byte(oj.JSON(doc)), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if out.TreeData == nil {
		return nil, fmt.Errorf("%w: no element tree", ErrMalformed)
	}
	if out.CssData == nil {
		out.CssData = &document.CssTree{}
	}
	m.stampValues(&out)
	return &out, nil
}

// Upgrade runs converters on generic document until it reaches current version
// or a version no converter knows.
func (m *Migrator) Upgrade(doc map[string]any) {
	for {
		v := Version(doc)
		if v >= document.CurrentVersion {
			return
		}
		conv, ok := converters[v]
		if !ok {
			m.log.Warn("No converter for document version, keeping as is", zap.Float64("version", v))
			return
		}
		next := conv(m, doc)
		m.log.Debug("Document converted", zap.Float64("from", v), zap.Float64("to", next))
		doc["version"] = next
	}
}

// Version returns document version, LegacyVersion when absent.
func Version(doc map[string]any) float64 {
	switch v := doc["version"].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return LegacyVersion
}

// fromLegacy handles documents whose classes are keyed by name. Classes get
// fresh ids and every tree reference by name is rewritten to the new id.
// References to names which do not exist are dropped.
func (m *Migrator) fromLegacy(doc map[string]any) float64 {
	cssData, _ := doc["cssData"].(map[string]any)
	if cssData == nil {
		cssData = map[string]any{}
		doc["cssData"] = cssData
	}

	ids := make(map[string]string)
	var classes []any
	switch src := cssData["classes"].(type) {
	case map[string]any:
		names := make([]string, 0, len(src))
		for name := range src {
			names = append(names, name)
		}
		sort.Sort(natural.StringSlice(names))
		for _, name := range names {
			body, _ := src[name].(map[string]any)
			classes = append(classes, m.legacyClass(name, body, ids))
		}
	case []any:
		for _, el := range src {
			body, _ := el.(map[string]any)
			name, _ := body["name"].(string)
			classes = append(classes, m.legacyClass(name, body, ids))
		}
	}
	if classes == nil {
		classes = []any{}
	}
	cssData["classes"] = classes

	if tree, ok := doc["treeData"].(map[string]any); ok {
		nodes := append([]any{tree}, descendants.Get(tree)...)
		for _, n := range nodes {
			if node, ok := n.(map[string]any); ok {
				node["classes"] = rewriteRefs(node["classes"], ids)
			}
		}
		m.log.Debug("Class references rewritten", zap.Int("classes", len(ids)))
	}
	return document.CurrentVersion
}

// Dangling returns sorted class references of generic document which name no
// class in its class list.
func Dangling(doc map[string]any) []string {
	tree, ok := doc["treeData"].(map[string]any)
	if !ok {
		return nil
	}
	known := make(map[string]bool)
	cssData, _ := doc["cssData"].(map[string]any)
	classes, _ := cssData["classes"].([]any)
	for _, c := range classes {
		if class, ok := c.(map[string]any); ok {
			if id, ok := class["id"].(string); ok {
				known[id] = true
			}
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, r := range classRefs.Get(tree) {
		ref, _ := r.(string)
		if known[ref] || seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}

func (m *Migrator) legacyClass(name string, body map[string]any, ids map[string]string) map[string]any {
	id, _ := body["id"].(string)
	if id == "" {
		id = m.values.NewID()
	}
	if name == "" {
		name = id
	}
	ids[name] = id
	// tree may already refer to class by id
	ids[id] = id

	props, _ := body["properties"].([]any)
	if props == nil {
		props = []any{}
	}
	categories, _ := body["categories"].([]any)
	if categories == nil {
		categories = []any{}
	}
	return map[string]any{
		"id":         id,
		"name":       name,
		"properties": props,
		"categories": categories,
	}
}

func rewriteRefs(v any, ids map[string]string) []any {
	refs, _ := v.([]any)
	out := make([]any, 0, len(refs))
	for _, r := range refs {
		name, _ := r.(string)
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

// fromCategoryless adds categories to classes which lack them.
func (m *Migrator) fromCategoryless(doc map[string]any) float64 {
	cssData, _ := doc["cssData"].(map[string]any)
	classes, _ := cssData["classes"].([]any)
	for _, c := range classes {
		if class, ok := c.(map[string]any); ok {
			if _, ok := class["categories"].([]any); !ok {
				class["categories"] = []any{}
			}
		}
	}
	return document.CurrentVersion
}

// stampValues gives ids to value nodes persisted without one.
func (m *Migrator) stampValues(d *document.Document) {
	for _, c := range d.CssData.Classes {
		if c == nil {
			continue
		}
		if c.Categories == nil {
			c.Categories = []string{}
		}
		for _, p := range c.Properties {
			value.Walk(p, func(n *value.Node) {
				if n.ID == "" {
					n.ID = m.values.NewID()
				}
			})
		}
	}
}
