package migrate

import (
	"encoding/json"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wcb/document"
	"wcb/schema"
	"wcb/value"
)

func newMigrator(t *testing.T) *Migrator {
	t.Helper()
	log := zaptest.NewLogger(t)
	return New(value.New(schema.Default(), value.Sequence("m"), 0, log), log)
}

const legacyDoc = `{
  "version": 1.0,
  "cssData": {
    "classes": {
      "primary": {
        "name": "primary",
        "properties": [{"id": "p1", "type": "display", "value": {"id": "p2", "type": "displayMode", "value": "grid"}}]
      },
      "accent": {"name": "accent", "properties": [{"type": "color", "value": {"type": "color", "value": "#ff0000"}}]}
    }
  },
  "treeData": {
    "id": "root", "tag": "div", "title": "", "classes": ["primary"], "inlineStyle": {}, "content": "", "attributes": [],
    "childrens": [
      {"id": "c1", "tag": "p", "classes": ["accent", "primary", "missing"], "childrens": [
        {"id": "c2", "tag": "span", "classes": ["accent"], "childrens": []}
      ]}
    ]
  }
}`

func TestLoadLegacy(t *testing.T) {
	m := newMigrator(t)

	doc, err := m.Load([]byte(legacyDoc))
	require.NoError(t, err)

	assert.Equal(t, document.CurrentVersion, doc.Version)
	require.Len(t, doc.CssData.Classes, 2)

	primary, ok := doc.CssData.ClassByName("primary")
	require.True(t, ok)
	accent, ok := doc.CssData.ClassByName("accent")
	require.True(t, ok)

	assert.NotEqual(t, "primary", primary.ID)
	assert.NotEqual(t, primary.ID, accent.ID)
	assert.Equal(t, []string{}, primary.Categories)
	require.Len(t, primary.Properties, 1)
	assert.Equal(t, "p1", primary.Properties[0].ID)

	assert.Equal(t, []string{primary.ID}, doc.TreeData.Classes)
	c1 := document.Find(doc.TreeData, "c1")
	require.NotNil(t, c1)
	assert.Equal(t, []string{accent.ID, primary.ID}, c1.Classes, "references rewritten, unknown names dropped")
	assert.Equal(t, []string{accent.ID}, document.Find(doc.TreeData, "c2").Classes)

	// value nodes persisted without ids are stamped
	prop := accent.Properties[0]
	assert.NotEmpty(t, prop.ID)
	inner, ok := prop.Value.(*value.Node)
	require.True(t, ok)
	assert.NotEmpty(t, inner.ID)
	assert.NotEqual(t, prop.ID, inner.ID)
}

func TestLoadScenario(t *testing.T) {
	m := newMigrator(t)

	doc, err := m.Load([]byte(`{"version":1.0,
		"cssData":{"classes":{"primary":{"name":"primary","properties":[]}}},
		"treeData":{"id":"root","tag":"div","classes":["primary"],"childrens":[]}}`))
	require.NoError(t, err)

	require.Len(t, doc.CssData.Classes, 1)
	c := doc.CssData.Classes[0]
	assert.Equal(t, "primary", c.Name)
	assert.Equal(t, "m1", c.ID)
	assert.Equal(t, []string{"m1"}, doc.TreeData.Classes)
}

func TestLoadMissingVersionIsLegacy(t *testing.T) {
	m := newMigrator(t)

	doc, err := m.Load([]byte(`{"cssData":{"classes":{"a":{}}},"treeData":{"id":"root","tag":"div","classes":["a"]}}`))
	require.NoError(t, err)
	assert.Equal(t, document.CurrentVersion, doc.Version)
	require.Len(t, doc.CssData.Classes, 1)
	assert.Equal(t, "a", doc.CssData.Classes[0].Name)
	assert.Equal(t, []string{doc.CssData.Classes[0].ID}, doc.TreeData.Classes)
}

func TestLoadAddsCategories(t *testing.T) {
	m := newMigrator(t)

	doc, err := m.Load([]byte(`{"version":2.0,
		"cssData":{"classes":[{"id":"x1","name":"card","properties":[]},{"id":"x2","name":"tag","properties":[],"categories":["layout"]}]},
		"treeData":{"id":"root","tag":"div","classes":["x1"]}}`))
	require.NoError(t, err)

	assert.Equal(t, document.CurrentVersion, doc.Version)
	assert.Equal(t, []string{}, doc.CssData.Classes[0].Categories)
	assert.Equal(t, []string{"layout"}, doc.CssData.Classes[1].Categories)
	assert.Equal(t, []string{"x1"}, doc.TreeData.Classes, "2.0 references are ids already")
}

func TestLoadPassThrough(t *testing.T) {
	m := newMigrator(t)

	for name, data := range map[string]string{
		"current": `{"version":2.1,"cssData":{"classes":[]},"treeData":{"id":"root","tag":"div"}}`,
		"future":  `{"version":7,"cssData":{"classes":[]},"treeData":{"id":"root","tag":"div"}}`,
		"unknown": `{"version":1.5,"cssData":{"classes":[]},"treeData":{"id":"root","tag":"div"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			var want struct{ Version float64 }
			require.NoError(t, json.Unmarshal([]byte(data), &want))

			doc, err := m.Load([]byte(data))
			require.NoError(t, err)
			assert.Equal(t, want.Version, doc.Version)
			assert.Equal(t, "root", doc.TreeData.ID)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	m := newMigrator(t)

	for name, data := range map[string]string{
		"not json": `{"version":`,
		"array":    `[1, 2]`,
		"no tree":  `{"version":2.1,"cssData":{"classes":[]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Load([]byte(data))
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

// Legacy documents of either class layout end at current version with every
// reference resolvable.
func TestUpgradeMonotonic(t *testing.T) {
	m := newMigrator(t)

	for name, classes := range map[string]string{
		"keyed":   `{"one":{"properties":[]},"two":{"properties":[]}}`,
		"ordered": `[{"id":"k1","name":"one","properties":[]},{"name":"two","properties":[]}]`,
	} {
		t.Run(name, func(t *testing.T) {
			raw := `{"version":1,"cssData":{"classes":` + classes + `},
				"treeData":{"id":"root","tag":"div","classes":["one","ghost"],"childrens":[{"id":"a","tag":"p","classes":["two","one"]}]}}`
			doc, err := m.Load([]byte(raw))
			require.NoError(t, err)
			assert.Equal(t, document.CurrentVersion, doc.Version)

			refs := 0
			document.Walk(doc.TreeData, func(n *document.TreeNode, _ int) bool {
				for _, id := range n.Classes {
					refs++
					_, i := doc.CssData.Class(id)
					assert.GreaterOrEqual(t, i, 0, "dangling reference %q", id)
				}
				return true
			})
			assert.Equal(t, 3, refs)
		})
	}
}

func TestDangling(t *testing.T) {
	m := newMigrator(t)

	parse := func(t *testing.T, raw string) map[string]any {
		t.Helper()
		parsed, err := oj.Parse([]byte(raw))
		require.NoError(t, err)
		doc, ok := parsed.(map[string]any)
		require.True(t, ok)
		return doc
	}

	t.Run("current version", func(t *testing.T) {
		doc := parse(t, `{"version":2.1,"cssData":{"classes":[{"id":"c1","name":"one"}]},
			"treeData":{"id":"root","tag":"div","classes":["c1","lost"],"childrens":[{"id":"a","tag":"p","classes":["ghost","c1","lost"]}]}}`)
		assert.Equal(t, []string{"ghost", "lost"}, Dangling(doc))
	})

	t.Run("after legacy upgrade", func(t *testing.T) {
		doc := parse(t, legacyDoc)
		require.NotEmpty(t, Dangling(doc))
		m.Upgrade(doc)
		assert.Empty(t, Dangling(doc))
	})

	t.Run("no tree", func(t *testing.T) {
		assert.Nil(t, Dangling(map[string]any{"version": 2.1}))
	})
}
