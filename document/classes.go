package document

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"wcb/value"
)

// SeedProperty is the property every new class starts with.
const SeedProperty = "display"

func (e *Engine) missClass(op, id string) Result {
	e.log.Debug("Class not found", zap.String("op", op), zap.String("class", id))
	return Result{}
}

// AddClass appends class with id unless it already exists. New class is named
// after its id and carries one default property.
func (e *Engine) AddClass(t *CssTree, id string) (*CssTree, *CssClass, Result) {
	if t == nil {
		t = &CssTree{}
	}
	if c, _ := t.Class(id); c != nil {
		return t, c, done()
	}
	c := &CssClass{ID: id, Name: id, Properties: []*value.Node{}, Categories: []string{}}
	if p, err := e.values.NewProperty(SeedProperty); err == nil {
		c.Properties = append(c.Properties, p)
	} else {
		e.log.Warn("Unable to seed class property", zap.String("class", id), zap.Error(err))
	}
	return &CssTree{Classes: append(slices.Clip(t.Classes), c)}, c, created(id)
}

// NewClass is AddClass with fresh id.
func (e *Engine) NewClass(t *CssTree) (*CssTree, *CssClass, Result) {
	return e.AddClass(t, e.values.NewID())
}

// RenameClass changes display name of class. Names must stay unique.
func (e *Engine) RenameClass(t *CssTree, id, name string) (*CssTree, Result) {
	c, i := t.Class(id)
	if c == nil {
		return t, refused(fmt.Sprintf("Class %q does not exist", id))
	}
	if other, ok := t.ClassByName(name); ok && other.ID != id {
		e.log.Warn("Class name collision", zap.String("class", id), zap.String("name", name))
		return t, refused(fmt.Sprintf("Class named %q already exists", name))
	}
	nc := c.shallow()
	nc.Name = name
	return t.withClass(i, nc), done()
}

// RemoveClass deletes class from the class tree and drops every reference to
// it from the element tree in one step.
func (e *Engine) RemoveClass(d *Document, id string) (*Document, Result) {
	if c, _ := d.CssData.Class(id); c == nil {
		return d, e.missClass("remove", id)
	}
	out := *d
	out.CssData = d.CssData.Without(id)
	out.TreeData = SweepClassRefs(d.TreeData, id)
	return &out, done()
}

// SetCategories replaces categories of class.
func (e *Engine) SetCategories(t *CssTree, id string, categories []string) (*CssTree, Result) {
	c, i := t.Class(id)
	if c == nil {
		return t, e.missClass("categories", id)
	}
	nc := c.shallow()
	nc.Categories = slices.Clone(categories)
	if nc.Categories == nil {
		nc.Categories = []string{}
	}
	return t.withClass(i, nc), done()
}

// AddProperty appends property of given CSS property key to class, value is
// resolved from property schema.
func (e *Engine) AddProperty(t *CssTree, classID, property string) (*CssTree, Result) {
	c, i := t.Class(classID)
	if c == nil {
		return t, e.missClass("add property", classID)
	}
	p, err := e.values.NewProperty(property)
	if err != nil {
		e.log.Warn("Unable to add property", zap.String("class", classID), zap.Error(err))
		return t, refused(fmt.Sprintf("Unknown property %q", property))
	}
	nc := c.shallow()
	nc.Properties = append(slices.Clip(c.Properties), p)
	res := created(p.ID)
	return t.withClass(i, nc), res
}

// RemoveProperty drops property node from class.
func (e *Engine) RemoveProperty(t *CssTree, classID, propertyID string) (*CssTree, Result) {
	c, i := t.Class(classID)
	if c == nil {
		return t, e.missClass("remove property", classID)
	}
	if p, _ := c.Property(propertyID); p == nil {
		return t, e.missClass("remove property", classID)
	}
	nc := c.shallow()
	nc.Properties = slices.DeleteFunc(slices.Clone(c.Properties), func(p *value.Node) bool { return p.ID == propertyID })
	return t.withClass(i, nc), done()
}

// UpdatePropertyValue replaces nested value addressed by idPath. The first
// path element is the property id.
func (e *Engine) UpdatePropertyValue(t *CssTree, classID string, idPath []string, raw any) (*CssTree, Result) {
	c, i := t.Class(classID)
	if c == nil || len(idPath) == 0 {
		return t, e.missClass("update property", classID)
	}
	p, pi := c.Property(idPath[0])
	if p == nil {
		return t, e.missClass("update property", classID)
	}
	np, ok := e.values.UpdateNested(p, idPath, raw)
	if !ok {
		return t, Result{}
	}
	nc := c.shallow()
	nc.Properties = slices.Clone(c.Properties)
	nc.Properties[pi] = np
	return t.withClass(i, nc), done()
}

// AvailableProperties lists property keys which could be added to class: not
// present yet and with requirement satisfied by class's current values.
func (e *Engine) AvailableProperties(c *CssClass) []string {
	var out []string
	for _, key := range e.reg.PropertyKeys() {
		if _, ok := c.PropertyByType(key); ok {
			continue
		}
		p, _ := e.reg.Property(key)
		if r := p.Requirement; r != nil {
			dep, ok := c.PropertyByType(r.Property)
			if !ok || !r.Accepts(e.keyword(dep)) {
				continue
			}
		}
		out = append(out, key)
	}
	return out
}

// keyword returns formatted value of property node normalized the way CSS
// keywords compare.
func (e *Engine) keyword(n *value.Node) string {
	v := e.parser.ParseValue(e.values.Format(n.Value, n.Type))
	if v.IsKeyword() {
		return v.Keyword
	}
	return v.Raw
}
