package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wcb/document"
	"wcb/migrate"
	"wcb/schema"
	"wcb/value"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	log := zaptest.NewLogger(t)
	s, err := Open(path, migrate.New(value.New(schema.Default(), value.Sequence("s"), 0, log), log), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, Memory)

	d := document.New("root", "div")
	d.TreeData.Childrens = append(d.TreeData.Childrens, document.NewNode("a1", "p"))

	id, err := s.Save(ctx, 0, "first", d)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, document.CurrentVersion, got.Version)
	require.Len(t, got.TreeData.Childrens, 1)
	assert.Equal(t, "a1", got.TreeData.Childrens[0].ID)

	d.TreeData.Title = "changed"
	same, err := s.Save(ctx, id, "renamed", d)
	require.NoError(t, err)
	assert.Equal(t, id, same)

	got, err = s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.TreeData.Title)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Title)
	assert.Equal(t, document.CurrentVersion, list[0].Version)
}

func TestLoadMigrates(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "docs.db"))

	id, err := s.SaveRaw(ctx, "legacy", 1.0, []byte(`{"version":1.0,
		"cssData":{"classes":{"primary":{"name":"primary","properties":[]}}},
		"treeData":{"id":"root","tag":"div","classes":["primary"]}}`))
	require.NoError(t, err)

	d, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, document.CurrentVersion, d.Version)
	require.Len(t, d.CssData.Classes, 1)
	assert.Equal(t, []string{d.CssData.Classes[0].ID}, d.TreeData.Classes)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, Memory)

	_, err := s.Load(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Save(ctx, 42, "", document.New("root", "div"))
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, 42), ErrNotFound)

	id, err := s.Save(ctx, 0, "", document.New("root", "div"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Load(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMalformedBody(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, Memory)

	id, err := s.SaveRaw(ctx, "", 2.1, []byte(`[]`))
	require.NoError(t, err)
	_, err = s.Load(ctx, id)
	require.ErrorIs(t, err, migrate.ErrMalformed)
}
