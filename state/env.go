// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"wcb/config"
	"wcb/document"
	"wcb/migrate"
	"wcb/render"
	"wcb/schema"
	"wcb/selection"
	"wcb/store"
	"wcb/value"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// built by Prepare from configuration
	Registry *schema.Registry
	Values   *value.Engine
	Engine   *document.Engine
	Renderer *render.Renderer
	Migrator *migrate.Migrator

	// used by render subcommand
	Overwrite bool

	db            *store.Store
	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Prepare builds engines according to configuration. Cfg and Log must be set.
func (e *LocalEnv) Prepare() error {
	reg := schema.Default()
	if dir := e.Cfg.Schema.Directory; dir != "" {
		var err error
		if reg, err = schema.Load(os.DirFS(dir)); err != nil {
			return fmt.Errorf("unable to load schema tables from '%s': %w", dir, err)
		}
		e.Log.Debug("Schema tables loaded", zap.String("dir", dir))
	}
	e.Registry = reg
	e.Values = value.New(reg, value.NewIDSource(e.Cfg.Editor.IDLength), e.Cfg.Editor.MaxResolveDepth, e.Log)
	e.Engine = document.NewEngine(e.Values, e.Cfg.Editor.DefaultTag, e.Log)
	e.Renderer = render.New(e.Values, e.Log)
	e.Migrator = migrate.New(e.Values, e.Log)
	return nil
}

// Highlight returns selection highlight style from configuration.
func (e *LocalEnv) Highlight() selection.Highlight {
	return selection.Highlight{
		Outline:       e.Cfg.Editor.Highlight.Outline,
		OutlineOffset: e.Cfg.Editor.Highlight.OutlineOffset,
	}
}

// Store opens configured document database on first use.
func (e *LocalEnv) Store() (*store.Store, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := store.Open(e.Cfg.Store.Database, e.Migrator, e.Log)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

// Close releases resources opened during the run.
func (e *LocalEnv) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
