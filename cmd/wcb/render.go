package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wcb/common"
	"wcb/config"
	"wcb/document"
	"wcb/state"
)

// loadDocument reads persisted document from file upgrading it to current
// version. Problems found in the document are logged, not returned.
func loadDocument(env *state.LocalEnv, src string) (*document.Document, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	if err := env.Rpt.StoreCopy("input/"+filepath.Base(src), src); err != nil {
		env.Log.Warn("Unable to store document in report", zap.Error(err))
	}
	d, err := env.Migrator.Load(data)
	if err != nil {
		return nil, fmt.Errorf("unable to load document '%s': %w", src, err)
	}
	checkDocument(env, d)
	return d, nil
}

func checkDocument(env *state.LocalEnv, d *document.Document) {
	for _, err := range multierr.Errors(env.Engine.Validate(d)) {
		env.Log.Warn("Document problem", zap.Error(err))
	}
}

func encodeDocument(d *document.Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to encode document: %w", err)
	}
	return append(data, '\n'), nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Overwrite = cmd.Bool("overwrite")

	format := env.Cfg.Render.Format
	if cmd.IsSet("to") {
		format = cmd.String("to")
	}
	outFmt, err := common.ParseOutputFmt(format)
	if err != nil {
		return fmt.Errorf("unable to render: %w", err)
	}

	var (
		d        *document.Document
		src, dst string
		args     = cmd.Args().Slice()
	)
	if cmd.IsSet("id") {
		db, err := env.Store()
		if err != nil {
			return err
		}
		if d, err = db.Load(ctx, cmd.Int64("id")); err != nil {
			return err
		}
		checkDocument(env, d)
		src = fmt.Sprintf("document-%d", cmd.Int64("id"))
		if len(args) > 0 {
			dst = args[0]
		}
	} else {
		if len(args) == 0 {
			return fmt.Errorf("no SOURCE has been specified")
		}
		src = args[0]
		if len(args) > 1 {
			dst = args[1]
		}
		if d, err = loadDocument(env, src); err != nil {
			return err
		}
	}

	fallback := cmd.String("title")
	if fallback == "" && d.TreeData != nil {
		fallback = d.TreeData.Title
	}
	title, err := env.Renderer.ExpandTitle(d, env.Cfg.Render.TitleTemplate, fallback)
	if err != nil {
		env.Log.Warn("Unable to expand title template", zap.Error(err))
		title = fallback
	}

	var data []byte
	switch outFmt {
	case common.OutputFmtHtml:
		var s string
		s, err = env.Renderer.ToHTML(d)
		data = []byte(s)
	case common.OutputFmtXhtml:
		data, err = env.Renderer.ToXHTML(d, title)
	case common.OutputFmtPage:
		var s string
		s, err = env.Renderer.Page(d, title)
		data = []byte(s)
	case common.OutputFmtCss:
		var sb strings.Builder
		for _, c := range env.Renderer.GenerateCSS(d.CssData) {
			sb.WriteString(c.CSSString)
			sb.WriteByte('\n')
		}
		data = []byte(sb.String())
	case common.OutputFmtJson:
		data, err = encodeDocument(d)
	}
	if err != nil {
		return fmt.Errorf("unable to render '%s': %w", src, err)
	}

	out := outputPath(env, d, src, dst, title, outFmt)
	env.Log.Info("Rendering", zap.String("source", src), zap.String("format", outFmt.String()), zap.String("destination", out))
	return writeOutput(out, data, env.Overwrite)
}

// outputPath builds destination file name. Explicit file destination is used as
// is, otherwise name comes from output name template placed in destination
// directory.
func outputPath(env *state.LocalEnv, d *document.Document, src, dst, title string, format common.OutputFmt) string {
	if dst != "" {
		if fi, err := os.Stat(dst); err != nil || !fi.IsDir() {
			return dst
		}
	}

	name, err := env.Renderer.ExpandTitle(d, env.Cfg.Render.OutputNameTemplate, title)
	if err != nil {
		env.Log.Warn("Unable to prepare output file name", zap.Error(err))
		name = ""
	}
	if name = slug.Make(name); name == "" {
		name = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	return filepath.Join(dst, config.OutputFileName(name, format.Ext()))
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no SOURCE has been specified")
	}
	d, err := loadDocument(env, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	data, err := encodeDocument(d)
	if err != nil {
		return err
	}
	return writeOutput(cmd.Args().Get(1), data, true)
}
