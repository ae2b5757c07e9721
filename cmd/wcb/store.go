package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"wcb/state"
)

func documentID(cmd *cli.Command) (int64, error) {
	arg := cmd.Args().Get(0)
	if arg == "" {
		return 0, fmt.Errorf("no document ID has been specified")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad document ID '%s'", arg)
	}
	return id, nil
}

func runStorePut(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if src == "" {
		return fmt.Errorf("no SOURCE has been specified")
	}
	d, err := loadDocument(env, src)
	if err != nil {
		return err
	}
	title := cmd.String("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}

	db, err := env.Store()
	if err != nil {
		return err
	}
	id, err := db.Save(ctx, cmd.Int64("id"), title, d)
	if err != nil {
		return err
	}
	env.Log.Info("Document stored", zap.Int64("id", id), zap.String("title", title))
	return nil
}

func runStoreGet(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	id, err := documentID(cmd)
	if err != nil {
		return err
	}
	db, err := env.Store()
	if err != nil {
		return err
	}
	d, err := db.Load(ctx, id)
	if err != nil {
		return err
	}
	data, err := encodeDocument(d)
	if err != nil {
		return err
	}
	return writeOutput(cmd.Args().Get(1), data, true)
}

func runStoreList(ctx context.Context, _ *cli.Command) error {
	env := state.EnvFromContext(ctx)

	db, err := env.Store()
	if err != nil {
		return err
	}
	entries, err := db.List(ctx)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%6d  %-4g  %s  %s\n", e.ID, e.Version, e.Updated.Format(time.DateTime), e.Title)
	}
	_, err = os.Stdout.WriteString(sb.String())
	return err
}

func runStoreDelete(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	id, err := documentID(cmd)
	if err != nil {
		return err
	}
	db, err := env.Store()
	if err != nil {
		return err
	}
	if err := db.Delete(ctx, id); err != nil {
		return err
	}
	env.Log.Info("Document deleted", zap.Int64("id", id))
	return nil
}
