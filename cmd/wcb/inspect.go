package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"wcb/document"
	"wcb/state"
)

func runTree(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no SOURCE has been specified")
	}
	d, err := loadDocument(env, cmd.Args().Get(0))
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(document.Dump(d.TreeData))
	if errs := multierr.Errors(env.Engine.Validate(d)); len(errs) > 0 {
		fmt.Fprintf(&sb, "\n%d problem(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(&sb, "  - %v\n", e)
		}
	}
	_, err = os.Stdout.WriteString(sb.String())
	return err
}

func runSchema(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	reg := env.Registry

	what := cmd.Args().Get(0)
	var sb strings.Builder
	if what == "" || what == "elements" {
		sb.WriteString("Elements:\n")
		for _, tag := range reg.Tags() {
			marker := ""
			if reg.IsVoidElement(tag) {
				marker = " (void)"
			}
			fmt.Fprintf(&sb, "  %s%s\n", tag, marker)
		}
	}
	if what == "" || what == "properties" {
		sb.WriteString("Properties:\n")
		for _, key := range reg.PropertyKeys() {
			p, _ := reg.Property(key)
			fmt.Fprintf(&sb, "  %-24s %-24s %s\n", key, reg.Label(key), p.Format)
		}
	}
	if what == "" || what == "inputs" {
		sb.WriteString("Inputs:\n")
		for _, key := range reg.InputKeys() {
			in, _ := reg.Input(key)
			fmt.Fprintf(&sb, "  %-24s %-10s %v\n", key, in.Kind(), in.Base().Default)
		}
	}
	if sb.Len() == 0 {
		return fmt.Errorf("unknown schema table '%s', use one of elements, properties, inputs", what)
	}
	_, err := os.Stdout.WriteString(sb.String())
	return err
}
