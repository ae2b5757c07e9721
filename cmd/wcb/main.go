package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wcb/common"
	"wcb/config"
	"wcb/misc"
	"wcb/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}

	if err := env.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare engines: %w", err)
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if er := env.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close document store: %w", er))
	}

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, cli.Exit is not used.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "website component builder: document rendering, migration and storage",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Renders document to specified format",
				OnUsageError: usageErrorHandler,
				Action:       runRender,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to",
						Usage: "output `TYPE` (supported types: " + strings.Join(common.OutputFmtNames(), ", ") + "), configuration value is used when absent"},
					&cli.StringFlag{Name: "title", Usage: "document `TITLE`, expanded through title template"},
					&cli.Int64Flag{Name: "id", Usage: "render stored document with `ID` instead of SOURCE"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing destination"},
				},
				ArgsUsage: "[SOURCE] [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to persisted document (JSON) of any supported version

DESTINATION:
    file or directory, if directory or absent output file name is derived
    from the document title using output name template
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "migrate",
				Usage:        "Upgrades persisted document to current version",
				OnUsageError: usageErrorHandler,
				Action:       runMigrate,
				ArgsUsage:    "SOURCE [DESTINATION]",
			},
			{
				Name:         "tree",
				Usage:        "Prints element tree of document and reports problems found in it",
				OnUsageError: usageErrorHandler,
				Action:       runTree,
				ArgsUsage:    "SOURCE",
			},
			{
				Name:         "schema",
				Usage:        "Lists schema registry entries",
				OnUsageError: usageErrorHandler,
				Action:       runSchema,
				ArgsUsage:    "[elements|properties|inputs]",
			},
			{
				Name:            "store",
				Usage:           "Manages document database",
				HideHelpCommand: true,
				Commands: []*cli.Command{
					{
						Name:         "put",
						Usage:        "Stores document, replaces existing one when id is given",
						OnUsageError: usageErrorHandler,
						Action:       runStorePut,
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "id", Usage: "replace document with `ID`"},
							&cli.StringFlag{Name: "title", Usage: "document `TITLE` shown in listing"},
						},
						ArgsUsage: "SOURCE",
					},
					{
						Name:         "get",
						Usage:        "Writes stored document upgraded to current version",
						OnUsageError: usageErrorHandler,
						Action:       runStoreGet,
						ArgsUsage:    "ID [DESTINATION]",
					},
					{
						Name:         "list",
						Usage:        "Lists stored documents",
						OnUsageError: usageErrorHandler,
						Action:       runStoreList,
					},
					{
						Name:         "rm",
						Usage:        "Deletes stored document",
						OnUsageError: usageErrorHandler,
						Action:       runStoreDelete,
						ArgsUsage:    "ID",
					},
				},
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log may be not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
		kind string
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		kind = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	env.Log.Debug("Outputting configuration", zap.String("state", kind))
	return writeOutput(cmd.Args().Get(0), data, true)
}

// writeOutput writes data to file fname or to stdout when fname is empty.
func writeOutput(fname string, data []byte, overwrite bool) error {
	if len(fname) == 0 {
		_, err := os.Stdout.Write(data)
		return err
	}
	if !overwrite {
		if _, err := os.Stat(fname); err == nil {
			return fmt.Errorf("destination '%s' already exists", fname)
		}
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", fname, err)
	}
	return nil
}
