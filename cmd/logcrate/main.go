package main

import (
	"errors"
	"os"
	"path"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/logcrate/internal/cli"
	"github.com/julianstephens/logcrate/internal/logcrate"
	"github.com/julianstephens/logcrate/internal/logger"
)

var (
	version = "logcrate v0.1.0"
)

// LogOpts are the logging flags every invocation shares.
type LogOpts struct {
	Level  string `help:"Logging level (debug, info, warn, error)" default:"info" envvar:"LOGCRATE_LOG_LEVEL"`
	Debug  bool   `help:"Enable debug logging (overrides --level)"                envvar:"LOGCRATE_DEBUG"`
	Stream bool   `help:"Log only to stdout/stderr, without the log file"         envvar:"LOGCRATE_LOG_STREAM"`
}

// CLI is the top-level command tree.
type CLI struct {
	Create cli.CreateCmd `cmd:"" help:"Create a new crate directory"`
	Append cli.AppendCmd `cmd:"" help:"Append a single record to a crate"`
	Read   cli.ReadCmd   `cmd:"" help:"Read a single record by id"`
	Range  cli.RangeCmd  `cmd:"" help:"Read a batch of records starting at an id"`
	Empty  cli.EmptyCmd  `cmd:"" help:"Report whether a crate holds any records"`
	Prune  cli.PruneCmd  `cmd:"" help:"Remove sealed segments below a minimum segment id"`

	Globals cli.Globals      `kong:"-"`
	LogOpts LogOpts          `         embed:"" prefix:"log-" help:"Logging options"`
	Version kong.VersionFlag `                                help:"Show version information" short:"V"`
}

func createLogger(opts LogOpts) (logger.Logger, error) {
	var level string
	if opts.Debug {
		level = "debug"
	} else {
		level = opts.Level
	}

	consoleLogger := logger.NewConsoleLogger(level)

	if opts.Stream {
		return consoleLogger, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	logDir := path.Join(homeDir, logcrate.DefaultAppDir, logcrate.DefaultLogDir)
	fileLogger, err := logger.NewFileLogger(
		logDir,
		logcrate.DefaultLogFileName,
		logcrate.DefaultLogMaxSizeMB,
		logcrate.DefaultLogMaxBackups,
	)
	if err != nil {
		return nil, err
	}

	return logger.NewMultiLogger(fileLogger, consoleLogger), nil
}

func main() {
	cliApp := &CLI{
		Globals: cli.Globals{Logger: logger.NoOpLogger{}},
	}
	ctx := kong.Parse(cliApp,
		kong.Name("logcrate"),
		kong.Description("An embeddable append-only log-structured key-value store"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	lg, err := createLogger(cliApp.LogOpts)
	if err != nil {
		ctx.FatalIfErrorf(err)
	}
	cliApp.Globals.Logger = lg

	defer func() {
		if c, ok := lg.(logger.Closeable); ok {
			_ = c.Close()
		}
	}()

	err = ctx.Run(&cliApp.Globals)
	if err != nil {
		if errors.Is(err, cli.ErrNotImplemented) {
			os.Exit(2)
		}
		ctx.FatalIfErrorf(err)
	}
}
