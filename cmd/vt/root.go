package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/voltable/pkg/config"
	"github.com/vanderheijden86/voltable/pkg/version"
)

// Exit codes
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagData      string
	flagRecipe    string
	flagSort      string
	flagFilters   []string
	flagQuery     string
	flagVerbose   bool
	flagLogFile   string
)

// cfg is the resolved configuration. Set by PersistentPreRunE.
var cfg config.Config

// logger is the process logger. Set by PersistentPreRunE.
var logger = slog.Default()

var logFile *os.File

var rootCmd = &cobra.Command{
	Use:   "vt",
	Short: "Browse volunteer opportunities from a CSV file",
	Long: `vt loads a CSV of volunteer opportunities and shows it as a table you
can sort, filter and search, in the terminal or in a browser.

Without a subcommand vt opens the interactive table.`,
	Version:       version.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $VT_CONFIG_DIR or .vt)")
	pf.StringVar(&flagData, "data", "", "CSV file path or http(s) URL (default: nearest data.csv)")
	pf.StringVar(&flagRecipe, "recipe", "", `apply a named recipe (see "vt recipes")`)
	pf.StringVar(&flagSort, "sort", "", "sort by column, as column[:asc|desc]")
	pf.StringArrayVar(&flagFilters, "filter", nil, "keep rows matching column=value (repeatable)")
	pf.StringVar(&flagQuery, "query", "", "keep rows containing this text in any column")
	pf.BoolVar(&flagVerbose, "verbose", false, "log debug messages")
	pf.StringVar(&flagLogFile, "log-file", "", "append logs to this file")

	rootCmd.Flags().BoolVar(&flagWatch, "watch", false, "reload when the CSV file changes")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagKeys binds command-line flags to config keys so flags win over
// VT_* variables and config.yaml.
var flagKeys = map[string]string{
	"data":   config.KeyData,
	"recipe": config.KeyRecipe,
	"addr":   config.KeyAddr,
}

// setup loads the configuration and the logger for every command.
func setup(cmd *cobra.Command) error {
	dir := config.ResolveDir(flagConfigDir)
	v, err := config.Load(dir)
	if err != nil {
		return sysErr(err)
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return sysErr(fmt.Errorf("bind --%s: %w", name, err))
			}
		}
	}
	cfg = config.FromViper(v, dir)
	if flagVerbose {
		cfg.LogLevel = "debug"
	}

	var out io.Writer = os.Stderr
	if flagLogFile != "" {
		closeLogFile()
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return sysErr(fmt.Errorf("open log file: %w", err))
		}
		logFile = f
		out = f
	}
	setLogger(newLogger(out, cfg.LogLevel))
	logger.Debug("config loaded", "dir", dir, "data", cfg.Data, "recipe", cfg.Recipe)

	if dir == config.DefaultDir {
		if err := config.EnsureIgnored("", dir); err != nil {
			logger.Warn("could not update .gitignore", "err", err)
		}
	}
	return nil
}

// newLogger returns a text logger at level. Unknown levels mean info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func setLogger(l *slog.Logger) {
	logger = l
	slog.SetDefault(l)
}

func closeLogFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userErr marks err as caused by bad input: flags, recipes, formats.
func userErr(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// sysErr marks err as an environment failure: files, sockets, terminal.
func sysErr(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps a command error to the process exit code. Errors cobra
// raises itself (unknown flags, bad arguments) are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
