// Package cmd provides the CLI commands for Remindly.
//
// Copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/config"
	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/output"
	"github.com/manav03panchal/remindly/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFile   string
	flagConfig string
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "remindly",
	Short: "A personal reminder manager with desktop notifications",
	Long: `Remindly keeps two kinds of reminders: a pool of daily reminders, one of
which is announced at a random time each day, and one-off reminders bound to
a calendar date, announced when that day starts.

Examples:
  remindly daily add "Drink a glass of water"
  remindly specific add 2025-03-14 "Pi day"
  remindly specific add --natural "next friday" "Submit timesheet"
  remindly daemon start
  remindly dashboard`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return err
		}

		initLogging(flagDebug)

		configPath := flagConfig
		if configPath == "" {
			configPath = config.DefaultPath()
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if flagFile != "" {
			cfg.DataFile = flagFile
			cfg.Sources["data_file"] = config.SourceFlag
		}
		config.Global = cfg

		ctx = runtime.New(runtime.Options{
			Config:    cfg,
			Format:    format,
			ColorMode: colorMode,
			Debug:     flagDebug,
		})
		return nil
	},
	RunE: runToday,
}

// initLogging keeps interactive runs quiet unless --debug is set. Warnings
// still reach stderr.
func initLogging(debug bool) {
	if debug {
		logging.InitDebug()
		return
	}
	cfg := logging.DefaultConfig()
	cfg.Level = slog.LevelWarn
	logging.Init(cfg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(err)
	}
	return err
}

// ExitCode returns the process exit status for an error from Execute.
func ExitCode(err error) int {
	return runtime.ExitCode(err)
}

func reportError(err error) {
	if ctx == nil {
		// Flag parsing failed before the runtime existed.
		ctx = runtime.New(runtime.Options{Format: output.FormatCLI})
	}
	ctx.ReportError(os.Stderr, err)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "",
		"Reminder file (default $XDG_DATA_HOME/remindly/reminders.json)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/remindly/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("remindly %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// isTerminal reports whether stderr is an interactive terminal.
func isTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
