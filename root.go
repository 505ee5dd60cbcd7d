package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/levmv/takeoutsort/config"
	"github.com/levmv/takeoutsort/runlog"
)

// options holds the persistent flags. Only flags the user set override
// the config file and environment.
type options struct {
	configPath string
	target     string
	output     string
	archives   string
	mode       string
	dryRun     bool
	verbose    bool
	yes        bool
}

// app is what every command shares once the config is loaded.
type app struct {
	opts       options
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	runID      string

	in  io.Reader
	out io.Writer
	err io.Writer
}

func newApp() *app {
	return &app{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

func newRootCommand() *cobra.Command {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:           "takeoutsort",
		Short:         "Recover capture dates and sort a photo export into dated folders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "sample" {
				return nil
			}
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.opts.configPath, "config", "c", "", "Configuration file path")
	pf.StringVarP(&a.opts.target, "target", "t", "", "Takeout folder ("+config.EnvTargetDir+")")
	pf.StringVarP(&a.opts.output, "output", "o", "", "Organized output folder ("+config.EnvOutputDir+", defaults to the target)")
	pf.StringVar(&a.opts.archives, "archives", "", "Folder holding the export archives ("+config.EnvArchiveDir+")")
	pf.StringVar(&a.opts.mode, "mode", "", "Organize mode: year or month")
	pf.BoolVarP(&a.opts.dryRun, "dry-run", "n", false, "Report what would happen without touching any file")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Print every action")
	pf.BoolVarP(&a.opts.yes, "yes", "y", false, "Accept every default without prompting")

	rootCmd.AddCommand(newRunCommand(a))
	rootCmd.AddCommand(newExtractCommand(a))
	rootCmd.AddCommand(newRecoverCommand(a))
	rootCmd.AddCommand(newRenameCommand(a))
	rootCmd.AddCommand(newOrganizeCommand(a))
	rootCmd.AddCommand(newCleanCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// load reads the config, applies flags and sets up both loggers.
func (a *app) load(cmd *cobra.Command) error {
	cfg, path, exists, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	if err := a.applyFlags(cmd, cfg); err != nil {
		return err
	}
	a.cfg = cfg
	if exists {
		a.configPath = path
	}

	InitLogger(a.opts.verbose)
	a.logger = newSlogger(a.err, cfg.Logging)
	a.runID = runlog.NewRunID()
	a.logger.Debug("config loaded", "file", a.configPath, "config", cfg.String(), "run", a.runID)
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("target") {
		cfg.TargetDir = a.opts.target
	}
	if f.Changed("output") {
		cfg.OutputDir = a.opts.output
	}
	if f.Changed("archives") {
		cfg.ArchiveDir = a.opts.archives
	}
	if f.Changed("mode") {
		cfg.Organize.Mode = a.opts.mode
	}
	if f.Changed("dry-run") {
		cfg.DryRun = a.opts.dryRun
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

func (a *app) logDir() string {
	return filepath.Join(a.cfg.TargetDir, runlog.Dir)
}

// lock takes the per-target run lock. Dry runs write nothing, so they
// neither take nor need it.
func (a *app) lock() (*runlog.Lock, error) {
	if a.cfg.DryRun {
		return nil, nil
	}
	return runlog.Acquire(a.logDir())
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "takeoutsort %s\n", version)
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sample",
		Short: "Print a sample config file with every default",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.SampleConfig())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			file := a.configPath
			if file == "" {
				file = "(none, defaults)"
			}
			fmt.Fprintf(w, "config file: %s\n", file)
			fmt.Fprintf(w, "target:      %s\n", a.cfg.TargetDir)
			fmt.Fprintf(w, "output:      %s\n", a.cfg.Output())
			fmt.Fprintf(w, "archives:    %s\n", a.cfg.ArchiveDir)
			fmt.Fprintf(w, "mode:        %s\n", a.cfg.Organize.Mode)
			fmt.Fprintf(w, "dry run:     %t\n", a.cfg.DryRun)
			fmt.Fprintf(w, "extensions:  %v\n", a.cfg.Extensions)
			fmt.Fprintf(w, "match rules: %v\n", a.cfg.Recover.MatchRules)
		},
	})
	return cmd
}
