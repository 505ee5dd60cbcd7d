package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/levmv/takeoutsort/config"
	"github.com/levmv/takeoutsort/metadata"
	"github.com/levmv/takeoutsort/stage"
)

// withTarget checks the target, holds the run lock around fn and prints
// the summary afterwards, also when fn fails halfway.
func (a *app) withTarget(fn func(stats *Statistics) error) error {
	if err := a.cfg.RequireTarget(); err != nil {
		return err
	}
	lock, err := a.lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	stats := NewStatistics()
	err = fn(stats)
	if len(stats.Reports) > 0 {
		stats.PrintSummary(a.err, a.summaryLogDir())
	}
	return err
}

func (a *app) summaryLogDir() string {
	if a.cfg.DryRun {
		return ""
	}
	return a.logDir()
}

// record prints and keeps a stage report. A stage error still carries the
// partial report of the files handled before it.
func (a *app) record(stats *Statistics, r *stage.Report, err error) error {
	if r != nil {
		printReport(r, a.cfg.TargetDir)
		stats.Add(r)
	}
	return err
}

func (a *app) exiftoolBinary() string {
	if a.cfg.ExifTool.Path != "" {
		return a.cfg.ExifTool.Path
	}
	return "exiftool"
}

// ensureTarget creates the extraction target. A dry run cannot, so there
// the folder has to exist already.
func (a *app) ensureTarget() error {
	if a.cfg.TargetDir == "" || a.cfg.DryRun {
		return nil
	}
	return os.MkdirAll(a.cfg.TargetDir, 0o755)
}

func (a *app) requireArchives() error {
	if a.cfg.ArchiveDir == "" {
		return &config.Error{Code: config.ErrCodeInvalid, Path: "archive_dir", Err: fmt.Errorf("not set (use --archives or %s)", config.EnvArchiveDir)}
	}
	return nil
}

func (a *app) runExtract(ctx context.Context, stats *Statistics) error {
	log.Info("Extracting archives from %s into %s", a.cfg.ArchiveDir, a.cfg.TargetDir)
	r, err := a.extractStage().Run(ctx)
	return a.record(stats, r, err)
}

func (a *app) runRecover(ctx context.Context, stats *Statistics, tagger metadata.Tagger) error {
	s, err := a.recoverStage(tagger)
	if err != nil {
		return err
	}
	log.Info("Recovering dates from sidecars under %s", a.cfg.TargetDir)
	r, err := s.Run(ctx)
	return a.record(stats, r, err)
}

func (a *app) runRename(ctx context.Context, stats *Statistics, reader metadata.Reader) error {
	s, err := a.renameStage(reader)
	if err != nil {
		return err
	}
	log.Info("Renaming files under %s", a.cfg.TargetDir)
	r, err := s.Run(ctx)
	return a.record(stats, r, err)
}

func (a *app) runOrganize(ctx context.Context, stats *Statistics) error {
	log.Info("Organizing into %s by %s", a.cfg.Output(), a.cfg.Organize.Mode)
	r, err := a.organizeStage().Run(ctx)
	return a.record(stats, r, err)
}

// runCleanup asks before removing anything unless confirm is false.
func (a *app) runCleanup(ctx context.Context, stats *Statistics, p *prompter, confirm bool) error {
	s := a.cleanupStage()
	plan, err := s.Plan()
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		log.Info("No empty folders under %s", a.cfg.TargetDir)
		return nil
	}
	if confirm && !a.cfg.DryRun {
		ok, err := p.YesNo(fmt.Sprintf("Remove %d empty folders under %s?", len(plan), a.cfg.TargetDir), true)
		if err != nil {
			return err
		}
		if !ok {
			log.Warn("Cleanup skipped")
			return nil
		}
	}
	r, err := s.Run(ctx)
	return a.record(stats, r, err)
}

func newExtractCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Unpack the export archives into the target folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireArchives(); err != nil {
				return err
			}
			if err := checkTools(extractTools()); err != nil {
				return err
			}
			if err := a.ensureTarget(); err != nil {
				return err
			}
			return a.withTarget(func(stats *Statistics) error {
				return a.runExtract(cmd.Context(), stats)
			})
		},
	}
}

func newRecoverCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Write sidecar capture times into the media files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkTools(a.metadataTools()); err != nil {
				return err
			}
			return a.withTarget(func(stats *Statistics) error {
				tagger := a.newTagger()
				defer tagger.Close()
				return a.runRecover(cmd.Context(), stats, tagger)
			})
		},
	}
}

func newRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename",
		Short: "Give every file a YYYY-MM-DD_HH-MM-SS name from its metadata or file name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkTools(a.metadataTools()); err != nil {
				return err
			}
			return a.withTarget(func(stats *Statistics) error {
				tagger := a.newTagger()
				defer tagger.Close()
				return a.runRename(cmd.Context(), stats, tagger)
			})
		},
	}
}

func newOrganizeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "organize",
		Short: "Move canonically named files into year or year/month folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTarget(func(stats *Statistics) error {
				return a.runOrganize(cmd.Context(), stats)
			})
		},
	}
}

func newCleanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove folders left empty under the target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(a.in, a.err, a.opts.yes)
			return a.withTarget(func(stats *Statistics) error {
				return a.runCleanup(cmd.Context(), stats, p, true)
			})
		},
	}
}
