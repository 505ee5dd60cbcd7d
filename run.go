package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// requirement is an external program a command cannot work without.
type requirement struct {
	name    string
	command string
}

// checkTools fails with every missing program named at once.
func checkTools(reqs []requirement) error {
	var missing []string
	for _, r := range reqs {
		if _, err := exec.LookPath(r.command); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s)", r.name, r.command))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}

func extractTools() []requirement {
	return []requirement{{"tar", "tar"}}
}

func (a *app) metadataTools() []requirement {
	return []requirement{{"exiftool", a.exiftoolBinary()}}
}

// plan is what the interactive run settled on.
type plan struct {
	extract  bool
	organize bool
	cleanup  bool
}

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every stage in order, asking what to do",
		Long: `Run asks a few questions and then runs the stages in order:
extract (optional), recover, rename, organize (optional), clean (optional).
Config file and flag values are offered as defaults; --yes accepts them all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(a.in, a.err, a.opts.yes)
			pl, err := a.ask(p)
			if err != nil {
				return err
			}
			return a.runAll(cmd.Context(), p, pl)
		},
	}
}

// ask fills the directories and choices of an interactive run into a.cfg.
func (a *app) ask(p *prompter) (plan, error) {
	var pl plan
	var err error
	cfg := a.cfg

	if pl.extract, err = p.YesNo("Extract .tar/.tgz/.zip archives first?", cfg.ArchiveDir != ""); err != nil {
		return pl, err
	}
	if pl.extract {
		if cfg.ArchiveDir, err = p.Path("Folder containing the archives", cfg.ArchiveDir); err != nil {
			return pl, err
		}
		if cfg.TargetDir, err = p.Path("Folder to extract the export into", cfg.TargetDir); err != nil {
			return pl, err
		}
	} else if cfg.TargetDir, err = p.Path("Export folder", cfg.TargetDir); err != nil {
		return pl, err
	}
	if cfg.OutputDir, err = p.Path("Where to save organized files", cfg.Output()); err != nil {
		return pl, err
	}
	if pl.organize, err = p.YesNo("Organize into year or year/month folders?", true); err != nil {
		return pl, err
	}
	if pl.organize {
		if cfg.Organize.Mode, err = p.Mode(cfg.Organize.Mode); err != nil {
			return pl, err
		}
	}
	if pl.cleanup, err = p.YesNo("Remove empty folders under the export folder afterwards?", true); err != nil {
		return pl, err
	}

	if err := cfg.Normalize(); err != nil {
		return pl, err
	}
	if pl.extract {
		if err := a.requireArchives(); err != nil {
			return pl, err
		}
	}
	return pl, cfg.Validate()
}

func (a *app) runAll(ctx context.Context, p *prompter, pl plan) error {
	reqs := a.metadataTools()
	if pl.extract {
		reqs = append(reqs, extractTools()...)
		if err := a.ensureTarget(); err != nil {
			return err
		}
	}
	if err := checkTools(reqs); err != nil {
		return err
	}

	err := a.withTarget(func(stats *Statistics) error {
		if pl.extract {
			if err := a.runExtract(ctx, stats); err != nil {
				return err
			}
		}

		tagger := a.newTagger()
		defer tagger.Close()
		if err := a.runRecover(ctx, stats, tagger); err != nil {
			return err
		}
		if err := a.runRename(ctx, stats, tagger); err != nil {
			return err
		}
		if pl.organize {
			if err := a.runOrganize(ctx, stats); err != nil {
				return err
			}
		}
		if pl.cleanup {
			// the run question already asked
			if err := a.runCleanup(ctx, stats, p, false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if pl.organize {
		fmt.Fprintf(a.err, "All done. Organized files are in %s\n", a.cfg.Output())
	} else {
		fmt.Fprintf(a.err, "All done. Files were renamed in place under %s\n", a.cfg.TargetDir)
	}
	return nil
}
