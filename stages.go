package main

import (
	"github.com/levmv/takeoutsort/metadata"
	"github.com/levmv/takeoutsort/naming"
	"github.com/levmv/takeoutsort/sidecar"
	"github.com/levmv/takeoutsort/stage"
)

// Builders turn the loaded config into stages.

func (a *app) env() stage.Env {
	return stage.Env{
		Root:     a.cfg.TargetDir,
		DryRun:   a.cfg.DryRun,
		RunID:    a.runID,
		Logger:   a.logger,
		Observer: newProgress(a.err, a.opts.verbose),
	}
}

// newTagger starts nothing: the exiftool process is spawned on first use.
func (a *app) newTagger() *metadata.Service {
	return metadata.NewService(metadata.NewExifTool(a.cfg.ExifTool.Path))
}

func (a *app) extractStage() *stage.Extract {
	return &stage.Extract{Env: a.env(), Source: a.cfg.ArchiveDir, Extractor: stage.ArchiveExtractor{}}
}

func (a *app) recoverStage(tagger metadata.Tagger) (*stage.Recover, error) {
	rules, err := sidecar.Rules(a.cfg.Recover.MatchRules, a.cfg.Recover.EditedSuffixes)
	if err != nil {
		return nil, err
	}
	return &stage.Recover{
		Env:             a.env(),
		Tagger:          tagger,
		Extensions:      a.cfg.ExtensionSet(),
		Rules:           rules,
		FixExtensions:   a.cfg.Recover.FixExtensions,
		IsolateFailures: a.cfg.Recover.IsolateFailures,
	}, nil
}

func (a *app) renameStage(reader metadata.Reader) (*stage.Rename, error) {
	var user []naming.Pattern
	for _, p := range a.cfg.Rename.Patterns {
		compiled, err := naming.Compile(p.Name, p.Regexp)
		if err != nil {
			return nil, err
		}
		user = append(user, compiled)
	}
	return &stage.Rename{
		Env:             a.env(),
		Reader:          reader,
		Extensions:      a.cfg.ExtensionSet(),
		Inferrer:        naming.NewInferrer(user...),
		SubsecondDigits: a.cfg.Rename.SubsecondDigits,
	}, nil
}

func (a *app) organizeStage() *stage.Organize {
	return &stage.Organize{
		Env:        a.env(),
		Extensions: a.cfg.ExtensionSet(),
		Output:     a.cfg.Output(),
		Mode:       a.cfg.Organize.Mode,
	}
}

func (a *app) cleanupStage() *stage.Cleanup {
	return &stage.Cleanup{Env: a.env(), Placeholders: a.cfg.Cleanup.Placeholders}
}
