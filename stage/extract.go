package stage

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/levmv/takeoutsort/runlog"
)

// Extractor unpacks one archive into dest.
type Extractor interface {
	Extract(ctx context.Context, archive, dest string) error
}

// TarExtractor runs the system tar.
type TarExtractor struct {
	// Binary defaults to "tar".
	Binary string
}

func (t TarExtractor) Extract(ctx context.Context, archive, dest string) error {
	bin := t.Binary
	if bin == "" {
		bin = "tar"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-xf", archive, "-C", dest)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", bin, err, msg)
		}
		return fmt.Errorf("%s: %w", bin, err)
	}
	return nil
}

// ZipExtractor unpacks .zip exports in process. Entries that would land
// outside dest are refused, and existing files are never replaced.
type ZipExtractor struct{}

func (ZipExtractor) Extract(ctx context.Context, archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	root := filepath.Clean(dest)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return fmt.Errorf("zip entry %q escapes destination", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		if err := unzipFile(f, target); err != nil {
			return fmt.Errorf("zip entry %q: %w", f.Name, err)
		}
	}
	return nil
}

func unzipFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	_ = os.Chtimes(target, time.Now(), f.Modified)
	return nil
}

// ArchiveExtractor picks tar or zip by file name.
type ArchiveExtractor struct {
	Tar Extractor
	Zip Extractor
}

func (a ArchiveExtractor) Extract(ctx context.Context, archive, dest string) error {
	if strings.EqualFold(filepath.Ext(archive), ".zip") {
		if a.Zip == nil {
			return ZipExtractor{}.Extract(ctx, archive, dest)
		}
		return a.Zip.Extract(ctx, archive, dest)
	}
	if a.Tar == nil {
		return TarExtractor{}.Extract(ctx, archive, dest)
	}
	return a.Tar.Extract(ctx, archive, dest)
}

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar", ".zip"}

// IsArchive reports whether name looks like an export archive.
func IsArchive(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Extract unpacks every archive directly inside Source into Root. Archives
// already recorded in logs/extracted_archives.txt are skipped.
type Extract struct {
	Env
	Source    string
	Extractor Extractor
}

// Archives lists the archives in Source, sorted by name.
func (e *Extract) Archives() ([]string, error) {
	entries, err := os.ReadDir(e.Source)
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && IsArchive(entry.Name()) && !strings.HasPrefix(entry.Name(), "._") {
			out = append(out, filepath.Join(e.Source, entry.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (e *Extract) Run(ctx context.Context) (*Report, error) {
	report := &Report{Stage: "extract", DryRun: e.DryRun, Started: time.Now()}
	logger := e.logger().With("stage", "extract", "source", e.Source)

	archives, err := e.Archives()
	if err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(e.dir(runlog.Dir), runlog.ExtractedArchives)
	seen, err := runlog.Messages(manifestPath, "DONE")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", manifestPath, err)
	}
	done := dirSet(seen)

	if !e.DryRun {
		if err := os.MkdirAll(e.Root, 0o755); err != nil {
			return nil, fmt.Errorf("create target: %w", err)
		}
	}
	log, err := e.openLog(runlog.Extract, "extract")
	if err != nil {
		return nil, err
	}
	defer log.Close()
	manifest, err := e.openLog(runlog.ExtractedArchives, "extract")
	if err != nil {
		return nil, err
	}
	defer manifest.Close()

	extractor := e.Extractor
	if extractor == nil {
		extractor = ArchiveExtractor{}
	}

	obs := e.observer()
	obs.Begin("extract", len(archives))
	defer obs.End()

	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return report.finish(log.Path()), err
		}
		obs.Step(archive)
		name := filepath.Base(archive)
		res := Result{Path: archive}

		if done[name] {
			log.Printf("SKIP", "%s already extracted", name)
			res.Status = StatusSkipped
			report.add(res)
			continue
		}
		if !e.DryRun {
			if err := extractor.Extract(ctx, archive, e.Root); err != nil {
				log.Printf("ERR", "%s: %v", name, err)
				logger.Warn("extract failed", "archive", name, "error", err)
				res.Status, res.Reason, res.Err = StatusFailed, ReasonToolFailed, err
				report.add(res)
				continue
			}
		}
		manifest.Printf("DONE", "%s", name)
		log.Printf(e.tag("EXTRACT"), "%s -> %s", name, e.Root)
		logger.Debug("extracted", "archive", name)
		res.Status, res.Dest = StatusProcessed, e.Root
		report.add(res)
	}

	return report.finish(log.Path(), manifest.Path()), nil
}
