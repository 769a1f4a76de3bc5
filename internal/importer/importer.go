// Package importer loads a directory of Alpha Progression CSV exports.
package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	WorkoutsInserted int
	SetsInserted     int
}

// Ingester stores the workouts of one export.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Importer walks an export directory and ingests every CSV file the state
// DB has not recorded as imported for the user. Failed files are recorded
// and retried on the next run.
type Importer struct {
	ingester Ingester
	state    *StateDB
	log      *slog.Logger
	userID   int
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. state may be nil, in which case every file is
// imported.
func New(ingester Ingester, state *StateDB, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{ingester: ingester, state: state, userID: userID, log: log, dryRun: dryRun}
}

// Import processes all .csv files under dir in lexical order. A file that
// fails to parse or store is counted and skipped; context cancellation stops
// the run.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := findExports(dir)
	if err != nil {
		return &imp.stats, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, dir, path); err != nil {
			imp.stats.FilesErrored++
			imp.log.Error("failed to import file", "path", path, "error", err)
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, dir, path string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	rec := FileRecord{Path: rel, UserID: imp.userID, Size: info.Size(), Hash: hash}

	if imp.state != nil {
		prev, found, err := imp.state.Lookup(rel, imp.userID)
		if err != nil {
			return err
		}
		if found && prev.Imported(rec.Size, rec.Hash) {
			imp.stats.FilesSkipped++
			imp.log.Debug("skipping already imported file", "path", rel)
			return nil
		}
		if found && prev.Status == statusFailed {
			imp.log.Info("retrying failed file", "path", rel, "attempts", prev.Attempts, "last_error", prev.LastError)
		}
	}

	if imp.dryRun {
		return imp.parseFile(path, rel)
	}

	result, err := imp.ingestFile(ctx, path)
	if result != nil {
		imp.stats.WorkoutsInserted += result.WorkoutsInserted
		imp.stats.SetsInserted += result.SetsInserted
	}
	if err != nil {
		if imp.state != nil && ctx.Err() == nil {
			if serr := imp.state.MarkFailed(rec, err); serr != nil {
				imp.log.Warn("recording failed import", "path", rel, "error", serr)
			}
		}
		return err
	}
	imp.stats.FilesProcessed++
	imp.log.Info("imported file", "path", rel,
		"workouts", result.WorkoutsInserted, "sets", result.SetsInserted)

	if imp.state == nil {
		return nil
	}
	rec.Workouts = result.WorkoutsInserted
	rec.Sets = result.SetsInserted
	return imp.state.MarkImported(rec)
}

func (imp *Importer) ingestFile(ctx context.Context, path string) (*ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	defer f.Close()
	return imp.ingester.Ingest(ctx, f, imp.userID)
}

// parseFile counts what a file would store without storing it.
func (imp *Importer) parseFile(path, rel string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	defer f.Close()

	drafts, err := alpha.ParseDrafts(f)
	if err != nil {
		return err
	}
	imp.stats.FilesProcessed++
	for _, d := range drafts {
		imp.stats.WorkoutsInserted++
		for _, ex := range d.Exercises {
			imp.stats.SetsInserted += len(ex.Sets)
		}
	}
	imp.log.Info("parsed file (dry run)", "path", rel, "workouts", len(drafts))
	return nil
}

// findExports lists the .csv files below dir, sorted by path.
func findExports(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
