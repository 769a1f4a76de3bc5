package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to a directory of Alpha Progression CSV exports (required)")
	userID := flag.Int("user", 1, "user id that owns the imported workouts")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -path /path/to/exports [-user N] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := cfg.Log.NewLogger(os.Stdout)

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	state, err := importer.OpenStateDB(cfg.Importer.StateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	tr := tracker.New(db, log, tracker.Options{
		SaveTimeout:    cfg.Sync.SaveTimeout,
		SaveRetries:    cfg.Sync.SaveRetries,
		RetryBackoff:   cfg.Sync.RetryBackoff,
		SetConcurrency: cfg.Sync.SetConcurrency,
	})
	provider := alpha.NewProvider(ingest.NewPipeline(tr, log), log)

	// Run import
	imp := importer.New(provider, state, *userID, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if derr := tr.Close(drainCtx); derr != nil {
		log.Warn("background cleanup incomplete", "error", derr)
	}

	printStats(log, stats)
	printFailures(log, state, *userID)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"workouts_inserted", stats.WorkoutsInserted,
		"sets_inserted", stats.SetsInserted,
	)
}

func printFailures(log *slog.Logger, state *importer.StateDB, userID int) {
	failed, err := state.Failures(userID)
	if err != nil {
		log.Warn("listing failed files", "error", err)
		return
	}
	for _, f := range failed {
		log.Warn("file not imported", "path", f.Path, "attempts", f.Attempts, "error", f.LastError)
	}
}
