package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/0xmhha/marker-watch/pkg/config"
	"github.com/0xmhha/marker-watch/pkg/detector"
	"github.com/0xmhha/marker-watch/pkg/dispatch"
	"github.com/0xmhha/marker-watch/pkg/logger"
	"github.com/0xmhha/marker-watch/pkg/pathfilter"
	"github.com/0xmhha/marker-watch/pkg/seeder"
	"github.com/0xmhha/marker-watch/pkg/watcher"
)

// watchCommand implements the watch command.
type watchCommand struct {
	root       string
	configPath string
	logLevel   string
}

// Execute runs the watch command until interrupted or the watch
// subsystem fails.
func (c *watchCommand) Execute() error {
	root, err := validateRoot(c.root)
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
		Format: cfg.Logging.Format,
	})

	printBanner(root)

	// History persistence is best-effort: a locked or unopenable database
	// must not stop the watch.
	history, err := dispatch.NewBoltHistory(cfg.Storage.HistoryPath)
	if err != nil {
		log.Warn("dispatch history disabled", "path", cfg.Storage.HistoryPath, "error", err)
		history = dispatch.NewNoopHistory()
	}
	defer func() {
		if closeErr := history.Close(); closeErr != nil {
			log.Warn("failed to close history store", "error", closeErr)
		}
	}()

	ctrl, err := dispatch.New(dispatch.Config{
		Root:       root,
		Binary:     cfg.Dispatch.Binary,
		ExtraPaths: cfg.Dispatch.ExtraPaths,
	}, history, log)
	if err != nil {
		return err
	}

	filter := pathfilter.New(".")

	w, err := watcher.New(watcher.Config{
		DebounceInterval: cfg.Watch.DebounceInterval,
		FailureThreshold: cfg.Watch.FailureThreshold,
	}, filter, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			log.Warn("failed to close watcher", "error", closeErr)
		}
	}()

	det, err := detector.New(detector.Config{
		Root:        root,
		MaxFileSize: cfg.Watch.MaxFileSize,
	}, w, filter, ctrl, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := det.Run(ctx)

	// Already-launched claude processes are deliberately left running.
	log.Info("shutting down", "dispatches", ctrl.Count())

	return runErr
}

// seedCommand implements the seed command.
type seedCommand struct {
	root       string
	configPath string
	interval   time.Duration
	once       bool
}

// Execute runs seeding passes until interrupted, or once with -once.
func (c *seedCommand) Execute() error {
	root, err := validateRoot(c.root)
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return err
	}
	if c.interval > 0 {
		cfg.Seed.Interval = c.interval
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
		Format: cfg.Logging.Format,
	})

	s, err := seeder.New(root, seeder.Config{
		Interval:      cfg.Seed.Interval,
		MarkerText:    cfg.Seed.MarkerText,
		SkipNameParts: cfg.Seed.SkipNameParts,
		SkipWords:     cfg.Seed.SkipWords,
		DeleteEmpty:   cfg.Seed.DeleteEmpty,
	}, pathfilter.New("."), log)
	if err != nil {
		return err
	}

	if c.once {
		s.RunOnce()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Run(ctx)
}

// historyCommand implements the history command.
type historyCommand struct {
	configPath string
	limit      int
}

// Execute lists recent dispatch records.
func (c *historyCommand) Execute() error {
	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return err
	}

	store, err := dispatch.NewBoltHistory(cfg.Storage.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history at %s: %w", cfg.Storage.HistoryPath, err)
	}
	defer func() {
		_ = store.Close()
	}()

	records, err := store.Recent(c.limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	printHistory(os.Stdout, records)
	return nil
}

// printHistory renders dispatch records as a table.
func printHistory(w io.Writer, records []dispatch.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No dispatches recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tFILE\tPID\tSTATUS\tDURATION")

	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.RelPath,
			rec.PID,
			formatStatus(rec),
			formatDuration(rec))
	}

	_ = tw.Flush()
}

// formatStatus renders a record's completion state.
func formatStatus(rec dispatch.Record) string {
	if !rec.Completed {
		return "running"
	}
	if rec.ExitCode == 0 {
		return "ok"
	}
	return fmt.Sprintf("exit %d", rec.ExitCode)
}

// formatDuration renders a record's runtime, or "-" while running.
func formatDuration(rec dispatch.Record) string {
	if !rec.Completed {
		return "-"
	}
	return rec.Duration.Round(time.Millisecond).String()
}

// validateRoot checks the watch root argument and returns its absolute
// path. Failures here are setup errors: the caller reports them and
// exits non-zero before any watching starts.
func validateRoot(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("watch root not specified")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("watch root does not exist: %s", abs)
		}
		return "", fmt.Errorf("failed to stat watch root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("watch root is not a directory: %s", abs)
	}

	return abs, nil
}

// printBanner prints a short startup summary when stdout is a terminal.
func printBanner(root string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	files, dirs := countEntries(root)

	fmt.Printf("marker-watch %s\n", version)
	fmt.Printf("Watching:  %s\n", root)
	fmt.Printf("Contents:  %d files, %d directories\n", files, dirs)
	fmt.Println("Press Ctrl+C to stop")
}

// countEntries counts files and subdirectories under root.
func countEntries(root string) (files, dirs int) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			dirs++
		} else {
			files++
		}
		return nil
	})

	return files, dirs
}
