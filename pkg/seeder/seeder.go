// Package seeder periodically selects a random eligible markdown file
// under the watch root and appends the marker text to it, feeding work to
// the change detector.
//
// Eligibility rules: hidden entries are excluded (same filter as the
// watcher), only .md files qualify, names containing any configured
// substring are skipped, and files already containing the marker token or
// a configured skip word are left alone. Blank files are deleted instead
// of seeded when enabled.
package seeder

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/0xmhha/marker-watch/pkg/logger"
	"github.com/0xmhha/marker-watch/pkg/marker"
	"github.com/0xmhha/marker-watch/pkg/pathfilter"
)

// Config contains seeder configuration.
type Config struct {
	// Interval between seeding passes.
	Interval time.Duration

	// MarkerText is appended to the selected file. Must contain the
	// marker token or seeding would never trigger the watcher.
	MarkerText string

	// SkipNameParts excludes files whose name contains any entry.
	SkipNameParts []string

	// SkipWords excludes files whose content contains any entry as a
	// whole word.
	SkipWords []string

	// DeleteEmpty removes blank files instead of seeding them.
	DeleteEmpty bool
}

// Seeder marks random eligible files for processing.
type Seeder struct {
	root      string
	config    Config
	filter    *pathfilter.Filter
	logger    logger.Logger
	skipWords []*regexp.Regexp
	rng       *rand.Rand
}

// New creates a seeder over root.
//
// Returns ErrMissingToken if cfg.MarkerText does not contain the marker
// token, or an error if root is not a directory.
func New(root string, cfg Config, filter *pathfilter.Filter, log logger.Logger) (*Seeder, error) {
	if !marker.Contains(cfg.MarkerText) {
		return nil, ErrMissingToken
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}

	skipWords := make([]*regexp.Regexp, 0, len(cfg.SkipWords))
	for _, word := range cfg.SkipWords {
		re, compileErr := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
		if compileErr != nil {
			return nil, fmt.Errorf("failed to compile skip word %q: %w", word, compileErr)
		}
		skipWords = append(skipWords, re)
	}

	return &Seeder{
		root:      abs,
		config:    cfg,
		filter:    filter,
		logger:    log,
		skipWords: skipWords,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), // nolint:gosec
	}, nil
}

// Run performs a pass immediately and then every interval until ctx is
// cancelled.
func (s *Seeder) Run(ctx context.Context) error {
	s.logger.Info("seeder started",
		"root", s.root,
		"interval", s.config.Interval)

	s.RunOnce()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("seeder stopped")
			return nil
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce performs a single seeding pass.
//
// Candidates are visited in random order; the pass ends after the first
// successful action (mark or delete). Returns true if an action was taken.
func (s *Seeder) RunOnce() bool {
	files, err := s.collect()
	if err != nil {
		s.logger.Warn("failed to collect candidates", "error", err)
		return false
	}
	if len(files) == 0 {
		s.logger.Info("no candidate markdown files found")
		return false
	}

	s.rng.Shuffle(len(files), func(i, j int) {
		files[i], files[j] = files[j], files[i]
	})

	for _, path := range files {
		content, readErr := os.ReadFile(path) // nolint:gosec
		if readErr != nil {
			s.logger.Debug("cannot read candidate, skipping", "path", path, "error", readErr)
			continue
		}

		switch s.classify(string(content)) {
		case actionSkip:
			continue

		case actionDelete:
			s.logger.Info("deleting blank file", "path", path)
			if removeErr := os.Remove(path); removeErr != nil {
				s.logger.Warn("failed to delete file", "path", path, "error", removeErr)
				continue
			}
			return true

		case actionMark:
			s.logger.Info("seeding file", "path", path)
			if markErr := s.mark(path, string(content)); markErr != nil {
				s.logger.Warn("failed to seed file", "path", path, "error", markErr)
				continue
			}
			return true
		}
	}

	s.logger.Info("no file needed seeding")
	return false
}

type action int

const (
	actionSkip action = iota
	actionDelete
	actionMark
)

// classify decides what to do with a candidate based on its content.
func (s *Seeder) classify(content string) action {
	if strings.TrimSpace(content) == "" {
		if s.config.DeleteEmpty {
			return actionDelete
		}
		return actionSkip
	}

	if marker.Contains(content) {
		return actionSkip
	}

	for _, re := range s.skipWords {
		if re.MatchString(content) {
			return actionSkip
		}
	}

	return actionMark
}

// collect returns the eligible markdown files under the root.
func (s *Seeder) collect() ([]string, error) {
	var files []string

	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("error walking path", "path", path, "error", err)
			return nil // Skip but continue walking.
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if rel != "." && !s.filter.Accept(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.filter.Accept(rel) {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		for _, part := range s.config.SkipNameParts {
			if strings.Contains(d.Name(), part) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.root, err)
	}

	return files, nil
}

// mark appends the marker text to the file.
func (s *Seeder) mark(path, content string) error {
	updated := strings.TrimRight(content, " \t\r\n") + "\n\n" + s.config.MarkerText + "\n"

	if err := os.WriteFile(path, []byte(updated), 0600); err != nil { // nolint:gosec
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
