package dispatch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/0xmhha/marker-watch/pkg/logger"
	"github.com/0xmhha/marker-watch/pkg/marker"
)

// controller implements the Controller interface using os/exec.
type controller struct {
	config  Config
	logger  logger.Logger
	history HistoryStore

	count atomic.Int64
}

// New creates a dispatch controller.
//
// Parameters:
//   - cfg: Dispatch configuration; Root is required
//   - history: Store for dispatch records; nil means no persistence
//   - log: Logger instance
//
// Returns:
//   - Configured Controller
//   - ErrNoRoot if cfg.Root is empty
func New(cfg Config, history HistoryStore, log logger.Logger) (Controller, error) {
	if cfg.Root == "" {
		return nil, ErrNoRoot
	}
	if history == nil {
		history = NewNoopHistory()
	}

	return &controller{
		config:  cfg,
		logger:  log,
		history: history,
	}, nil
}

// Instruction builds the fixed sentence passed to the external command
// for the file at relPath.
func Instruction(relPath string) string {
	return fmt.Sprintf("Search in file '%s' for '%s' and execute the associated instruction.",
		relPath, marker.Token)
}

// Dispatch implements Controller.Dispatch.
func (c *controller) Dispatch(relPath string) {
	seq := c.count.Add(1)
	log := c.logger.With("process", seq, "file", relPath)

	bin, err := c.resolveBinary()
	if err != nil {
		log.Error("cannot dispatch", "error", err,
			"hint", "install with: npm install -g @anthropic-ai/claude-code")
		return
	}

	instruction := Instruction(relPath)

	cmd := exec.Command(bin, "--dangerously-skip-permissions", "-p", instruction) // nolint:gosec
	cmd.Dir = c.config.Root
	cmd.Env = c.childEnv()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		log.Error("failed to launch claude", "binary", bin, "error", err)
		return
	}

	rec := Record{
		ID:          start.UnixNano(),
		RelPath:     relPath,
		Instruction: instruction,
		PID:         cmd.Process.Pid,
		StartedAt:   start,
	}
	if err := c.history.Put(rec); err != nil {
		log.Warn("failed to record dispatch", "error", err)
	}

	log.Info("claude launched", "pid", cmd.Process.Pid)

	// Detached on purpose: the child must be waited on to be reaped, but
	// the wait never blocks dispatching and its outcome is only logged.
	go c.reap(cmd, rec, log)
}

// Count implements Controller.Count.
func (c *controller) Count() int64 {
	return c.count.Load()
}

// reap waits for the child, logs its outcome, and completes the history
// record.
func (c *controller) reap(cmd *exec.Cmd, rec Record, log logger.Logger) {
	err := cmd.Wait()

	rec.Completed = true
	rec.Duration = time.Since(rec.StartedAt)
	rec.ExitCode = cmd.ProcessState.ExitCode()

	if putErr := c.history.Put(rec); putErr != nil {
		log.Warn("failed to record completion", "error", putErr)
	}

	if err != nil {
		log.Error("claude exited with error",
			"pid", rec.PID,
			"exit_code", rec.ExitCode,
			"duration", rec.Duration,
			"error", err)
		return
	}

	log.Info("claude completed",
		"pid", rec.PID,
		"exit_code", rec.ExitCode,
		"duration", rec.Duration)
}

// resolveBinary locates the claude executable.
//
// Order: explicit config, PATH lookup, well-known install directories.
func (c *controller) resolveBinary() (string, error) {
	if c.config.Binary != "" {
		return c.config.Binary, nil
	}

	if path, err := exec.LookPath("claude"); err == nil {
		return path, nil
	}

	for _, dir := range c.config.ExtraPaths {
		candidate := filepath.Join(dir, "claude")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", ErrBinaryNotFound
}

// childEnv returns the process environment with the extra paths appended
// to PATH, so the child can find its own helpers regardless of how the
// watcher was launched.
func (c *controller) childEnv() []string {
	if len(c.config.ExtraPaths) == 0 {
		return os.Environ()
	}

	extra := strings.Join(c.config.ExtraPaths, string(os.PathListSeparator))

	env := os.Environ()
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = kv + string(os.PathListSeparator) + extra
			return env
		}
	}

	return append(env, "PATH="+extra)
}
