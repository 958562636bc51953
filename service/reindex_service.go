package service

import (
	"awi/core"
	"awi/database"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// LastRunKey is the app setting holding the summary of the latest reindex run.
const LastRunKey = "reindex.last_run"

// maxStoredOutput bounds the output kept in the last-run summary.
const maxStoredOutput = 8192

var unsafeFolderChars = regexp.MustCompile(`[;&|<>]`)

// Executor abstracts command execution for testability.
// exitCode is meaningful only when err is nil; err reports a process that
// could not be started or was killed by ctx.
type Executor interface {
	Run(ctx context.Context, name string, args []string) (output string, exitCode int, err error)
}

var commandContext = exec.CommandContext

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, name string, args []string) (string, int, error) {
	cmd := commandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimRight(string(out), "\r\n")
	if err == nil {
		return output, 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return output, -1, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, exitErr.ExitCode(), nil
	}
	return output, -1, err
}

// ReindexOptions describes how the indexer is reached.
type ReindexOptions struct {
	Command     []string // compose binary plus any leading args
	Service     string
	Interpreter string
	Script      string
	FitsRoot    string
	Timeout     time.Duration // zero disables
}

// ReindexOption configures the service.
type ReindexOption func(*ReindexService)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) ReindexOption {
	return func(s *ReindexService) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// ReindexService runs the external indexing script against a folder
type ReindexService struct {
	opts  ReindexOptions
	exec  Executor
	store *database.KeyValueStore

	runs     atomic.Uint64
	failures atomic.Uint64
}

// NewReindexService constructs a reindex service. store may be nil, in which
// case run summaries are not persisted.
func NewReindexService(opts ReindexOptions, store *database.KeyValueStore, options ...ReindexOption) (*ReindexService, error) {
	if len(opts.Command) == 0 || strings.TrimSpace(opts.Command[0]) == "" {
		return nil, errors.New("reindex command required")
	}
	if strings.TrimSpace(opts.Script) == "" {
		return nil, errors.New("reindex script required")
	}
	if opts.FitsRoot == "" {
		opts.FitsRoot = "/"
	}

	s := &ReindexService{
		opts:  opts,
		exec:  commandExecutor{},
		store: store,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// ReindexRun summarizes one invocation of the indexer.
type ReindexRun struct {
	RunID      string    `json:"run_id"`
	Folder     string    `json:"folder"`
	Force      bool      `json:"force"`
	Command    string    `json:"command"`
	Success    bool      `json:"success"`
	ExitCode   int       `json:"exit_code"`
	Output     string    `json:"output"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Reindex runs the indexer synchronously for folder (relative to the archive root).
// The returned run is non-nil whenever the process was started, including when
// it fails; failures are reported as *core.AppError.
func (s *ReindexService) Reindex(ctx context.Context, folder string, force bool) (*ReindexRun, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if unsafeFolderChars.MatchString(folder) {
		return nil, core.NewInvalidInputError("Invalid folder path")
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == ".." {
			return nil, core.NewInvalidInputError("Invalid folder path")
		}
	}

	name, args := s.commandArgs(folder, force)
	run := &ReindexRun{
		RunID:     uuid.NewString(),
		Folder:    folder,
		Force:     force,
		Command:   formatCommand(name, args),
		StartedAt: time.Now(),
	}

	runCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	log.Printf("Reindex %s started: %s", run.RunID, run.Command)
	output, exitCode, err := s.exec.Run(runCtx, name, args)
	run.Output = output
	run.ExitCode = exitCode
	run.DurationMS = time.Since(run.StartedAt).Milliseconds()
	run.Success = err == nil && exitCode == 0

	s.runs.Add(1)
	if !run.Success {
		s.failures.Add(1)
	}
	s.recordRun(context.WithoutCancel(ctx), run)

	if err != nil {
		msg := "Reindexing failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("Reindexing timed out after %s", s.opts.Timeout)
		}
		log.Printf("Reindex %s failed to complete: %v", run.RunID, err)
		run.ExitCode = -1
		return run, core.NewExternalProcessError(msg, output, -1, err)
	}
	if exitCode != 0 {
		log.Printf("Reindex %s exited with code %d", run.RunID, exitCode)
		return run, core.NewExternalProcessError("Reindexing failed", output, exitCode, nil)
	}

	log.Printf("Reindex %s completed in %dms", run.RunID, run.DurationMS)
	return run, nil
}

// commandArgs builds the argument vector; no shell is involved.
func (s *ReindexService) commandArgs(folder string, force bool) (string, []string) {
	target := path.Join(s.opts.FitsRoot, folder)

	args := append([]string{}, s.opts.Command[1:]...)
	args = append(args, "exec", "-T", s.opts.Service, s.opts.Interpreter, s.opts.Script, target)
	if force {
		args = append(args, "--force")
	}
	args = append(args, "--skip-cleanup")
	return s.opts.Command[0], args
}

func (s *ReindexService) recordRun(ctx context.Context, run *ReindexRun) {
	if s.store == nil {
		return
	}

	stored := *run
	if len(stored.Output) > maxStoredOutput {
		stored.Output = stored.Output[len(stored.Output)-maxStoredOutput:]
	}
	data, err := json.Marshal(stored)
	if err != nil {
		log.Printf("Failed to encode reindex run %s: %v", run.RunID, err)
		return
	}
	if err := s.store.Set(ctx, LastRunKey, string(data)); err != nil {
		log.Printf("Failed to persist reindex run %s: %v", run.RunID, err)
	}
}

// LastRun returns the summary of the latest run; ok is false when none was recorded.
func (s *ReindexService) LastRun(ctx context.Context) (run *ReindexRun, ok bool, err error) {
	if s.store == nil {
		return nil, false, nil
	}

	raw, ok, err := s.store.Get(ctx, LastRunKey)
	if err != nil {
		return nil, false, core.NewStorageError("failed to load last reindex run", err)
	}
	if !ok {
		return nil, false, nil
	}

	run = &ReindexRun{}
	if err := json.Unmarshal([]byte(raw), run); err != nil {
		return nil, false, core.NewStorageError("corrupt last reindex run", err)
	}
	return run, true, nil
}

// RunsTotal counts reindex invocations since startup.
func (s *ReindexService) RunsTotal() uint64 {
	return s.runs.Load()
}

// FailuresTotal counts failed reindex invocations since startup.
func (s *ReindexService) FailuresTotal() uint64 {
	return s.failures.Load()
}

func formatCommand(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
