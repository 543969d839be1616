// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package process runs external converters against temporary input files
// and locates their executables on PATH.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tempPrefix names every temporary input written by a Runner.
const tempPrefix = "mdc-"

// Command is one program invocation.
type Command struct {
	Name string
	Args []string
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Executor abstracts process execution for testing. Run returns the exit
// code of a process that ran to completion, or an error when the process
// could not be started at all.
type Executor interface {
	Run(ctx context.Context, name string, args []string, stderr io.Writer) (exitCode int, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, name string, args []string, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = stderr
	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// DefaultExecutor runs real processes.
var DefaultExecutor Executor = osExecutor{}

// StartError reports a process that could not be started, typically
// because the executable does not exist.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExitError reports a process that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Runner executes commands whose input is a temporary file it owns.
type Runner struct {
	exec    Executor
	tempDir string
	logger  *zap.Logger
}

// NewRunner creates a Runner. An empty tempDir uses the system temp
// directory; a nil logger discards diagnostics.
func NewRunner(exec Executor, tempDir string, logger *zap.Logger) *Runner {
	if exec == nil {
		exec = DefaultExecutor
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{exec: exec, tempDir: tempDir, logger: logger}
}

// TempName returns a fresh path for a temporary file with the given
// extension. Names embed a random UUID so concurrent conversions never
// collide.
func (r *Runner) TempName(ext string) string {
	return filepath.Join(r.tempDir, tempPrefix+uuid.NewString()+ext)
}

// RunWithTempFile writes content to a new temporary file, asks build for
// the command that consumes it, and runs that command. The temporary file
// is removed on every exit path; removal failures are logged and
// otherwise ignored.
func (r *Runner) RunWithTempFile(ctx context.Context, content, ext string, build func(tmpPath string) Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmpPath := r.TempName(ext)
	defer r.remove(tmpPath)

	if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing temporary input %s: %w", tmpPath, err)
	}

	return r.Run(ctx, build(tmpPath))
}

// Run executes cmd, capturing stderr. It returns a *StartError when the
// process cannot start and an *ExitError on a non-zero exit. If ctx was
// cancelled while the process ran, ctx.Err() is returned instead.
func (r *Runner) Run(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Debug("running command", zap.String("command", cmd.String()))

	var stderr bytes.Buffer
	code, err := r.exec.Run(ctx, cmd.Name, cmd.Args, &stderr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &StartError{Command: cmd.Name, Err: err}
	}
	if code != 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ExitError{
			Command: cmd.Name,
			Code:    code,
			Stderr:  strings.TrimSpace(stderr.String()),
		}
	}
	return nil
}

func (r *Runner) remove(path string) {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("could not remove temporary file", zap.String("path", path), zap.Error(err))
	}
}
