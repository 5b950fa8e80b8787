// Package runner executes external commands and reports their outcome as a
// models.Result. The Runner interface lets callers be tested without spawning
// real processes.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"isoresample/internal/models"
)

// waitDelay bounds how long Wait keeps copying output after the process is
// killed, in case a grandchild still holds the pipes open.
const waitDelay = 2 * time.Second

// ErrStart marks failures to launch the process at all (missing binary,
// permission denied). A process that runs and exits non-zero is not an error.
var ErrStart = errors.New("failed to start command")

// Runner executes an invocation and blocks until it exits
type Runner interface {
	Run(ctx context.Context, inv models.Invocation) (*models.Result, error)
}

// ExecRunner runs invocations with os/exec. Output is forwarded to Stdout and
// Stderr as it is produced and also captured into the returned Result.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner forwarding to the given writers.
// Nil writers discard that stream (it is still captured).
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{Stdout: stdout, Stderr: stderr}
}

// Run executes inv. The process is killed if ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, inv models.Invocation) (*models.Result, error) {
	if inv.Path == "" {
		return nil, fmt.Errorf("%w: empty command path", ErrStart)
	}

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, r.Stdout)
	cmd.Stderr = tee(&stderr, r.Stderr)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStart, inv.Path, err)
	}

	err := cmd.Wait()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to wait for %s: %w", inv.Path, err)
		}
	}

	return &models.Result{
		ExitCode: exitStatus(cmd.ProcessState),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// exitStatus reports a signal death as 128+signal, the way a shell does
func exitStatus(ps *os.ProcessState) int {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}

func tee(capture *bytes.Buffer, forward io.Writer) io.Writer {
	if forward == nil {
		return capture
	}
	return io.MultiWriter(capture, forward)
}
