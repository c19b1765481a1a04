// Package cmdrunner runs external console tools (netsh, powershell) and
// decodes their output, re-running once under the legacy OEM code page when
// UTF-8 output comes back garbled.
package cmdrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Command describes one process launch.
type Command struct {
	// Path is the program, resolved through PATH.
	Path string

	// Args are passed with the platform's standard quoting.
	Args []string

	// CmdLine, when non-empty, is passed verbatim after the program name
	// instead of Args. Only supported on Windows, where cmd.exe parses
	// its own command line.
	CmdLine string

	// Timeout bounds the whole run. Zero means no bound beyond ctx.
	Timeout time.Duration
}

// Output is the raw result of a finished process.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner executes commands. A non-zero exit code is reported in Output,
// not as an error; errors mean the process could not run to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Output, error)
}

var (
	// ErrTimeout is returned when a command exceeds its Timeout.
	ErrTimeout = errors.New("command timed out")

	// ErrRawCommandLine is returned by platforms that cannot honor Command.CmdLine.
	ErrRawCommandLine = errors.New("raw command lines are only supported on windows")
)

// waitDelay bounds how long Run waits for grandchildren holding the pipes
// after the direct child was killed.
const waitDelay = 2 * time.Second

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

// NewExecRunner creates a Runner that launches real processes without a console window.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the command and waits for it.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Output, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if err := configureCommand(cmd, c); err != nil {
		return nil, err
	}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return out, fmt.Errorf("%w after %s: %s", ErrTimeout, c.Timeout, c.Path)
		}
		return out, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("failed to run %s: %w", c.Path, err)
	}
	return out, nil
}
