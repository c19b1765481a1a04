package cmdrunner

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Result is decoded process output.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string

	// CodePage is the code page the output was decoded with.
	CodePage int
}

// Combined returns stdout and stderr joined by a newline and trimmed.
func (r *Result) Combined() string {
	return strings.TrimSpace(r.Stdout + "\n" + r.Stderr)
}

// Console runs console programs through cmd.exe with an explicit chcp so the
// program's output encoding is known.
type Console struct {
	runner         Runner
	legacyCodePage int
}

// NewConsole creates a Console. legacyCodePage 0 asks the OS.
func NewConsole(runner Runner, legacyCodePage int) *Console {
	return &Console{runner: runner, legacyCodePage: legacyCodePage}
}

// Run executes program with the raw argument string. It runs under UTF-8
// first and re-runs once under the legacy code page if either stream looks
// garbled. The second run's result wins, exit code included.
func (c *Console) Run(ctx context.Context, timeout time.Duration, program, args string) (*Result, error) {
	res, err := c.runWithCodePage(ctx, timeout, program, args, CodePageUTF8)
	if err != nil {
		return nil, err
	}
	if !LooksGarbled(res.Stdout) && !LooksGarbled(res.Stderr) {
		return res, nil
	}

	cp := ResolveCodePage(c.legacyCodePage)
	if cp == CodePageUTF8 {
		return res, nil
	}
	return c.runWithCodePage(ctx, timeout, program, args, cp)
}

func (c *Console) runWithCodePage(ctx context.Context, timeout time.Duration, program, args string, cp int) (*Result, error) {
	cmdLine := fmt.Sprintf("/c chcp %d>nul & %s", cp, program)
	if args != "" {
		cmdLine += " " + args
	}

	out, err := c.runner.Run(ctx, Command{
		Path:    "cmd.exe",
		CmdLine: cmdLine,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		ExitCode: out.ExitCode,
		Stdout:   Decode(out.Stdout, cp),
		Stderr:   Decode(out.Stderr, cp),
		CodePage: cp,
	}, nil
}
