package cmdrunner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// fakeRunner returns canned outputs in order and records every command.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []Command
	outputs []*Output
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) (*Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.outputs) == 0 {
		return &Output{}, nil
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	return out, nil
}

func TestConsoleRunUTF8(t *testing.T) {
	runner := &fakeRunner{outputs: []*Output{{Stdout: []byte("Status : Started\r\n")}}}
	console := NewConsole(runner, 936)

	res, err := console.Run(context.Background(), 15*time.Second, "netsh.exe", "wlan show hostednetwork")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(runner.calls))
	}

	call := runner.calls[0]
	if call.Path != "cmd.exe" {
		t.Errorf("Expected cmd.exe, got %s", call.Path)
	}
	if call.CmdLine != "/c chcp 65001>nul & netsh.exe wlan show hostednetwork" {
		t.Errorf("Unexpected command line %q", call.CmdLine)
	}
	if call.Timeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %s", call.Timeout)
	}
	if res.CodePage != CodePageUTF8 {
		t.Errorf("Expected UTF-8 code page, got %d", res.CodePage)
	}
	if res.Combined() != "Status : Started" {
		t.Errorf("Unexpected combined output %q", res.Combined())
	}
}

func TestConsoleRunLegacyFallback(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("状态 : 已启动"))
	if err != nil {
		t.Fatalf("Failed to encode GBK: %v", err)
	}

	runner := &fakeRunner{outputs: []*Output{
		{Stdout: []byte{0xd7, 0xb4, 0xcc}}, // not valid UTF-8
		{ExitCode: 1, Stdout: gbk},
	}}
	console := NewConsole(runner, 936)

	res, err := console.Run(context.Background(), time.Second, "netsh.exe", "wlan start hostednetwork")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("Expected a re-run, got %d calls", len(runner.calls))
	}
	if !strings.HasPrefix(runner.calls[1].CmdLine, "/c chcp 936>nul & netsh.exe ") {
		t.Errorf("Unexpected fallback command line %q", runner.calls[1].CmdLine)
	}
	if res.Stdout != "状态 : 已启动" {
		t.Errorf("Expected decoded GBK output, got %q", res.Stdout)
	}
	if res.ExitCode != 1 {
		t.Errorf("Expected exit code from the second run, got %d", res.ExitCode)
	}
}

func TestConsoleRunError(t *testing.T) {
	runner := &fakeRunner{err: ErrTimeout}
	console := NewConsole(runner, 0)

	_, err := console.Run(context.Background(), time.Second, "netsh.exe", "")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if runner.calls[0].CmdLine != "/c chcp 65001>nul & netsh.exe" {
		t.Errorf("Unexpected command line %q", runner.calls[0].CmdLine)
	}
}
