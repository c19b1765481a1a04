package daemon

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogBufferGetRecent(t *testing.T) {
	lb := NewLogBuffer(3)

	if got := lb.GetRecent(10); got != nil {
		t.Errorf("Expected nil from an empty buffer, got %v", got)
	}

	for i := 0; i < 5; i++ {
		lb.Add("INFO", "reconcile", fmt.Sprintf("msg %d", i), nil)
	}

	if lb.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", lb.Len())
	}

	got := lb.GetRecent(10)
	want := []string{"msg 2", "msg 3", "msg 4"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Message != want[i] {
			t.Errorf("Entry %d: expected %q, got %q", i, want[i], got[i].Message)
		}
	}

	last := lb.GetRecent(1)
	if len(last) != 1 || last[0].Message != "msg 4" {
		t.Errorf("Expected the newest entry, got %v", last)
	}
}

func TestLogBufferClear(t *testing.T) {
	lb := NewLogBuffer(0)
	lb.Add("INFO", "executor", "hello", map[string]interface{}{"op_id": "x"})
	lb.Clear()
	if lb.Len() != 0 || lb.GetRecent(5) != nil {
		t.Error("Expected an empty buffer after Clear")
	}
}

func TestDaemonLoggerRoutesEntries(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "helper.log")
	var console bytes.Buffer

	logger, writer := CreateDaemonLogger(DaemonLogConfig{
		LogFile:    logFile,
		Console:    true,
		ConsoleOut: &console,
		BufferSize: 10,
	})

	logger.Stage("executor").Info().Str("reason", "auto-manage").Msg("Hotspot operation started")
	logger.Warn().Msg("Hotspot status query failed")
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries := writer.GetBuffer().GetRecent(10)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 buffered entries, got %d", len(entries))
	}
	if entries[0].Stage != "executor" || entries[0].Level != "INFO" {
		t.Errorf("Unexpected first entry %+v", entries[0])
	}
	if entries[0].Fields["reason"] != "auto-manage" {
		t.Errorf("Expected reason field, got %v", entries[0].Fields)
	}
	if entries[1].Stage != "daemon" || entries[1].Level != "WARN" {
		t.Errorf("Unexpected second entry %+v", entries[1])
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "[INFO] executor: Hotspot operation started reason=auto-manage") {
		t.Errorf("Unexpected log file contents:\n%s", text)
	}
	if !strings.Contains(text, "[WARN] daemon: Hotspot status query failed") {
		t.Errorf("Unexpected log file contents:\n%s", text)
	}
	if !strings.Contains(console.String(), "Hotspot operation started") {
		t.Errorf("Expected console output, got %q", console.String())
	}
}

func TestFormatFileLine(t *testing.T) {
	ts := time.Date(2026, 3, 1, 8, 30, 0, 0, time.Local)
	line := formatFileLine(ts, "INFO", "reconcile", "Adapter reachability changed",
		map[string]interface{}{"reachable": true, "ipv4": "10.0.0.2"})

	want := "2026-03-01 08:30:00.000 [INFO] reconcile: Adapter reachability changed ipv4=10.0.0.2 reachable=true\n"
	if line != want {
		t.Errorf("Expected %q, got %q", want, line)
	}
}
