package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
)

// TestRootCommands tests that every command is registered
func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	for _, name := range []string{"run", "status", "logs", "stop", "config", "adapters", "hotspot", "autostart", "completion"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected command %q, got %v (err %v)", name, cmd, err)
		}
	}

	for _, flag := range []string{"config", "verbose"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("--%s flag not found", flag)
		}
	}
}

// TestRunCmd tests the run command flags
func TestRunCmd(t *testing.T) {
	cmd := newRunCmd()
	if cmd.Use != "run" {
		t.Errorf("Expected Use='run', got '%s'", cmd.Use)
	}
	if cmd.RunE == nil {
		t.Error("RunE function is nil")
	}
	for _, flag := range []string{"tick", "log-file", "once", "background"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("--%s flag not found", flag)
		}
	}
}

func TestRunCmdRejectsBadTick(t *testing.T) {
	cmd := newRunCmd()
	cmd.SetArgs([]string{"--tick", "500ms"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--tick") {
		t.Errorf("Expected a --tick error, got %v", err)
	}
}

func TestWriteStatusData(t *testing.T) {
	on, off := true, false
	poll := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status *ipc.StatusData
		want   []string
	}{
		{
			name: "connected and on",
			status: &ipc.StatusData{
				Version: "v1.2.0", Uptime: "5m0s", AutoManage: true, HotspotName: "Home",
				Backend: "netsh", AdapterID: "{A}", Reachable: true, IPv4: "192.168.1.20",
				Desired: &on, Observed: &on, LastStatusPoll: &poll, Executor: "idle",
				LastOpResult: "enable (auto-manage) succeeded",
			},
			want: []string{
				"Hotspot Helper v1.2.0 (up 5m0s)",
				"Auto-manage: Yes",
				"Uplink: connected (192.168.1.20)",
				"Desired: on",
				"Hotspot: on",
				"Last Status Poll: 2026-03-01T08:30:00Z",
				"Last Operation: enable (auto-manage) succeeded",
			},
		},
		{
			name: "down with queued op",
			status: &ipc.StatusData{
				Backend: "mobile", ReachReason: "adapter is down", Desired: &off,
				Executor: "running+queued", InFlight: "enable (auto-manage)", Queued: "disable (auto-manage)",
				LastError: "netsh failed",
			},
			want: []string{
				"Adapter: (none)",
				"Uplink: down (adapter is down)",
				"Desired: off",
				"Hotspot: unknown",
				"In Flight: enable (auto-manage)",
				"Queued: disable (auto-manage)",
				"Last Error: netsh failed",
			},
		},
		{
			name:   "inactive",
			status: &ipc.StatusData{Executor: "idle"},
			want:   []string{"Auto-manage: No", "Uplink: unknown", "Desired: unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeStatusData(&buf, tt.status)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Expected %q in output:\n%s", want, out)
				}
			}
		})
	}
}

func TestWriteLogEntries(t *testing.T) {
	ts := time.Date(2026, 3, 1, 8, 30, 0, 0, time.Local)
	entries := []ipc.LogEntryData{
		{
			Timestamp: ts.Format(time.RFC3339Nano),
			Level:     "INFO",
			Stage:     "executor",
			Message:   "Hotspot operation started",
			Fields:    map[string]interface{}{"reason": "auto-manage", "desired": true},
		},
		{Timestamp: "not a time", Level: "WARN", Stage: "reconcile", Message: "Hotspot status query failed"},
	}

	var buf bytes.Buffer
	writeLogEntries(&buf, entries)

	want := "2026-03-01 08:30:00 [INFO] executor: Hotspot operation started desired=true reason=auto-manage\n" +
		"not a time [WARN] reconcile: Hotspot status query failed\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestOnOffUnknown(t *testing.T) {
	on, off := true, false
	tests := []struct {
		in   *bool
		want string
	}{
		{nil, "unknown"},
		{&on, "on"},
		{&off, "off"},
	}
	for _, tt := range tests {
		if got := onOffUnknown(tt.in); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
}
