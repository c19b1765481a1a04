package main

import (
	"strings"
	"testing"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
)

func TestViewFor(t *testing.T) {
	on, off := true, false

	tests := []struct {
		name        string
		status      *ipc.StatusData
		wantOn      bool
		wantRunning bool
		wantLine    string
		wantTip     []string
	}{
		{
			name:     "not running",
			status:   nil,
			wantLine: "Status: Helper not running",
			wantTip:  []string{"Not Running"},
		},
		{
			name: "on and connected",
			status: &ipc.StatusData{
				Version: "v1.2.0", AutoManage: true, HotspotName: "Home", AdapterID: "{A}",
				Reachable: true, IPv4: "192.168.1.20", Observed: &on,
			},
			wantOn:      true,
			wantRunning: true,
			wantLine:    "Status: hotspot on | uplink connected (192.168.1.20)",
			wantTip:     []string{"Hotspot: on (Home)", "Uplink: connected (192.168.1.20)"},
		},
		{
			name: "off and down",
			status: &ipc.StatusData{
				AutoManage: true, AdapterID: "{A}", ReachReason: "adapter is down", Observed: &off,
				LastError: "netsh failed",
			},
			wantRunning: true,
			wantLine:    "Status: hotspot off | uplink down",
			wantTip:     []string{"Hotspot: off", "Last Error: netsh failed"},
		},
		{
			name:        "auto-manage off",
			status:      &ipc.StatusData{},
			wantRunning: true,
			wantLine:    "Status: hotspot unknown | auto-manage off",
			wantTip:     []string{"Uplink: no adapter bound", "Auto-manage: off"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viewFor(tt.status)
			if v.HotspotOn != tt.wantOn {
				t.Errorf("Expected HotspotOn=%v, got %v", tt.wantOn, v.HotspotOn)
			}
			if v.Running != tt.wantRunning {
				t.Errorf("Expected Running=%v, got %v", tt.wantRunning, v.Running)
			}
			if v.StatusLine != tt.wantLine {
				t.Errorf("Expected %q, got %q", tt.wantLine, v.StatusLine)
			}
			for _, want := range tt.wantTip {
				if !strings.Contains(v.Tooltip, want) {
					t.Errorf("Expected %q in tooltip:\n%s", want, v.Tooltip)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected short, got %s", got)
	}
	if got := truncate("a very long error message", 10); got != "a very ..." {
		t.Errorf("Expected 'a very ...', got %q", got)
	}
}
