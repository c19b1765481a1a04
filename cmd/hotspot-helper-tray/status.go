package main

import (
	"fmt"
	"strings"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
)

// trayView is what the tray shows for one status poll.
type trayView struct {
	Tooltip    string
	StatusLine string
	HotspotOn  bool
	Running    bool
}

// viewFor builds the tray view from a status poll. A nil status means the
// helper could not be reached.
func viewFor(status *ipc.StatusData) trayView {
	if status == nil {
		return trayView{
			Tooltip:    "WiFi Hotspot Helper\nHelper: Not Running",
			StatusLine: "Status: Helper not running",
		}
	}

	on := status.Observed != nil && *status.Observed
	v := trayView{Running: true, HotspotOn: on}

	hotspot := "unknown"
	if status.Observed != nil {
		hotspot = "off"
		if on {
			hotspot = "on"
		}
	}

	uplink := "unknown"
	switch {
	case status.AdapterID == "":
		uplink = "no adapter bound"
	case status.Reachable:
		uplink = "connected (" + status.IPv4 + ")"
	case status.ReachReason != "":
		uplink = "down"
	}

	var tip strings.Builder
	fmt.Fprintf(&tip, "WiFi Hotspot Helper %s\n", status.Version)
	if status.HotspotName != "" {
		fmt.Fprintf(&tip, "Hotspot: %s (%s)\n", hotspot, status.HotspotName)
	} else {
		fmt.Fprintf(&tip, "Hotspot: %s\n", hotspot)
	}
	fmt.Fprintf(&tip, "Uplink: %s", uplink)
	if !status.AutoManage {
		tip.WriteString("\nAuto-manage: off")
	}
	if status.InFlight != "" {
		fmt.Fprintf(&tip, "\nBusy: %s", status.InFlight)
	}
	if status.LastError != "" {
		fmt.Fprintf(&tip, "\nLast Error: %s", truncate(status.LastError, 50))
	}
	v.Tooltip = tip.String()

	if status.AutoManage {
		v.StatusLine = fmt.Sprintf("Status: hotspot %s | uplink %s", hotspot, uplink)
	} else {
		v.StatusLine = fmt.Sprintf("Status: hotspot %s | auto-manage off", hotspot)
	}
	return v
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
