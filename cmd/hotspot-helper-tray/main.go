// WiFi Hotspot Helper Tray - system tray companion for Windows.
//
// Talks to the running helper over its named pipe (\\.\pipe\wifi-hotspot-helper).
//
// Build for Windows:
//   GOOS=windows go build -ldflags "-H=windowsgui" ./cmd/hotspot-helper-tray
//
// Features:
//   - Hotspot and uplink state in the tray icon and tooltip
//   - Menu items: Start helper, Re-apply settings, Open logs folder, Stop helper, Quit
package main

func main() {
	runTray()
}
