package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// LogDirectory returns the log directory shared by the daemon and the tray.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\WiFi hotspot helper\logs
//   - Unix: ~/.config/wifi-hotspot-helper/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "wifi-hotspot-helper-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "WiFi hotspot helper", "logs")
	}

	dir, err := ConfigDirectory()
	if err != nil {
		return filepath.Join(os.TempDir(), "wifi-hotspot-helper-logs")
	}
	return filepath.Join(dir, "logs")
}

// EnsureLogDirectory creates the log directory if it doesn't exist.
// Uses 0700 permissions to restrict log access to owner only.
func EnsureLogDirectory() error {
	return os.MkdirAll(LogDirectory(), 0700)
}

// DefaultLogFile returns the daemon log file path inside LogDirectory.
func DefaultLogFile() string {
	return filepath.Join(LogDirectory(), "hotspot-helper.log")
}
