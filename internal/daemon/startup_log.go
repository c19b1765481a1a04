package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
)

// StartupLogPath returns the path to the startup log. It captures errors
// that happen before the daemon logger and IPC are up, which matters when
// the helper was launched in the background by the tray or at logon.
func StartupLogPath() string {
	return filepath.Join(config.LogDirectory(), "helper-startup.log")
}

// WriteStartupLog appends a message to the startup log.
func WriteStartupLog(format string, args ...interface{}) {
	logPath := StartupLogPath()

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(f, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
}

// ClearStartupLog truncates the startup log after a successful start.
func ClearStartupLog() {
	_ = os.Truncate(StartupLogPath(), 0)
}
