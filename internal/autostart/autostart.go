// Package autostart registers the helper to start when the user logs on.
package autostart

import (
	"errors"
	"strings"
)

// ValueName is the name the helper registers under.
const ValueName = "WiFi_hotspot_helper"

// ErrUnsupported is returned on platforms without a logon start mechanism.
var ErrUnsupported = errors.New("autostart is not supported on this platform")

// Manager reads and changes the logon registration.
type Manager interface {
	// IsEnabled reports whether a registration exists.
	IsEnabled() (bool, error)

	// Command returns the registered command line, empty when disabled.
	Command() (string, error)

	// Enable registers execPath with args, replacing any previous entry.
	Enable(execPath string, args ...string) error

	// Disable removes the registration. Removing a missing entry succeeds.
	Disable() error
}

// CommandLine quotes execPath and appends args the way the Run key
// expects: the executable in double quotes, arguments separated by spaces.
func CommandLine(execPath string, args ...string) string {
	var b strings.Builder
	b.WriteString(`"` + strings.Trim(execPath, `"`) + `"`)
	for _, a := range args {
		b.WriteByte(' ')
		if strings.ContainsAny(a, " \t") {
			b.WriteString(`"` + a + `"`)
		} else {
			b.WriteString(a)
		}
	}
	return b.String()
}

// Executable extracts the executable path from a registered command line.
func Executable(cmdline string) string {
	cmdline = strings.TrimSpace(cmdline)
	if strings.HasPrefix(cmdline, `"`) {
		if end := strings.Index(cmdline[1:], `"`); end >= 0 {
			return cmdline[1 : end+1]
		}
		return strings.Trim(cmdline, `"`)
	}
	if i := strings.IndexAny(cmdline, " \t"); i >= 0 {
		return cmdline[:i]
	}
	return cmdline
}
