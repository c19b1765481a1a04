//go:build windows

package elevation

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process token is elevated.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// RunElevated executes a command with UAC elevation using the "runas"
// verb. The window of the new process is hidden.
func RunElevated(executable string, args string, workingDir string) error {
	verbPtr, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return fmt.Errorf("failed to convert verb: %w", err)
	}

	filePtr, err := windows.UTF16PtrFromString(executable)
	if err != nil {
		return fmt.Errorf("failed to convert executable path: %w", err)
	}

	paramsPtr, err := windows.UTF16PtrFromString(args)
	if err != nil {
		return fmt.Errorf("failed to convert parameters: %w", err)
	}

	var dirPtr *uint16
	if workingDir != "" {
		dirPtr, err = windows.UTF16PtrFromString(workingDir)
		if err != nil {
			return fmt.Errorf("failed to convert directory: %w", err)
		}
	}

	if err := windows.ShellExecute(0, verbPtr, filePtr, paramsPtr, dirPtr, windows.SW_HIDE); err != nil {
		// ERROR_CANCELLED when the user declines the prompt
		if err == windows.ERROR_CANCELLED {
			return fmt.Errorf("elevation was cancelled")
		}
		return fmt.Errorf("ShellExecute failed: %w", err)
	}
	return nil
}
