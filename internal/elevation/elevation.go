// Package elevation checks for and requests administrator rights. The
// hosted network backend needs them to start and stop the hotspot.
package elevation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotSupported is returned when elevation is attempted on non-Windows platforms.
var ErrNotSupported = errors.New("UAC elevation is only supported on Windows")

// HelperPath resolves the helper executable next to the current one and
// the directory to run it in. When it is not there the bare name is
// returned so the OS searches PATH.
func HelperPath() (string, string, error) {
	name := "hotspot-helper"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	exePath, err := os.Executable()
	if err != nil {
		return "", "", fmt.Errorf("failed to get executable path: %w", err)
	}

	dir := filepath.Dir(exePath)
	helperPath := filepath.Join(dir, name)
	if _, err := os.Stat(helperPath); err == nil {
		return helperPath, dir, nil
	}

	cwd, _ := os.Getwd()
	return name, cwd, nil
}

// helperArgs is the command line for a background helper.
func helperArgs(configPath string) string {
	args := []string{"run", "--background"}
	if configPath != "" {
		args = append(args, "--config", `"`+strings.Trim(configPath, `"`)+`"`)
	}
	return strings.Join(args, " ")
}

// StartHelperElevated triggers UAC to run "hotspot-helper run --background".
// Returns nil once the elevated process was launched, an error when it could
// not be or the prompt was cancelled.
func StartHelperElevated(configPath string) error {
	helperPath, workDir, err := HelperPath()
	if err != nil {
		return fmt.Errorf("failed to locate helper: %w", err)
	}
	return RunElevated(helperPath, helperArgs(configPath), workDir)
}
