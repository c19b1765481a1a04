//go:build windows

package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// BackgroundEnv marks a helper process started by StartBackground.
const BackgroundEnv = "WIFI_HOTSPOT_HELPER_CHILD"

// StartBackground starts executable with args without a console window and
// detached from the caller, and returns its PID.
func StartBackground(executable string, args []string) (int, error) {
	cmd := exec.Command(executable, args...)
	cmd.Env = append(os.Environ(), BackgroundEnv+"=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW | windows.CREATE_NEW_PROCESS_GROUP,
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start helper: %w", err)
	}
	pid := cmd.Process.Pid
	cmd.Process.Release()
	return pid, nil
}

// IsBackgroundChild returns true in a process started by StartBackground.
func IsBackgroundChild() bool {
	return os.Getenv(BackgroundEnv) == "1"
}
