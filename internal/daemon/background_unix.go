//go:build !windows

package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// BackgroundEnv marks a helper process started by StartBackground.
const BackgroundEnv = "WIFI_HOTSPOT_HELPER_CHILD"

// StartBackground starts executable with args in a new session, detached
// from the terminal, and returns its PID.
func StartBackground(executable string, args []string) (int, error) {
	cmd := exec.Command(executable, args...)
	cmd.Env = append(os.Environ(), BackgroundEnv+"=1")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
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
