//go:build !windows

package cmdrunner

import "os/exec"

func configureCommand(cmd *exec.Cmd, c Command) error {
	if c.CmdLine != "" {
		return ErrRawCommandLine
	}
	return nil
}

// SystemCodePage returns 0: there is no OEM code page outside Windows.
func SystemCodePage() int {
	return 0
}
