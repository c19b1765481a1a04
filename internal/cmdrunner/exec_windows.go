//go:build windows

package cmdrunner

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

const createNoWindow = 0x08000000 // CREATE_NO_WINDOW

var (
	modkernel32  = windows.NewLazySystemDLL("kernel32.dll")
	procGetOEMCP = modkernel32.NewProc("GetOEMCP")
)

func configureCommand(cmd *exec.Cmd, c Command) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow,
	}
	if c.CmdLine != "" {
		cmd.SysProcAttr.CmdLine = syscall.EscapeArg(c.Path) + " " + c.CmdLine
	}
	return nil
}

// SystemCodePage returns the OEM code page console tools write in, 0 if unknown.
func SystemCodePage() int {
	if err := procGetOEMCP.Find(); err != nil {
		return 0
	}
	r, _, _ := procGetOEMCP.Call()
	return int(r)
}
