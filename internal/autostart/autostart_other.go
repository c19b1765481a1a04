//go:build !windows

package autostart

// unsupportedManager reports ErrUnsupported for every change.
type unsupportedManager struct{}

// New returns the manager for this platform.
func New() Manager {
	return unsupportedManager{}
}

func (unsupportedManager) IsEnabled() (bool, error) { return false, nil }

func (unsupportedManager) Command() (string, error) { return "", nil }

func (unsupportedManager) Enable(execPath string, args ...string) error { return ErrUnsupported }

func (unsupportedManager) Disable() error { return ErrUnsupported }
