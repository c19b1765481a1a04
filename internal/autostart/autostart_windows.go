//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// RegistryManager keeps the registration in the current user's Run key.
type RegistryManager struct {
	valueName string
}

// New returns the manager for this platform.
func New() Manager {
	return &RegistryManager{valueName: ValueName}
}

// IsEnabled reports whether the Run value exists.
func (m *RegistryManager) IsEnabled() (bool, error) {
	cmd, err := m.Command()
	if err != nil {
		return false, err
	}
	return cmd != "", nil
}

// Command returns the registered command line.
func (m *RegistryManager) Command() (string, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open Run registry key: %w", err)
	}
	defer key.Close()

	val, _, err := key.GetStringValue(m.valueName)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", m.valueName, err)
	}
	return val, nil
}

// Enable writes the Run value.
func (m *RegistryManager) Enable(execPath string, args ...string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run registry key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(m.valueName, CommandLine(execPath, args...)); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.valueName, err)
	}
	return nil
}

// Disable deletes the Run value.
func (m *RegistryManager) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open Run registry key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(m.valueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", m.valueName, err)
	}
	return nil
}
