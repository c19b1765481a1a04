//go:build !windows

package autostart

import (
	"errors"
	"testing"
)

func TestUnsupportedManager(t *testing.T) {
	m := New()

	enabled, err := m.IsEnabled()
	if err != nil || enabled {
		t.Errorf("Expected disabled without error, got %v, %v", enabled, err)
	}
	if err := m.Enable("/usr/bin/hotspot-helper", "run"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
	if err := m.Disable(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}
