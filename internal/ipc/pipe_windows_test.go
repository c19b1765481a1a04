//go:build windows

package ipc

import (
	"testing"
)

func TestInUse_NoPipe(t *testing.T) {
	name := `\\.\pipe\wifi-hotspot-helper-test-absent`
	if InUse(name) {
		t.Error("InUse should return false when no pipe exists")
	}
}

func TestInUse_ConsistentResults(t *testing.T) {
	result1 := InUse(PipeName)
	result2 := InUse(PipeName)

	if result1 != result2 {
		t.Errorf("InUse returned inconsistent results: %v, %v", result1, result2)
	}
}

func TestDefaultAddressIsPipe(t *testing.T) {
	if DefaultAddress() != PipeName {
		t.Errorf("Expected %s, got %s", PipeName, DefaultAddress())
	}
}
