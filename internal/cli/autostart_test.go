package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/autostart"
)

type fakeAutostart struct {
	command string
	err     error
}

func (m *fakeAutostart) IsEnabled() (bool, error) { return m.command != "", m.err }

func (m *fakeAutostart) Command() (string, error) { return m.command, m.err }

func (m *fakeAutostart) Enable(execPath string, args ...string) error {
	if m.err != nil {
		return m.err
	}
	m.command = autostart.CommandLine(execPath, args...)
	return nil
}

func (m *fakeAutostart) Disable() error {
	m.command = ""
	return m.err
}

func TestEnableAutostart(t *testing.T) {
	m := &fakeAutostart{}
	var buf bytes.Buffer

	if err := enableAutostart(&buf, m, `C:\Tools\hotspot-helper.exe`, `C:\My Config\hotspot.conf`); err != nil {
		t.Fatalf("enableAutostart failed: %v", err)
	}

	want := `"C:\Tools\hotspot-helper.exe" run --background --config "C:\My Config\hotspot.conf"`
	if m.command != want {
		t.Errorf("Expected %s, got %s", want, m.command)
	}
	if !strings.Contains(buf.String(), want) {
		t.Errorf("Expected the command line in the output, got %q", buf.String())
	}
}

func TestEnableAutostartUnsupported(t *testing.T) {
	m := &fakeAutostart{err: autostart.ErrUnsupported}
	err := enableAutostart(&bytes.Buffer{}, m, "/usr/bin/hotspot-helper", "")
	if !errors.Is(err, autostart.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}

func TestWriteAutostartStatus(t *testing.T) {
	var buf bytes.Buffer
	if err := writeAutostartStatus(&buf, &fakeAutostart{}); err != nil {
		t.Fatalf("writeAutostartStatus failed: %v", err)
	}
	if buf.String() != "Autostart: disabled\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}

	buf.Reset()
	m := &fakeAutostart{command: `"C:\Tools\hotspot-helper.exe" run --background`}
	if err := writeAutostartStatus(&buf, m); err != nil {
		t.Fatalf("writeAutostartStatus failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Autostart: enabled") || !strings.Contains(buf.String(), "run --background") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}
