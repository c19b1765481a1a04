package cli

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

type fakeAdapterSource struct {
	adapters []netadapter.Adapter
	err      error
}

func (s *fakeAdapterSource) List(ctx context.Context) ([]netadapter.Adapter, error) {
	return s.adapters, s.err
}

func testAdapters() []netadapter.Adapter {
	return []netadapter.Adapter{
		{ID: "{AAA-111}", Name: "Ethernet", Description: "Intel(R) Ethernet", Up: true, IPv4: []net.IP{net.ParseIP("192.168.1.20")}},
		{ID: "{BBB-222}", Name: "Wi-Fi", Up: false},
	}
}

func TestResolveAdapter(t *testing.T) {
	src := &fakeAdapterSource{adapters: testAdapters()}

	tests := []struct {
		name     string
		id       string
		force    bool
		wantID   string
		wantName string
		wantErr  bool
	}{
		{"exact", "{AAA-111}", false, "{AAA-111}", "Ethernet", false},
		{"no braces, other case", "bbb-222", false, "{BBB-222}", "Wi-Fi", false},
		{"unknown", "{CCC-333}", false, "", "", true},
		{"unknown forced", " {CCC-333} ", true, "{CCC-333}", "(not present)", false},
		{"empty", "{}", true, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, name, err := resolveAdapter(context.Background(), src, tt.id, tt.force)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected an error, got id %q", id)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveAdapter failed: %v", err)
			}
			if id != tt.wantID || name != tt.wantName {
				t.Errorf("Expected (%s, %s), got (%s, %s)", tt.wantID, tt.wantName, id, name)
			}
		})
	}
}

func TestResolveAdapterNotFound(t *testing.T) {
	src := &fakeAdapterSource{adapters: testAdapters()}
	_, _, err := resolveAdapter(context.Background(), src, "{CCC-333}", false)
	if !errors.Is(err, netadapter.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWriteAdapters(t *testing.T) {
	var buf bytes.Buffer
	writeAdapters(&buf, testAdapters(), "aaa-111")
	out := buf.String()

	if !strings.Contains(out, "* 1. Ethernet") {
		t.Errorf("Expected the bound adapter to be marked:\n%s", out)
	}
	if !strings.Contains(out, "  2. Wi-Fi") {
		t.Errorf("Expected the unbound adapter unmarked:\n%s", out)
	}
	if !strings.Contains(out, "IPv4: 192.168.1.20") {
		t.Errorf("Expected the IPv4 address:\n%s", out)
	}
	if !strings.Contains(out, "Description: Intel(R) Ethernet") {
		t.Errorf("Expected the description:\n%s", out)
	}

	buf.Reset()
	writeAdapters(&buf, nil, "")
	if !strings.Contains(buf.String(), "No network adapters found.") {
		t.Errorf("Unexpected output for no adapters: %q", buf.String())
	}
}
