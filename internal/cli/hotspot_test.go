package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/hotspot"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
)

type fakeRequester struct {
	calls []bool
	data  *ipc.SetHotspotData
	err   error
}

func (r *fakeRequester) SetHotspot(ctx context.Context, enabled bool) (*ipc.SetHotspotData, error) {
	r.calls = append(r.calls, enabled)
	return r.data, r.err
}

type fakeHotspot struct {
	calls []bool
	err   error
}

func (b *fakeHotspot) QueryEnabled(ctx context.Context) (bool, error) { return false, nil }

func (b *fakeHotspot) SetEnabled(ctx context.Context, enabled bool) error {
	b.calls = append(b.calls, enabled)
	return b.err
}

func TestSetHotspotGoesThroughRunningHelper(t *testing.T) {
	helper := &fakeRequester{data: &ipc.SetHotspotData{OpID: "abc", Operation: "disable (manual)", Queued: true}}
	backend := &fakeHotspot{}
	local := func() (hotspot.Backend, error) { return backend, nil }

	var buf bytes.Buffer
	if err := setHotspot(context.Background(), &buf, false, helper, local); err != nil {
		t.Fatalf("setHotspot failed: %v", err)
	}

	if len(helper.calls) != 1 || helper.calls[0] {
		t.Errorf("Expected one disable request to the helper, got %v", helper.calls)
	}
	if len(backend.calls) != 0 {
		t.Errorf("Expected the backend to be left alone, got %v", backend.calls)
	}
	if !strings.Contains(buf.String(), "Queued disable (manual)") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestSetHotspotHelperError(t *testing.T) {
	helper := &fakeRequester{err: errors.New("pipe closed")}
	backend := &fakeHotspot{}
	local := func() (hotspot.Backend, error) { return backend, nil }

	err := setHotspot(context.Background(), &bytes.Buffer{}, true, helper, local)
	if err == nil || !strings.Contains(err.Error(), "pipe closed") {
		t.Errorf("Expected the IPC error, got %v", err)
	}
	if len(backend.calls) != 0 {
		t.Errorf("Expected no local fallback, got %v", backend.calls)
	}
}

func TestSetHotspotWithoutHelper(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		err     error
		want    string
	}{
		{"on", true, nil, "Hotspot is on."},
		{"off", false, nil, "Hotspot is off."},
		{"failure", true, errors.New("netsh failed"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeHotspot{err: tt.err}
			local := func() (hotspot.Backend, error) { return backend, nil }

			var buf bytes.Buffer
			err := setHotspot(context.Background(), &buf, tt.enabled, nil, local)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("setHotspot failed: %v", err)
			}
			if len(backend.calls) != 1 || backend.calls[0] != tt.enabled {
				t.Errorf("Expected one call with %v, got %v", tt.enabled, backend.calls)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Expected %q in output, got %q", tt.want, buf.String())
			}
		})
	}
}
