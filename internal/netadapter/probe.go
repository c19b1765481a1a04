package netadapter

import (
	"context"
	"errors"
)

// Reachability is the probe verdict for one adapter.
type Reachability struct {
	HasUsableIPv4 bool

	// IPv4 is the usable address, empty when unreachable.
	IPv4 string

	// Reason explains an unreachable verdict.
	Reason string
}

// Equal compares the parts of a verdict the loop logs on change.
func (r Reachability) Equal(o Reachability) bool {
	return r.HasUsableIPv4 == o.HasUsableIPv4 && r.IPv4 == o.IPv4
}

// Probe reports whether the adapter identified by adapterID is up, has an
// IPv4 default gateway and a non link-local IPv4 address. A missing adapter
// or an enumeration failure is reported as unreachable, never as an error.
type Probe struct {
	source Source
}

// NewProbe creates a probe reading from src.
func NewProbe(src Source) *Probe {
	return &Probe{source: src}
}

// Check runs the probe once.
func (p *Probe) Check(ctx context.Context, adapterID string) Reachability {
	if NormalizeID(adapterID) == "" {
		return Reachability{Reason: "no adapter bound"}
	}

	a, err := Snapshot(ctx, p.source, adapterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Reachability{Reason: "adapter not found"}
		}
		return Reachability{Reason: "enumeration failed: " + err.Error()}
	}

	if !a.Up {
		return Reachability{Reason: "adapter is down"}
	}
	if !a.HasIPv4Gateway() {
		return Reachability{Reason: "no IPv4 gateway"}
	}
	ip, ok := a.UsableIPv4()
	if !ok {
		return Reachability{Reason: "no usable IPv4 address"}
	}
	return Reachability{HasUsableIPv4: true, IPv4: ip.String()}
}
