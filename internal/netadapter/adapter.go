// Package netadapter enumerates network adapters and decides whether the
// bound upstream adapter can currently reach the internet over IPv4.
package netadapter

import (
	"context"
	"errors"
	"net"
	"sort"
	"strings"
)

// ErrNotFound is returned by Snapshot when no adapter matches the id.
var ErrNotFound = errors.New("adapter not found")

// Adapter is a point-in-time view of one network adapter.
type Adapter struct {
	// ID is the OS adapter identifier (a GUID with braces on Windows,
	// the interface name elsewhere).
	ID          string
	Name        string
	Description string

	// Up is true when the adapter is operationally up.
	Up bool

	// IPv4 holds the unicast IPv4 addresses.
	IPv4 []net.IP

	// Gateways holds the IPv4 default gateways.
	Gateways []net.IP
}

// Source enumerates adapters.
type Source interface {
	List(ctx context.Context) ([]Adapter, error)
}

// Snapshot returns the adapter matching id, or ErrNotFound.
func Snapshot(ctx context.Context, src Source, id string) (*Adapter, error) {
	adapters, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range adapters {
		if SameID(adapters[i].ID, id) {
			a := adapters[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// NormalizeID trims whitespace and surrounding braces from an adapter id.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "{")
	id = strings.TrimSuffix(id, "}")
	return strings.TrimSpace(id)
}

// SameID compares two adapter ids after normalization, ignoring case.
func SameID(a, b string) bool {
	na, nb := NormalizeID(a), NormalizeID(b)
	return na != "" && strings.EqualFold(na, nb)
}

// IsLinkLocal reports whether ip is an APIPA address (169.254.0.0/16).
func IsLinkLocal(ip net.IP) bool {
	ip4 := ip.To4()
	return ip4 != nil && ip4[0] == 169 && ip4[1] == 254
}

// UsableIPv4 returns the first unicast IPv4 address that is not link-local.
func (a *Adapter) UsableIPv4() (net.IP, bool) {
	for _, ip := range a.IPv4 {
		if ip.To4() == nil || ip.IsUnspecified() || IsLinkLocal(ip) {
			continue
		}
		return ip, true
	}
	return nil, false
}

// HasIPv4Gateway reports whether the adapter has at least one IPv4 default gateway.
func (a *Adapter) HasIPv4Gateway() bool {
	for _, gw := range a.Gateways {
		if gw.To4() != nil && !gw.IsUnspecified() {
			return true
		}
	}
	return false
}

// SortAdapters orders adapters by name, then by id.
func SortAdapters(adapters []Adapter) {
	sort.SliceStable(adapters, func(i, j int) bool {
		ni, nj := strings.ToLower(adapters[i].Name), strings.ToLower(adapters[j].Name)
		if ni != nj {
			return ni < nj
		}
		return adapters[i].ID < adapters[j].ID
	})
}
