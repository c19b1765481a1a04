//go:build !windows

package netadapter

import (
	"context"
	"strings"
	"testing"
)

func TestParseDefaultGateways(t *testing.T) {
	table := `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
eth0	00000000	0101A8C0	0003	0	0	100	00000000	0	0	0
eth0	0001A8C0	00000000	0001	0	0	100	00FFFFFF	0	0	0
wlan0	00000000	FE00000A	0003	0	0	600	00000000	0	0	0
`
	got := parseDefaultGateways(strings.NewReader(table))

	if len(got["eth0"]) != 1 || got["eth0"][0].String() != "192.168.1.1" {
		t.Errorf("Expected eth0 gateway 192.168.1.1, got %v", got["eth0"])
	}
	if len(got["wlan0"]) != 1 || got["wlan0"][0].String() != "10.0.0.254" {
		t.Errorf("Expected wlan0 gateway 10.0.0.254, got %v", got["wlan0"])
	}
}

func TestSystemSourceList(t *testing.T) {
	src := &SystemSource{routeTable: "/nonexistent/route"}
	adapters, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, a := range adapters {
		if len(a.Gateways) != 0 {
			t.Errorf("Expected no gateways without a route table, got %v for %s", a.Gateways, a.ID)
		}
	}
}
