//go:build !windows

package netadapter

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

// routeTablePath is the Linux IPv4 routing table. Other platforms have no
// equivalent file and report no gateways.
const routeTablePath = "/proc/net/route"

// SystemSource enumerates adapters with net.Interfaces.
type SystemSource struct {
	routeTable string
}

// NewSystemSource returns the platform adapter source.
func NewSystemSource() *SystemSource {
	return &SystemSource{routeTable: routeTablePath}
}

// List returns every interface except loopback.
func (s *SystemSource) List(ctx context.Context) ([]Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	gateways := map[string][]net.IP{}
	if f, err := os.Open(s.routeTable); err == nil {
		gateways = parseDefaultGateways(f)
		f.Close()
	}

	adapters := make([]Adapter, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		a := Adapter{
			ID:       iface.Name,
			Name:     iface.Name,
			Up:       iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagRunning != 0,
			Gateways: gateways[iface.Name],
		}
		if iface.HardwareAddr != nil {
			a.Description = iface.HardwareAddr.String()
		}
		addrs, err := iface.Addrs()
		if err == nil {
			for _, addr := range addrs {
				if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
					a.IPv4 = append(a.IPv4, ipnet.IP.To4())
				}
			}
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// parseDefaultGateways reads /proc/net/route and returns the default
// gateways per interface. Fields are hex in host (little endian) order.
func parseDefaultGateways(r io.Reader) map[string][]net.IP {
	result := map[string][]net.IP{}
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}
		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			continue
		}
		gw := make(net.IP, 4)
		binary.BigEndian.PutUint32(gw, binary.LittleEndian.Uint32(raw))
		if gw.IsUnspecified() {
			continue
		}
		result[fields[0]] = append(result[fields[0]], gw)
	}
	return result
}
