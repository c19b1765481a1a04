//go:build windows

package netadapter

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// SystemSource enumerates adapters with GetAdaptersAddresses.
type SystemSource struct{}

// NewSystemSource returns the platform adapter source.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

// List returns every adapter the OS reports, including ones that are down.
func (s *SystemSource) List(ctx context.Context) ([]Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aas, err := adapterAddresses()
	if err != nil {
		return nil, err
	}

	var adapters []Adapter
	for aa := aas; aa != nil; aa = aa.Next {
		a := Adapter{
			ID:          windows.BytePtrToString(aa.AdapterName),
			Name:        windows.UTF16PtrToString(aa.FriendlyName),
			Description: windows.UTF16PtrToString(aa.Description),
			Up:          aa.OperStatus == windows.IfOperStatusUp,
		}
		for ua := aa.FirstUnicastAddress; ua != nil; ua = ua.Next {
			if ip := ua.Address.IP(); ip != nil && ip.To4() != nil {
				a.IPv4 = append(a.IPv4, ip.To4())
			}
		}
		for ga := aa.FirstGatewayAddress; ga != nil; ga = ga.Next {
			if ip := ga.Address.IP(); ip != nil && ip.To4() != nil {
				a.Gateways = append(a.Gateways, ip.To4())
			}
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// adapterAddresses grows the buffer until GetAdaptersAddresses fits.
func adapterAddresses() (*windows.IpAdapterAddresses, error) {
	const flags = windows.GAA_FLAG_INCLUDE_GATEWAYS

	size := uint32(15000)
	for attempt := 0; attempt < 3; attempt++ {
		buf := make([]byte, size)
		aa := (*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0]))
		err := windows.GetAdaptersAddresses(windows.AF_UNSPEC, flags, 0, aa, &size)
		if err == nil {
			return aa, nil
		}
		if !errors.Is(err, windows.ERROR_BUFFER_OVERFLOW) {
			return nil, fmt.Errorf("GetAdaptersAddresses failed: %w", err)
		}
	}
	return nil, errors.New("GetAdaptersAddresses: buffer kept growing")
}
