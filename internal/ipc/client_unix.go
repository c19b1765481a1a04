//go:build !windows

package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
)

// DefaultAddress returns the socket path inside the config directory,
// ~/.config/wifi-hotspot-helper/hotspot-helper.sock.
func DefaultAddress() string {
	dir, err := config.ConfigDirectory()
	if err != nil {
		return filepath.Join(os.TempDir(), "wifi-"+SocketName)
	}
	return filepath.Join(dir, SocketName)
}

func dial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	return dialer.DialContext(ctx, "unix", address)
}
