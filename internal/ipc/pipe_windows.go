//go:build windows

package ipc

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/Microsoft/go-winio"
)

const errorFileNotFound = syscall.Errno(2)

// DefaultAddress returns the named pipe path.
func DefaultAddress() string {
	return PipeName
}

func dial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return winio.DialPipeContext(ctx, address)
}

// InUse reports whether the named pipe exists. Only ERROR_FILE_NOT_FOUND
// counts as absent; busy or access denied means another helper owns it.
func InUse(address string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	conn, err := winio.DialPipeContext(ctx, address)
	if conn != nil {
		conn.Close()
		return true
	}
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == errorFileNotFound {
		return false
	}
	return true
}
