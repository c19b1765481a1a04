//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// listen binds the Unix socket. A socket file left behind by a crashed
// helper is removed; one that still answers means another helper runs.
func (s *Server) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.address), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	if _, err := os.Stat(s.address); err == nil {
		if InUse(s.address) {
			return nil, fmt.Errorf("another helper is listening on %s", s.address)
		}
		if err := os.Remove(s.address); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", s.address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	if err := os.Chmod(s.address, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to restrict socket permissions: %w", err)
	}
	return listener, nil
}

func (s *Server) cleanup() {
	if err := os.Remove(s.address); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Debug().Err(err).Msg("Failed to remove socket file")
	}
}

// InUse reports whether something accepts connections at the socket path.
func InUse(address string) bool {
	conn, err := net.DialTimeout("unix", address, 200*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
