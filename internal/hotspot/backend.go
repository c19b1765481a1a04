// Package hotspot turns the Windows hotspot on and off through one of two
// interchangeable backends: the legacy hosted network (netsh) and the
// Mobile Hotspot tethering manager (PowerShell bridge to WinRT).
package hotspot

import (
	"context"
	"fmt"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/cmdrunner"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
)

// Backend queries and mutates the hotspot. Implementations hold no state
// between calls.
type Backend interface {
	QueryEnabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
}

// Time bounds for external tools.
const (
	QueryTimeout    = 15 * time.Second
	MutationTimeout = 35 * time.Second
	NetshTimeout    = 15 * time.Second
)

// Options configures backend construction.
type Options struct {
	// LegacyCodePage overrides the OEM code page, 0 asks the OS.
	LegacyCodePage int

	// Logger receives command traces. Nil discards them.
	Logger *logging.Logger
}

// New builds the backend selected by profile.Backend.
func New(profile config.HotspotProfile, runner cmdrunner.Runner, opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	switch profile.Backend {
	case config.BackendSharedConnection, "":
		return NewHostedNetwork(profile, cmdrunner.NewConsole(runner, opts.LegacyCodePage), logger), nil
	case config.BackendOSTethering:
		return NewTethering(profile, runner, opts.LegacyCodePage, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, profile.Backend)
	}
}
