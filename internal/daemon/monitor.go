package daemon

import (
	"context"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

// Monitor is the read path of the loop: adapter reachability and the
// hotspot's actual state. It never mutates anything.
type Monitor struct {
	probe    *netadapter.Probe
	backends BackendFactory
	logger   *logging.Logger
}

// NewMonitor creates a monitor reading adapters from source.
func NewMonitor(source netadapter.Source, backends BackendFactory, logger *logging.Logger) *Monitor {
	return &Monitor{
		probe:    netadapter.NewProbe(source),
		backends: backends,
		logger:   logger,
	}
}

// CheckAdapter probes the bound adapter.
func (m *Monitor) CheckAdapter(ctx context.Context, adapterID string) netadapter.Reachability {
	return m.probe.Check(ctx, adapterID)
}

// QueryHotspot asks the configured backend whether the hotspot is on. The
// backend bounds the call with its query timeout.
func (m *Monitor) QueryHotspot(ctx context.Context, cfg *config.HotspotConfig) (bool, error) {
	backend, err := m.backends(cfg)
	if err != nil {
		return false, err
	}
	m.logger.Debug().Str("backend", string(cfg.Hotspot.Backend)).Msg("Querying hotspot state")
	return backend.QueryEnabled(ctx)
}
