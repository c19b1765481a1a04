// Package notify provides desktop notifications for the tray companion.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
)

const appTitle = "WiFi Hotspot Helper"

// Config holds notification configuration.
type Config struct {
	// Enabled determines if notifications are sent.
	Enabled bool

	// ShowHotspotChanges notifies when the hotspot turns on or off.
	ShowHotspotChanges bool

	// ShowFailures notifies when a hotspot operation fails.
	ShowFailures bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:            true,
		ShowHotspotChanges: true,
		ShowFailures:       true,
	}
}

// ConfigFromHotspot takes the [notify] section of the helper config.
func ConfigFromHotspot(cfg *config.HotspotConfig) *Config {
	return &Config{
		Enabled:            cfg.Notify.Enabled,
		ShowHotspotChanges: cfg.Notify.ShowHotspotChanges,
		ShowFailures:       cfg.Notify.ShowFailures,
	}
}

// SendFunc delivers one notification.
type SendFunc func(title, message string) error

// Notifier handles desktop notifications.
type Notifier struct {
	logger *logging.Logger
	send   SendFunc

	mu  sync.RWMutex
	cfg Config

	// last status seen by Observe, nil before the first poll or while the
	// helper is unreachable
	last    *ipc.StatusData
	running bool
	seen    bool
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	return NewNotifierWithSender(cfg, logger, func(title, message string) error {
		// Windows: toast notifications, macOS: NSUserNotificationCenter,
		// Linux: D-Bus notifications
		return beeep.Notify(title, message, "")
	})
}

// NewNotifierWithSender creates a notifier that delivers through send.
func NewNotifierWithSender(cfg *Config, logger *logging.Logger, send SendFunc) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Notifier{logger: logger, send: send, cfg: *cfg}
}

// SetConfig replaces the configuration.
func (n *Notifier) SetConfig(cfg *Config) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg = *cfg
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled
}

func (n *Notifier) config() Config {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg
}

// HotspotChanged sends a notification for the hotspot turning on or off.
func (n *Notifier) HotspotChanged(on bool, name string) {
	cfg := n.config()
	if !cfg.Enabled || !cfg.ShowHotspotChanges {
		return
	}

	var message string
	switch {
	case on && name != "":
		message = fmt.Sprintf("Hotspot \"%s\" is on.", truncate(name, 32))
	case on:
		message = "Hotspot is on."
	default:
		message = "Hotspot is off."
	}

	if err := n.send(appTitle, message); err != nil {
		n.logger.Warn().Err(err).Bool("on", on).Msg("Failed to send hotspot notification")
	}
}

// OperationFailed sends a notification for a failed hotspot operation.
func (n *Notifier) OperationFailed(errorMsg string) {
	cfg := n.config()
	if !cfg.Enabled || !cfg.ShowFailures {
		return
	}

	message := fmt.Sprintf("Hotspot operation failed:\n%s", truncate(errorMsg, 100))
	if err := n.send(appTitle, message); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send failure notification")
	}
}

// HelperStopped sends a notification when the helper goes away.
func (n *Notifier) HelperStopped() {
	if !n.IsEnabled() {
		return
	}
	if err := n.send(appTitle, "Hotspot helper stopped."); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send helper stopped notification")
	}
}

// Observe compares a status poll with the previous one and notifies about
// what changed. A nil status means the helper could not be reached. The
// first poll only establishes the baseline.
func (n *Notifier) Observe(status *ipc.StatusData) {
	n.mu.Lock()
	prev, wasRunning, seen := n.last, n.running, n.seen
	n.last, n.running, n.seen = status, status != nil, true
	n.mu.Unlock()

	if !seen {
		return
	}

	if status == nil {
		if wasRunning {
			n.HelperStopped()
		}
		return
	}
	if prev == nil {
		return
	}

	if status.Observed != nil && (prev.Observed == nil || *prev.Observed != *status.Observed) {
		n.HotspotChanged(*status.Observed, status.HotspotName)
	}

	if status.LastOpResult != prev.LastOpResult && status.LastError != "" && status.LastError != prev.LastError {
		n.OperationFailed(status.LastError)
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
