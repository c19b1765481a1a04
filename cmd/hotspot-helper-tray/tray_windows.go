//go:build windows

package main

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"fyne.io/systray"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/daemon"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/elevation"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/notify"
)

const (
	// Status refresh interval
	refreshInterval = 5 * time.Second
)

// trayApp manages the system tray application state.
type trayApp struct {
	client   *ipc.Client
	notifier *notify.Notifier
	mu       sync.RWMutex

	lastStatus *ipc.StatusData
	lastError  string

	// Menu items (for dynamic updates)
	mStatus   *systray.MenuItem
	mStart    *systray.MenuItem
	mReapply  *systray.MenuItem
	mViewLogs *systray.MenuItem
	mStop     *systray.MenuItem
	mQuit     *systray.MenuItem

	done chan struct{}
}

// runTray starts the system tray application.
func runTray() {
	systray.Run(onReady, onExit)
}

var app *trayApp

func onReady() {
	app = &trayApp{
		client:   ipc.NewClient(),
		notifier: notify.NewNotifier(loadNotifyConfig(), nil),
		done:     make(chan struct{}),
	}
	app.client.SetTimeout(2 * time.Second)

	systray.SetIcon(iconOff)
	systray.SetTitle("WiFi Hotspot Helper")
	systray.SetTooltip("WiFi Hotspot Helper - Connecting...")

	app.mStatus = systray.AddMenuItem("Status: Checking...", "Helper status")
	app.mStatus.Disable()

	systray.AddSeparator()

	app.mStart = systray.AddMenuItem("Start Helper", "Start the hotspot helper in the background")
	app.mReapply = systray.AddMenuItem("Re-apply Settings", "Reload the config file and restart the hotspot with it")

	systray.AddSeparator()

	app.mViewLogs = systray.AddMenuItem("Open Logs Folder", "Open the log files location")
	app.mStop = systray.AddMenuItem("Stop Helper", "Stop the hotspot helper")

	systray.AddSeparator()

	app.mQuit = systray.AddMenuItem("Quit Tray", "Exit the tray application")

	go app.refreshLoop()
	go app.handleMenuClicks()
}

func onExit() {
	if app != nil {
		close(app.done)
	}
}

// refreshLoop periodically refreshes the helper status.
func (a *trayApp) refreshLoop() {
	a.refreshStatus()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refreshStatus()
		case <-a.done:
			return
		}
	}
}

// refreshStatus fetches current status from the helper via IPC.
func (a *trayApp) refreshStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status, err := a.client.GetStatus(ctx)
	if err != nil {
		status = nil
	}

	a.mu.Lock()
	a.lastStatus = status
	a.updateUI()
	a.mu.Unlock()

	a.notifier.Observe(status)
}

// loadNotifyConfig reads the [notify] section, falling back to defaults.
func loadNotifyConfig() *notify.Config {
	cfg, err := config.LoadHotspotConfig("")
	if err != nil {
		return notify.DefaultConfig()
	}
	return notify.ConfigFromHotspot(cfg)
}

// updateUI updates the tray icon, tooltip, and menu items.
// Must be called with a.mu held.
func (a *trayApp) updateUI() {
	view := viewFor(a.lastStatus)

	tooltip := view.Tooltip
	if a.lastError != "" {
		tooltip += "\n" + truncate(a.lastError, 50)
	}
	systray.SetTooltip(tooltip)
	a.mStatus.SetTitle(view.StatusLine)

	if view.HotspotOn {
		systray.SetIcon(iconOn)
	} else {
		systray.SetIcon(iconOff)
	}

	if view.Running {
		a.mStart.Disable()
		a.mReapply.Enable()
		a.mStop.Enable()
	} else {
		a.mStart.Enable()
		a.mReapply.Disable()
		a.mStop.Disable()
	}
}

func (a *trayApp) setError(format string, args ...interface{}) {
	a.mu.Lock()
	a.lastError = fmt.Sprintf(format, args...)
	a.mu.Unlock()
}

// handleMenuClicks processes menu item clicks.
func (a *trayApp) handleMenuClicks() {
	for {
		select {
		case <-a.mStart.ClickedCh:
			a.startHelper()

		case <-a.mReapply.ClickedCh:
			a.reapplySettings()

		case <-a.mViewLogs.ClickedCh:
			a.viewLogs()

		case <-a.mStop.ClickedCh:
			a.stopHelper()

		case <-a.mQuit.ClickedCh:
			systray.Quit()
			return

		case <-a.done:
			return
		}
	}
}

// startHelper launches the helper in the background. The hosted network
// backend needs administrator rights, so it is started through UAC.
func (a *trayApp) startHelper() {
	if needsElevation() {
		if err := elevation.StartHelperElevated(""); err != nil {
			a.setError("Failed to start helper: %v", err)
			return
		}
	} else {
		helperPath, _, err := elevation.HelperPath()
		if err != nil {
			a.setError("Failed to start helper: %v", err)
			return
		}
		if _, err := daemon.StartBackground(helperPath, []string{"run"}); err != nil {
			a.setError("Failed to start helper: %v", err)
			return
		}
	}
	a.setError("")

	time.Sleep(1 * time.Second)
	a.refreshStatus()
}

// needsElevation reports whether the configured backend needs an elevated
// helper that this process cannot provide.
func needsElevation() bool {
	if elevation.IsElevated() {
		return false
	}
	cfg, err := config.LoadHotspotConfig("")
	if err != nil {
		return true
	}
	return cfg.Hotspot.Backend == config.BackendSharedConnection
}

// reapplySettings makes the helper re-read its config file.
func (a *trayApp) reapplySettings() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := a.client.ReloadConfig(ctx); err != nil {
		a.setError("Re-apply failed: %v", err)
	} else {
		a.setError("")
	}
	a.notifier.SetConfig(loadNotifyConfig())

	time.Sleep(500 * time.Millisecond)
	a.refreshStatus()
}

// stopHelper asks the helper to shut down.
func (a *trayApp) stopHelper() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.client.Shutdown(ctx); err != nil {
		a.setError("Stop failed: %v", err)
	}

	time.Sleep(500 * time.Millisecond)
	a.refreshStatus()
}

// viewLogs opens the logs directory in Explorer.
func (a *trayApp) viewLogs() {
	if err := config.EnsureLogDirectory(); err != nil {
		a.setError("Failed to create logs directory: %v", err)
		// Continue anyway - directory might already exist
	}

	if err := exec.Command("explorer.exe", config.LogDirectory()).Start(); err != nil {
		a.setError("Failed to open logs directory: %v", err)
	}
}
