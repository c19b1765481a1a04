package daemon

import (
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/version"
)

// IPCHandler implements ipc.Handler on top of a running daemon.
type IPCHandler struct {
	daemon *Daemon
	logs   *LogBuffer
	logger *logging.Logger

	// Shutdown callback
	shutdownFunc func()
}

// NewIPCHandler creates a new IPC handler for the daemon. logs may be nil
// when the daemon logs only to the console.
func NewIPCHandler(daemon *Daemon, logs *LogBuffer, shutdownFunc func()) *IPCHandler {
	return &IPCHandler{
		daemon:       daemon,
		logs:         logs,
		logger:       daemon.logger.Stage("ipc"),
		shutdownFunc: shutdownFunc,
	}
}

// GetStatus returns the current reconciler status.
func (h *IPCHandler) GetStatus() *ipc.StatusData {
	st := h.daemon.GetStatus()

	data := &ipc.StatusData{
		Version:        version.Version,
		Uptime:         st.Uptime.Round(time.Second).String(),
		AutoManage:     st.Config.Manage.AutoManage,
		HotspotName:    st.Config.Hotspot.Name,
		Backend:        string(st.Config.Hotspot.Backend),
		AdapterID:      st.Config.Manage.AdapterID,
		Desired:        st.State.Desired,
		LastDispatched: st.State.LastDispatched,
		Observed:       st.State.Observed,
		Executor:       string(st.Executor.State),
		LastError:      st.State.LastQueryError,
	}
	if r := st.State.Reach; r != nil {
		data.Reachable = r.HasUsableIPv4
		data.IPv4 = r.IPv4
		data.ReachReason = r.Reason
	}
	if !st.State.LastStatusPoll.IsZero() {
		t := st.State.LastStatusPoll
		data.LastStatusPoll = &t
	}
	if !st.State.LastTick.IsZero() {
		t := st.State.LastTick
		data.LastTick = &t
	}
	if op := st.Executor.InFlight; op != nil {
		data.InFlight = op.String()
	}
	if op := st.Executor.Queued; op != nil {
		data.Queued = op.String()
	}
	if last := st.Executor.Last; last != nil {
		data.LastOpResult = describeResult(last)
		if last.Err != nil {
			data.LastError = last.Err.Error()
		}
	}
	return data
}

// GetRecentLogs returns recent log entries.
func (h *IPCHandler) GetRecentLogs(count int) []ipc.LogEntryData {
	if h.logs == nil {
		return nil
	}
	return h.logs.GetRecent(count)
}

// ReloadConfig re-reads the config file and lets the loop react to it.
func (h *IPCHandler) ReloadConfig() *ipc.ReloadConfigData {
	if err := h.daemon.Store().Reload(); err != nil {
		h.logger.Error().Err(err).Msg("Config reload failed")
		return &ipc.ReloadConfigData{Error: err.Error()}
	}
	restarting := h.daemon.ConfigSaved()
	h.logger.Info().Bool("restarting", restarting).Msg("Configuration reloaded via IPC")
	return &ipc.ReloadConfigData{Applied: true, Restarting: restarting}
}

// SetHotspot hands a manual request to the executor.
func (h *IPCHandler) SetHotspot(enabled bool) *ipc.SetHotspotData {
	op := h.daemon.RequestHotspot(enabled)
	st := h.daemon.executor.Status()
	return &ipc.SetHotspotData{
		OpID:      op.ID,
		Operation: op.String(),
		Queued:    st.Queued != nil && st.Queued.ID == op.ID,
	}
}

// Shutdown gracefully stops the daemon.
func (h *IPCHandler) Shutdown() error {
	h.logger.Info().Msg("Shutdown requested via IPC")
	if h.shutdownFunc != nil {
		go h.shutdownFunc()
	}
	return nil
}
