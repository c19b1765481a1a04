// Package daemon keeps the hotspot in step with the uplink adapter: a
// periodic reconciliation loop probes the bound adapter, polls the hotspot
// and drives a single-flight executor that turns the hotspot on or off.
package daemon

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

// Config holds daemon configuration.
type Config struct {
	// TickInterval is how often the loop reconciles
	TickInterval time.Duration

	// StatusInterval is the minimum time between backend status queries
	StatusInterval time.Duration
}

// DefaultConfig returns a daemon configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TickInterval:   config.DefaultTickSeconds * time.Second,
		StatusInterval: config.DefaultStatusIntervalSeconds * time.Second,
	}
}

// ConfigFromHotspot takes the loop timings from the config file.
func ConfigFromHotspot(cfg *config.HotspotConfig) *Config {
	dc := DefaultConfig()
	if cfg.Manage.TickSeconds > 0 {
		dc.TickInterval = time.Duration(cfg.Manage.TickSeconds) * time.Second
	}
	if cfg.Manage.StatusIntervalSeconds > 0 {
		dc.StatusInterval = time.Duration(cfg.Manage.StatusIntervalSeconds) * time.Second
	}
	return dc
}

// Daemon runs the reconciliation loop.
type Daemon struct {
	cfg      *Config
	store    *config.Store
	state    *State
	monitor  *Monitor
	executor *Executor
	logger   *logging.Logger

	now       func() time.Time
	startTime time.Time

	// ticking guards against overlapping ticks
	ticking atomic.Bool

	// querying is set while a status query runs in the background
	querying      atomic.Bool
	statusQueries sync.WaitGroup

	// Shutdown coordination
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.RWMutex
}

// New creates a daemon. Adapters are read from source and backends built by
// backends for every query and mutation.
func New(store *config.Store, source netadapter.Source, backends BackendFactory, daemonCfg *Config, logger *logging.Logger) *Daemon {
	if daemonCfg == nil {
		daemonCfg = DefaultConfig()
	}

	return &Daemon{
		cfg:       daemonCfg,
		store:     store,
		state:     NewState(),
		monitor:   NewMonitor(source, backends, logger.Stage("backend")),
		executor:  NewExecutor(store, backends, logger.Stage("executor")),
		logger:    logger.Stage("reconcile"),
		now:       time.Now,
		startTime: time.Now(),
		stopChan:  make(chan struct{}),
	}
}

// Store returns the configuration store the daemon reads.
func (d *Daemon) Store() *config.Store {
	return d.store
}

// RequestHotspot queues a manual enable or disable through the executor,
// so it never overlaps an operation the loop started.
func (d *Daemon) RequestHotspot(enabled bool) Operation {
	op := d.executor.Request(enabled, ReasonManual)
	d.logger.Info().Str("op_id", op.ID).Str("op", op.String()).Msg("Manual hotspot request")
	return op
}

// Start runs one tick immediately and then ticks until Stop or ctx ends.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.mu.Unlock()

	cfg := d.store.Current()
	d.logger.Info().
		Bool("auto_manage", cfg.Manage.AutoManage).
		Str("adapter_id", cfg.Manage.AdapterID).
		Str("backend", string(cfg.Hotspot.Backend)).
		Str("tick", d.cfg.TickInterval.String()).
		Str("status_interval", d.cfg.StatusInterval.String()).
		Msg("Daemon starting")

	d.Tick(ctx)

	d.wg.Add(1)
	go d.tickLoop(ctx)

	return nil
}

// Stop ends the loop, drops any queued operation and waits for the one in
// flight to finish.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info().Msg("Daemon stopping")
	close(d.stopChan)
	d.wg.Wait()

	d.statusQueries.Wait()

	d.executor.DropQueued()
	if d.executor.Busy() {
		d.logger.Info().Msg("Waiting for the running hotspot operation to finish")
	}
	d.executor.Wait()

	d.logger.Info().Msg("Daemon stopped")
}

// IsRunning returns whether the daemon is currently running.
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// tickLoop fires ticks on a fixed period. A tick that is still running when
// the next one is due causes that next one to be skipped.
func (d *Daemon) tickLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("Tick loop cancelled by context")
			return
		case <-d.stopChan:
			d.logger.Debug().Msg("Tick loop stopped")
			return
		case <-ticker.C:
			if !d.ticking.CompareAndSwap(false, true) {
				d.logger.Debug().Msg("Previous tick still running, skipping")
				continue
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				defer d.ticking.Store(false)
				d.reconcile(ctx)
			}()
		}
	}
}

// Tick runs one reconciliation pass synchronously. It returns false without
// doing anything when another tick is in progress.
func (d *Daemon) Tick(ctx context.Context) bool {
	if !d.ticking.CompareAndSwap(false, true) {
		return false
	}
	defer d.ticking.Store(false)
	d.reconcile(ctx)
	return true
}

// reconcile is one pass of the loop. Each step that can fail is isolated
// so later steps still run. Nothing here waits on an external tool.
func (d *Daemon) reconcile(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := d.now()
	d.state.MarkTick(now)
	cfg := d.store.Current()

	// 1. Idle unless fully configured.
	if !cfg.Manage.AutoManage || netadapter.NormalizeID(cfg.Manage.AdapterID) == "" || strings.TrimSpace(cfg.Hotspot.Name) == "" {
		if d.state.Reset() {
			d.logger.Info().
				Bool("auto_manage", cfg.Manage.AutoManage).
				Msg("Auto-manage inactive, remembered state cleared")
		}
		return
	}

	// 2-3. Probe the uplink; desired follows reachability.
	reach := d.monitor.CheckAdapter(ctx, cfg.Manage.AdapterID)
	if ctx.Err() != nil {
		// Enumeration was cut short by shutdown, not by the adapter.
		return
	}
	if d.state.UpdateReachability(reach) {
		d.logger.Info().
			Bool("reachable", reach.HasUsableIPv4).
			Str("ipv4", reach.IPv4).
			Str("detail", reach.Reason).
			Msg("Adapter reachability changed")
	}
	desired := reach.HasUsableIPv4
	d.state.SetDesired(desired)

	// 4. Apply the previous status query, start the next one when due.
	if report := d.state.TakeStatusReport(); report != nil {
		d.applyStatus(report, desired)
	}
	if d.state.StatusDue(now, d.cfg.StatusInterval) {
		d.startStatusQuery(ctx, cfg, now)
	}

	// 5-6. Edge-triggered dispatch.
	if last := d.state.LastDispatched(); last != nil && *last == desired {
		return
	}
	d.state.SetLastDispatched(desired)
	op := d.executor.Request(desired, ReasonAutoManage)
	d.logger.Info().Str("op_id", op.ID).Str("op", op.String()).Msg("Desired hotspot state changed")
}

// startStatusQuery asks the backend for the hotspot state in the
// background. The result is applied by a later tick.
func (d *Daemon) startStatusQuery(ctx context.Context, cfg *config.HotspotConfig, now time.Time) {
	if !d.querying.CompareAndSwap(false, true) {
		d.logger.Debug().Msg("Previous status query still running, skipping")
		return
	}
	d.state.MarkStatusPoll(now)
	report := StatusReport{OpSeq: d.executor.Seq(), epoch: d.state.Epoch()}

	d.statusQueries.Add(1)
	go func() {
		defer d.statusQueries.Done()
		defer d.querying.Store(false)
		report.On, report.Err = d.monitor.QueryHotspot(ctx, cfg)
		d.state.PutStatusReport(report)
	}()
}

// applyStatus records a query result and restarts the hotspot when it is
// off although the uplink is up, e.g. after Windows stopped it for lack of
// clients.
func (d *Daemon) applyStatus(report *StatusReport, desired bool) {
	if report.Err != nil {
		d.state.SetQueryError(report.Err.Error())
		d.logger.Warn().Err(report.Err).Msg("Hotspot status query failed")
		return
	}
	if d.state.UpdateObserved(report.On) {
		d.logger.Info().Bool("on", report.On).Msg("Hotspot state changed")
	}

	if !desired || report.On {
		return
	}
	if report.OpSeq != d.executor.Seq() {
		d.logger.Debug().Msg("Hotspot was off but an operation ran since the query started, not recovering")
		return
	}
	if d.executor.Busy() {
		// The running operation may not have taken effect yet.
		d.logger.Debug().Msg("Hotspot is off but an operation is in flight, not recovering")
		return
	}
	d.state.SetLastDispatched(true)
	op := d.executor.Request(true, ReasonAutoRecovery)
	d.logger.Info().Str("op_id", op.ID).Msg("Hotspot is off while the uplink is up, recovering")
}

// ConfigSaved applies a newly saved configuration. When auto-manage is on
// and the hotspot was last asked to be on, it is stopped so the next tick
// starts it again with the new profile. Reports whether that happened.
func (d *Daemon) ConfigSaved() bool {
	cfg := d.store.Current()
	if !cfg.Manage.AutoManage {
		return false
	}

	restarting := false
	if last := d.state.LastDispatched(); last != nil && *last {
		op := d.executor.Request(false, ReasonConfigUpdated)
		d.logger.Info().Str("op_id", op.ID).Msg("Configuration changed, restarting hotspot")
		restarting = true
	}
	d.state.ClearLastDispatched()
	return restarting
}

// RunOnce performs a single reconciliation pass and waits for the
// operations it started.
func (d *Daemon) RunOnce(ctx context.Context) error {
	d.logger.Info().Msg("Running single reconciliation pass")
	if !d.Tick(ctx) {
		return fmt.Errorf("a reconciliation pass is already running")
	}
	d.statusQueries.Wait()
	d.executor.Wait()

	if last := d.executor.Status().Last; last != nil && last.Err != nil {
		return fmt.Errorf("%s failed: %w", last.Operation, last.Err)
	}
	return nil
}

// GetStatus returns current daemon status information.
func (d *Daemon) GetStatus() *Status {
	return &Status{
		Running:  d.IsRunning(),
		Uptime:   d.now().Sub(d.startTime),
		Config:   d.store.Current(),
		State:    d.state.Snapshot(),
		Executor: d.executor.Status(),
	}
}

// Status contains daemon status information.
type Status struct {
	Running  bool
	Uptime   time.Duration
	Config   *config.HotspotConfig
	State    StateSnapshot
	Executor ExecutorStatus
}

// WriteStatus writes status to a writer.
func (s *Status) WriteStatus(w io.Writer) {
	fmt.Fprintf(w, "Hotspot Helper Status:\n")
	fmt.Fprintf(w, "  Running: %s\n", yesNo(s.Running))
	fmt.Fprintf(w, "  Auto-manage: %s\n", yesNo(s.Config.Manage.AutoManage))
	fmt.Fprintf(w, "  Backend: %s\n", s.Config.Hotspot.Backend)
	fmt.Fprintf(w, "  Adapter: %s\n", orNone(s.Config.Manage.AdapterID))
	if s.State.Reach != nil {
		if s.State.Reach.HasUsableIPv4 {
			fmt.Fprintf(w, "  Uplink: connected (%s)\n", s.State.Reach.IPv4)
		} else {
			fmt.Fprintf(w, "  Uplink: down (%s)\n", s.State.Reach.Reason)
		}
	}
	fmt.Fprintf(w, "  Desired: %s\n", onOffUnknown(s.State.Desired))
	fmt.Fprintf(w, "  Hotspot: %s\n", onOffUnknown(s.State.Observed))
	fmt.Fprintf(w, "  Executor: %s\n", s.Executor.State)
	if s.Executor.Last != nil {
		fmt.Fprintf(w, "  Last Operation: %s\n", describeResult(s.Executor.Last))
	}
}

func describeResult(r *OperationResult) string {
	if r.Err != nil {
		return fmt.Sprintf("%s failed at %s: %v", r.Operation, r.Finished.Format(time.RFC3339), r.Err)
	}
	return fmt.Sprintf("%s succeeded at %s", r.Operation, r.Finished.Format(time.RFC3339))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func onOffUnknown(b *bool) string {
	switch {
	case b == nil:
		return "unknown"
	case *b:
		return "on"
	default:
		return "off"
	}
}
