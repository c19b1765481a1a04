package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/cmdrunner"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/hotspot"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
)

// Reasons attached to hotspot operations.
const (
	ReasonAutoManage    = "auto-manage"
	ReasonAutoRecovery  = "auto-recovery"
	ReasonConfigUpdated = "config-updated"
	ReasonManual        = "manual"
)

// ConfigSource hands out the configuration as currently saved.
type ConfigSource interface {
	Current() *config.HotspotConfig
}

// BackendFactory builds the backend for one operation from a fresh config.
type BackendFactory func(cfg *config.HotspotConfig) (hotspot.Backend, error)

// HotspotBackends returns the production factory: the backend named by the
// profile, running its tools through runner.
func HotspotBackends(runner cmdrunner.Runner, logger *logging.Logger) BackendFactory {
	return func(cfg *config.HotspotConfig) (hotspot.Backend, error) {
		return hotspot.New(cfg.Profile(), runner, hotspot.Options{
			LegacyCodePage: cfg.Advanced.LegacyCodePage,
			Logger:         logger,
		})
	}
}

// Operation is one requested hotspot mutation.
type Operation struct {
	ID        string
	Desired   bool
	Reason    string
	Requested time.Time
}

func (o Operation) String() string {
	verb := "disable"
	if o.Desired {
		verb = "enable"
	}
	return verb + " (" + o.Reason + ")"
}

// OperationResult records how an operation ended.
type OperationResult struct {
	Operation
	Backend  string
	Err      error
	Started  time.Time
	Finished time.Time
}

// ExecutorState is the executor's position in Idle -> Running -> Running+Queued.
type ExecutorState string

const (
	ExecutorIdle    ExecutorState = "idle"
	ExecutorRunning ExecutorState = "running"
	ExecutorQueued  ExecutorState = "running+queued"
)

// ExecutorStatus is a snapshot for status reporting.
type ExecutorStatus struct {
	State    ExecutorState
	InFlight *Operation
	Queued   *Operation
	Last     *OperationResult
}

// Executor runs hotspot mutations one at a time. While one runs, a new
// request replaces the queued one instead of waiting behind it.
type Executor struct {
	configs  ConfigSource
	backends BackendFactory
	logger   *logging.Logger

	mu       sync.Mutex
	inFlight *Operation
	queued   *Operation
	last     *OperationResult
	wg       sync.WaitGroup

	// seq counts requests and completions
	seq uint64
}

// NewExecutor creates an idle executor.
func NewExecutor(configs ConfigSource, backends BackendFactory, logger *logging.Logger) *Executor {
	return &Executor{
		configs:  configs,
		backends: backends,
		logger:   logger,
	}
}

// Request asks for the hotspot to be enabled or disabled and returns at once.
func (e *Executor) Request(desired bool, reason string) Operation {
	op := Operation{
		ID:        uuid.NewString(),
		Desired:   desired,
		Reason:    reason,
		Requested: time.Now(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++

	if e.inFlight != nil {
		if e.queued != nil {
			e.logger.Debug().
				Str("op_id", e.queued.ID).
				Str("dropped", e.queued.String()).
				Str("replaced_by", op.String()).
				Msg("Queued hotspot operation superseded")
		}
		e.queued = &op
		e.logger.Debug().Str("op_id", op.ID).Str("op", op.String()).Msg("Hotspot operation queued")
		return op
	}

	e.inFlight = &op
	e.wg.Add(1)
	go e.run(op)
	return op
}

// run executes op and then whatever got queued meanwhile.
func (e *Executor) run(op Operation) {
	defer e.wg.Done()

	for {
		result := e.execute(op)

		e.mu.Lock()
		e.seq++
		e.last = &result
		next := e.queued
		e.queued = nil
		e.inFlight = next
		e.mu.Unlock()

		if next == nil {
			return
		}
		op = *next
	}
}

func (e *Executor) execute(op Operation) OperationResult {
	result := OperationResult{Operation: op, Started: time.Now()}
	cfg := e.configs.Current()
	result.Backend = string(cfg.Hotspot.Backend)

	log := e.logger.With().
		Str("op_id", op.ID).
		Bool("desired", op.Desired).
		Str("reason", op.Reason).
		Str("backend", result.Backend).
		Logger()
	log.Info().Msg("Hotspot operation started")

	backend, err := e.backends(cfg)
	if err == nil {
		// Runs to completion or its own timeout; nothing cancels it.
		err = backend.SetEnabled(context.Background(), op.Desired)
	}

	result.Err = err
	result.Finished = time.Now()
	duration := result.Finished.Sub(result.Started).Round(time.Millisecond)

	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Hotspot operation failed")
	} else {
		log.Info().Dur("duration", duration).Msg("Hotspot operation succeeded")
	}
	return result
}

// Status returns a snapshot of the executor.
func (e *Executor) Status() ExecutorStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := ExecutorStatus{State: ExecutorIdle}
	if e.inFlight != nil {
		op := *e.inFlight
		st.InFlight = &op
		st.State = ExecutorRunning
	}
	if e.queued != nil {
		op := *e.queued
		st.Queued = &op
		st.State = ExecutorQueued
	}
	if e.last != nil {
		last := *e.last
		st.Last = &last
	}
	return st
}

// Busy reports whether an operation is in flight.
func (e *Executor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight != nil
}

// Seq changes whenever an operation is requested or finishes.
func (e *Executor) Seq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

// DropQueued discards the queued operation, if any.
func (e *Executor) DropQueued() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queued != nil {
		e.logger.Info().Str("op_id", e.queued.ID).Str("op", e.queued.String()).Msg("Queued hotspot operation dropped")
		e.queued = nil
	}
}

// Wait blocks until the executor is idle.
func (e *Executor) Wait() {
	e.wg.Wait()
}
