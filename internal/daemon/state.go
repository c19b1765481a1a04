package daemon

import (
	"sync"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

// State is what the reconciliation loop remembers between ticks. The loop
// is its only writer; IPC status requests read snapshots.
type State struct {
	mu sync.RWMutex

	// Reachability from the previous tick, nil before the first probe
	reach *netadapter.Reachability

	// Desired state computed by the latest tick
	desired *bool

	// Desired state most recently handed to the executor
	lastDispatched *bool

	// Hotspot state as last reported by the backend
	observed       *bool
	lastStatusPoll time.Time
	lastQueryError string

	lastTick time.Time

	// Result of the latest background status query, not yet applied
	report *StatusReport

	// epoch changes on Reset so results of older queries are discarded
	epoch uint64
}

// StatusReport is the outcome of one background status query.
type StatusReport struct {
	On  bool
	Err error

	// OpSeq is the executor sequence when the query started. A different
	// sequence at apply time means an operation ran meanwhile.
	OpSeq uint64

	epoch uint64
}

// StateSnapshot is a copy of State for reporting.
type StateSnapshot struct {
	Reach          *netadapter.Reachability
	Desired        *bool
	LastDispatched *bool
	Observed       *bool
	LastStatusPoll time.Time
	LastQueryError string
	LastTick       time.Time
}

// NewState creates an empty state: everything unknown.
func NewState() *State {
	return &State{}
}

func boolPtr(b bool) *bool {
	return &b
}

// Reset forgets desired, dispatched and observed state. It reports whether
// anything was remembered.
func (s *State) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	had := s.reach != nil || s.desired != nil || s.lastDispatched != nil || s.observed != nil
	s.reach = nil
	s.desired = nil
	s.lastDispatched = nil
	s.observed = nil
	s.lastStatusPoll = time.Time{}
	s.lastQueryError = ""
	s.report = nil
	s.epoch++
	return had
}

// UpdateReachability stores r and reports whether it differs from the
// previous verdict.
func (s *State) UpdateReachability(r netadapter.Reachability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.reach == nil || !s.reach.Equal(r)
	s.reach = &r
	return changed
}

// SetDesired records the desired state of the current tick.
func (s *State) SetDesired(desired bool) {
	s.mu.Lock()
	s.desired = boolPtr(desired)
	s.mu.Unlock()
}

// LastDispatched returns the desired state last sent to the executor, nil
// when unknown.
func (s *State) LastDispatched() *bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastDispatched == nil {
		return nil
	}
	return boolPtr(*s.lastDispatched)
}

// SetLastDispatched records a dispatch.
func (s *State) SetLastDispatched(desired bool) {
	s.mu.Lock()
	s.lastDispatched = boolPtr(desired)
	s.mu.Unlock()
}

// ClearLastDispatched makes the next tick dispatch whatever it decides.
func (s *State) ClearLastDispatched() {
	s.mu.Lock()
	s.lastDispatched = nil
	s.mu.Unlock()
}

// StatusDue reports whether the backend should be queried at now.
func (s *State) StatusDue(now time.Time, interval time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStatusPoll.IsZero() || now.Sub(s.lastStatusPoll) >= interval
}

// MarkStatusPoll records a query attempt, successful or not.
func (s *State) MarkStatusPoll(now time.Time) {
	s.mu.Lock()
	s.lastStatusPoll = now
	s.mu.Unlock()
}

// UpdateObserved stores the queried hotspot state and reports whether it
// differs from the previous one.
func (s *State) UpdateObserved(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.observed == nil || *s.observed != on
	s.observed = boolPtr(on)
	s.lastQueryError = ""
	return changed
}

// Epoch returns the current reset generation.
func (s *State) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// PutStatusReport stores a finished query for the next tick. Reports from
// before the last Reset are dropped.
func (s *State) PutStatusReport(r StatusReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.epoch != s.epoch {
		return
	}
	s.report = &r
}

// TakeStatusReport returns and clears the pending query result.
func (s *State) TakeStatusReport() *StatusReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.report
	s.report = nil
	return r
}

// SetQueryError records a failed status query.
func (s *State) SetQueryError(msg string) {
	s.mu.Lock()
	s.lastQueryError = msg
	s.mu.Unlock()
}

// MarkTick records when a tick ran.
func (s *State) MarkTick(now time.Time) {
	s.mu.Lock()
	s.lastTick = now
	s.mu.Unlock()
}

// Snapshot returns a copy of the state.
func (s *State) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StateSnapshot{
		LastStatusPoll: s.lastStatusPoll,
		LastQueryError: s.lastQueryError,
		LastTick:       s.lastTick,
	}
	if s.reach != nil {
		r := *s.reach
		snap.Reach = &r
	}
	if s.desired != nil {
		snap.Desired = boolPtr(*s.desired)
	}
	if s.lastDispatched != nil {
		snap.LastDispatched = boolPtr(*s.lastDispatched)
	}
	if s.observed != nil {
		snap.Observed = boolPtr(*s.observed)
	}
	return snap
}
