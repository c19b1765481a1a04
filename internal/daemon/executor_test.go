package daemon

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/hotspot"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

// fakeBackend records mutations and answers queries from its own flag.
// When gate is set, SetEnabled blocks until the gate is closed; queryGate
// does the same for QueryEnabled.
type fakeBackend struct {
	mu          sync.Mutex
	on          bool
	queryErr    error
	setErr      error
	calls       []bool
	queries     int
	names       []string
	inFlight    int
	maxInFlight int
	gate        chan struct{}
	queryGate   chan struct{}
}

func (b *fakeBackend) QueryEnabled(ctx context.Context) (bool, error) {
	b.mu.Lock()
	b.queries++
	gate := b.queryGate
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on, b.queryErr
}

func (b *fakeBackend) queryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries
}

func (b *fakeBackend) SetEnabled(ctx context.Context, enabled bool) error {
	b.mu.Lock()
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	gate := b.gate
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFlight--
	b.calls = append(b.calls, enabled)
	if b.setErr == nil {
		b.on = enabled
	}
	return b.setErr
}

func (b *fakeBackend) setOn(on bool) {
	b.mu.Lock()
	b.on = on
	b.mu.Unlock()
}

func (b *fakeBackend) recorded() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.calls...)
}

// factory hands out b for every operation and remembers the hotspot name
// each operation was built with.
func (b *fakeBackend) factory() BackendFactory {
	return func(cfg *config.HotspotConfig) (hotspot.Backend, error) {
		b.mu.Lock()
		b.names = append(b.names, cfg.Hotspot.Name)
		b.mu.Unlock()
		return b, nil
	}
}

// fakeSource serves one adapter whose link can be toggled. Like the
// system source it fails once ctx is done.
type fakeSource struct {
	mu      sync.Mutex
	adapter netadapter.Adapter

	// onList runs at the start of every List
	onList func()
}

func newFakeSource(up bool) *fakeSource {
	s := &fakeSource{adapter: netadapter.Adapter{
		ID:       "{A}",
		Name:     "Ethernet",
		IPv4:     []net.IP{net.ParseIP("192.168.1.20")},
		Gateways: []net.IP{net.ParseIP("192.168.1.1")},
	}}
	s.setUp(up)
	return s
}

func (s *fakeSource) setUp(up bool) {
	s.mu.Lock()
	s.adapter.Up = up
	s.mu.Unlock()
}

func (s *fakeSource) List(ctx context.Context) ([]netadapter.Adapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onList != nil {
		s.onList()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []netadapter.Adapter{s.adapter}, nil
}

func testConfig() *config.HotspotConfig {
	cfg := config.NewHotspotConfig()
	cfg.Hotspot.Name = "Home"
	cfg.Hotspot.Passphrase = "abcdefgh"
	cfg.Manage.AutoManage = true
	cfg.Manage.AdapterID = "{A}"
	return cfg
}

func equalCalls(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExecutorCoalescesQueuedRequests(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{})}
	e := NewExecutor(config.NewMemoryStore(testConfig()), backend.factory(), logging.Nop())

	e.Request(true, ReasonAutoManage)
	if st := e.Status(); st.State != ExecutorRunning {
		t.Fatalf("Expected running, got %s", st.State)
	}

	e.Request(false, ReasonAutoManage)
	st := e.Status()
	if st.State != ExecutorQueued || st.Queued == nil || st.Queued.Desired {
		t.Fatalf("Expected queued disable, got %+v", st)
	}

	third := e.Request(true, ReasonAutoRecovery)
	st = e.Status()
	if st.Queued == nil || !st.Queued.Desired || st.Queued.ID != third.ID {
		t.Fatalf("Expected queued slot to hold the latest request, got %+v", st.Queued)
	}

	close(backend.gate)
	e.Wait()

	if got := backend.recorded(); !equalCalls(got, []bool{true, true}) {
		t.Errorf("Expected [true true], got %v", got)
	}
	if backend.maxInFlight != 1 {
		t.Errorf("Expected at most one operation in flight, got %d", backend.maxInFlight)
	}
	st = e.Status()
	if st.State != ExecutorIdle {
		t.Errorf("Expected idle after completion, got %s", st.State)
	}
	if st.Last == nil || st.Last.Reason != ReasonAutoRecovery {
		t.Errorf("Expected last operation to be the queued one, got %+v", st.Last)
	}
}

func TestExecutorRunsQueuedAfterFailure(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{}), setErr: errors.New("netsh failed")}
	e := NewExecutor(config.NewMemoryStore(testConfig()), backend.factory(), logging.Nop())

	e.Request(true, ReasonAutoManage)
	e.Request(false, ReasonAutoManage)
	close(backend.gate)
	e.Wait()

	if got := backend.recorded(); !equalCalls(got, []bool{true, false}) {
		t.Errorf("Expected [true false], got %v", got)
	}
	last := e.Status().Last
	if last == nil || last.Err == nil {
		t.Fatalf("Expected the failure to be recorded, got %+v", last)
	}
}

func TestExecutorReadsConfigPerOperation(t *testing.T) {
	store := config.NewMemoryStore(testConfig())
	backend := &fakeBackend{}
	e := NewExecutor(store, backend.factory(), logging.Nop())

	e.Request(true, ReasonAutoManage)
	e.Wait()

	if _, err := store.Update(func(cfg *config.HotspotConfig) { cfg.Hotspot.Name = "Office" }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	e.Request(true, ReasonAutoManage)
	e.Wait()

	backend.mu.Lock()
	names := append([]string(nil), backend.names...)
	backend.mu.Unlock()
	if len(names) != 2 || names[0] != "Home" || names[1] != "Office" {
		t.Errorf("Expected [Home Office], got %v", names)
	}
}

func TestExecutorBackendFactoryError(t *testing.T) {
	factory := func(cfg *config.HotspotConfig) (hotspot.Backend, error) {
		return nil, config.ErrUnknownBackend
	}
	e := NewExecutor(config.NewMemoryStore(testConfig()), factory, logging.Nop())

	e.Request(true, ReasonManual)
	e.Wait()

	last := e.Status().Last
	if last == nil || !errors.Is(last.Err, config.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %+v", last)
	}
}

func TestExecutorDropQueued(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{})}
	e := NewExecutor(config.NewMemoryStore(testConfig()), backend.factory(), logging.Nop())

	e.Request(true, ReasonAutoManage)
	e.Request(false, ReasonAutoManage)
	e.DropQueued()
	close(backend.gate)
	e.Wait()

	if got := backend.recorded(); !equalCalls(got, []bool{true}) {
		t.Errorf("Expected only the in-flight operation, got %v", got)
	}
}

func TestExecutorSeq(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{})}
	e := NewExecutor(config.NewMemoryStore(testConfig()), backend.factory(), logging.Nop())

	before := e.Seq()
	e.Request(true, ReasonAutoManage)
	requested := e.Seq()
	if requested == before {
		t.Error("Expected a request to change the sequence")
	}

	close(backend.gate)
	e.Wait()
	if e.Seq() == requested {
		t.Error("Expected a completion to change the sequence")
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{Operation{Desired: true, Reason: ReasonAutoManage}, "enable (auto-manage)"},
		{Operation{Desired: false, Reason: ReasonConfigUpdated}, "disable (config-updated)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}
