package daemon

import (
	"sync"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
)

// DefaultLogBufferSize is the number of entries kept for GetRecentLogs.
const DefaultLogBufferSize = 1000

// LogBuffer is a ring of recent log entries served over IPC.
type LogBuffer struct {
	mu       sync.RWMutex
	entries  []ipc.LogEntryData
	maxSize  int
	writeIdx int
	count    int

	now func() time.Time
}

// NewLogBuffer creates a new log buffer with the specified capacity.
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = DefaultLogBufferSize
	}
	return &LogBuffer{
		entries: make([]ipc.LogEntryData, maxSize),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Add appends an entry, overwriting the oldest when full.
func (lb *LogBuffer) Add(level, stage, message string, fields map[string]interface{}) {
	if len(fields) == 0 {
		fields = nil
	}
	entry := ipc.LogEntryData{
		Timestamp: lb.now().Format(time.RFC3339Nano),
		Level:     level,
		Stage:     stage,
		Message:   message,
		Fields:    fields,
	}

	lb.mu.Lock()
	lb.entries[lb.writeIdx] = entry
	lb.writeIdx = (lb.writeIdx + 1) % lb.maxSize
	if lb.count < lb.maxSize {
		lb.count++
	}
	lb.mu.Unlock()
}

// GetRecent returns the most recent n entries, oldest first.
func (lb *LogBuffer) GetRecent(n int) []ipc.LogEntryData {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	if n <= 0 || lb.count == 0 {
		return nil
	}
	if n > lb.count {
		n = lb.count
	}

	result := make([]ipc.LogEntryData, n)
	startIdx := (lb.writeIdx - n + lb.maxSize) % lb.maxSize
	for i := 0; i < n; i++ {
		result[i] = lb.entries[(startIdx+i)%lb.maxSize]
	}
	return result
}

// Len returns the number of buffered entries.
func (lb *LogBuffer) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.count
}

// Clear removes all entries from the buffer.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries = make([]ipc.LogEntryData, lb.maxSize)
	lb.writeIdx = 0
	lb.count = 0
}
