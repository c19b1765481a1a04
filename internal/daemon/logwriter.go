package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
)

// DaemonLogWriter fans zerolog JSON out to:
// 1. Console (human readable)
// 2. Rotating file, one "timestamp [LEVEL] stage: message k=v" line per entry
// 3. LogBuffer (for IPC)
type DaemonLogWriter struct {
	mu      sync.Mutex
	console io.Writer
	file    io.WriteCloser
	buffer  *LogBuffer
}

// DaemonLogConfig configures the daemon logger.
type DaemonLogConfig struct {
	// LogFile is the path to write logs (empty = no file logging)
	LogFile string

	// Console enables console output
	Console bool

	// ConsoleOut overrides stdout for console output
	ConsoleOut io.Writer

	// BufferSize is the number of log entries to keep in memory for IPC
	BufferSize int
}

// NewDaemonLogWriter creates a new daemon log writer.
func NewDaemonLogWriter(cfg DaemonLogConfig) *DaemonLogWriter {
	w := &DaemonLogWriter{
		buffer: NewLogBuffer(cfg.BufferSize),
	}

	if cfg.Console {
		out := cfg.ConsoleOut
		if out == nil {
			out = os.Stdout
		}
		w.console = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	if cfg.LogFile != "" {
		w.file = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}

	return w
}

// Write implements io.Writer for zerolog.
func (w *DaemonLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)

	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err != nil {
		fields = map[string]interface{}{zerolog.MessageFieldName: strings.TrimSpace(string(p))}
	}

	level := strings.ToUpper(popString(fields, zerolog.LevelFieldName))
	if level == "" {
		level = "INFO"
	}
	stage := popString(fields, "stage")
	if stage == "" {
		stage = "daemon"
	}
	msg := popString(fields, zerolog.MessageFieldName)
	delete(fields, zerolog.TimestampFieldName)

	w.buffer.Add(level, stage, msg, fields)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.console != nil {
		w.console.Write(p)
	}
	if w.file != nil {
		w.file.Write([]byte(formatFileLine(time.Now(), level, stage, msg, fields)))
	}
	return n, nil
}

func popString(fields map[string]interface{}, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// formatFileLine renders one log line. Extra fields are sorted by key.
func formatFileLine(ts time.Time, level, stage, msg string, fields map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(ts.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" [" + level + "] " + stage + ": " + msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteByte('\n')
	return b.String()
}

// GetBuffer returns the log buffer for IPC access.
func (w *DaemonLogWriter) GetBuffer() *LogBuffer {
	return w.buffer
}

// Close closes the file logger if open.
func (w *DaemonLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// CreateDaemonLogger creates a logger whose output reaches the console, the
// log file and the IPC buffer. Returns the writer for access to the buffer.
func CreateDaemonLogger(cfg DaemonLogConfig) (*logging.Logger, *DaemonLogWriter) {
	writer := NewDaemonLogWriter(cfg)

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Str("stage", "daemon").
		Logger()

	return logging.FromZerolog(logger), writer
}
