// Package ipc connects the CLI and tray to a running helper over a local
// channel: a named pipe on Windows, a Unix domain socket elsewhere. Each
// connection carries one newline-delimited JSON request and one response.
package ipc

import (
	"encoding/json"
	"time"
)

// PipeName is the Windows named pipe path for IPC.
const PipeName = `\\.\pipe\wifi-hotspot-helper`

// SocketName is the Unix socket file name inside the config directory.
const SocketName = "hotspot-helper.sock"

// DefaultRecentLogs is how many entries GetRecentLogs returns when the
// request does not ask for a count.
const DefaultRecentLogs = 100

// MessageType identifies the type of IPC message.
type MessageType string

const (
	// Request types (client -> server)
	MsgGetStatus     MessageType = "GetStatus"
	MsgGetRecentLogs MessageType = "GetRecentLogs"
	MsgReloadConfig  MessageType = "ReloadConfig"
	MsgSetHotspot    MessageType = "SetHotspot"
	MsgShutdown      MessageType = "Shutdown"

	// Response types (server -> client)
	MsgStatusResponse       MessageType = "StatusResponse"
	MsgRecentLogs           MessageType = "RecentLogs"
	MsgReloadConfigResponse MessageType = "ReloadConfigResponse"
	MsgSetHotspotResponse   MessageType = "SetHotspotResponse"
	MsgOK                   MessageType = "OK"
	MsgError                MessageType = "Error"
)

// Request represents an IPC request from client to server.
type Request struct {
	Type MessageType `json:"type"`

	// Count limits GetRecentLogs. Zero means DefaultRecentLogs.
	Count int `json:"count,omitempty"`

	// Enabled is the state SetHotspot asks for.
	Enabled *bool `json:"enabled,omitempty"`
}

// Response represents an IPC response from server to client.
type Response struct {
	Type    MessageType `json:"type"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// StatusData is a snapshot of the reconciler.
type StatusData struct {
	Version string `json:"version"`
	Uptime  string `json:"uptime,omitempty"`

	// Configuration as the loop last read it
	AutoManage  bool   `json:"auto_manage"`
	HotspotName string `json:"hotspot_name,omitempty"`
	Backend     string `json:"backend"`
	AdapterID   string `json:"adapter_id,omitempty"`

	// Reachability of the bound adapter
	Reachable   bool   `json:"reachable"`
	IPv4        string `json:"ipv4,omitempty"`
	ReachReason string `json:"reach_reason,omitempty"`

	// Desired is recomputed each tick; LastDispatched is the desired state
	// most recently sent to the executor. Nil means unknown.
	Desired        *bool `json:"desired,omitempty"`
	LastDispatched *bool `json:"last_dispatched,omitempty"`

	// Observed is the last state reported by the backend.
	Observed       *bool      `json:"observed,omitempty"`
	LastStatusPoll *time.Time `json:"last_status_poll,omitempty"`
	LastTick       *time.Time `json:"last_tick,omitempty"`

	// Executor is "idle", "running" or "running+queued".
	Executor     string `json:"executor"`
	InFlight     string `json:"in_flight,omitempty"`
	Queued       string `json:"queued,omitempty"`
	LastOpResult string `json:"last_op_result,omitempty"`

	// LastError is the most recent failed operation or status query.
	LastError string `json:"last_error,omitempty"`
}

// LogEntryData represents a single log entry sent over IPC.
type LogEntryData struct {
	// Timestamp is the log entry time in RFC3339 format
	Timestamp string `json:"timestamp"`

	// Level is the log level (DEBUG, INFO, WARN, ERROR)
	Level string `json:"level"`

	// Stage identifies the component (reconcile, executor, backend, ipc)
	Stage string `json:"stage"`

	Message string `json:"message"`

	// Fields contains additional structured data
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// RecentLogsData contains a batch of recent log entries.
type RecentLogsData struct {
	Entries []LogEntryData `json:"entries"`
}

// ReloadConfigData reports what a config reload did.
type ReloadConfigData struct {
	Applied bool `json:"applied"`

	// Restarting is set when the running hotspot is being stopped so the
	// next tick starts it with the new profile.
	Restarting bool `json:"restarting"`

	Error string `json:"error,omitempty"`
}

// SetHotspotData describes the operation a SetHotspot request queued.
type SetHotspotData struct {
	OpID      string `json:"op_id"`
	Operation string `json:"operation"`

	// Queued is set when another operation was running and this one
	// waits behind it.
	Queued bool `json:"queued"`
}

// NewRequest creates a new IPC request.
func NewRequest(msgType MessageType) *Request {
	return &Request{Type: msgType}
}

// NewRecentLogsRequest asks for the last count log entries.
func NewRecentLogsRequest(count int) *Request {
	return &Request{Type: MsgGetRecentLogs, Count: count}
}

// NewSetHotspotRequest asks the helper to turn the hotspot on or off.
func NewSetHotspotRequest(enabled bool) *Request {
	return &Request{Type: MsgSetHotspot, Enabled: &enabled}
}

// NewOKResponse creates a success response.
func NewOKResponse() *Response {
	return &Response{Type: MsgOK, Success: true}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(err string) *Response {
	return &Response{Type: MsgError, Success: false, Error: err}
}

// NewStatusResponse creates a status response.
func NewStatusResponse(status *StatusData) *Response {
	return &Response{Type: MsgStatusResponse, Success: true, Data: status}
}

// NewRecentLogsResponse creates a recent logs response.
func NewRecentLogsResponse(entries []LogEntryData) *Response {
	if entries == nil {
		entries = []LogEntryData{}
	}
	return &Response{Type: MsgRecentLogs, Success: true, Data: &RecentLogsData{Entries: entries}}
}

// NewReloadConfigResponse creates a reload config response. A reload that
// failed still travels as a successful response carrying data.Error.
func NewReloadConfigResponse(data *ReloadConfigData) *Response {
	return &Response{Type: MsgReloadConfigResponse, Success: true, Data: data}
}

// NewSetHotspotResponse creates a set hotspot response.
func NewSetHotspotResponse(data *SetHotspotData) *Response {
	return &Response{Type: MsgSetHotspotResponse, Success: true, Data: data}
}

// Encode serializes a request to JSON.
func (r *Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Encode serializes a response to JSON.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRequest deserializes a request from JSON.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeResponse deserializes a response from JSON.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatusData extracts StatusData from a response.
// Returns nil if the response doesn't contain status data.
func (r *Response) GetStatusData() *StatusData {
	return extractData[StatusData](r.Data)
}

// GetRecentLogsData extracts RecentLogsData from a response.
func (r *Response) GetRecentLogsData() *RecentLogsData {
	return extractData[RecentLogsData](r.Data)
}

// GetReloadConfigData extracts ReloadConfigData from a response.
func (r *Response) GetReloadConfigData() *ReloadConfigData {
	return extractData[ReloadConfigData](r.Data)
}

// GetSetHotspotData extracts SetHotspotData from a response.
func (r *Response) GetSetHotspotData() *SetHotspotData {
	return extractData[SetHotspotData](r.Data)
}

// extractData handles both in-process values and the map[string]interface{}
// that json.Unmarshal produces for Response.Data.
func extractData[T any](data interface{}) *T {
	switch v := data.(type) {
	case nil:
		return nil
	case *T:
		return v
	case T:
		return &v
	case map[string]interface{}:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var out T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil
		}
		return &out
	}
	return nil
}
