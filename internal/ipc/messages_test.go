package ipc

import (
	"testing"
	"time"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest(MsgGetStatus)
	if req.Type != MsgGetStatus {
		t.Errorf("expected type %q, got %q", MsgGetStatus, req.Type)
	}
	if req.Count != 0 {
		t.Errorf("expected zero count, got %d", req.Count)
	}
}

func TestRequestEncodeDecode(t *testing.T) {
	original := NewRecentLogsRequest(25)

	data, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}

	if decoded.Type != MsgGetRecentLogs {
		t.Errorf("Type mismatch: got %q, want %q", decoded.Type, MsgGetRecentLogs)
	}
	if decoded.Count != 25 {
		t.Errorf("Count mismatch: got %d, want 25", decoded.Count)
	}
}

func TestNewOKResponse(t *testing.T) {
	resp := NewOKResponse()
	if resp.Type != MsgOK {
		t.Errorf("expected type %q, got %q", MsgOK, resp.Type)
	}
	if !resp.Success {
		t.Error("expected Success = true")
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("something went wrong")
	if resp.Type != MsgError {
		t.Errorf("expected type %q, got %q", MsgError, resp.Type)
	}
	if resp.Success {
		t.Error("expected Success = false")
	}
	if resp.Error != "something went wrong" {
		t.Errorf("expected error %q, got %q", "something went wrong", resp.Error)
	}
}

func TestGetStatusData(t *testing.T) {
	on := true
	poll := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := NewStatusResponse(&StatusData{
		Version:        "v1.2.0",
		AutoManage:     true,
		Backend:        "mobile",
		AdapterID:      "{ABC}",
		Reachable:      true,
		IPv4:           "192.168.1.20",
		Desired:        &on,
		LastDispatched: &on,
		LastStatusPoll: &poll,
		Executor:       "running",
		InFlight:       "enable (auto-manage)",
	})

	// Encode and decode to simulate real IPC
	data, _ := resp.Encode()
	decoded, _ := DecodeResponse(data)

	got := decoded.GetStatusData()
	if got == nil {
		t.Fatal("GetStatusData() returned nil")
	}
	if got.Backend != "mobile" || got.AdapterID != "{ABC}" || got.IPv4 != "192.168.1.20" {
		t.Errorf("Unexpected status %+v", got)
	}
	if got.Desired == nil || !*got.Desired {
		t.Errorf("Expected desired=true, got %v", got.Desired)
	}
	if got.Observed != nil {
		t.Errorf("Expected unknown observed state, got %v", *got.Observed)
	}
	if got.LastStatusPoll == nil || !got.LastStatusPoll.Equal(poll) {
		t.Errorf("Expected poll time %v, got %v", poll, got.LastStatusPoll)
	}
	if got.Executor != "running" {
		t.Errorf("Expected executor running, got %q", got.Executor)
	}
}

func TestGetStatusDataInProcess(t *testing.T) {
	status := &StatusData{Version: "v1.2.0"}
	resp := NewStatusResponse(status)
	if resp.GetStatusData() != status {
		t.Error("Expected the same pointer back without a JSON round trip")
	}
}

func TestGetRecentLogsData(t *testing.T) {
	resp := NewRecentLogsResponse([]LogEntryData{
		{Timestamp: "2026-03-01T12:00:00Z", Level: "INFO", Stage: "reconcile", Message: "Adapter reachability changed"},
		{Timestamp: "2026-03-01T12:00:01Z", Level: "WARN", Stage: "executor", Message: "Hotspot operation failed",
			Fields: map[string]interface{}{"reason": "auto-manage"}},
	})

	data, _ := resp.Encode()
	decoded, _ := DecodeResponse(data)

	logs := decoded.GetRecentLogsData()
	if logs == nil {
		t.Fatal("GetRecentLogsData() returned nil")
	}
	if len(logs.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(logs.Entries))
	}
	if logs.Entries[1].Stage != "executor" || logs.Entries[1].Fields["reason"] != "auto-manage" {
		t.Errorf("Unexpected entry %+v", logs.Entries[1])
	}
}

func TestNewRecentLogsResponseNil(t *testing.T) {
	data, _ := NewRecentLogsResponse(nil).Encode()
	decoded, _ := DecodeResponse(data)
	logs := decoded.GetRecentLogsData()
	if logs == nil || logs.Entries == nil {
		t.Error("Expected an empty entries list, not null")
	}
}

func TestGetReloadConfigData(t *testing.T) {
	resp := NewReloadConfigResponse(&ReloadConfigData{Applied: true, Restarting: true})
	data, _ := resp.Encode()
	decoded, _ := DecodeResponse(data)

	got := decoded.GetReloadConfigData()
	if got == nil {
		t.Fatal("GetReloadConfigData() returned nil")
	}
	if !got.Applied || !got.Restarting {
		t.Errorf("Unexpected reload data %+v", got)
	}
}

func TestSetHotspotRequest(t *testing.T) {
	data, err := NewSetHotspotRequest(false).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if decoded.Type != MsgSetHotspot || decoded.Enabled == nil || *decoded.Enabled {
		t.Errorf("Unexpected request %+v", decoded)
	}

	if NewRequest(MsgGetStatus).Enabled != nil {
		t.Error("Expected Enabled to be unset on other requests")
	}
}

func TestGetSetHotspotData(t *testing.T) {
	resp := NewSetHotspotResponse(&SetHotspotData{OpID: "abc", Operation: "enable (manual)", Queued: true})
	data, _ := resp.Encode()
	decoded, _ := DecodeResponse(data)

	got := decoded.GetSetHotspotData()
	if got == nil {
		t.Fatal("GetSetHotspotData() returned nil")
	}
	if got.OpID != "abc" || got.Operation != "enable (manual)" || !got.Queued {
		t.Errorf("Unexpected set hotspot data %+v", got)
	}
}

func TestGetDataWrongShape(t *testing.T) {
	resp := &Response{Type: MsgStatusResponse, Success: true, Data: "not an object"}
	if resp.GetStatusData() != nil {
		t.Error("Expected nil for non-object data")
	}
	if NewOKResponse().GetReloadConfigData() != nil {
		t.Error("Expected nil for a response without data")
	}
}

func TestPipeName(t *testing.T) {
	if PipeName != `\\.\pipe\wifi-hotspot-helper` {
		t.Errorf("unexpected PipeName: %q", PipeName)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := DecodeRequest([]byte("not valid json")); err == nil {
		t.Error("expected error for invalid request JSON")
	}
	if _, err := DecodeResponse([]byte("not valid json")); err == nil {
		t.Error("expected error for invalid response JSON")
	}
}
