package hotspot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoConnectionProfile is returned when Windows has no connection profile
// to build a tethering manager from.
var ErrNoConnectionProfile = errors.New("no connection profile")

// ValidationReason identifies which profile check failed.
type ValidationReason int

const (
	ReasonNameRequired ValidationReason = iota
	ReasonPassphraseRequired
	ReasonPassphraseLength
)

// ValidationError is returned before any external tool runs when the
// profile cannot be applied by the selected backend.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ExternalToolError is returned when netsh or powershell failed, either by
// exit code or by printing a failure message with exit code 0.
type ExternalToolError struct {
	Tool     string // "netsh" or "powershell"
	Op       string // e.g. "wlan start hostednetwork"
	ExitCode int

	// Output is the full decoded output the tool produced.
	Output string

	// Hint is appended to the message when the failure has a known remedy.
	Hint string

	// Err is set when the tool could not run to completion (timeout, not found).
	Err error
}

func (e *ExternalToolError) Error() string {
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		if e.Err != nil {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s failed with exit code %d and no output", e.Tool, e.ExitCode)
		}
	}
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return fmt.Sprintf("%s %s: %s", e.Tool, e.Op, msg)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when tethering did not reach the requested state
// within the polling window.
type TimeoutError struct {
	Op        string // "start" or "stop"
	LastState TetheringState
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("tethering %s timed out (last state: %s)", e.Op, e.LastState)
}
