package hotspot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/cmdrunner"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
)

const powershellProgram = "powershell.exe"

var timeoutStateRe = regexp.MustCompile(`Tethering (start|stop) timed out\. OperationalState=(\d+)`)

// Tethering drives the Windows Mobile Hotspot through a PowerShell bridge
// to NetworkOperatorTetheringManager.
type Tethering struct {
	profile        config.HotspotProfile
	runner         cmdrunner.Runner
	legacyCodePage int
	logger         *logging.Logger
}

// NewTethering creates the Mobile Hotspot backend for one operation.
func NewTethering(profile config.HotspotProfile, runner cmdrunner.Runner, legacyCodePage int, logger *logging.Logger) *Tethering {
	return &Tethering{profile: profile, runner: runner, legacyCodePage: legacyCodePage, logger: logger}
}

// SetEnabled starts or stops tethering and waits up to 30 s for the
// operational state to follow. When enabling, the SSID and passphrase are
// applied best effort; an empty value keeps what Windows has configured.
func (m *Tethering) SetEnabled(ctx context.Context, enabled bool) error {
	kind, op := scriptDisable, "stop"
	if enabled {
		kind, op = scriptEnable, "start"
	}

	script := buildTetheringScript(kind, m.profile.AdapterID, strings.TrimSpace(m.profile.Name), m.profile.Passphrase)
	_, err := m.run(ctx, op, script, MutationTimeout)
	return err
}

// QueryEnabled reports whether tethering is on. Transitioning and unknown
// states count as off.
func (m *Tethering) QueryEnabled(ctx context.Context) (bool, error) {
	state, err := m.QueryState(ctx)
	if err != nil {
		return false, err
	}
	return state == TetheringOn, nil
}

// QueryState returns the raw tethering operational state.
func (m *Tethering) QueryState(ctx context.Context) (TetheringState, error) {
	script := buildTetheringScript(scriptQuery, m.profile.AdapterID, "", "")
	stdout, err := m.run(ctx, "query", script, QueryTimeout)
	if err != nil {
		return TetheringUnknown, err
	}

	state, ok := parseTetheringState(stdout)
	if !ok {
		return TetheringUnknown, &ExternalToolError{
			Tool:   "powershell",
			Op:     "query",
			Output: "cannot parse tethering state: " + stdout,
		}
	}
	return state, nil
}

// run executes the script and returns trimmed stdout. A non-zero exit is
// mapped to ErrNoConnectionProfile, TimeoutError or ExternalToolError.
func (m *Tethering) run(ctx context.Context, op, script string, timeout time.Duration) (string, error) {
	m.logger.Debug().Str("op", op).Msg("Running tethering script")

	out, err := m.runner.Run(ctx, cmdrunner.Command{
		Path:    powershellProgram,
		Args:    []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", script},
		Timeout: timeout,
	})
	if err != nil {
		return "", &ExternalToolError{Tool: "powershell", Op: op, ExitCode: -1, Err: err}
	}

	stdout := strings.TrimSpace(cmdrunner.StripNUL(cmdrunner.DecodeAuto(out.Stdout, m.legacyCodePage)))
	stderr := strings.TrimSpace(cmdrunner.StripNUL(cmdrunner.DecodeAuto(out.Stderr, m.legacyCodePage)))

	if out.ExitCode != 0 {
		msg := stderr
		if msg == "" {
			msg = stdout
		}
		return stdout, classifyScriptError(op, out.ExitCode, msg)
	}
	return stdout, nil
}

func classifyScriptError(op string, exitCode int, msg string) error {
	if strings.Contains(msg, "No connection profile.") {
		return fmt.Errorf("tethering %s: %w", op, ErrNoConnectionProfile)
	}
	if m := timeoutStateRe.FindStringSubmatch(msg); m != nil {
		state, _ := strconv.Atoi(m[2])
		return &TimeoutError{Op: m[1], LastState: TetheringState(state)}
	}
	return &ExternalToolError{Tool: "powershell", Op: op, ExitCode: exitCode, Output: msg}
}

// parseTetheringState reads the last non-empty stdout line as an integer.
func parseTetheringState(stdout string) (TetheringState, bool) {
	lines := strings.FieldsFunc(stdout, func(r rune) bool { return r == '\r' || r == '\n' })
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return TetheringUnknown, false
		}
		return TetheringState(n), true
	}
	return TetheringUnknown, false
}
