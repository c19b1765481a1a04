package hotspot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/cmdrunner"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/logging"
)

const netshProgram = "netsh.exe"

// Substrings that mean netsh failed even though it exited 0.
var netshFailureMarkers = []string{
	"failed",
	"未能",
	"失败",
	"couldn't be started",
	"not in the correct state",
	"不可用",
}

// Substrings of a start failure caused by a driver without hosted network support.
var netshUnsupportedMarkers = []string{
	"not in the correct state",
	"组或资源的状态不是",
	"not available",
	"不可用",
}

const hostedNetworkUnsupportedHint = "The wireless driver or this version of Windows may not support Hosted Network. " +
	"Switch the backend to mobile (Windows Mobile Hotspot) and try again."

// HostedNetwork drives `netsh wlan ... hostednetwork`.
type HostedNetwork struct {
	profile config.HotspotProfile
	console *cmdrunner.Console
	logger  *logging.Logger
}

// NewHostedNetwork creates the netsh backend for one operation.
func NewHostedNetwork(profile config.HotspotProfile, console *cmdrunner.Console, logger *logging.Logger) *HostedNetwork {
	return &HostedNetwork{profile: profile, console: console, logger: logger}
}

// ValidateHostedNetworkProfile checks what netsh needs to start a hosted
// network: a name and a WPA2-PSK passphrase of 8-63 characters.
func ValidateHostedNetworkProfile(p config.HotspotProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Reason: ReasonNameRequired, Message: "hotspot name is empty"}
	}
	if p.Passphrase == "" {
		return &ValidationError{
			Reason:  ReasonPassphraseRequired,
			Message: "netsh hosted network requires a passphrase; switch to the mobile backend or set an 8-63 character passphrase",
		}
	}
	if n := utf8.RuneCountInString(p.Passphrase); n < config.MinPassphraseLength || n > config.MaxPassphraseLength {
		return &ValidationError{Reason: ReasonPassphraseLength, Message: "passphrase must be 8-63 characters"}
	}
	return nil
}

// SetEnabled configures and starts, or stops, the hosted network.
func (h *HostedNetwork) SetEnabled(ctx context.Context, enabled bool) error {
	if !enabled {
		_, err := h.run(ctx, "wlan stop hostednetwork", "wlan stop hostednetwork")
		return err
	}

	if err := ValidateHostedNetworkProfile(h.profile); err != nil {
		return err
	}

	setArgs := fmt.Sprintf(`wlan set hostednetwork mode=allow ssid="%s" key="%s"`,
		stripDoubleQuotes(strings.TrimSpace(h.profile.Name)), stripDoubleQuotes(h.profile.Passphrase))
	if _, err := h.run(ctx, "wlan set hostednetwork", setArgs); err != nil {
		return err
	}

	if _, err := h.run(ctx, "wlan start hostednetwork", "wlan start hostednetwork"); err != nil {
		var toolErr *ExternalToolError
		if errors.As(err, &toolErr) && containsAnyFold(toolErr.Output, netshUnsupportedMarkers) {
			toolErr.Hint = hostedNetworkUnsupportedHint
		}
		return err
	}
	return nil
}

// QueryEnabled reports whether the hosted network is started.
func (h *HostedNetwork) QueryEnabled(ctx context.Context) (bool, error) {
	out, err := h.run(ctx, "wlan show hostednetwork", "wlan show hostednetwork")
	if err != nil {
		return false, err
	}
	return parseHostedNetworkStarted(out), nil
}

// run executes netsh with args. op names the command in logs and errors,
// so the passphrase in args never leaves this function.
func (h *HostedNetwork) run(ctx context.Context, op, args string) (string, error) {
	h.logger.Debug().Str("op", op).Msg("Running netsh")

	res, err := h.console.Run(ctx, NetshTimeout, netshProgram, args)
	if err != nil {
		return "", &ExternalToolError{Tool: "netsh", Op: op, ExitCode: -1, Err: err}
	}

	out := res.Combined()
	if res.ExitCode != 0 {
		return out, &ExternalToolError{Tool: "netsh", Op: op, ExitCode: res.ExitCode, Output: out}
	}
	if looksFailed(out) {
		return out, &ExternalToolError{Tool: "netsh", Op: op, Output: out}
	}
	return out, nil
}

// looksFailed detects failure text printed with exit code 0.
func looksFailed(out string) bool {
	if containsAnyFold(out, netshFailureMarkers) {
		return true
	}
	lower := strings.ToLower(out)
	return strings.Contains(lower, "hosted network") && strings.Contains(lower, "not available")
}

// parseHostedNetworkStarted classifies `netsh wlan show hostednetwork`
// output. It reads the status line first and falls back to a substring
// check over the whole output.
func parseHostedNetworkStarted(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(key))
		if k != "status" && k != "状态" {
			continue
		}
		if started, known := classifyStatus(value); known {
			return started
		}
	}

	lower := strings.ToLower(out)
	if strings.Contains(lower, "not started") || strings.Contains(out, "未启动") {
		return false
	}
	return strings.Contains(lower, "started") || strings.Contains(out, "已启动")
}

func classifyStatus(value string) (started, known bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(v, "not started"), strings.Contains(v, "stopped"),
		strings.Contains(v, "已停止"), strings.Contains(v, "未启动"):
		return false, true
	case strings.Contains(v, "started"), strings.Contains(v, "已启动"):
		return true, true
	}
	return false, false
}

func stripDoubleQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

func containsAnyFold(s string, subs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
