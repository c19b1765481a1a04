package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/cmdrunner"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/daemon"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/elevation"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

// newRunCmd creates the 'run' command.
func newRunCmd() *cobra.Command {
	var (
		tick       time.Duration
		logFile    string
		runOnce    bool
		background bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation loop",
		Long: `Start the helper in the foreground. Every tick it probes the bound
adapter and turns the hotspot on or off to match.

Press Ctrl+C, or run 'hotspot-helper stop', to stop it.

Examples:
  # Run with the interval from the config file
  hotspot-helper run

  # Reconcile once and exit
  hotspot-helper run --once

  # Detach from the terminal
  hotspot-helper run --background`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if background {
				return startInBackground(cmd)
			}
			if tick != 0 && (tick < time.Second || tick > time.Minute) {
				return fmt.Errorf("--tick must be between 1s and 1m")
			}
			return runHelper(GetContext(), tick, logFile, runOnce)
		},
	}

	cmd.Flags().DurationVar(&tick, "tick", 0, "Loop period (default: tick_seconds from the config file)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: hotspot-helper.log in the log directory)")
	cmd.Flags().BoolVar(&runOnce, "once", false, "Reconcile once, wait for any hotspot operation and exit")
	cmd.Flags().BoolVar(&background, "background", false, "Start the helper detached from this terminal")

	return cmd
}

// startInBackground re-launches the current executable with the same
// flags minus --background.
func startInBackground(cmd *cobra.Command) error {
	if ipc.InUse(ipc.DefaultAddress()) {
		return fmt.Errorf("hotspot helper is already running")
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	args := []string{"run"}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name != "background" {
			args = append(args, "--"+f.Name+"="+f.Value.String())
		}
	})

	pid, err := daemon.StartBackground(exe, args)
	if err != nil {
		return err
	}
	fmt.Printf("Hotspot helper started in the background (PID %d)\n", pid)
	fmt.Printf("Logs: %s\n", config.LogDirectory())
	return nil
}

// runHelper wires the daemon, its logger and the IPC server together and
// blocks until ctx ends or a Shutdown request arrives.
func runHelper(ctx context.Context, tick time.Duration, logFile string, runOnce bool) error {
	if !runOnce && ipc.InUse(ipc.DefaultAddress()) {
		return fmt.Errorf("hotspot helper is already running (use 'hotspot-helper stop' first)")
	}

	store, err := config.NewStore(cfgFile)
	if err != nil {
		daemon.WriteStartupLog("failed to load config: %v", err)
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logFile == "" {
		if err := config.EnsureLogDirectory(); err != nil {
			daemon.WriteStartupLog("failed to create log directory: %v", err)
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile = config.DefaultLogFile()
	}

	logger, logWriter := daemon.CreateDaemonLogger(daemon.DaemonLogConfig{
		LogFile:    logFile,
		Console:    !daemon.IsBackgroundChild(),
		BufferSize: daemon.DefaultLogBufferSize,
	})
	defer logWriter.Close()

	cfg := store.Current()
	if runtime.GOOS == "windows" && cfg.Hotspot.Backend == config.BackendSharedConnection && !elevation.IsElevated() {
		logger.Warn().Msg("Not running as administrator; netsh may refuse to start the hosted network")
	}

	daemonCfg := daemon.ConfigFromHotspot(cfg)
	if tick != 0 {
		daemonCfg.TickInterval = tick
	}

	runner := cmdrunner.NewExecRunner()
	backends := daemon.HotspotBackends(runner, logger.Stage("backend"))
	d := daemon.New(store, netadapter.NewSystemSource(), backends, daemonCfg, logger)

	if runOnce {
		fmt.Println("Mode: Single pass (--once)")
		if err := d.RunOnce(ctx); err != nil {
			return err
		}
		d.GetStatus().WriteStatus(os.Stdout)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := ipc.NewServer(daemon.NewIPCHandler(d, logWriter.GetBuffer(), cancel), logger.Stage("ipc"))
	if err := server.Start(); err != nil {
		daemon.WriteStartupLog("failed to start IPC server at %s: %v", server.Address(), err)
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer server.Stop()

	if err := d.Start(ctx); err != nil {
		daemon.WriteStartupLog("failed to start daemon: %v", err)
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	daemon.ClearStartupLog()

	logger.Info().
		Str("config", store.Path()).
		Str("log_file", logFile).
		Str("ipc", server.Address()).
		Msg("Hotspot helper running")

	<-ctx.Done()

	d.Stop()
	return nil
}

// newStatusCmd creates the 'status' command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running helper's state",
		Long: `Ask the running helper for its current state: the bound adapter's
reachability, the desired and observed hotspot state, and the last
hotspot operation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ipc.NewClient()
			status, err := client.GetStatus(GetContext())
			if err != nil {
				return fmt.Errorf("hotspot helper is not running: %w", err)
			}
			writeStatusData(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

// writeStatusData prints a status snapshot received over IPC.
func writeStatusData(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "Hotspot Helper %s (up %s)\n", s.Version, s.Uptime)
	fmt.Fprintf(w, "  Auto-manage: %s\n", yesNo(s.AutoManage))
	fmt.Fprintf(w, "  Hotspot Name: %s\n", orNone(s.HotspotName))
	fmt.Fprintf(w, "  Backend: %s\n", s.Backend)
	fmt.Fprintf(w, "  Adapter: %s\n", orNone(s.AdapterID))
	if s.Reachable {
		fmt.Fprintf(w, "  Uplink: connected (%s)\n", s.IPv4)
	} else if s.ReachReason != "" {
		fmt.Fprintf(w, "  Uplink: down (%s)\n", s.ReachReason)
	} else {
		fmt.Fprintf(w, "  Uplink: unknown\n")
	}
	fmt.Fprintf(w, "  Desired: %s\n", onOffUnknown(s.Desired))
	fmt.Fprintf(w, "  Hotspot: %s\n", onOffUnknown(s.Observed))
	if s.LastStatusPoll != nil {
		fmt.Fprintf(w, "  Last Status Poll: %s\n", s.LastStatusPoll.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "  Executor: %s\n", s.Executor)
	if s.InFlight != "" {
		fmt.Fprintf(w, "  In Flight: %s\n", s.InFlight)
	}
	if s.Queued != "" {
		fmt.Fprintf(w, "  Queued: %s\n", s.Queued)
	}
	if s.LastOpResult != "" {
		fmt.Fprintf(w, "  Last Operation: %s\n", s.LastOpResult)
	}
	if s.LastError != "" {
		fmt.Fprintf(w, "  Last Error: %s\n", s.LastError)
	}
}

// newLogsCmd creates the 'logs' command.
func newLogsCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log entries from the running helper",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			client := ipc.NewClient()
			entries, err := client.GetRecentLogs(GetContext(), count)
			if err != nil {
				return fmt.Errorf("hotspot helper is not running: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries.")
				return nil
			}
			writeLogEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", ipc.DefaultRecentLogs, "Number of entries to show")

	return cmd
}

// writeLogEntries prints entries oldest first, one line each.
func writeLogEntries(w io.Writer, entries []ipc.LogEntryData) {
	for _, e := range entries {
		ts := e.Timestamp
		if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
			ts = t.Local().Format("2006-01-02 15:04:05")
		}
		line := fmt.Sprintf("%s [%s] %s: %s", ts, e.Level, e.Stage, e.Message)
		if len(e.Fields) > 0 {
			keys := make([]string, 0, len(e.Fields))
			for k := range e.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			var b strings.Builder
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
			}
			line += b.String()
		}
		fmt.Fprintln(w, line)
	}
}

// newStopCmd creates the 'stop' command.
func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running helper",
		Long: `Ask the running helper to stop. A hotspot operation already in
progress is allowed to finish; the hotspot itself is left as it is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ipc.NewClient()
			if !client.IsRunning(GetContext()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Hotspot helper is not running.")
				return nil
			}
			if err := client.Shutdown(GetContext()); err != nil {
				return fmt.Errorf("failed to stop hotspot helper: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Hotspot helper is stopping.")
			return nil
		},
	}
}

// notifyDaemon tells a running helper to re-read the config file. Returns
// a line describing what happened.
func notifyDaemon(ctx context.Context) string {
	client := ipc.NewClient()
	if !client.IsRunning(ctx) {
		return "Hotspot helper is not running; changes apply on next start."
	}
	result, err := client.ReloadConfig(ctx)
	if err != nil {
		GetLogger().Warn().Err(err).Msg("Failed to notify hotspot helper")
		return fmt.Sprintf("Hotspot helper did not accept the change: %v", err)
	}
	if result.Restarting {
		return "Hotspot helper reloaded the config and is restarting the hotspot."
	}
	return "Hotspot helper reloaded the config."
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func onOffUnknown(b *bool) string {
	switch {
	case b == nil:
		return "unknown"
	case *b:
		return "on"
	default:
		return "off"
	}
}
