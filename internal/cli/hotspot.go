package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/cmdrunner"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/daemon"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/hotspot"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/ipc"
)

// newHotspotCmd creates the 'hotspot' command group.
func newHotspotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotspot",
		Short: "Turn the hotspot on or off directly",
		Long: `One-shot hotspot operations using the configured backend, for
diagnostics.

When the helper is running, on and off are handed to it and queued behind
any operation it is already running; with auto-manage on it will undo a
manual change on its next status poll or uplink change. Otherwise they run
in this process and wait for the backend to finish.`,
	}

	cmd.AddCommand(newHotspotSetCmd("on", true))
	cmd.AddCommand(newHotspotSetCmd("off", false))
	cmd.AddCommand(newHotspotQueryCmd())

	return cmd
}

// configuredBackend builds the backend selected by the config file.
func configuredBackend() (hotspot.Backend, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	factory := daemon.HotspotBackends(cmdrunner.NewExecRunner(), GetLogger())
	return factory(store.Current())
}

func newHotspotSetCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Turn the hotspot %s", use),
		RunE: func(cmd *cobra.Command, args []string) error {
			var helper hotspotRequester
			if ipc.InUse(ipc.DefaultAddress()) {
				helper = ipc.NewClient()
			}
			return setHotspot(GetContext(), cmd.OutOrStdout(), enabled, helper, configuredBackend)
		},
	}
}

// hotspotRequester is the part of the IPC client that queues a change in
// a running helper.
type hotspotRequester interface {
	SetHotspot(ctx context.Context, enabled bool) (*ipc.SetHotspotData, error)
}

// setHotspot goes through the running helper when there is one, so its
// executor stays the only writer. Without a helper the backend is driven
// in this process.
func setHotspot(ctx context.Context, w io.Writer, enabled bool, helper hotspotRequester, local func() (hotspot.Backend, error)) error {
	word := "off"
	if enabled {
		word = "on"
	}

	if helper != nil {
		data, err := helper.SetHotspot(ctx, enabled)
		if err != nil {
			return fmt.Errorf("failed to ask the hotspot helper: %w", err)
		}
		if data.Queued {
			fmt.Fprintf(w, "Queued %s behind the running operation (op %s).\n", data.Operation, data.OpID)
		} else {
			fmt.Fprintf(w, "Started %s (op %s).\n", data.Operation, data.OpID)
		}
		fmt.Fprintln(w, "Run 'hotspot-helper logs' to see the result.")
		return nil
	}

	backend, err := local()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Turning hotspot %s...\n", word)
	if err := backend.SetEnabled(ctx, enabled); err != nil {
		return fmt.Errorf("failed to turn hotspot %s: %w", word, err)
	}
	fmt.Fprintf(w, "Hotspot is %s.\n", word)
	return nil
}

func newHotspotQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query",
		Short: "Ask the backend whether the hotspot is on",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := configuredBackend()
			if err != nil {
				return err
			}

			if t, ok := backend.(*hotspot.Tethering); ok {
				state, err := t.QueryState(GetContext())
				if err != nil {
					return fmt.Errorf("failed to query hotspot: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Hotspot: %s\n", state)
				return nil
			}

			on, err := backend.QueryEnabled(GetContext())
			if err != nil {
				return fmt.Errorf("failed to query hotspot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hotspot: %s\n", onOffUnknown(&on))
			return nil
		},
	}
}
