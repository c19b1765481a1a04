package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/netadapter"
)

// newAdaptersCmd creates the 'adapters' command group.
func newAdaptersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adapters",
		Short: "List network adapters and bind the upstream one",
		Long: `The bound adapter is the upstream connection the hotspot follows:
the hotspot is turned on while it has a usable IPv4 address.`,
	}

	cmd.AddCommand(newAdaptersListCmd())
	cmd.AddCommand(newAdaptersBindCmd())

	return cmd
}

// newAdaptersListCmd creates the 'adapters list' command.
func newAdaptersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List network adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapters, err := netadapter.NewSystemSource().List(GetContext())
			if err != nil {
				return fmt.Errorf("failed to list adapters: %w", err)
			}

			bound := ""
			if store, err := openStore(); err == nil {
				bound = store.Current().Manage.AdapterID
			}

			netadapter.SortAdapters(adapters)
			writeAdapters(cmd.OutOrStdout(), adapters, bound)
			return nil
		},
	}
}

// writeAdapters prints one block per adapter, marking the bound one.
func writeAdapters(w io.Writer, adapters []netadapter.Adapter, boundID string) {
	if len(adapters) == 0 {
		fmt.Fprintln(w, "No network adapters found.")
		return
	}

	for i, a := range adapters {
		mark := " "
		if boundID != "" && netadapter.SameID(a.ID, boundID) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %d. %s\n", mark, i+1, a.Name)
		fmt.Fprintf(w, "     ID: %s\n", a.ID)
		if a.Description != "" && a.Description != a.Name {
			fmt.Fprintf(w, "     Description: %s\n", a.Description)
		}
		state := "down"
		if a.Up {
			state = "up"
		}
		fmt.Fprintf(w, "     State: %s\n", state)
		if len(a.IPv4) > 0 {
			addrs := make([]string, 0, len(a.IPv4))
			for _, ip := range a.IPv4 {
				addrs = append(addrs, ip.String())
			}
			fmt.Fprintf(w, "     IPv4: %s\n", strings.Join(addrs, ", "))
		}
	}
	if boundID != "" {
		fmt.Fprintln(w, "\n* = bound adapter")
	}
}

// newAdaptersBindCmd creates the 'adapters bind' command.
func newAdaptersBindCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "bind <adapter-id>",
		Short: "Bind the upstream adapter the hotspot follows",
		Long: `Bind the adapter whose connectivity decides whether the hotspot is on.
Use the ID shown by 'hotspot-helper adapters list'; braces are optional.

Use --force to bind an adapter that is not currently present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			id, name, err := resolveAdapter(GetContext(), netadapter.NewSystemSource(), args[0], force)
			if err != nil {
				return err
			}

			if _, err := store.Update(func(cfg *config.HotspotConfig) {
				cfg.Manage.AdapterID = id
			}); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bound adapter %s (%s)\n", name, id)
			fmt.Fprintln(cmd.OutOrStdout(), notifyDaemon(GetContext()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Bind even if the adapter is not present")

	return cmd
}

// resolveAdapter looks up id and returns the adapter's own spelling of the
// ID and its name. With force, an unknown id is accepted as given.
func resolveAdapter(ctx context.Context, src netadapter.Source, id string, force bool) (string, string, error) {
	if netadapter.NormalizeID(id) == "" {
		return "", "", fmt.Errorf("adapter ID is empty")
	}

	a, err := netadapter.Snapshot(ctx, src, id)
	if err != nil {
		if force {
			return strings.TrimSpace(id), "(not present)", nil
		}
		return "", "", fmt.Errorf("adapter %q: %w", id, err)
	}
	return a.ID, a.Name, nil
}
