package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/autostart"
)

// newAutostartCmd creates the 'autostart' command group.
func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start the helper when you log on",
		Long: `Register or remove the helper in the per-user Run key so that it
starts in the background at logon. Windows only.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Start the helper at logon",
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to locate executable: %w", err)
			}
			return enableAutostart(cmd.OutOrStdout(), autostart.New(), exe, cfgFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Stop starting the helper at logon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := autostart.New().Disable(); err != nil {
				return autostartError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the helper starts at logon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeAutostartStatus(cmd.OutOrStdout(), autostart.New())
		},
	})

	return cmd
}

// enableAutostart registers exe to run the helper in the background.
func enableAutostart(w io.Writer, m autostart.Manager, exe, configPath string) error {
	args := []string{"run", "--background"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	if err := m.Enable(exe, args...); err != nil {
		return autostartError(err)
	}
	fmt.Fprintf(w, "Autostart enabled: %s\n", autostart.CommandLine(exe, args...))
	return nil
}

func writeAutostartStatus(w io.Writer, m autostart.Manager) error {
	enabled, err := m.IsEnabled()
	if err != nil {
		return autostartError(err)
	}
	if !enabled {
		fmt.Fprintln(w, "Autostart: disabled")
		return nil
	}
	command, err := m.Command()
	if err != nil {
		return autostartError(err)
	}
	fmt.Fprintf(w, "Autostart: enabled\n  Command: %s\n", command)

	if exe, err := os.Executable(); err == nil && autostart.Executable(command) != exe {
		fmt.Fprintln(w, "  Warning: registered executable differs from this one; run 'autostart enable' to update it.")
	}
	return nil
}

func autostartError(err error) error {
	if errors.Is(err, autostart.ErrUnsupported) {
		return err
	}
	return fmt.Errorf("failed to update autostart: %w", err)
}
