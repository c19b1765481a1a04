// Package cli provides configuration management commands.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helloworld-m1/WiFi-hotspot-helper/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hotspot-helper configuration",
		Long: `Configuration management commands for hotspot-helper.

Commands:
  show  - Display current configuration
  set   - Change settings and notify the running helper
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// openStore opens the config store for --config or the default path.
func openStore() (*config.Store, error) {
	store, err := config.NewStore(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return store, nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	var showSecret bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n\n", store.Path())
			writeConfig(cmd.OutOrStdout(), store.Current(), showSecret)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSecret, "show-passphrase", false, "Print the passphrase instead of masking it")

	return cmd
}

// writeConfig prints cfg. The passphrase is masked unless showSecret.
func writeConfig(w io.Writer, cfg *config.HotspotConfig, showSecret bool) {
	passphrase := "(not set)"
	if cfg.Hotspot.Passphrase != "" {
		if showSecret {
			passphrase = cfg.Hotspot.Passphrase
		} else {
			passphrase = strings.Repeat("*", len(cfg.Hotspot.Passphrase))
		}
	}

	fmt.Fprintln(w, "[hotspot]")
	fmt.Fprintf(w, "  Name: %s\n", orNone(cfg.Hotspot.Name))
	fmt.Fprintf(w, "  Passphrase: %s\n", passphrase)
	fmt.Fprintf(w, "  Backend: %s\n", cfg.Hotspot.Backend)
	fmt.Fprintln(w, "[manage]")
	fmt.Fprintf(w, "  Auto-manage: %s\n", yesNo(cfg.Manage.AutoManage))
	fmt.Fprintf(w, "  Adapter: %s\n", orNone(cfg.Manage.AdapterID))
	fmt.Fprintf(w, "  Tick: %ds\n", cfg.Manage.TickSeconds)
	fmt.Fprintf(w, "  Status Interval: %ds\n", cfg.Manage.StatusIntervalSeconds)
	fmt.Fprintln(w, "[advanced]")
	if cfg.Advanced.LegacyCodePage == 0 {
		fmt.Fprintln(w, "  Legacy Code Page: auto")
	} else {
		fmt.Fprintf(w, "  Legacy Code Page: %d\n", cfg.Advanced.LegacyCodePage)
	}
	fmt.Fprintln(w, "[notify]")
	fmt.Fprintf(w, "  Notifications: %s\n", yesNo(cfg.Notify.Enabled))
}

// configChanges holds the flags given to 'config set'. Nil fields are left
// unchanged.
type configChanges struct {
	Name           *string
	Passphrase     *string
	Backend        *string
	AutoManage     *bool
	TickSeconds    *int
	StatusInterval *int
	LegacyCodePage *int
	Notify         *bool
}

func (c configChanges) empty() bool {
	return c.Name == nil && c.Passphrase == nil && c.Backend == nil && c.AutoManage == nil &&
		c.TickSeconds == nil && c.StatusInterval == nil && c.LegacyCodePage == nil && c.Notify == nil
}

// apply writes the changes into cfg. Validation happens when the store saves.
func (c configChanges) apply(cfg *config.HotspotConfig, backend config.BackendKind) {
	if c.Name != nil {
		cfg.Hotspot.Name = strings.TrimSpace(*c.Name)
	}
	if c.Passphrase != nil {
		cfg.Hotspot.Passphrase = *c.Passphrase
	}
	if c.Backend != nil {
		cfg.Hotspot.Backend = backend
	}
	if c.AutoManage != nil {
		cfg.Manage.AutoManage = *c.AutoManage
	}
	if c.TickSeconds != nil {
		cfg.Manage.TickSeconds = *c.TickSeconds
	}
	if c.StatusInterval != nil {
		cfg.Manage.StatusIntervalSeconds = *c.StatusInterval
	}
	if c.LegacyCodePage != nil {
		cfg.Advanced.LegacyCodePage = *c.LegacyCodePage
	}
	if c.Notify != nil {
		cfg.Notify.Enabled = *c.Notify
	}
}

// saveChanges applies changes to the store's config and saves it. Nothing
// is written when the result does not validate.
func saveChanges(store *config.Store, changes configChanges) (*config.HotspotConfig, error) {
	var backend config.BackendKind
	if changes.Backend != nil {
		kind, err := config.ParseBackendKind(*changes.Backend)
		if err != nil {
			return nil, err
		}
		backend = kind
	}

	cfg, err := store.Update(func(cfg *config.HotspotConfig) {
		changes.apply(cfg, backend)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	var (
		name           string
		passphrase     string
		backend        string
		autoManage     bool
		tickSeconds    int
		statusInterval int
		legacyCodePage int
		notifications  bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long: `Change one or more settings, save the config file and tell the
running helper to pick them up. A running hotspot is restarted with the new
name and passphrase.

Examples:
  hotspot-helper config set --name Home --passphrase secret123
  hotspot-helper config set --backend mobile
  hotspot-helper config set --auto-manage=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes configChanges
			flags := cmd.Flags()
			if flags.Changed("name") {
				changes.Name = &name
			}
			if flags.Changed("passphrase") {
				changes.Passphrase = &passphrase
			}
			if flags.Changed("backend") {
				changes.Backend = &backend
			}
			if flags.Changed("auto-manage") {
				changes.AutoManage = &autoManage
			}
			if flags.Changed("tick-seconds") {
				changes.TickSeconds = &tickSeconds
			}
			if flags.Changed("status-interval") {
				changes.StatusInterval = &statusInterval
			}
			if flags.Changed("legacy-code-page") {
				changes.LegacyCodePage = &legacyCodePage
			}
			if flags.Changed("notify") {
				changes.Notify = &notifications
			}
			if changes.empty() {
				return fmt.Errorf("nothing to change (see --help)")
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			if _, err := saveChanges(store, changes); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", store.Path())
			fmt.Fprintln(cmd.OutOrStdout(), notifyDaemon(GetContext()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Hotspot name (SSID)")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Hotspot passphrase (8-63 characters, empty to clear)")
	cmd.Flags().StringVar(&backend, "backend", "", "Backend: netsh or mobile")
	cmd.Flags().BoolVar(&autoManage, "auto-manage", false, "Follow the bound adapter automatically")
	cmd.Flags().IntVar(&tickSeconds, "tick-seconds", config.DefaultTickSeconds, "Loop period in seconds (takes effect on restart)")
	cmd.Flags().IntVar(&statusInterval, "status-interval", config.DefaultStatusIntervalSeconds, "Seconds between hotspot status queries (takes effect on restart)")
	cmd.Flags().IntVar(&legacyCodePage, "legacy-code-page", 0, "OEM code page for tool output (0 = ask the OS)")
	cmd.Flags().BoolVar(&notifications, "notify", true, "Show tray notifications")

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				p, err := config.DefaultHotspotConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
