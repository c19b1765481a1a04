// Package config provides configuration management for WiFi Hotspot Helper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/ini.v1"
)

// BackendKind selects which OS mechanism turns the hotspot on and off.
type BackendKind string

const (
	// BackendSharedConnection drives the legacy hosted network through netsh.
	BackendSharedConnection BackendKind = "netsh"

	// BackendOSTethering drives the Windows Mobile Hotspot through PowerShell/WinRT.
	BackendOSTethering BackendKind = "mobile"
)

// ParseBackendKind accepts the canonical names and their aliases.
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "netsh", "shared-connection", "hostednetwork":
		return BackendSharedConnection, nil
	case "mobile", "os-tethering", "tethering":
		return BackendOSTethering, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Passphrase length bounds for WPA2-PSK.
const (
	MinPassphraseLength = 8
	MaxPassphraseLength = 63
)

// Defaults.
const (
	DefaultTickSeconds           = 3
	DefaultStatusIntervalSeconds = 10
)

// HotspotConfig represents the helper configuration file.
//
// Config file location:
//   - Windows: %APPDATA%\WiFi hotspot helper\hotspot.conf
//   - Unix: ~/.config/wifi-hotspot-helper/hotspot.conf
//
// INI format:
//
//	[hotspot]
//	name = Home
//	passphrase = abcdefgh
//	backend = netsh
//
//	[manage]
//	auto_manage = true
//	adapter_id = {4D36E972-E325-11CE-BFC1-08002BE10318}
//	tick_seconds = 3
//	status_interval_seconds = 10
//
//	[advanced]
//	legacy_code_page = 0
//
//	[notify]
//	enabled = true
//	show_hotspot_changes = true
//	show_failures = true
type HotspotConfig struct {
	Hotspot  HotspotSection
	Manage   ManageSection
	Advanced AdvancedSection
	Notify   NotifySection
}

// HotspotSection holds what the hotspot advertises.
type HotspotSection struct {
	// Name is the SSID. Required.
	Name string `ini:"name"`

	// Passphrase is empty or 8-63 characters.
	// The netsh backend refuses an empty passphrase; the mobile backend keeps
	// whatever the OS already has configured.
	Passphrase string `ini:"passphrase"`

	// Backend is "netsh" (default) or "mobile".
	Backend BackendKind `ini:"backend"`
}

// ManageSection controls the reconciliation loop.
type ManageSection struct {
	// AutoManage enables the loop. Default: false
	AutoManage bool `ini:"auto_manage"`

	// AdapterID is the bound upstream adapter GUID, braces optional.
	AdapterID string `ini:"adapter_id"`

	// TickSeconds is the loop period.
	// Minimum: 1, Maximum: 60, Default: 3
	TickSeconds int `ini:"tick_seconds"`

	// StatusIntervalSeconds is the minimum gap between hotspot status queries.
	// Minimum: 1, Maximum: 600, Default: 10
	StatusIntervalSeconds int `ini:"status_interval_seconds"`
}

// AdvancedSection holds rarely changed knobs.
type AdvancedSection struct {
	// LegacyCodePage overrides the OEM code page used to re-decode garbled
	// tool output. 0 asks the OS.
	LegacyCodePage int `ini:"legacy_code_page"`
}

// NotifySection controls the tray's desktop notifications.
type NotifySection struct {
	Enabled            bool `ini:"enabled"`
	ShowHotspotChanges bool `ini:"show_hotspot_changes"`
	ShowFailures       bool `ini:"show_failures"`
}

// HotspotProfile is the slice of configuration a backend needs for one operation.
type HotspotProfile struct {
	Name       string
	Passphrase string
	Backend    BackendKind
	AdapterID  string
}

// HotspotConfig validation errors
var (
	ErrMissingName               = errors.New("hotspot name is required")
	ErrInvalidPassphraseLength   = errors.New("passphrase must be empty or 8-63 characters")
	ErrUnknownBackend            = errors.New("unknown backend (expected netsh or mobile)")
	ErrInvalidTickSeconds        = errors.New("tick_seconds must be between 1 and 60")
	ErrInvalidStatusInterval     = errors.New("status_interval_seconds must be between 1 and 600")
	ErrInvalidLegacyCodePage     = errors.New("legacy_code_page must not be negative")
	ErrConfigPathNotDeterminable = errors.New("neither APPDATA nor USERPROFILE environment variable set")
)

// ConfigDirectory returns the directory holding hotspot.conf.
//   - Windows: %APPDATA%\WiFi hotspot helper
//   - Unix: ~/.config/wifi-hotspot-helper
func ConfigDirectory() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", ErrConfigPathNotDeterminable
			}
			appData = filepath.Join(userProfile, "AppData", "Roaming")
		}
		return filepath.Join(appData, "WiFi hotspot helper"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wifi-hotspot-helper"), nil
}

// DefaultHotspotConfigPath returns the default path for the hotspot.conf file.
func DefaultHotspotConfigPath() (string, error) {
	dir, err := ConfigDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hotspot.conf"), nil
}

// NewHotspotConfig creates a new HotspotConfig with default values.
func NewHotspotConfig() *HotspotConfig {
	return &HotspotConfig{
		Hotspot: HotspotSection{
			Backend: BackendSharedConnection,
		},
		Manage: ManageSection{
			AutoManage:            false,
			TickSeconds:           DefaultTickSeconds,
			StatusIntervalSeconds: DefaultStatusIntervalSeconds,
		},
		Notify: NotifySection{
			Enabled:            true,
			ShowHotspotChanges: true,
			ShowFailures:       true,
		},
	}
}

// LoadHotspotConfig loads configuration from the hotspot.conf file.
// If path is empty, uses the default path.
// If the file doesn't exist, returns a config with default values and no error.
// An unrecognized backend falls back to netsh.
func LoadHotspotConfig(path string) (*HotspotConfig, error) {
	cfg := NewHotspotConfig()

	if path == "" {
		var err error
		path, err = DefaultHotspotConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotspot.conf: %w", err)
	}

	hotspotSection := iniFile.Section("hotspot")
	cfg.Hotspot.Name = hotspotSection.Key("name").String()
	cfg.Hotspot.Passphrase = hotspotSection.Key("passphrase").String()
	if kind, err := ParseBackendKind(hotspotSection.Key("backend").MustString(string(BackendSharedConnection))); err == nil {
		cfg.Hotspot.Backend = kind
	}

	manageSection := iniFile.Section("manage")
	cfg.Manage.AutoManage = manageSection.Key("auto_manage").MustBool(false)
	cfg.Manage.AdapterID = strings.TrimSpace(manageSection.Key("adapter_id").String())
	cfg.Manage.TickSeconds = manageSection.Key("tick_seconds").MustInt(DefaultTickSeconds)
	cfg.Manage.StatusIntervalSeconds = manageSection.Key("status_interval_seconds").MustInt(DefaultStatusIntervalSeconds)

	advSection := iniFile.Section("advanced")
	cfg.Advanced.LegacyCodePage = advSection.Key("legacy_code_page").MustInt(0)

	notifySection := iniFile.Section("notify")
	cfg.Notify.Enabled = notifySection.Key("enabled").MustBool(true)
	cfg.Notify.ShowHotspotChanges = notifySection.Key("show_hotspot_changes").MustBool(true)
	cfg.Notify.ShowFailures = notifySection.Key("show_failures").MustBool(true)

	return cfg, nil
}

// SaveHotspotConfig saves configuration to the hotspot.conf file.
// If path is empty, uses the default path.
// Creates parent directories if they don't exist.
func SaveHotspotConfig(cfg *HotspotConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultHotspotConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	hotspotSection, err := iniFile.NewSection("hotspot")
	if err != nil {
		return fmt.Errorf("failed to create hotspot section: %w", err)
	}
	hotspotSection.Key("name").SetValue(cfg.Hotspot.Name)
	hotspotSection.Key("passphrase").SetValue(cfg.Hotspot.Passphrase)
	hotspotSection.Key("backend").SetValue(string(cfg.Hotspot.Backend))

	manageSection, err := iniFile.NewSection("manage")
	if err != nil {
		return fmt.Errorf("failed to create manage section: %w", err)
	}
	manageSection.Key("auto_manage").SetValue(strconv.FormatBool(cfg.Manage.AutoManage))
	manageSection.Key("adapter_id").SetValue(cfg.Manage.AdapterID)
	manageSection.Key("tick_seconds").SetValue(strconv.Itoa(cfg.Manage.TickSeconds))
	manageSection.Key("status_interval_seconds").SetValue(strconv.Itoa(cfg.Manage.StatusIntervalSeconds))

	advSection, err := iniFile.NewSection("advanced")
	if err != nil {
		return fmt.Errorf("failed to create advanced section: %w", err)
	}
	advSection.Key("legacy_code_page").SetValue(strconv.Itoa(cfg.Advanced.LegacyCodePage))

	notifySection, err := iniFile.NewSection("notify")
	if err != nil {
		return fmt.Errorf("failed to create notify section: %w", err)
	}
	notifySection.Key("enabled").SetValue(strconv.FormatBool(cfg.Notify.Enabled))
	notifySection.Key("show_hotspot_changes").SetValue(strconv.FormatBool(cfg.Notify.ShowHotspotChanges))
	notifySection.Key("show_failures").SetValue(strconv.FormatBool(cfg.Notify.ShowFailures))

	// Passphrase is stored in clear text, keep the file private
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks if the configuration can be saved.
// Returns nil if valid, or an error describing what's wrong.
func (cfg *HotspotConfig) Validate() error {
	if strings.TrimSpace(cfg.Hotspot.Name) == "" {
		return ErrMissingName
	}
	if n := utf8.RuneCountInString(cfg.Hotspot.Passphrase); n != 0 && (n < MinPassphraseLength || n > MaxPassphraseLength) {
		return ErrInvalidPassphraseLength
	}
	if _, err := ParseBackendKind(string(cfg.Hotspot.Backend)); err != nil {
		return err
	}
	if cfg.Manage.TickSeconds < 1 || cfg.Manage.TickSeconds > 60 {
		return ErrInvalidTickSeconds
	}
	if cfg.Manage.StatusIntervalSeconds < 1 || cfg.Manage.StatusIntervalSeconds > 600 {
		return ErrInvalidStatusInterval
	}
	if cfg.Advanced.LegacyCodePage < 0 {
		return ErrInvalidLegacyCodePage
	}
	return nil
}

// Profile extracts what a backend needs for one operation.
func (cfg *HotspotConfig) Profile() HotspotProfile {
	return HotspotProfile{
		Name:       strings.TrimSpace(cfg.Hotspot.Name),
		Passphrase: cfg.Hotspot.Passphrase,
		Backend:    cfg.Hotspot.Backend,
		AdapterID:  cfg.Manage.AdapterID,
	}
}

// Clone returns a deep copy. All fields are values so a struct copy suffices.
func (cfg *HotspotConfig) Clone() *HotspotConfig {
	c := *cfg
	return &c
}
