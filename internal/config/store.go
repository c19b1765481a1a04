package config

import (
	"fmt"
	"sync"
)

// Store holds the current configuration for readers that must see the
// latest saved values on every operation (the loop and the executor).
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  *HotspotConfig
}

// NewStore loads the configuration at path (empty = default path).
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultHotspotConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config path: %w", err)
		}
		path = p
	}
	cfg, err := LoadHotspotConfig(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, cfg: cfg}, nil
}

// NewMemoryStore wraps an in-memory config. Save and Reload are no-ops on disk.
func NewMemoryStore(cfg *HotspotConfig) *Store {
	if cfg == nil {
		cfg = NewHotspotConfig()
	}
	return &Store{cfg: cfg.Clone()}
}

// Path returns the backing file path, empty for memory stores.
func (s *Store) Path() string {
	return s.path
}

// Current returns a copy of the configuration.
func (s *Store) Current() *HotspotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Profile returns the current hotspot profile.
func (s *Store) Profile() HotspotProfile {
	return s.Current().Profile()
}

// Reload re-reads the backing file.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	cfg, err := LoadHotspotConfig(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Save validates cfg, writes it and makes it current.
func (s *Store) Save(cfg *HotspotConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if s.path != "" {
		if err := SaveHotspotConfig(cfg, s.path); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.cfg = cfg.Clone()
	s.mu.Unlock()
	return nil
}

// Update applies fn to a copy of the current config and saves the result.
func (s *Store) Update(fn func(cfg *HotspotConfig)) (*HotspotConfig, error) {
	cfg := s.Current()
	fn(cfg)
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
