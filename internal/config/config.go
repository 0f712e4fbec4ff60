// Package config holds the ambient settings consulted by searches and
// interactions. Values are read from the store on every call, so changes made
// with Set apply to the next operation.
package config

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override (UILOC_TIMEOUT -> timeout).
const EnvPrefix = "UILOC_"

type Settings struct {
	// WaitTime is the settle time after clicks, selects and key input.
	WaitTime              time.Duration `koanf:"wait_time" yaml:"wait_time" json:"wait_time"`
	SimulateMouseMovement bool          `koanf:"simulate_mouse_movement" yaml:"simulate_mouse_movement" json:"simulate_mouse_movement"`
	VerboseErrors         bool          `koanf:"verbose_errors" yaml:"verbose_errors" json:"verbose_errors"`
	Timeout               time.Duration `koanf:"timeout" yaml:"timeout" json:"timeout"`
	SearchDepth           int           `koanf:"search_depth" yaml:"search_depth" json:"search_depth"`
	PollInterval          time.Duration `koanf:"poll_interval" yaml:"poll_interval" json:"poll_interval"`
	Log                   LogSettings   `koanf:"log" yaml:"log" json:"log"`
}

type LogSettings struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"` // text, json
}

// Source supplies the current settings.
type Source interface {
	Settings() Settings
}

var defaults = map[string]any{
	"wait_time":               500 * time.Millisecond,
	"simulate_mouse_movement": false,
	"verbose_errors":          false,
	"timeout":                 4 * time.Second,
	"search_depth":            8,
	"poll_interval":           100 * time.Millisecond,
	"log.level":               "warn",
	"log.format":              "text",
}

// Keys lists the settable keys.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Store is a koanf-backed settings store safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	k  *koanf.Koanf
}

// New returns a store holding only the defaults.
func New() *Store {
	k := koanf.New(".")
	for key, v := range defaults {
		_ = k.Set(key, v)
	}
	return &Store{k: k}
}

// Load layers an optional YAML file and then UILOC_* environment variables
// over the defaults.
func Load(path string) (*Store, error) {
	s := New()

	if path != "" {
		if err := s.k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// UILOC_WAIT_TIME -> wait_time, UILOC_LOG_LEVEL -> log.level
	if err := s.k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if _, err := s.decode(s.k); err != nil {
		return nil, err
	}
	return s, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// Settings returns the current settings. It reads the store on every call.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Set and Load only store values that decode.
	st, _ := s.decode(s.k)
	return st
}

// Set changes one setting. The value is validated before it is stored.
func (s *Store) Set(key string, value any) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.k.Copy()
	if err := next.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if _, err := s.decode(next); err != nil {
		return err
	}
	s.k = next
	return nil
}

func (s *Store) decode(k *koanf.Koanf) (Settings, error) {
	var st Settings
	if err := k.Unmarshal("", &st); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	if err := st.Validate(); err != nil {
		return Settings{}, err
	}
	return st, nil
}

// Validate checks value ranges.
func (st Settings) Validate() error {
	switch {
	case st.WaitTime < 0:
		return fmt.Errorf("invalid settings: wait_time must not be negative")
	case st.Timeout < 0:
		return fmt.Errorf("invalid settings: timeout must not be negative")
	case st.SearchDepth < 1:
		return fmt.Errorf("invalid settings: search_depth must be at least 1")
	case st.PollInterval <= 0:
		return fmt.Errorf("invalid settings: poll_interval must be positive")
	}
	return nil
}
