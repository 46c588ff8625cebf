// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Typed configuration loaded from TOML, held in a thread-safe store that
// propagates updates to registered listeners.

package control

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings such as "250ms" or "5s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ReactorConfig configures multiplexers opened by the example binaries and
// the dispatcher.
type ReactorConfig struct {
	MaxEvents    int      `toml:"max_events"`
	CloseOnExec  bool     `toml:"close_on_exec"`
	PollTimeout  Duration `toml:"poll_timeout"`
	DeferChanges bool     `toml:"defer_changes"`
}

// ResolverConfig configures resolver.New through resolver.FromConfig.
type ResolverConfig struct {
	Timeout  Duration `toml:"timeout"`
	Flags    []string `toml:"flags"`
	PreferGo bool     `toml:"prefer_go"`
}

// LogConfig configures BuildLogger.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	Encoding    string `toml:"encoding"`
}

// Config is the root configuration document.
type Config struct {
	Reactor  ReactorConfig  `toml:"reactor"`
	Resolver ResolverConfig `toml:"resolver"`
	Log      LogConfig      `toml:"log"`
}

// DefaultConfig returns the values used when no file is given.
func DefaultConfig() Config {
	return Config{
		Reactor: ReactorConfig{
			MaxEvents:   128,
			CloseOnExec: true,
			PollTimeout: Duration(100 * time.Millisecond),
		},
		Resolver: ResolverConfig{
			Timeout: Duration(5 * time.Second),
			Flags:   []string{"v4mapped", "addrconfig"},
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	if c.Reactor.MaxEvents <= 0 {
		return fmt.Errorf("reactor.max_events must be positive, got %d", c.Reactor.MaxEvents)
	}
	if c.Resolver.Timeout < 0 {
		return fmt.Errorf("resolver.timeout must not be negative")
	}
	switch c.Log.Encoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.encoding %q is not console or json", c.Log.Encoding)
	}
	return nil
}

// ParseConfig decodes a TOML document over DefaultConfig. Unknown keys are
// rejected.
func ParseConfig(data string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("decode config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and parses a TOML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ConfigStore holds the current Config with snapshot reads and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with cfg.
func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{
		config:    cfg,
		listeners: make([]func(Config), 0),
	}
}

// GetSnapshot returns a copy of the current configuration.
func (cs *ConfigStore) GetSnapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	cfg := cs.config
	cfg.Resolver.Flags = append([]string(nil), cs.config.Resolver.Flags...)
	return cfg
}

// SetConfig validates and installs cfg, then notifies listeners in
// registration order on the calling goroutine.
func (cs *ConfigStore) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.config = cfg
	listeners := append([]func(Config){}, cs.listeners...)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// OnReload registers a listener called on config changes.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
