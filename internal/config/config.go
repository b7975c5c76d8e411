// Package config holds the explicit configuration for the tmatch engine
// and its match backends. Configuration is an ordinary struct passed into
// constructors; there is no ambient global state.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Defaults mirror the historical behavior of the desktop tool this engine
// was extracted from.
const (
	DefaultMaxResults     = 5
	DefaultMinSimilarity  = 75
	DefaultDebounceMs     = 300
	DefaultCacheSize      = 2048
	DefaultQueryTimeoutMs = 10000

	DefaultRemoteHost = "localhost"
	DefaultRemotePort = 55555

	DefaultOpenTranURL = "http://open-tran.eu/RPC2"

	DefaultMaxCandidates  = 9
	DefaultPrefilterLimit = 50
)

var (
	// ErrInvalidConfig is returned when a loaded configuration fails validation
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the top-level engine configuration.
type Config struct {
	// Cross-backend result handling
	MaxResults     int `toml:"max_results"`
	MinSimilarity  int `toml:"min_similarity"`
	DebounceMs     int `toml:"debounce_ms"`
	CacheSize      int `toml:"cache_size"`
	QueryTimeoutMs int `toml:"query_timeout_ms"`

	// Default language pair for queries that do not carry their own
	SourceLang string `toml:"source_lang"`
	TargetLang string `toml:"target_lang"`

	Local    LocalConfig    `toml:"local"`
	Remote   RemoteConfig   `toml:"remote"`
	OpenTran OpenTranConfig `toml:"opentran"`
}

// LocalConfig configures the current-file fuzzy matcher.
type LocalConfig struct {
	Enabled        bool `toml:"enabled"`
	MaxCandidates  int  `toml:"max_candidates"`
	PrefilterLimit int  `toml:"prefilter_limit"`
}

// RemoteConfig configures the remote TM server client.
type RemoteConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// OpenTranConfig configures the public TM aggregator client.
type OpenTranConfig struct {
	Enabled       bool   `toml:"enabled"`
	URL           string `toml:"url"`
	MaxCandidates int    `toml:"max_candidates"`
}

// Default returns a configuration with all defaults applied and only the
// local backend enabled.
func Default() Config {
	return Config{
		MaxResults:     DefaultMaxResults,
		MinSimilarity:  DefaultMinSimilarity,
		DebounceMs:     DefaultDebounceMs,
		CacheSize:      DefaultCacheSize,
		QueryTimeoutMs: DefaultQueryTimeoutMs,
		SourceLang:     "en",
		Local: LocalConfig{
			Enabled:        true,
			MaxCandidates:  DefaultMaxCandidates,
			PrefilterLimit: DefaultPrefilterLimit,
		},
		Remote: RemoteConfig{
			Enabled: false,
			Host:    DefaultRemoteHost,
			Port:    DefaultRemotePort,
		},
		OpenTran: OpenTranConfig{
			Enabled:       false,
			URL:           DefaultOpenTranURL,
			MaxCandidates: 3,
		},
	}
}

// Load reads a TOML configuration file, applying defaults for any field
// the file omits. A missing file is not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded file, so a
// deployment can point at a different TM server without editing config.
func (c *Config) applyEnv() {
	if v := os.Getenv("TMATCH_SOURCE_LANG"); v != "" {
		c.SourceLang = v
	}
	if v := os.Getenv("TMATCH_TARGET_LANG"); v != "" {
		c.TargetLang = v
	}
	if v := os.Getenv("TMATCH_REMOTE_HOST"); v != "" {
		c.Remote.Host = v
	}
	if v := os.Getenv("TMATCH_REMOTE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Remote.Port = port
		}
	}
	if v := os.Getenv("TMATCH_OPENTRAN_URL"); v != "" {
		c.OpenTran.URL = v
	}
}

// Save writes the configuration as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks value ranges and normalizes zero values to defaults.
func (c *Config) Validate() error {
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 100 {
		return fmt.Errorf("%w: min_similarity must be in [0, 100], got %d", ErrInvalidConfig, c.MinSimilarity)
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("%w: debounce_ms cannot be negative", ErrInvalidConfig)
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.QueryTimeoutMs <= 0 {
		c.QueryTimeoutMs = DefaultQueryTimeoutMs
	}
	if c.Local.MaxCandidates <= 0 {
		c.Local.MaxCandidates = DefaultMaxCandidates
	}
	if c.Local.PrefilterLimit <= 0 {
		c.Local.PrefilterLimit = DefaultPrefilterLimit
	}
	if c.Remote.Enabled && c.Remote.Host == "" {
		return fmt.Errorf("%w: remote backend enabled without a host", ErrInvalidConfig)
	}
	if c.Remote.Enabled && (c.Remote.Port <= 0 || c.Remote.Port > 65535) {
		return fmt.Errorf("%w: remote port %d out of range", ErrInvalidConfig, c.Remote.Port)
	}
	if c.OpenTran.Enabled && c.OpenTran.URL == "" {
		return fmt.Errorf("%w: opentran backend enabled without a URL", ErrInvalidConfig)
	}
	if c.OpenTran.MaxCandidates <= 0 {
		c.OpenTran.MaxCandidates = 3
	}
	return nil
}
