// Package config loads the tool's own TOML configuration: default
// resolver/group options, the system name-server and wordlist file
// paths, WHOIS cache sizing, logging level, and the metrics bind
// address. This is distinct from internal/sysconfig, which
// reads /etc/resolv.conf to discover the system's own name servers.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dnsfleet/mhost/internal/group"
	"github.com/dnsfleet/mhost/internal/resolver"
	"github.com/semihalev/zlog/v2"
)

const configVersion = "1.0.0"

// Duration wraps time.Duration with a TOML-friendly UnmarshalText so a
// config file can say `timeout = "5s"` instead of a raw nanosecond
// integer.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler so a loaded Config can be
// round-tripped back to TOML (not used by Load itself).
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ResolverOptsConfig is the TOML shape of resolver.Opts.
type ResolverOptsConfig struct {
	Attempts              int
	MaxConcurrentRequests int
	Ndots                 int
	Timeout               Duration
	AbortOnError          bool
	AbortOnTimeout        bool
}

// ToOpts converts to the resolver package's runtime Opts.
func (c ResolverOptsConfig) ToOpts() resolver.Opts {
	return resolver.Opts{
		Attempts:              c.Attempts,
		MaxConcurrentRequests: c.MaxConcurrentRequests,
		Ndots:                 c.Ndots,
		Timeout:               c.Timeout.Duration,
		AbortOnError:          c.AbortOnError,
		AbortOnTimeout:        c.AbortOnTimeout,
	}
}

// GroupOptsConfig is the TOML shape of group.Opts.
type GroupOptsConfig struct {
	MaxConcurrentServers int
	Limit                int
}

// ToOpts converts to the group package's runtime Opts.
func (c GroupOptsConfig) ToOpts() group.Opts {
	return group.Opts{MaxConcurrentServers: c.MaxConcurrentServers, Limit: c.Limit}
}

// WhoisConfig configures the internal/whois Client.
type WhoisConfig struct {
	Endpoint              string
	CacheSize             int
	CacheTTL              Duration
	MaxConcurrentRequests int
	RateLimitPerSecond    float64
}

// Config is the top-level TOML document.
type Config struct {
	Version string

	DefaultResolverOpts ResolverOptsConfig
	DefaultGroupOpts    GroupOptsConfig

	NameServerFile string
	WordlistFile   string
	RndNamesNumber int
	RndNamesLen    int

	Whois WhoisConfig

	LogLevel    string
	MetricsBind string
}

// defaultConfig returns the fully-populated Config Load falls back to
// when no config file is present: resolver options from
// resolver.DefaultOpts and group options of at most 10 concurrent servers
// with no limit. Load decodes a file over these same defaults, so a
// config-less invocation behaves the same as one with an empty
// [defaultresolveropts] table.
func defaultConfig() *Config {
	ro := resolver.DefaultOpts()
	return &Config{
		Version: configVersion,
		DefaultResolverOpts: ResolverOptsConfig{
			Attempts:              ro.Attempts,
			MaxConcurrentRequests: ro.MaxConcurrentRequests,
			Ndots:                 ro.Ndots,
			Timeout:               Duration{ro.Timeout},
		},
		DefaultGroupOpts: GroupOptsConfig{
			MaxConcurrentServers: 10,
			Limit:                0,
		},
		NameServerFile: "",
		WordlistFile:   "",
		RndNamesNumber: 8,
		RndNamesLen:    12,
		Whois: WhoisConfig{
			CacheSize:             1024,
			CacheTTL:              Duration{time.Hour},
			MaxConcurrentRequests: 4,
			RateLimitPerSecond:    2,
		},
		LogLevel:    "info",
		MetricsBind: "",
	}
}

// Load reads cfgfile and decodes it into a Config. A missing file is not
// an error: Load logs at Info and returns the fully defaulted Config.
// Defaults are never written back to disk; generating a config file is
// left to the caller.
func Load(cfgfile string) (*Config, error) {
	if cfgfile == "" {
		zlog.Info("no config file given, using defaults")
		return defaultConfig(), nil
	}

	if _, err := os.Stat(cfgfile); os.IsNotExist(err) {
		zlog.Info("config file not found, using defaults", "path", cfgfile)
		return defaultConfig(), nil
	}

	zlog.Info("loading config file", "path", cfgfile)

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(cfgfile, cfg); err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	if cfg.Version != "" && cfg.Version != configVersion {
		zlog.Warn("config file is from a different version, check for changed fields", "file_version", cfg.Version, "current_version", configVersion)
	}

	return cfg, nil
}
