package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, configVersion, cfg.Version)
	assert.Equal(t, 2, cfg.DefaultResolverOpts.Attempts)
	assert.Equal(t, 5*time.Second, cfg.DefaultResolverOpts.Timeout.Duration)
	assert.Equal(t, 1024, cfg.Whois.CacheSize)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, configVersion, cfg.Version)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mhost.toml")
	contents := `
nameserverfile = "/etc/mhost/servers.txt"
loglevel = "debug"

[defaultresolveropts]
attempts = 5
timeout = "10s"

[whois]
endpoint = "https://stat.example.com"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/mhost/servers.txt", cfg.NameServerFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.DefaultResolverOpts.Attempts)
	assert.Equal(t, 10*time.Second, cfg.DefaultResolverOpts.Timeout.Duration)
	assert.Equal(t, "https://stat.example.com", cfg.Whois.Endpoint)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, 1024, cfg.Whois.CacheSize)
	assert.Equal(t, 10, cfg.DefaultGroupOpts.MaxConcurrentServers)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("this = is not [valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolverOptsConfigToOpts(t *testing.T) {
	c := ResolverOptsConfig{Attempts: 3, MaxConcurrentRequests: 7, Ndots: 2, Timeout: Duration{time.Second}}
	opts := c.ToOpts()
	assert.Equal(t, 3, opts.Attempts)
	assert.Equal(t, 7, opts.MaxConcurrentRequests)
	assert.Equal(t, time.Second, opts.Timeout)
}

func TestGroupOptsConfigToOpts(t *testing.T) {
	c := GroupOptsConfig{MaxConcurrentServers: 4, Limit: 2}
	opts := c.ToOpts()
	assert.Equal(t, 4, opts.MaxConcurrentServers)
	assert.Equal(t, 2, opts.Limit)
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)
}
