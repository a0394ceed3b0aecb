package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wsniff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "wlan0", cfg.Interface)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "fixed", cfg.HeaderMode)
	assert.Equal(t, 36, cfg.HeaderLen)
	assert.Equal(t, 500*time.Millisecond, cfg.HopInterval)
	assert.Equal(t, 450*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, "mlist/db", cfg.OUIPath)
	assert.Equal(t, "admin", cfg.APIUser)
	assert.False(t, cfg.AutoStart)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
interface: wlan1
addr: ":9090"
hop_interval: 250ms
mqtt_topic: lab
`)
	t.Setenv("WSNIFF_ADDR", ":7070")
	t.Setenv("WSNIFF_MQTT_TOPIC", "env-topic")

	cfg, err := Load([]string{"-config", path, "-mqtt-topic", "flag-topic"})
	require.NoError(t, err)

	assert.Equal(t, "wlan1", cfg.Interface, "file overrides default")
	assert.Equal(t, 250*time.Millisecond, cfg.HopInterval)
	assert.Equal(t, ":7070", cfg.Addr, "env overrides file")
	assert.Equal(t, "flag-topic", cfg.MQTTTopic, "flag overrides env")
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "autostart: true\n")
	t.Setenv("WSNIFF_CONFIG", path)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.AutoStart)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_HASH", "$2a$10$abc")
	path := writeConfig(t, "api_password_hash: ${TEST_HASH}\n")

	cfg, err := Load([]string{"--config=" + path})
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abc", cfg.APIPasswordHash)
}

func TestLoad_KeepsLiteralHash(t *testing.T) {
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	path := writeConfig(t, "api_password_hash: '"+hash+"'\n")

	cfg, err := Load([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, hash, cfg.APIPasswordHash)
}

func TestLoad_LowercasesInterface(t *testing.T) {
	cfg, err := Load([]string{"-i", " WLAN2 "})
	require.NoError(t, err)
	assert.Equal(t, "wlan2", cfg.Interface)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	_, err = Load([]string{"-config", writeConfig(t, "interface: [unclosed\n")})
	assert.Error(t, err)

	_, err = Load([]string{"-no-such-flag"})
	assert.Error(t, err)

	_, err = Load([]string{"-header-mode", "pcapng"})
	assert.ErrorContains(t, err, "header_mode")
}

func TestLoad_BadEnvKeepsFallback(t *testing.T) {
	t.Setenv("WSNIFF_HOP_INTERVAL", "soon")
	t.Setenv("WSNIFF_HEADER_LEN", "x")
	t.Setenv("WSNIFF_DEBUG", "maybe")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.HopInterval)
	assert.Equal(t, 36, cfg.HeaderLen)
	assert.False(t, cfg.Debug)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"radiotap", func(c *Config) { c.HeaderMode = "radiotap" }, ""},
		{"bad mode", func(c *Config) { c.HeaderMode = "prism" }, "header_mode"},
		{"negative header", func(c *Config) { c.HeaderLen = -1 }, "header_len"},
		{"zero hop", func(c *Config) { c.HopInterval = 0 }, "hop_interval"},
		{"negative settle", func(c *Config) { c.SettleDelay = -time.Second }, "settle_delay"},
		{"no addr", func(c *Config) { c.Addr = "" }, "addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.yaml", configPath([]string{"-config", "a.yaml"}))
	assert.Equal(t, "b.yaml", configPath([]string{"-debug", "--config=b.yaml"}))
	assert.Equal(t, "", configPath([]string{"--", "-config", "c.yaml"}))
	assert.Equal(t, "", configPath([]string{"config", "d.yaml"}))
}
