package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Interface string `yaml:"interface"`
	Addr      string `yaml:"addr"`
	GRPCAddr  string `yaml:"grpc_addr"`

	OUIPath   string `yaml:"oui_path"`    // tab-separated vendor list
	OUIDBPath string `yaml:"oui_db_path"` // SQLite vendor registry, empty to disable

	PcapPath   string `yaml:"pcap_path"`   // record captured frames, empty to disable
	ReplayPath string `yaml:"replay_path"` // read frames from a pcap instead of the raw socket

	HeaderMode  string        `yaml:"header_mode"` // fixed or radiotap
	HeaderLen   int           `yaml:"header_len"`
	HopInterval time.Duration `yaml:"hop_interval"`
	SettleDelay time.Duration `yaml:"settle_delay"`

	MQTTBroker string `yaml:"mqtt_broker"` // empty to disable
	MQTTTopic  string `yaml:"mqtt_topic"`

	APIUser         string `yaml:"api_user"`
	APIPasswordHash string `yaml:"api_password_hash"` // bcrypt, empty disables auth

	Debug     bool `yaml:"debug"`
	AutoStart bool `yaml:"autostart"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Interface:   "wlan0",
		Addr:        ":8080",
		GRPCAddr:    ":9000",
		OUIPath:     "mlist/db",
		HeaderMode:  "fixed",
		HeaderLen:   36,
		HopInterval: 500 * time.Millisecond,
		SettleDelay: 450 * time.Millisecond,
		MQTTTopic:   "wsniff",
		APIUser:     "admin",
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// WSNIFF_* environment variables and finally the command line flags in
// args. Later sources override earlier ones.
func Load(args []string) (*Config, error) {
	cfg := Default()

	path := configPath(args)
	if path == "" {
		path = getEnv("WSNIFF_CONFIG", "")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	fs := flag.NewFlagSet("wsniff", flag.ContinueOnError)
	fs.String("config", path, "Path to YAML configuration file")
	fs.StringVar(&cfg.Interface, "i", cfg.Interface, "Wireless interface to capture on")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.StringVar(&cfg.GRPCAddr, "grpc", cfg.GRPCAddr, "gRPC health server address (empty to disable)")
	fs.StringVar(&cfg.OUIPath, "oui", cfg.OUIPath, "Path to tab-separated vendor list")
	fs.StringVar(&cfg.OUIDBPath, "oui-db", cfg.OUIDBPath, "Path to SQLite vendor registry")
	fs.StringVar(&cfg.PcapPath, "pcap", cfg.PcapPath, "Path to save PCAP file (empty to disable)")
	fs.StringVar(&cfg.ReplayPath, "replay", cfg.ReplayPath, "Replay frames from a PCAP file instead of capturing")
	fs.StringVar(&cfg.HeaderMode, "header-mode", cfg.HeaderMode, "Capture header handling: fixed or radiotap")
	fs.IntVar(&cfg.HeaderLen, "header-len", cfg.HeaderLen, "Capture header length in fixed mode")
	fs.DurationVar(&cfg.HopInterval, "hop", cfg.HopInterval, "Channel hop interval")
	fs.DurationVar(&cfg.SettleDelay, "settle", cfg.SettleDelay, "Delay after switching interface mode")
	fs.StringVar(&cfg.MQTTBroker, "mqtt", cfg.MQTTBroker, "MQTT broker URL (empty to disable)")
	fs.StringVar(&cfg.MQTTTopic, "mqtt-topic", cfg.MQTTTopic, "MQTT topic prefix")
	fs.StringVar(&cfg.APIUser, "api-user", cfg.APIUser, "API basic auth user")
	fs.StringVar(&cfg.APIPasswordHash, "api-password-hash", cfg.APIPasswordHash, "API basic auth bcrypt hash (empty to disable)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.BoolVar(&cfg.AutoStart, "autostart", cfg.AutoStart, "Start capturing immediately")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Interface = strings.ToLower(strings.TrimSpace(cfg.Interface))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.HeaderMode {
	case "fixed", "radiotap":
	default:
		errs = append(errs, fmt.Errorf("header_mode: unknown mode %q", c.HeaderMode))
	}
	if c.HeaderMode == "fixed" && c.HeaderLen < 0 {
		errs = append(errs, fmt.Errorf("header_len: must not be negative, got %d", c.HeaderLen))
	}
	if c.HopInterval <= 0 {
		errs = append(errs, fmt.Errorf("hop_interval: must be positive, got %s", c.HopInterval))
	}
	if c.SettleDelay <= 0 {
		errs = append(errs, fmt.Errorf("settle_delay: must be positive, got %s", c.SettleDelay))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr: must not be empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Interface = getEnv("WSNIFF_INTERFACE", c.Interface)
	c.Addr = getEnv("WSNIFF_ADDR", c.Addr)
	c.GRPCAddr = getEnv("WSNIFF_GRPC_ADDR", c.GRPCAddr)
	c.OUIPath = getEnv("WSNIFF_OUI_PATH", c.OUIPath)
	c.OUIDBPath = getEnv("WSNIFF_OUI_DB", c.OUIDBPath)
	c.PcapPath = getEnv("WSNIFF_PCAP", c.PcapPath)
	c.ReplayPath = getEnv("WSNIFF_REPLAY", c.ReplayPath)
	c.HeaderMode = getEnv("WSNIFF_HEADER_MODE", c.HeaderMode)
	c.HeaderLen = getEnvInt("WSNIFF_HEADER_LEN", c.HeaderLen)
	c.HopInterval = getEnvDuration("WSNIFF_HOP_INTERVAL", c.HopInterval)
	c.SettleDelay = getEnvDuration("WSNIFF_SETTLE_DELAY", c.SettleDelay)
	c.MQTTBroker = getEnv("WSNIFF_MQTT_BROKER", c.MQTTBroker)
	c.MQTTTopic = getEnv("WSNIFF_MQTT_TOPIC", c.MQTTTopic)
	c.APIUser = getEnv("WSNIFF_API_USER", c.APIUser)
	c.APIPasswordHash = getEnv("WSNIFF_API_PASSWORD_HASH", c.APIPasswordHash)
	c.Debug = getEnvBool("WSNIFF_DEBUG", c.Debug)
	c.AutoStart = getEnvBool("WSNIFF_AUTOSTART", c.AutoStart)
}

// expandEnv substitutes set environment variables. References to unset
// variables are left as written so bcrypt hashes survive.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return "$" + key
	})
}

// configPath finds -config before the full flag set is parsed, so that
// file values can become flag defaults.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
