// Package config loads settings for the go-nidhogg commands.
//
// Values are resolved in order, later sources winning:
//   - Default()
//   - an optional YAML file
//   - a .env file in the working directory
//   - the process environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendLoLA   = "lola"
	BackendSim    = "sim"
	BackendRemote = "remote"
)

// Config holds process configuration.
type Config struct {
	// Backend selects the robot backend: "lola", "sim" or "remote".
	Backend string `yaml:"backend" json:"backend"`

	// Socket is the LoLA unix socket path.
	Socket string `yaml:"socket" json:"socket"`

	// Retries is the number of extra connection attempts after the first.
	Retries int `yaml:"retries" json:"retries"`

	// RetryInterval is the pause between connection attempts.
	RetryInterval time.Duration `yaml:"retry_interval" json:"retry_interval"`

	// RemoteURL is the websocket URL of a remote backend server.
	// Example: "ws://192.168.1.20:9000/ws/backend"
	RemoteURL string `yaml:"remote_url" json:"remote_url"`

	// MonitorAddr is the listen address of the state monitor. Empty disables it.
	MonitorAddr string `yaml:"monitor_addr" json:"monitor_addr"`

	// MQTTBroker, e.g. "tcp://localhost:1883". Empty disables MQTT telemetry.
	MQTTBroker string `yaml:"mqtt_broker" json:"mqtt_broker"`

	// RedisAddr, e.g. "localhost:6379". Empty disables the state cache.
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`

	// DatabaseURL is a postgres DSN. Empty disables the hardware registry.
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns a Config for a process running on the robot.
func Default() Config {
	return Config{
		Backend:       BackendLoLA,
		Socket:        "/tmp/robocup",
		Retries:       10,
		RetryInterval: time.Second,
		MonitorAddr:   ":8080",
		LogLevel:      "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), .env and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// A missing .env is normal; the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.Backend, "NIDHOGG_BACKEND")
	setString(&c.Socket, "NIDHOGG_SOCKET")
	setString(&c.RemoteURL, "NIDHOGG_REMOTE_URL")
	setString(&c.MonitorAddr, "NIDHOGG_MONITOR_ADDR")
	setString(&c.MQTTBroker, "MQTT_BROKER")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("NIDHOGG_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: NIDHOGG_RETRIES: %w", err)
		}
		c.Retries = n
	}
	if v := os.Getenv("NIDHOGG_RETRY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: NIDHOGG_RETRY_INTERVAL: %w", err)
		}
		c.RetryInterval = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLoLA:
		if c.Socket == "" {
			return fmt.Errorf("socket is required for the %s backend", c.Backend)
		}
	case BackendSim:
	case BackendRemote:
		if c.RemoteURL == "" {
			return fmt.Errorf("remote_url is required for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("backend must be 'lola', 'sim' or 'remote', got '%s'", c.Backend)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", c.Retries)
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("retry_interval must be >= 0, got %s", c.RetryInterval)
	}
	return nil
}
