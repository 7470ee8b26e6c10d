package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with the config variables
// unset, restoring them afterwards.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"NIDHOGG_BACKEND", "NIDHOGG_SOCKET", "NIDHOGG_RETRIES", "NIDHOGG_RETRY_INTERVAL",
		"NIDHOGG_REMOTE_URL", "NIDHOGG_MONITOR_ADDR", "MQTT_BROKER", "REDIS_ADDR",
		"DATABASE_URL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)

	yamlPath := filepath.Join(dir, "nidhogg.yaml")
	os.WriteFile(yamlPath, []byte(`
backend: sim
retries: 3
retry_interval: 250ms
redis_addr: yaml:6379
monitor_addr: ":9090"
`), 0o644)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_ADDR=dotenv:6379\nMQTT_BROKER=tcp://dotenv:1883\n"), 0o644)
	t.Setenv("NIDHOGG_RETRIES", "5")
	t.Setenv("MQTT_BROKER", "tcp://env:1883")

	cfg, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"backend from yaml", cfg.Backend, BackendSim},
		{"interval from yaml", cfg.RetryInterval, 250 * time.Millisecond},
		{"monitor from yaml", cfg.MonitorAddr, ":9090"},
		{"redis from .env over yaml", cfg.RedisAddr, "dotenv:6379"},
		{"env over .env", cfg.MQTTBroker, "tcp://env:1883"},
		{"env over yaml", cfg.Retries, 5},
		{"socket default", cfg.Socket, "/tmp/robocup"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		isolate(t)
		if _, err := Load("does-not-exist.yaml"); err == nil {
			t.Error("expected an error for a missing config file")
		}
	})
	t.Run("bad retries", func(t *testing.T) {
		isolate(t)
		t.Setenv("NIDHOGG_RETRIES", "many")
		if _, err := Load(""); err == nil {
			t.Error("expected an error for NIDHOGG_RETRIES=many")
		}
	})
	t.Run("bad interval", func(t *testing.T) {
		isolate(t)
		t.Setenv("NIDHOGG_RETRY_INTERVAL", "soon")
		if _, err := Load(""); err == nil {
			t.Error("expected an error for NIDHOGG_RETRY_INTERVAL=soon")
		}
	})
	t.Run("remote without url", func(t *testing.T) {
		isolate(t)
		t.Setenv("NIDHOGG_BACKEND", "remote")
		if _, err := Load(""); err == nil {
			t.Error("expected a validation error")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sim", func(c *Config) { c.Backend = BackendSim; c.Socket = "" }, false},
		{"remote", func(c *Config) { c.Backend = BackendRemote; c.RemoteURL = "ws://nao:9000/ws/backend" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "coppelia" }, true},
		{"lola without socket", func(c *Config) { c.Socket = "" }, true},
		{"negative retries", func(c *Config) { c.Retries = -1 }, true},
		{"negative interval", func(c *Config) { c.RetryInterval = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
