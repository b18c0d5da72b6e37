package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfigFile writes a YAML config to a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, "{}")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("default mqtt host = %q, want localhost", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("default mqtt port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Notify.CooldownMinutes != 5 {
		t.Errorf("default cooldown = %d, want 5", cfg.Notify.CooldownMinutes)
	}
	if cfg.Thresholds.MinSoilHumidity != 35 {
		t.Errorf("default min soil humidity = %v, want 35", cfg.Thresholds.MinSoilHumidity)
	}
	if cfg.Thresholds.MaxTempC != 38 {
		t.Errorf("default max temp = %v, want 38", cfg.Thresholds.MaxTempC)
	}
	if cfg.InfluxDB.Bucket != "irrigation-data" {
		t.Errorf("default bucket = %q, want irrigation-data", cfg.InfluxDB.Bucket)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
mqtt:
  broker:
    host: broker.example.com
    port: 8883
    tls: true
notify:
  cooldown_minutes: 10
thresholds:
  min_soil_humidity: 20
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("mqtt host = %q, want broker.example.com", cfg.MQTT.Broker.Host)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("expected TLS enabled")
	}
	if cfg.Notify.CooldownMinutes != 10 {
		t.Errorf("cooldown = %d, want 10", cfg.Notify.CooldownMinutes)
	}
	if cfg.Thresholds.MinSoilHumidity != 20 {
		t.Errorf("min soil humidity = %v, want 20", cfg.Thresholds.MinSoilHumidity)
	}

	// Untouched values keep their defaults
	if cfg.API.Port != 8080 {
		t.Errorf("api port = %d, want default 8080", cfg.API.Port)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
mqtt:
  broker:
    host: from-file
`)

	t.Setenv("PLANTCORE_MQTT_HOST", "from-env")
	t.Setenv("PLANTCORE_MQTT_PORT", "2883")
	t.Setenv("PLANTCORE_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("PLANTCORE_SMTP_USER", "alerts@example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("mqtt host = %q, want from-env", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 2883 {
		t.Errorf("mqtt port = %d, want 2883", cfg.MQTT.Broker.Port)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("influxdb token = %q, want secret-token", cfg.InfluxDB.Token)
	}
	if cfg.SMTP.Username != "alerts@example.com" {
		t.Errorf("smtp username = %q, want alerts@example.com", cfg.SMTP.Username)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "mqtt: [not: valid")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing mqtt host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "influx enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: "influxdb.url",
		},
		{
			name:   "influx disabled without url is fine",
			mutate: func(c *Config) { c.InfluxDB.Enabled = false; c.InfluxDB.URL = "" },
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "negative cooldown",
			mutate:  func(c *Config) { c.Notify.CooldownMinutes = -1 },
			wantErr: "cooldown",
		},
		{
			name: "inverted soil bounds",
			mutate: func(c *Config) {
				c.Thresholds.MinSoilHumidity = 80
				c.Thresholds.MaxSoilHumidity = 20
			},
			wantErr: "min_soil_humidity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Cooldown() != 5*time.Minute {
		t.Errorf("Cooldown() = %v, want 5m", cfg.Cooldown())
	}
	if cfg.GetReadTimeout() != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", cfg.GetReadTimeout())
	}
	if cfg.GetIdleTimeout() != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", cfg.GetIdleTimeout())
	}
}
