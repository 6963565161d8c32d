package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `dispatcher:
  history_capacity: 5
  priorities:
    NMEA0183: 5
    NMEA2000/1a2b3c: 10
serial:
  enabled: true
  device: "/dev/ttyUSB0"
  baud_rate: 38400
  parity: even
can:
  enabled: true
  path: "-"
persistence:
  type: "rotating_jsonl"
  conf:
    path: "/var/log/navbus/samples.jsonl"
    max_size_mb: 20
telemetry:
  enabled: true
  topic_prefix: "boat/nav"
  interval_seconds: 2
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  qos: 1
  use_tls: false
metrics:
  prometheus_port: ":9100"
  sinks:
    - type: "prometheus"
    - type: "influx"
      conf:
        url: "http://localhost:8086"
        bucket: "nav"
monitoring:
  dsn: ""
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"history_capacity", cfg.Dispatcher.HistoryCapacity, 5},
		{"priority", cfg.Dispatcher.Priorities["NMEA2000/1a2b3c"], 10},
		{"serial.device", cfg.Serial.Device, "/dev/ttyUSB0"},
		{"serial.baud_rate", cfg.Serial.BaudRate, 38400},
		{"serial.parity", cfg.Serial.Parity, "E"},
		{"serial.source", cfg.Serial.Source, "NMEA0183"},
		{"can.path", cfg.CAN.Path, "-"},
		{"persistence.type", cfg.Persistence.Type, "rotating_jsonl"},
		{"persistence.flush", cfg.Persistence.FlushIntervalSeconds, 5},
		{"telemetry.prefix", cfg.Telemetry.TopicPrefix, "boat/nav"},
		{"telemetry.interval", cfg.Telemetry.IntervalSeconds, 2},
		{"telemetry.max_age", cfg.Telemetry.MaxAgeSeconds, 5},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"metrics_sinks", len(cfg.Metrics.Sinks) == 2 && cfg.Metrics.Sinks[1].Type == "influx", true},
		{"influx_bucket", cfg.Metrics.Sinks[1].Conf["bucket"], "nav"},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{"serial": {"enabled": false}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatcher.HistoryCapacity != 3 {
		t.Fatalf("expected default capacity 3, got %d", cfg.Dispatcher.HistoryCapacity)
	}
	if cfg.Serial.BaudRate != 4800 {
		t.Fatalf("expected default baud 4800, got %d", cfg.Serial.BaudRate)
	}
	if cfg.Persistence.Enabled() {
		t.Fatalf("persistence should be disabled by default")
	}
	if cfg.Telemetry.Enabled {
		t.Fatalf("telemetry should be disabled by default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "serial:\n  enabled: true\n  device: /dev/ttyUSB0\n")
	t.Setenv("K_SERIAL__DEVICE", "/dev/ttyS1")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Serial.Device != "/dev/ttyS1" {
		t.Fatalf("env override not applied: %s", cfg.Serial.Device)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"serial without device":   "serial:\n  enabled: true\n",
		"bad stop bits":           "serial:\n  enabled: true\n  device: /dev/x\n  stop_bits: 3\n",
		"can without path":        "can:\n  enabled: true\n",
		"unknown store":           "persistence:\n  type: mongo\n",
		"telemetry without mqtt":  "telemetry:\n  enabled: true\n",
		"negative capacity":       "dispatcher:\n  history_capacity: -1\n",
		"bad sentry sample rate":  "monitoring:\n  traces_sample_rate: 2\n",
		"metrics sink type empty": "metrics:\n  sinks:\n    - conf: {}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "config.yaml", data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := Load(writeConfig(t, "config.toml", "")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
