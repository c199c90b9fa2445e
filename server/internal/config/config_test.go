package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `ui:
  title: "Bedside O2"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.History.TTL != DefaultHistoryTTL {
		t.Errorf("history.ttl: got %v, want %v", cfg.Server.History.TTL, DefaultHistoryTTL)
	}
	if cfg.Server.Stream.Interval != DefaultStreamInterval {
		t.Errorf("stream.interval: got %v, want %v", cfg.Server.Stream.Interval, DefaultStreamInterval)
	}
	if cfg.UI.Title != "Bedside O2" {
		t.Errorf("ui.title: got %q, want Bedside O2", cfg.UI.Title)
	}
	if cfg.UI.DefaultFlow != DefaultFlow {
		t.Errorf("ui.default_flow: got %v, want %v", cfg.UI.DefaultFlow, DefaultFlow)
	}
	if len(cfg.UI.ReferenceFlows) != 11 {
		t.Errorf("ui.reference_flows: got %d entries, want 11", len(cfg.UI.ReferenceFlows))
	}
	if len(cfg.UI.GaugeTicks) != 6 {
		t.Errorf("ui.gauge_ticks: got %d entries, want 6", len(cfg.UI.GaugeTicks))
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  log:
    level: debug
    format: text
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-o2-key
  history:
    ttl: 10m
    max_entries: 5
  stream:
    interval: 2s
ui:
  default_flow: 4
  reference_flows: [1, 2, 3]
  gauge_ticks: [21, 50, 100]
advisories:
  - name: high-fio2
    condition: "o2_pct >= 60"
    severity: warning
    message: "Check arterial blood gases."
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", cfg.Server.Log.SlogLevel())
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-o2-key" {
		t.Errorf("header: got %q, want x-o2-key", cfg.Server.Auth.EffectiveHeader())
	}
	if cfg.Server.History.TTL != 10*time.Minute || cfg.Server.History.MaxEntries != 5 {
		t.Errorf("history: got %+v", cfg.Server.History)
	}
	if cfg.Server.Stream.Interval != 2*time.Second {
		t.Errorf("stream.interval: got %v, want 2s", cfg.Server.Stream.Interval)
	}
	if got := cfg.UI.ReferenceFlows; len(got) != 3 || got[2] != 3 {
		t.Errorf("reference_flows: got %v, want [1 2 3]", got)
	}
	if len(cfg.Advisories) != 1 || cfg.Advisories[0].Severity != "warning" {
		t.Errorf("advisories: got %+v", cfg.Advisories)
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: K
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_O2_KEY", "supersecret")
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: TEST_O2_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown auth mode": "server:\n  auth:\n    mode: oauth2\n",
		"port out of range": "server:\n  http_port: 70000\n",
		"bad log format":    "server:\n  log:\n    format: xml\n",
		"zero interval":     "server:\n  stream:\n    interval: 0s\n",
		"default flow high": "ui:\n  default_flow: 75\n",
		"reference flow":    "ui:\n  reference_flows: [1, -2]\n",
		"ticks unsorted":    "ui:\n  gauge_ticks: [40, 21]\n",
		"tick above 100":    "ui:\n  gauge_ticks: [21, 120]\n",
		"advisory no name":  "advisories:\n  - condition: \"o2_pct > 1\"\n",
		"advisory bad cond": "advisories:\n  - name: x\n    condition: \"pressure > 1\"\n",
		"advisory severity": "advisories:\n  - name: x\n    condition: \"o2_pct > 1\"\n    severity: urgent\n",
		"not yaml":          "server: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestDefaults_Valid(t *testing.T) {
	if err := validate(Defaults()); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestRules(t *testing.T) {
	cfg, err := Parse([]byte(`advisories:
  - name: mask
    condition: "device == simple_mask"
    message: "Mask fitted?"
  - name: high
    condition: "o2_pct >= 60"
    severity: critical
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rules := cfg.Rules()
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}
	if rules[0].Name != "mask" || rules[0].Message != "Mask fitted?" {
		t.Errorf("rules[0]: got %+v", rules[0])
	}
	if rules[1].Severity != "critical" || rules[1].Condition != "o2_pct >= 60" {
		t.Errorf("rules[1]: got %+v", rules[1])
	}
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	if err != nil {
		t.Fatalf("Load example: %v", err)
	}
	if len(cfg.Advisories) != 2 {
		t.Errorf("advisories: got %d, want 2", len(cfg.Advisories))
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
}
