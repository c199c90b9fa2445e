package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/server/internal/advisory"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 8080
	DefaultHistoryTTL     = 30 * time.Minute
	DefaultHistoryMax     = 200
	DefaultStreamInterval = 5 * time.Second
	DefaultAuthHeader     = "x-api-key"
	DefaultFlow           = 2.0
	DefaultSliderStep     = 0.5
	DefaultInputStep      = 0.1
)

// Config is the full configuration tree parsed from config.yaml.
type Config struct {
	Server     ServerConfig `yaml:"server"`
	UI         UIConfig     `yaml:"ui"`
	Advisories []Advisory   `yaml:"advisories"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the dashboard, REST API and WebSocket listen on.
	HTTPPort int `yaml:"http_port"`

	Log     LogConfig     `yaml:"log"`
	Auth    AuthConfig    `yaml:"auth"`
	History HistoryConfig `yaml:"history"`
	Stream  StreamConfig  `yaml:"stream"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`
	// Format is one of: json | text. Text output is colourised for terminals.
	Format string `yaml:"format"`
}

// SlogLevel converts Level to a slog.Level. Unknown values map to Info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AuthConfig controls API-key authentication of the REST API.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// HistoryConfig controls in-memory retention of recent estimates.
type HistoryConfig struct {
	// TTL is how long an estimate stays in the history.
	TTL time.Duration `yaml:"ttl"`
	// MaxEntries bounds the history; the oldest entries are dropped first.
	MaxEntries int `yaml:"max_entries"`
}

// StreamConfig controls the WebSocket hub.
type StreamConfig struct {
	// Interval is how often the history is pushed to connected clients.
	Interval time.Duration `yaml:"interval"`
}

// UIConfig is the dashboard page configuration.
type UIConfig struct {
	Title          string    `yaml:"title"`
	Subtitle       string    `yaml:"subtitle"`
	DefaultFlow    float64   `yaml:"default_flow"`
	SliderStep     float64   `yaml:"slider_step"`
	InputStep      float64   `yaml:"input_step"`
	ReferenceFlows []float64 `yaml:"reference_flows"`
	GaugeTicks     []float64 `yaml:"gauge_ticks"`
}

// Advisory is one rule evaluated against every estimate.
type Advisory struct {
	// Name identifies the rule in responses and logs.
	Name string `yaml:"name"`

	// Condition is a simple expression: "o2_pct >= 60", "flow_rate > 6",
	// "device == high_flow".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info. Defaults to info.
	Severity string `yaml:"severity"`

	// Message is shown to the user when the rule fires.
	Message string `yaml:"message"`
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML config data. Load is Parse on the contents of a file.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. The server
// runs with it when no config file is given.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Log:      LogConfig{Level: "info", Format: "json"},
			History: HistoryConfig{
				TTL:        DefaultHistoryTTL,
				MaxEntries: DefaultHistoryMax,
			},
			Stream: StreamConfig{Interval: DefaultStreamInterval},
		},
		UI: UIConfig{
			Title:          "Respiratory Therapy Oxygen Calculator",
			Subtitle:       "Convert Flow Rate (LPM) to Approximate O₂ Percentage",
			DefaultFlow:    DefaultFlow,
			SliderStep:     DefaultSliderStep,
			InputStep:      DefaultInputStep,
			ReferenceFlows: append([]float64(nil), oxygen.DefaultReferenceFlows...),
			GaugeTicks:     append([]float64(nil), oxygen.DefaultGaugeTicks...),
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("server.log.level %q unknown: want debug|info|warn|error", s.Log.Level)
	}
	switch s.Log.Format {
	case "json", "text", "":
	default:
		return fmt.Errorf("server.log.format %q unknown: want json|text", s.Log.Format)
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.History.TTL < 0 {
		return fmt.Errorf("server.history.ttl must not be negative")
	}
	if s.History.MaxEntries < 0 {
		return fmt.Errorf("server.history.max_entries must not be negative")
	}
	if s.Stream.Interval <= 0 {
		return fmt.Errorf("server.stream.interval must be positive")
	}

	ui := cfg.UI
	if _, err := oxygen.Validate(ui.DefaultFlow); err != nil {
		return fmt.Errorf("ui.default_flow: %w", err)
	}
	if ui.SliderStep <= 0 || ui.InputStep <= 0 {
		return fmt.Errorf("ui.slider_step and ui.input_step must be positive")
	}
	for _, f := range ui.ReferenceFlows {
		if _, err := oxygen.Validate(f); err != nil {
			return fmt.Errorf("ui.reference_flows: %w", err)
		}
	}
	if len(ui.GaugeTicks) == 0 {
		return fmt.Errorf("ui.gauge_ticks must not be empty")
	}
	if !sort.Float64sAreSorted(ui.GaugeTicks) {
		return fmt.Errorf("ui.gauge_ticks must be ascending")
	}
	for i, tick := range ui.GaugeTicks {
		if tick < 0 || tick > oxygen.MaxPercentage {
			return fmt.Errorf("ui.gauge_ticks: %g is out of range [0, 100]", tick)
		}
		if i > 0 && tick == ui.GaugeTicks[i-1] {
			return fmt.Errorf("ui.gauge_ticks: duplicate tick %g", tick)
		}
	}

	for i, a := range cfg.Advisories {
		if a.Name == "" {
			return fmt.Errorf("advisories[%d]: name is required", i)
		}
		if a.Condition == "" {
			return fmt.Errorf("advisories[%d] %q: condition is required", i, a.Name)
		}
		if _, err := advisory.ParseCondition(a.Condition); err != nil {
			return fmt.Errorf("advisories[%d] %q: %w", i, a.Name, err)
		}
		switch a.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("advisories[%d] %q: severity %q unknown: want critical|warning|info", i, a.Name, a.Severity)
		}
	}
	return nil
}

// Rules converts the configured advisories into engine rules.
func (c *Config) Rules() []advisory.Rule {
	out := make([]advisory.Rule, 0, len(c.Advisories))
	for _, a := range c.Advisories {
		out = append(out, advisory.Rule{
			Name:      a.Name,
			Condition: a.Condition,
			Severity:  a.Severity,
			Message:   a.Message,
		})
	}
	return out
}
