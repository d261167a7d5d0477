package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level uft.yaml configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Parsing   ParsingConfig   `yaml:"parsing"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	BodyLimitMB int           `yaml:"body_limit_mb"`
	SessionTTL  time.Duration `yaml:"session_ttl"` // idle sessions are dropped after this; 0 keeps them
}

// DashboardConfig holds the default view parameters.
type DashboardConfig struct {
	BudgetLimit    float64 `yaml:"budget_limit"`
	TopN           int     `yaml:"top_n"`
	CurrencySymbol string  `yaml:"currency_symbol"`
	CurrencyCode   string  `yaml:"currency_code"`
}

// ParsingConfig tunes statement interpretation.
type ParsingConfig struct {
	DayFirst bool `yaml:"day_first"` // read 03/04/2024 as 3 April
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Budget returns the budget limit as a decimal.
func (d DashboardConfig) Budget() decimal.Decimal {
	return decimal.NewFromFloat(d.BudgetLimit)
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			BodyLimitMB: 20,
			SessionTTL:  2 * time.Hour,
		},
		Dashboard: DashboardConfig{
			BudgetLimit:    25000,
			TopN:           10,
			CurrencySymbol: "Rs. ",
			CurrencyCode:   "INR",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads defaults, then the YAML file at path (if non-empty), then
// .env and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("UFT_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv("UFT_SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid UFT_SESSION_TTL %q: %w", v, err)
		}
		c.Server.SessionTTL = d
	}
	if v, ok := os.LookupEnv("UFT_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("UFT_LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := os.LookupEnv("UFT_BUDGET_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid UFT_BUDGET_LIMIT %q: %w", v, err)
		}
		c.Dashboard.BudgetLimit = f
	}
	if v, ok := os.LookupEnv("UFT_DAY_FIRST"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid UFT_DAY_FIRST %q: %w", v, err)
		}
		c.Parsing.DayFirst = b
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Addr == "" {
		problems = append(problems, "server.addr must not be empty")
	}
	if c.Server.BodyLimitMB < 1 {
		problems = append(problems, fmt.Sprintf("server.body_limit_mb %d: must be at least 1", c.Server.BodyLimitMB))
	}
	if c.Server.SessionTTL < 0 {
		problems = append(problems, fmt.Sprintf("server.session_ttl %s: must not be negative", c.Server.SessionTTL))
	}
	if c.Dashboard.BudgetLimit < 0 {
		problems = append(problems, fmt.Sprintf("dashboard.budget_limit %v: must not be negative", c.Dashboard.BudgetLimit))
	}
	if c.Dashboard.TopN < 1 {
		problems = append(problems, fmt.Sprintf("dashboard.top_n %d: must be at least 1", c.Dashboard.TopN))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q: must be one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q: must be console or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
