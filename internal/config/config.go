package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"itscare/internal/finance"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Commission CommissionConfig `yaml:"commission"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	PoolSize        int    `yaml:"pool_size"`
	SummaryTTLHours int    `yaml:"summary_ttl_hours"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool `yaml:"enabled"`
	DebounceSecs  int  `yaml:"debounce_seconds"`
	RetentionDays int  `yaml:"retention_days"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

// CommissionConfig carries the contractor default-rate table.
type CommissionConfig struct {
	DefaultRates map[string]float64 `yaml:"default_rates"`
}

// Policy converts the configured table into a commission policy; an
// empty table falls back to the built-in rules.
func (c CommissionConfig) Policy() finance.CommissionPolicy {
	if len(c.DefaultRates) == 0 {
		return finance.DefaultPolicy()
	}
	policy := make(finance.CommissionPolicy, len(c.DefaultRates))
	for contractor, rate := range c.DefaultRates {
		policy[contractor] = rate
	}
	return policy
}

// Load reads the YAML config at configPath, expanding ${ENV} values
// after loading a .env file when one exists.
func Load(configPath string) (*Config, error) {
	// .env is optional; environment wins either way
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidMonth reports whether a summary target month has the YYYY-MM
// shape.
func ValidMonth(month string) bool {
	return monthPattern.MatchString(month)
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	for contractor, rate := range c.Commission.DefaultRates {
		if contractor == "" {
			return errors.New("commission default_rates contains an empty contractor name")
		}
		if rate < 0 {
			return fmt.Errorf("commission default rate for %q is negative", contractor)
		}
	}
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth is enabled but no api_keys are configured")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "itscare"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Redis.SummaryTTLHours == 0 {
		c.Redis.SummaryTTLHours = 24
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Backup.DebounceSecs == 0 {
		c.Backup.DebounceSecs = 30
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 30
	}
}
