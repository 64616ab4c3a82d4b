package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Meta     MetaConfig     `yaml:"meta"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Polling  PollingConfig  `yaml:"polling"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// MetaConfig holds Meta Marketing API configuration
type MetaConfig struct {
	AccessToken    string `yaml:"access_token"`
	BaseURL        string `yaml:"base_url"`
	APIVersion     string `yaml:"api_version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PageSize       int    `yaml:"page_size"`
}

// Timeout returns the configured timeout as a duration
func (c MetaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds Redis connection configuration.
// Redis is optional: when disabled the run lock falls back to Postgres
// advisory locks and the latest-results cache is skipped.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ScoringConfig holds runtime settings for the scoring engine.
// Formula coefficients live in the database (scoring_configs), not here.
type ScoringConfig struct {
	CurrentWindowDays  int `yaml:"current_window_days"`
	BaselineWindowDays int `yaml:"baseline_window_days"`
	Workers            int `yaml:"workers"`
	RunTimeoutSeconds  int `yaml:"run_timeout_seconds"`
	LockTTLSeconds     int `yaml:"lock_ttl_seconds"`
	CacheTTLHours      int `yaml:"cache_ttl_hours"`
}

// RunTimeout returns the per-run timeout as a duration
func (c ScoringConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// LockTTL returns the run-lock TTL as a duration
func (c ScoringConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// CacheTTL returns the latest-results cache TTL as a duration
func (c ScoringConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// PollingConfig holds the worker's scheduling configuration
type PollingConfig struct {
	IntervalSeconds int      `yaml:"interval_seconds"`
	AccountIDs      []string `yaml:"account_ids"`
}

// Interval returns the polling interval as a duration
func (c PollingConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// StorageConfig holds run-artifact archive configuration
type StorageConfig struct {
	Type       string `yaml:"type"`
	LocalPath  string `yaml:"local_path"`
	S3Bucket   string `yaml:"s3_bucket"`
	AWSRegion  string `yaml:"aws_region"`
	AWSProfile string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return "" // Use default credential chain (IAM role)
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "" // Running on ECS or Lambda, use IAM role
	}
	return c.AWSProfile
}

// AuthConfig holds API-key authentication configuration
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Meta.BaseURL == "" {
		cfg.Meta.BaseURL = "https://graph.facebook.com"
	}
	if cfg.Meta.APIVersion == "" {
		cfg.Meta.APIVersion = "v21.0"
	}
	if cfg.Meta.TimeoutSeconds == 0 {
		cfg.Meta.TimeoutSeconds = 30
	}
	if cfg.Meta.PageSize == 0 {
		cfg.Meta.PageSize = 500
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Scoring.CurrentWindowDays == 0 {
		cfg.Scoring.CurrentWindowDays = 3
	}
	if cfg.Scoring.BaselineWindowDays == 0 {
		cfg.Scoring.BaselineWindowDays = 7
	}
	if cfg.Scoring.Workers == 0 {
		cfg.Scoring.Workers = 8
	}
	if cfg.Scoring.RunTimeoutSeconds == 0 {
		cfg.Scoring.RunTimeoutSeconds = 120
	}
	if cfg.Scoring.LockTTLSeconds == 0 {
		cfg.Scoring.LockTTLSeconds = 180
	}
	if cfg.Scoring.CacheTTLHours == 0 {
		cfg.Scoring.CacheTTLHours = 24
	}
	if cfg.Polling.IntervalSeconds == 0 {
		cfg.Polling.IntervalSeconds = 3600
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if token := os.Getenv("META_ACCESS_TOKEN"); token != "" {
		cfg.Meta.AccessToken = token
	}
	if baseURL := os.Getenv("META_BASE_URL"); baseURL != "" {
		cfg.Meta.BaseURL = baseURL
	}
	if version := os.Getenv("META_API_VERSION"); version != "" {
		cfg.Meta.APIVersion = version
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Redis.DB = n
		}
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Auth.APIKey = apiKey
		cfg.Auth.Enabled = true
	}
	if bucket := os.Getenv("STORAGE_S3_BUCKET"); bucket != "" {
		cfg.Storage.S3Bucket = bucket
		cfg.Storage.Type = "aws"
	}
	if region := os.Getenv("STORAGE_AWS_REGION"); region != "" {
		cfg.Storage.AWSRegion = region
	}
	if accounts := os.Getenv("ACCOUNT_IDS"); accounts != "" {
		cfg.Polling.AccountIDs = splitAccounts(accounts)
	}

	return cfg, nil
}

func splitAccounts(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
