package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/affiliate"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig            `yaml:"server"`
	Database    DatabaseConfig          `yaml:"database"`
	Redis       RedisConfig             `yaml:"redis"`
	Links       LinksConfig             `yaml:"links"`
	Webhooks    WebhooksConfig          `yaml:"webhooks"`
	Attribution AttributionConfig       `yaml:"attribution"`
	Fraud       FraudConfig             `yaml:"fraud"`
	Dispatch    DispatchConfig          `yaml:"dispatch"`
	Providers   map[string]ProviderRule `yaml:"providers"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DatabaseConfig holds PostgreSQL settings. Leave URL empty to run with
// the in-memory ledgers.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis settings for the shared link store.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// LinksConfig holds tracked-link generation settings
type LinksConfig struct {
	SigningSecret        string `yaml:"signing_secret"`
	BaseURL              string `yaml:"base_url"`
	TTLHours             int    `yaml:"ttl_hours"`
	SweepIntervalMinutes int    `yaml:"sweep_interval_minutes"`
	StoreBackend         string `yaml:"store_backend"` // "memory" or "redis"
}

// WebhooksConfig holds partner webhook verification secrets
type WebhooksConfig struct {
	Secret         string `yaml:"secret"`
	ImpactSecret   string `yaml:"impact_secret"`
	AmazonSecret   string `yaml:"amazon_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AttributionConfig holds conversion attribution settings
type AttributionConfig struct {
	Model       string `yaml:"model"`
	WindowHours int    `yaml:"window_hours"`
}

// FraudConfig holds fraud flagging thresholds
type FraudConfig struct {
	MaxConversionsPerFingerprint int     `yaml:"max_conversions_per_fingerprint"`
	MinSecondsToPurchase         int     `yaml:"min_seconds_to_purchase"`
	HighValueOrderThreshold      float64 `yaml:"high_value_order_threshold"`
}

// DispatchConfig holds click event dispatch settings. Backend "channel"
// records clicks in-process; "sqs" publishes them for a separate consumer.
type DispatchConfig struct {
	Backend     string `yaml:"backend"`
	BufferSize  int    `yaml:"buffer_size"`
	SQSQueueURL string `yaml:"sqs_queue_url"`
	AWSRegion   string `yaml:"aws_region"`
}

// ProviderRule mirrors affiliate.Rule for YAML overrides of the built-in
// commission table.
type ProviderRule struct {
	Type          string             `yaml:"type"`
	Rates         map[string]float64 `yaml:"rates"`
	CookieDays    int                `yaml:"cookie_days"`
	AvgOrderValue float64            `yaml:"avg_order_value"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads config from a YAML file then applies environment
// variable overrides. A missing file is not an error; env-only deployments
// are supported.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("LINK_SIGNING_SECRET"); v != "" {
		cfg.Links.SigningSecret = v
	}
	if v := os.Getenv("LINK_BASE_URL"); v != "" {
		cfg.Links.BaseURL = v
	}
	if v := os.Getenv("AFFILIATE_WEBHOOK_SECRET"); v != "" {
		cfg.Webhooks.Secret = v
	}
	if v := os.Getenv("IMPACT_WEBHOOK_SECRET"); v != "" {
		cfg.Webhooks.ImpactSecret = v
	}
	if v := os.Getenv("AMAZON_WEBHOOK_SECRET"); v != "" {
		cfg.Webhooks.AmazonSecret = v
	}
	if v := os.Getenv("ATTRIBUTION_MODEL"); v != "" {
		cfg.Attribution.Model = v
	}
	if v := os.Getenv("SQS_QUEUE_URL"); v != "" {
		cfg.Dispatch.SQSQueueURL = v
		cfg.Dispatch.Backend = "sqs"
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Links.BaseURL == "" {
		c.Links.BaseURL = "https://api.fitbites.app"
	}
	if c.Links.TTLHours == 0 {
		c.Links.TTLHours = 24
	}
	if c.Links.SweepIntervalMinutes == 0 {
		c.Links.SweepIntervalMinutes = 10
	}
	if c.Links.StoreBackend == "" {
		if c.Redis.Enabled {
			c.Links.StoreBackend = "redis"
		} else {
			c.Links.StoreBackend = "memory"
		}
	}
	if c.Webhooks.TimeoutSeconds == 0 {
		c.Webhooks.TimeoutSeconds = 10
	}
	if c.Attribution.Model == "" {
		c.Attribution.Model = "last_click"
	}
	if c.Attribution.WindowHours == 0 {
		c.Attribution.WindowHours = 24
	}
	if c.Fraud.MaxConversionsPerFingerprint == 0 {
		c.Fraud.MaxConversionsPerFingerprint = 3
	}
	if c.Fraud.MinSecondsToPurchase == 0 {
		c.Fraud.MinSecondsToPurchase = 30
	}
	if c.Fraud.HighValueOrderThreshold == 0 {
		c.Fraud.HighValueOrderThreshold = 500
	}
	if c.Dispatch.Backend == "" {
		c.Dispatch.Backend = "channel"
	}
	if c.Dispatch.BufferSize == 0 {
		c.Dispatch.BufferSize = 1024
	}
	if c.Dispatch.AWSRegion == "" {
		c.Dispatch.AWSRegion = "us-east-1"
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Links.SigningSecret == "" {
		return fmt.Errorf("links.signing_secret is required (env LINK_SIGNING_SECRET)")
	}
	if c.Webhooks.Secret == "" {
		return fmt.Errorf("webhooks.secret is required (env AFFILIATE_WEBHOOK_SECRET)")
	}
	switch c.Links.StoreBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("links.store_backend must be memory or redis, got %q", c.Links.StoreBackend)
	}
	if c.Links.StoreBackend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required for the redis link store")
	}
	switch c.Dispatch.Backend {
	case "channel", "sqs":
	default:
		return fmt.Errorf("dispatch.backend must be channel or sqs, got %q", c.Dispatch.Backend)
	}
	if c.Dispatch.Backend == "sqs" && c.Dispatch.SQSQueueURL == "" {
		return fmt.Errorf("dispatch.sqs_queue_url is required for the sqs backend")
	}
	return nil
}

// LinkTTL returns the tracked-link lifetime as a duration.
func (c *Config) LinkTTL() time.Duration {
	return time.Duration(c.Links.TTLHours) * time.Hour
}

// SweepInterval returns the expired-link sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Links.SweepIntervalMinutes) * time.Minute
}

// AttributionWindow returns the default attribution window as a duration.
func (c *Config) AttributionWindow() time.Duration {
	return time.Duration(c.Attribution.WindowHours) * time.Hour
}

// Rules builds the provider commission table, starting from the built-in
// defaults and applying any YAML overrides.
func (c *Config) Rules() affiliate.RuleTable {
	table := affiliate.DefaultRules()
	for name, pr := range c.Providers {
		rule := affiliate.Rule{
			Provider:      name,
			Type:          affiliate.CommissionType(pr.Type),
			Rates:         pr.Rates,
			CookieDays:    pr.CookieDays,
			AvgOrderValue: pr.AvgOrderValue,
		}
		if existing, ok := table[name]; ok {
			if rule.Type == "" {
				rule.Type = existing.Type
			}
			if rule.Rates == nil {
				rule.Rates = existing.Rates
			}
			if rule.CookieDays == 0 {
				rule.CookieDays = existing.CookieDays
			}
			if rule.AvgOrderValue == 0 {
				rule.AvgOrderValue = existing.AvgOrderValue
			}
		}
		table[name] = rule
	}
	return table
}
