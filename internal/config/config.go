// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verustcode/verustcode/consts"
	"github.com/verustcode/verustcode/pkg/logger"
	"github.com/verustcode/verustcode/pkg/telemetry"
)

// Default configuration values
const (
	defaultAgentTimeout   = 600
	defaultOTLPEndpoint   = "localhost:4317"
	defaultPrometheusPort = 9090
	defaultDatabasePath   = "./data/verustcode.db"
)

// DefaultConfigPath is the default path for the configuration file
const DefaultConfigPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig           `yaml:"server"`
	Database  DatabaseConfig         `yaml:"database"`
	Git       GitConfig              `yaml:"git"`
	Agents    map[string]AgentDetail `yaml:"agents"`
	Logging   logger.Config          `yaml:"logging"`
	Telemetry telemetry.Config       `yaml:"telemetry"`
	PRReview  PRReviewConfig         `yaml:"pr_review"` // Automated PR review pipeline configuration
}

// PRReviewConfig configures the automated PR review pipeline: the
// webhook-triggered LLM review, its reliability layer, and the
// feedback-learning loop.
type PRReviewConfig struct {
	Enabled                 bool   `yaml:"enabled"`                     // master switch for the pipeline
	Agent                   string `yaml:"agent"`                       // which entry of Agents supplies the LLM client
	ModelFamily             string `yaml:"model_family"`                // "reasoning" or "standard"; empty falls back to model-id prefix detection
	DryRun                  bool   `yaml:"dry_run"`                     // analyze but never post comments
	FunctionKey             string `yaml:"function_key"`                // X-Function-Key value admin endpoints require
	MaxConcurrentReviews    int    `yaml:"max_concurrent_reviews"`      // semaphore width for diff fetches and AI calls
	RateLimitPerMinute      int    `yaml:"rate_limit_per_minute"`       // webhook requests admitted per window per client
	RateLimitWindowSeconds  int    `yaml:"rate_limit_window_seconds"`   // sliding-window width for webhook admission
	CircuitBreakerThreshold uint32 `yaml:"circuit_breaker_threshold"`   // consecutive failures before a breaker opens
	CircuitBreakerTimeout   int    `yaml:"circuit_breaker_timeout"`     // seconds a breaker stays open before half-open
	CacheMaxWritesPerMinute int    `yaml:"cache_max_writes_per_minute"` // response-cache write-rate guard
	FeedbackHarvestMinutes  int    `yaml:"feedback_harvest_minutes"`    // interval between feedback-harvester runs
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// GitConfig holds Git provider configuration
type GitConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds individual Git provider settings
type ProviderConfig struct {
	Type               string `yaml:"type"`                 // github, gitlab
	URL                string `yaml:"url"`                  // for self-hosted instances (supports both http:// and https://)
	Token              string `yaml:"token"`                // access token
	WebhookSecret      string `yaml:"webhook_secret"`       // webhook secret for validation
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // skip SSL certificate verification (for self-signed certs)
}

// AgentDetail holds specific agent configuration
type AgentDetail struct {
	CLIPath        string   `yaml:"cli_path" json:"cli_path"`
	APIKey         string   `yaml:"api_key" json:"api_key"`
	Timeout        int      `yaml:"timeout" json:"timeout"`                 // seconds
	DefaultModel   string   `yaml:"default_model" json:"default_model"`     // default model to use
	FallbackModels []string `yaml:"fallback_models" json:"fallback_models"` // fallback model list
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  "0.0.0.0",
			Port:  8080,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:8091",
				"http://localhost:8092",
			},
		},
		Database: DatabaseConfig{
			Path: defaultDatabasePath,
		},
		Git: GitConfig{
			Providers: []ProviderConfig{},
		},
		Agents: map[string]AgentDetail{
			"gemini": {
				Timeout: defaultAgentTimeout,
			},
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text", // Default to human-readable text format instead of JSON
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,   // Keep 5 backup files
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
		PRReview: PRReviewConfig{
			Enabled:                 false,
			Agent:                   "gemini",
			MaxConcurrentReviews:    10,
			RateLimitPerMinute:      100,
			RateLimitWindowSeconds:  60,
			CircuitBreakerThreshold: 5,
			CircuitBreakerTimeout:   30,
			CacheMaxWritesPerMinute: 100,
			FeedbackHarvestMinutes:  60,
		},
	}
}

// Load loads configuration from a YAML file with environment variable expansion
func Load(path string) (*Config, error) {
	cfg := Default()

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the configuration
	expanded := expandEnvVars(string(data))

	// Parse YAML
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Exists checks if a configuration file exists at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid conflicts with special characters
func expandEnvVars(content string) string {
	// Match ${VAR_NAME} patterns only
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		// Return default value if provided
		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// GetProvider returns provider configuration by type
func (c *GitConfig) GetProvider(providerType string) *ProviderConfig {
	for i := range c.Providers {
		if c.Providers[i].Type == providerType {
			return &c.Providers[i]
		}
	}
	return nil
}

// GetAgent returns agent configuration by name
func (c *Config) GetAgent(name string) *AgentDetail {
	if detail, ok := c.Agents[name]; ok {
		return &detail
	}
	return nil
}
