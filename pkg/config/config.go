package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for onbloom-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Redis configuration (gift store backend)
	Redis RedisConfig `yaml:"redis"`

	// Employee directory (workspace database) configuration
	Directory DirectoryConfig `yaml:"directory"`

	// Cultural recommendation provider configuration
	Taste TasteConfig `yaml:"taste"`

	// Generation provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Email delivery configuration
	Email EmailConfig `yaml:"email"`

	// Gift store behavior
	Gifts GiftConfig `yaml:"gifts"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT tokens are validated.
	// Set to false for local development without an auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	// Format: "issuer1=url1,issuer2=url2"
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr (not from config file).
	JWKSEndpoints map[string]string `yaml:"-"`
}

// RedisConfig holds connection settings for the gift store backend.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// DirectoryConfig holds the workspace-database employee directory settings.
type DirectoryConfig struct {
	APIKey     string `yaml:"-" env:"DIRECTORY_API_KEY"` // Secret - not in YAML
	DatabaseID string `yaml:"database_id" env:"DIRECTORY_DATABASE_ID" env-default:""`
}

// TasteConfig holds the cultural recommendation provider settings.
type TasteConfig struct {
	BaseURL string `yaml:"base_url" env:"TASTE_BASE_URL" env-default:"https://hackathon.api.qloo.com"`
	APIKey  string `yaml:"-" env:"TASTE_API_KEY"` // Secret - not in YAML
}

// LLMConfig holds generation provider settings. Endpoint must be
// OpenAI-compatible (OpenRouter by default). ThinkingModel is used for the
// streamed reasoning endpoints and goes through the Anthropic API directly.
type LLMConfig struct {
	Endpoint        string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://openrouter.ai/api/v1"`
	Model           string `yaml:"model" env:"LLM_MODEL" env-default:"anthropic/claude-3.5-sonnet"`
	APIKey          string `yaml:"-" env:"OPENROUTER_API_KEY"` // Secret - not in YAML
	ThinkingModel   string `yaml:"thinking_model" env:"LLM_THINKING_MODEL" env-default:"claude-3-7-sonnet-latest"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	APIKey string `yaml:"-" env:"RESEND_API_KEY"` // Secret - not in YAML
	From   string `yaml:"from" env:"EMAIL_FROM" env-default:"OnBloom <onboarding@updates.onbloom.app>"`
}

// GiftConfig holds gift store behavior settings.
type GiftConfig struct {
	// RetentionDays is how long gift records and their index sets live
	// after the last write.
	RetentionDays int `yaml:"retention_days" env:"GIFT_RETENTION_DAYS" env-default:"90"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.Auth.JWKSEndpoints = parseJWKSEndpoints(cfg.Auth.JWKSEndpointsStr)

	if cfg.Gifts.RetentionDays <= 0 {
		return nil, fmt.Errorf("gifts.retention_days must be positive, got %d", cfg.Gifts.RetentionDays)
	}

	return cfg, nil
}

// parseJWKSEndpoints parses the JWKS endpoints string into a map.
// Format: "issuer1=url1,issuer2=url2"
func parseJWKSEndpoints(value string) map[string]string {
	endpoints := make(map[string]string)
	if value == "" {
		return endpoints
	}

	pairs := strings.Split(value, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, "=")
		if len(parts) == 2 {
			endpoints[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return endpoints
}
