// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jmrodillon/portfolio-backend/logger"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT"`
	Port           string      `mapstructure:"PORT"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS"`
	// StaticDir is the directory holding the built portfolio bundle.
	// Empty disables static serving (API-only mode).
	StaticDir string `mapstructure:"STATIC_DIR"`
}

// RedisConfig holds Redis connection details. ReplicaAddress is optional; it
// serves eventual-consistency reads when set.
type RedisConfig struct {
	Address        string `mapstructure:"ADDRESS"`
	ReplicaAddress string `mapstructure:"REPLICA_ADDRESS"`
	Password       string `mapstructure:"PASSWORD"`
	DB             int    `mapstructure:"DB"`
}

// AdminConfig holds the operator shared secret. The token is injected into
// handlers from here; it is never read from the process environment at
// request time.
type AdminConfig struct {
	Token string `mapstructure:"TOKEN"`
}

// RateLimitConfig holds the submission rate limit parameters.
type RateLimitConfig struct {
	MaxPerWindow  int `mapstructure:"MAX_PER_WINDOW"`
	WindowSeconds int `mapstructure:"WINDOW_SECONDS"`
}

// Window returns the configured window as a duration.
func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER"`
	Redis     RedisConfig     `mapstructure:"REDIS"`
	Admin     AdminConfig     `mapstructure:"ADMIN"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, unmarshals into the Config struct, and validates it.
func LoadConfig() (*Config, error) {
	log := logger.GetLogger()
	v := viper.New()

	v.SetDefault("SERVER.ENVIRONMENT", string(EnvDevelopment))
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.STATIC_DIR", "")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.REPLICA_ADDRESS", "")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("ADMIN.TOKEN", "")
	v.SetDefault("RATE_LIMIT.MAX_PER_WINDOW", 5)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 3600)

	if err := bindEnvVars(v, [][2]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.STATIC_DIR", "STATIC_DIR"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.REPLICA_ADDRESS", "REDIS_REPLICA_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"ADMIN.TOKEN", "TESTIMONIALS_ADMIN_TOKEN"},
		{"RATE_LIMIT.MAX_PER_WINDOW", "RATE_LIMIT_MAX_PER_WINDOW"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// ALLOWED_ORIGINS arrives as a comma-separated string from the
	// environment; viper's slice hook splits it without trimming.
	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		for _, p := range strings.Split(o, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}
	cfg.Server.AllowedOrigins = origins

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if cfg.Admin.Token == "" {
		// Not fatal at startup: admin endpoints answer 500 until the
		// secret is configured, public submission still works.
		log.Warn("TESTIMONIALS_ADMIN_TOKEN is not set; moderation endpoints will be unavailable")
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid environment: %q", cfg.Server.Environment)
	}

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address must not be empty")
	}
	if cfg.RateLimit.MaxPerWindow <= 0 {
		return fmt.Errorf("rate limit max per window must be positive, got %d", cfg.RateLimit.MaxPerWindow)
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %d", cfg.RateLimit.WindowSeconds)
	}
	return nil
}
