// ABOUTME: Configuration loader for the marketplace client
// ABOUTME: Merges flags, FREELANCE_* env vars, .env, config.yaml and defaults via viper

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables (FREELANCE_API_URL, ...)
const EnvPrefix = "FREELANCE"

// Keys shared with cobra flag bindings
const (
	KeyAPIURL         = "api_url"
	KeyTokenStore     = "token_store"
	KeyProfile        = "profile"
	KeyRedisAddr      = "redis_addr"
	KeyRedisPassword  = "redis_password"
	KeyRedisDB        = "redis_db"
	KeyRequestTimeout = "request_timeout"
	KeyRateLimit      = "rate_limit"
	KeyRateBurst      = "rate_burst"
	KeyLogLevel       = "log_level"
	KeyConfigDir      = "config_dir"
)

// DefaultAPIURL is the development server's API root
const DefaultAPIURL = "http://localhost:5000/api"

type Config struct {
	// Marketplace API
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst      int           `mapstructure:"rate_burst"`

	// Token persistence
	TokenStore    string `mapstructure:"token_store"` // file, memory, redis
	Profile       string `mapstructure:"profile"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Local state
	ConfigDir string `mapstructure:"config_dir"`
	LogLevel  string `mapstructure:"log_level"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper, configDir string) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyRequestTimeout, 15*time.Second)
	v.SetDefault(KeyRateLimit, 10.0)
	v.SetDefault(KeyRateBurst, 5)
	v.SetDefault(KeyTokenStore, "file")
	v.SetDefault(KeyProfile, "default")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyConfigDir, configDir)
	v.SetDefault(KeyLogLevel, "info")
}

// Load resolves configuration. Precedence: bound flags > env > .env > config.yaml > defaults.
// dotenvPath may be empty to skip .env loading.
func Load(v *viper.Viper, dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if dir := v.GetString(KeyConfigDir); dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	switch c.TokenStore {
	case "file", "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required when token_store is redis")
		}
	default:
		return fmt.Errorf("token_store must be file, memory or redis, got %q", c.TokenStore)
	}
	return nil
}
