// ABOUTME: Tests for configuration loading
// ABOUTME: Verifies defaults, env/file/flag precedence and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newViper(t *testing.T) (*viper.Viper, string) {
	t.Helper()
	dir := t.TempDir()
	v := viper.New()
	SetDefaults(v, dir)
	return v, dir
}

func TestLoad_Defaults(t *testing.T) {
	v, dir := newViper(t)

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.TokenStore != "file" {
		t.Errorf("expected file token store, got %s", cfg.TokenStore)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("expected config dir %s, got %s", dir, cfg.ConfigDir)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FREELANCE_API_URL", "https://market.example.com/api/")
	t.Setenv("FREELANCE_REQUEST_TIMEOUT", "3s")
	v, _ := newViper(t)

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "https://market.example.com/api" {
		t.Errorf("expected env URL without trailing slash, got %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %s", cfg.RequestTimeout)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	v, dir := newViper(t)
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("token_store: memory\nlog_level: debug\n"), 0600)

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TokenStore != "memory" {
		t.Errorf("expected memory from config file, got %s", cfg.TokenStore)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug from config file, got %s", cfg.LogLevel)
	}
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("FREELANCE_API_URL", "http://env.example.com/api")
	v, _ := newViper(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	flags.Parse([]string{"--api-url", "http://flag.example.com/api"})
	v.BindPFlag(KeyAPIURL, flags.Lookup("api-url"))

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "http://flag.example.com/api" {
		t.Errorf("expected flag to override env, got %s", cfg.APIURL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(dotenv, []byte("FREELANCE_PROFILE=work\n"), 0600)
	t.Cleanup(func() { os.Unsetenv("FREELANCE_PROFILE") })
	v, _ := newViper(t)

	cfg, err := Load(v, dotenv)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Profile != "work" {
		t.Errorf("expected profile from .env, got %s", cfg.Profile)
	}
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	v, _ := newViper(t)
	if _, err := Load(v, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{APIURL: DefaultAPIURL, RequestTimeout: time.Second, TokenStore: "file"}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://host/api" }},
		{"no host", func(c *Config) { c.APIURL = "http://" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }},
		{"unknown store", func(c *Config) { c.TokenStore = "etcd" }},
		{"redis without addr", func(c *Config) { c.TokenStore = "redis"; c.RedisAddr = "" }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
