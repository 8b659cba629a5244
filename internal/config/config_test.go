package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadEnvAndYAMLOverlay(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_USER", "swap")
	t.Setenv("DB_NAME", "swapdb")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "30")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "port: \"9100\"\nshutdown_timeout: 3s\nevents_enabled: false\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("yaml should override port, got %q", cfg.Port)
	}
	if cfg.DBUser != "swap" || cfg.AccessTTLMin != 30 || cfg.RefreshTTLDays != 7 {
		t.Errorf("unexpected env values: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 3*time.Second || cfg.EventsEnabled {
		t.Errorf("unexpected overlay values: %v %v", cfg.ShutdownTimeout, cfg.EventsEnabled)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Env: "dev", Port: "8080", DBUser: "u", DBHost: "h", DBPort: "3306", DBName: "n",
			JWTSecret: "s", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 10,
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing db name", func(c *Config) { c.DBName = "" }, "DB_NAME"},
		{"missing secret", func(c *Config) { c.JWTSecret = " " }, "JWT_SECRET"},
		{"weak prod secret", func(c *Config) { c.Env = "prod" }, "at least 32"},
		{"bad cost", func(c *Config) { c.BcryptCost = 2 }, "BCRYPT_COST"},
		{"events without broker", func(c *Config) { c.EventsEnabled = true }, "RABBITMQ_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 2 * time.Second, TTL: time.Second}.normalize()
	if c.Capacity != 1 || c.RefillTokens != 1 || c.TTL != 10*time.Second {
		t.Fatalf("unexpected normalized config: %+v", c)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "1m")
	c := LoadCacheConfig()
	if !c.Methods["GET"] || !c.Methods["HEAD"] || c.TTL != time.Minute || !c.Enabled {
		t.Fatalf("unexpected cache config: %+v", c)
	}
}
