package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/newthinker/marketmind/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

news:
  timeout: 3s
  limit: 8

storage:
  cold:
    type: localfs
    path: "/tmp/marketmind/archive"

watch:
  schedule: "*/30 * * * *"
  tickers: ["AAPL", "RELIANCE.NS"]
  notify:
    digest: true
    webhook:
      url: "http://localhost:9000/hook"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.News.Timeout != 3*time.Second {
		t.Errorf("expected news timeout 3s, got %v", cfg.News.Timeout)
	}
	if cfg.News.Limit != 8 {
		t.Errorf("expected news limit 8, got %d", cfg.News.Limit)
	}
	if cfg.Storage.Cold.Type != "localfs" {
		t.Errorf("expected localfs cold storage, got %s", cfg.Storage.Cold.Type)
	}
	if !reflect.DeepEqual(cfg.Watch.Tickers, []string{"AAPL", "RELIANCE.NS"}) {
		t.Errorf("unexpected tickers %v", cfg.Watch.Tickers)
	}
	if !cfg.Watch.Notify.Digest || !cfg.Watch.Notify.Enabled() {
		t.Errorf("expected digest alerts enabled, got %+v", cfg.Watch.Notify)
	}

	// Values absent from the file keep their defaults
	if cfg.Price.MinBars != 10 {
		t.Errorf("expected default min bars 10, got %d", cfg.Price.MinBars)
	}
	if cfg.Storage.Hot.Type != "memory" {
		t.Errorf("expected default memory hot store, got %s", cfg.Storage.Hot.Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_CLAUDE_KEY", "sk-test")
	cfgPath := writeConfig(t, `
llm:
  provider: claude
  claude:
    api_key: "${TEST_CLAUDE_KEY}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Claude.APIKey != "sk-test" {
		t.Errorf("expected expanded key, got %q", cfg.LLM.Claude.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.News.Limit != 12 {
		t.Errorf("expected news limit 12, got %d", cfg.News.Limit)
	}
	if !reflect.DeepEqual(cfg.News.Sources, []string{"google", "yahoo", "bing"}) {
		t.Errorf("unexpected news sources %v", cfg.News.Sources)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("expected llm timeout 5s, got %v", cfg.LLM.Timeout)
	}
	if cfg.Watch.Notify.MinConfidence != 70 {
		t.Errorf("expected min confidence 70, got %d", cfg.Watch.Notify.MinConfidence)
	}
	if cfg.Watch.Notify.Enabled() || cfg.Watch.Notify.Digest {
		t.Error("expected alerts disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr *core.Error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"zero min bars", func(c *Config) { c.Price.MinBars = 0 }, core.ErrConfigInvalid},
		{"zero news timeout", func(c *Config) { c.News.Timeout = 0 }, core.ErrConfigInvalid},
		{"unknown news source", func(c *Config) { c.News.Sources = []string{"reddit"} }, core.ErrConfigInvalid},
		{"unknown price source", func(c *Config) { c.Price.Source = "bloomberg" }, core.ErrConfigInvalid},
		{"claude without key", func(c *Config) { c.LLM.Provider = "claude" }, core.ErrConfigMissing},
		{"openai with key", func(c *Config) {
			c.LLM.Provider = "openai"
			c.LLM.OpenAI.APIKey = "k"
		}, nil},
		{"unknown llm", func(c *Config) { c.LLM.Provider = "gemini" }, core.ErrConfigInvalid},
		{"postgres without dsn", func(c *Config) { c.Storage.Hot.Type = "postgres" }, core.ErrConfigMissing},
		{"s3 without bucket", func(c *Config) { c.Storage.Cold.Type = "s3" }, core.ErrConfigMissing},
		{"bad cache", func(c *Config) { c.Cache.Type = "memcached" }, core.ErrConfigInvalid},
		{"bad schedule", func(c *Config) {
			c.Watch.Tickers = []string{"AAPL"}
			c.Watch.Schedule = "not a schedule"
		}, core.ErrConfigInvalid},
		{"confidence out of range", func(c *Config) { c.Watch.Notify.MinConfidence = 120 }, core.ErrConfigInvalid},
		{"unknown bias", func(c *Config) { c.Watch.Notify.Biases = []string{"Bullish"} }, core.ErrConfigInvalid},
		{"telegram without chat", func(c *Config) { c.Watch.Notify.Telegram.BotToken = "t" }, core.ErrConfigMissing},
		{"email without recipients", func(c *Config) {
			c.Watch.Notify.Email.Host = "smtp.example.com"
			c.Watch.Notify.Email.From = "a@example.com"
		}, core.ErrConfigMissing},
		{"webhook", func(c *Config) { c.Watch.Notify.Webhook.URL = "http://localhost/hook" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %s, got %v", tt.wantErr.Code, err)
			}
		})
	}
}
