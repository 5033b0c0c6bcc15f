package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/marketmind/internal/core"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Price   PriceConfig   `mapstructure:"price"`
	News    NewsConfig    `mapstructure:"news"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	APIKey      string   `mapstructure:"api_key"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// PriceConfig holds price source settings.
type PriceConfig struct {
	Source  string        `mapstructure:"source"` // "yahoo" or "demo"
	Timeout time.Duration `mapstructure:"timeout"`
	MinBars int           `mapstructure:"min_bars"`
}

// NewsConfig holds news aggregation settings.
type NewsConfig struct {
	Sources   []string      `mapstructure:"sources"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Limit     int           `mapstructure:"limit"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	UserAgent string        `mapstructure:"user_agent"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Claude   ClaudeConfig  `mapstructure:"claude"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
	Ollama   OllamaConfig  `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type StorageConfig struct {
	Hot  HotStorageConfig  `mapstructure:"hot"`
	Cold ColdStorageConfig `mapstructure:"cold"`
}

// HotStorageConfig selects where score history is kept.
type HotStorageConfig struct {
	Type       string `mapstructure:"type"` // "memory" or "postgres"
	DSN        string `mapstructure:"dsn"`
	MaxRecords int    `mapstructure:"max_records"`
}

// ColdStorageConfig selects where full signal results are archived.
type ColdStorageConfig struct {
	Type string   `mapstructure:"type"` // "", "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// CacheConfig selects the headline cache backend.
type CacheConfig struct {
	Type  string      `mapstructure:"type"` // "memory" or "redis"
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// WatchConfig drives the scheduled watchlist synthesis.
type WatchConfig struct {
	Schedule  string       `mapstructure:"schedule"`
	Tickers   []string     `mapstructure:"tickers"`
	Timeframe string       `mapstructure:"timeframe"`
	Notify    NotifyConfig `mapstructure:"notify"`
}

// NotifyConfig holds alert filters and channels for watch runs. Alerts are
// disabled when no channel is configured.
type NotifyConfig struct {
	MinConfidence int            `mapstructure:"min_confidence"`
	Cooldown      time.Duration  `mapstructure:"cooldown"`
	Biases        []string       `mapstructure:"biases"`
	OnBiasChange  bool           `mapstructure:"on_bias_change"`
	Digest        bool           `mapstructure:"digest"`
	Webhook       WebhookConfig  `mapstructure:"webhook"`
	Telegram      TelegramConfig `mapstructure:"telegram"`
	Email         EmailConfig    `mapstructure:"email"`
}

// Enabled reports whether any alert channel is configured.
func (n NotifyConfig) Enabled() bool {
	return n.Webhook.URL != "" || n.Telegram.BotToken != "" || n.Email.Host != ""
}

type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type EmailConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults. A .env file in the
// working directory, if present, is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("MARKETMIND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Price: PriceConfig{
			Source:  "yahoo",
			Timeout: 10 * time.Second,
			MinBars: 10,
		},
		News: NewsConfig{
			Sources:  []string{"google", "yahoo", "bing"},
			Timeout:  5 * time.Second,
			Limit:    12,
			CacheTTL: 5 * time.Minute,
		},
		LLM: LLMConfig{
			Timeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Hot: HotStorageConfig{
				Type:       "memory",
				MaxRecords: 1000,
			},
		},
		Cache: CacheConfig{
			Type: "memory",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "marketmind",
			},
		},
		Watch: WatchConfig{
			Schedule:  "@every 15m",
			Timeframe: "medium",
			Notify: NotifyConfig{
				MinConfidence: 70,
				Cooldown:      time.Hour,
				Biases:        []string{"Positive", "Negative"},
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Price.Source {
	case "yahoo", "demo":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown price source: %s", c.Price.Source))
	}
	if c.Price.MinBars < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("price.min_bars must be positive, got %d", c.Price.MinBars))
	}
	if c.Price.Timeout <= 0 || c.News.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("price and news timeouts must be positive"))
	}
	if c.News.Limit < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("news.limit must be positive, got %d", c.News.Limit))
	}
	for _, s := range c.News.Sources {
		switch s {
		case "google", "yahoo", "bing":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown news source: %s", s))
		}
	}

	// LLM validation - if provider set, check config exists
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		case "ollama":
			if c.LLM.Ollama.Endpoint == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("ollama endpoint required when provider is ollama"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown llm provider: %s", c.LLM.Provider))
		}
	}

	switch c.Storage.Hot.Type {
	case "memory":
	case "postgres":
		if c.Storage.Hot.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage.hot.dsn required for postgres"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown hot storage type: %s", c.Storage.Hot.Type))
	}

	switch c.Storage.Cold.Type {
	case "", "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cold storage type: %s", c.Storage.Cold.Type))
	}
	if c.Storage.Cold.Type == "s3" && c.Storage.Cold.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("storage.cold.s3.bucket required for s3"))
	}

	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cache type: %s", c.Cache.Type))
	}

	if len(c.Watch.Tickers) > 0 {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("watch.schedule: %w", err))
		}
	}

	n := c.Watch.Notify
	if n.MinConfidence < 0 || n.MinConfidence > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("watch.notify.min_confidence must be between 0 and 100, got %d", n.MinConfidence))
	}
	if n.Cooldown < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("watch.notify.cooldown must not be negative"))
	}
	for _, b := range n.Biases {
		switch b {
		case "Positive", "Negative", "Neutral":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown bias in watch.notify.biases: %s", b))
		}
	}
	if n.Telegram.BotToken != "" && n.Telegram.ChatID == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("watch.notify.telegram.chat_id required with bot_token"))
	}
	if n.Email.Host != "" && (n.Email.From == "" || len(n.Email.To) == 0) {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("watch.notify.email from and to required with host"))
	}

	return nil
}
