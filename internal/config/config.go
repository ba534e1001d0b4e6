package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"PriceOracle/internal/analytics"
)

// MaxHistoryDays is the most daily bars a provider returns in one request.
const MaxHistoryDays = 1000

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider    string `yaml:"provider"`
		BaseURL     string `yaml:"base_url"`
		HistoryDays int    `yaml:"history_days"`
	} `yaml:"data_source"`
	Forecast struct {
		Days    int `yaml:"days"`
		MaxDays int `yaml:"max_days"`
	} `yaml:"forecast"`
	Cache struct {
		TTLSeconds *int   `yaml:"ttl_seconds"` // nil means unset; 0 disables caching
		Dedupe     bool   `yaml:"dedupe"`
		Backend    string `yaml:"backend"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		DigestCron  string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Watchlist []string `yaml:"watchlist"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL_SECONDS: %w", err)
		}
		c.Cache.TTLSeconds = &ttl
	}
	if v := os.Getenv("CACHE_DEDUPE"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CACHE_DEDUPE: %w", err)
		}
		c.Cache.Dedupe = on
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		if c.Cache.Backend == "" {
			c.Cache.Backend = "redis"
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "bybit"
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	if c.DataSource.HistoryDays == 0 {
		c.DataSource.HistoryDays = 90
	}
	if c.Forecast.MaxDays == 0 {
		c.Forecast.MaxDays = 365
	}
	if c.Forecast.Days == 0 {
		c.Forecast.Days = 7
	}
	if c.Cache.TTLSeconds == nil {
		ttl := 300
		c.Cache.TTLSeconds = &ttl
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "oracle:"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */15 * * * *"
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 0 9 * * *"
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{"BTC", "ETH", "BNB", "SOL", "XRP"}
	}
	for i, s := range c.Watchlist {
		c.Watchlist[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/price_oracle.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":5000"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// CacheTTL returns the cache time-to-live as a duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLSeconds == nil {
		return 0
	}
	return time.Duration(*c.Cache.TTLSeconds) * time.Second
}

// TelegramEnabled reports whether the bot and notifications should run.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "bybit", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.HistoryDays < 2 || c.DataSource.HistoryDays > MaxHistoryDays {
		return fmt.Errorf("data_source.history_days must be in [2, %d]", MaxHistoryDays)
	}
	if c.Forecast.MaxDays < 1 || c.Forecast.MaxDays > analytics.MaxForecastDays {
		return fmt.Errorf("forecast.max_days must be in [1, %d]", analytics.MaxForecastDays)
	}
	if c.Forecast.Days < 1 || c.Forecast.Days > c.Forecast.MaxDays {
		return fmt.Errorf("forecast.days must be in [1, %d]", c.Forecast.MaxDays)
	}
	if c.Cache.TTLSeconds != nil && *c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	return nil
}
