package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Every environment variable
// is looked up under exactly its envconfig tag, so tags are unique across
// sections.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram" toml:"telegram" ignored:"true"`
	DataSource DataSourceConfig `yaml:"data_source" toml:"data_source" ignored:"true"`
	News       NewsConfig       `yaml:"news" toml:"news" ignored:"true"`
	Tickers    []string         `yaml:"tickers" toml:"tickers" envconfig:"TICKERS"`
	Schedule   ScheduleConfig   `yaml:"schedule" toml:"schedule" ignored:"true"`
	Snapshot   SnapshotConfig   `yaml:"snapshot" toml:"snapshot" ignored:"true"`
	Database   DatabaseConfig   `yaml:"database" toml:"database" ignored:"true"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging" ignored:"true"`
	Proxy      string           `yaml:"proxy" toml:"proxy" envconfig:"HTTPS_PROXY"`
}

// TelegramConfig holds bot credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" toml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chat_id" toml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
}

// DataSourceConfig selects the price series loader: synthetic bars when
// Offline is set, the REST loader when BaseURL is set, Yahoo otherwise.
type DataSourceConfig struct {
	BaseURL      string `yaml:"base_url" toml:"base_url" envconfig:"DATA_SOURCE_BASE_URL"`
	APIKey       string `yaml:"api_key" toml:"api_key" envconfig:"DATA_SOURCE_API_KEY"`
	Offline      bool   `yaml:"offline" toml:"offline" envconfig:"DATA_SOURCE_OFFLINE"`
	LookbackDays int    `yaml:"lookback_days" toml:"lookback_days" envconfig:"PRICE_LOOKBACK_DAYS"`
}

// NewsConfig configures the headline sources and the sentiment window.
type NewsConfig struct {
	FinnhubAPIKey      string `yaml:"finnhub_api_key" toml:"finnhub_api_key" envconfig:"FINNHUB_API_KEY"`
	AlphaVantageAPIKey string `yaml:"alphavantage_api_key" toml:"alphavantage_api_key" envconfig:"ALPHAVANTAGE_API_KEY"`
	// HeadlinesFile is a JSON array of headlines served as an extra source.
	HeadlinesFile string `yaml:"headlines_file" toml:"headlines_file" envconfig:"NEWS_HEADLINES_FILE"`
	// LexiconFile adds or re-weights sentiment terms on top of VADER.
	LexiconFile  string `yaml:"lexicon_file" toml:"lexicon_file" envconfig:"NEWS_LEXICON_FILE"`
	LookbackDays int    `yaml:"lookback_days" toml:"lookback_days" envconfig:"NEWS_LOOKBACK_DAYS"`
	// WindowDays limits scoring to recent headlines; 0 scores all of them.
	WindowDays        int `yaml:"window_days" toml:"window_days" envconfig:"SENTIMENT_WINDOW_DAYS"`
	RequestsPerMinute int `yaml:"requests_per_minute" toml:"requests_per_minute" envconfig:"NEWS_REQUESTS_PER_MINUTE"`
	Limit             int `yaml:"limit" toml:"limit" envconfig:"NEWS_LIMIT"`
}

type ScheduleConfig struct {
	DailyCron string `yaml:"daily_cron" toml:"daily_cron" envconfig:"CRON_DAILY"`
}

type SnapshotConfig struct {
	Dir string `yaml:"dir" toml:"dir" envconfig:"SNAPSHOT_DIR"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" envconfig:"LOG_LEVEL"`
	File  string `yaml:"file" toml:"file" envconfig:"LOG_FILE"`
}

// Load reads config from a YAML or TOML file (by extension), then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides, section by section with no prefix.
	sections := []any{cfg, &cfg.Telegram, &cfg.DataSource, &cfg.News,
		&cfg.Schedule, &cfg.Snapshot, &cfg.Database, &cfg.Logging}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("env overrides: %w", err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (c *Config) applyDefaults() {
	if len(c.Tickers) == 0 {
		c.Tickers = []string{"AAPL"}
	}
	for i, t := range c.Tickers {
		c.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 90
	}
	if c.News.LookbackDays == 0 {
		c.News.LookbackDays = 7
	}
	if c.News.RequestsPerMinute == 0 {
		c.News.RequestsPerMinute = 30
	}
	if c.News.Limit == 0 {
		c.News.Limit = 50
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 22 * * 1-5"
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = "data/snapshots"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/ticker_sentinel.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the fields every binary needs.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("tickers must not be empty")
	}
	for _, t := range c.Tickers {
		if t == "" {
			return fmt.Errorf("tickers must not contain empty entries")
		}
	}
	if c.DataSource.LookbackDays < 1 {
		return fmt.Errorf("data_source.lookback_days must be positive")
	}
	if c.News.WindowDays < 0 {
		return fmt.Errorf("news.window_days must not be negative")
	}
	if c.News.RequestsPerMinute < 1 {
		return fmt.Errorf("news.requests_per_minute must be positive")
	}
	if c.Snapshot.Dir == "" {
		return fmt.Errorf("snapshot.dir is required")
	}
	return nil
}

// ValidateBot additionally requires Telegram credentials and a headline source.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if !c.HasHeadlineSource() {
		return fmt.Errorf("news.finnhub_api_key, news.alphavantage_api_key or news.headlines_file is required")
	}
	return nil
}

// HasHeadlineSource reports whether a headline API key or file is configured.
func (c *Config) HasHeadlineSource() bool {
	return c.News.FinnhubAPIKey != "" || c.News.AlphaVantageAPIKey != "" || c.News.HeadlinesFile != ""
}

// SnapshotPath is the per-ticker snapshot file under Snapshot.Dir.
func (c *Config) SnapshotPath(ticker string) string {
	return filepath.Join(c.Snapshot.Dir, strings.ToUpper(ticker)+"_data.txt")
}

// ResultPath is the per-ticker prediction result file under Snapshot.Dir.
func (c *Config) ResultPath(ticker string) string {
	return filepath.Join(c.Snapshot.Dir, strings.ToUpper(ticker)+"_prediction.txt")
}
