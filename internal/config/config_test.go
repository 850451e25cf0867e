package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, cfg.Tickers)
	assert.Equal(t, 90, cfg.DataSource.LookbackDays)
	assert.Equal(t, "data/snapshots", cfg.Snapshot.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "config.yaml", `
telegram:
  bot_token: tok
  chat_id: "42"
tickers: [aapl, " tsla "]
news:
  finnhub_api_key: fh
  window_days: 3
snapshot:
  dir: /tmp/snap
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, cfg.Tickers)
	assert.Equal(t, "fh", cfg.News.FinnhubAPIKey)
	assert.Equal(t, 3, cfg.News.WindowDays)
	assert.Equal(t, filepath.Join("/tmp/snap", "TSLA_data.txt"), cfg.SnapshotPath("tsla"))
	assert.NoError(t, cfg.ValidateBot())
}

func TestLoad_TOML(t *testing.T) {
	p := writeFile(t, "config.toml", `
tickers = ["MSFT"]

[data_source]
base_url = "http://bars.local"
lookback_days = 30

[database]
sqlite_path = "x.db"
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, cfg.Tickers)
	assert.Equal(t, "http://bars.local", cfg.DataSource.BaseURL)
	assert.Equal(t, 30, cfg.DataSource.LookbackDays)
	assert.Equal(t, "x.db", cfg.Database.SQLitePath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeFile(t, "config.yaml", "news:\n  finnhub_api_key: from-file\nlogging:\n  level: warn\n")
	t.Setenv("FINNHUB_API_KEY", "from-env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("SNAPSHOT_DIR", "/var/snap")
	t.Setenv("TICKERS", "nvda,amd")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.News.FinnhubAPIKey)
	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, "/var/snap", cfg.Snapshot.Dir)
	assert.Equal(t, []string{"NVDA", "AMD"}, cfg.Tickers)
	// Unset variables leave file values alone.
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvNamesAreExact(t *testing.T) {
	// Bare or section-less names select nothing.
	t.Setenv("LOOKBACK_DAYS", "5")
	t.Setenv("DIR", "/wrong")
	t.Setenv("LIMIT", "1")
	t.Setenv("API_KEY", "wrong")
	t.Setenv("NEWS_FINNHUB_API_KEY", "wrong")

	t.Setenv("PRICE_LOOKBACK_DAYS", "120")
	t.Setenv("NEWS_LOOKBACK_DAYS", "3")
	t.Setenv("NEWS_LIMIT", "10")
	t.Setenv("DATA_SOURCE_API_KEY", "bars-key")
	t.Setenv("DATA_SOURCE_OFFLINE", "true")
	t.Setenv("NEWS_HEADLINES_FILE", "/tmp/headlines.json")
	t.Setenv("NEWS_LEXICON_FILE", "/tmp/lexicon.tsv")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.DataSource.LookbackDays)
	assert.Equal(t, 3, cfg.News.LookbackDays)
	assert.Equal(t, 10, cfg.News.Limit)
	assert.Equal(t, "bars-key", cfg.DataSource.APIKey)
	assert.True(t, cfg.DataSource.Offline)
	assert.Equal(t, "/tmp/headlines.json", cfg.News.HeadlinesFile)
	assert.Equal(t, "/tmp/lexicon.tsv", cfg.News.LexiconFile)
	assert.Equal(t, "data/snapshots", cfg.Snapshot.Dir)
	assert.Empty(t, cfg.News.FinnhubAPIKey)
	assert.True(t, cfg.HasHeadlineSource())
}

func TestLoad_BadFile(t *testing.T) {
	p := writeFile(t, "config.yaml", "tickers: [unclosed\n")
	_, err := Load(p)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.ValidateBot(), "telegram.bot_token")

	cfg.Telegram.BotToken, cfg.Telegram.ChatID = "t", "c"
	assert.ErrorContains(t, cfg.ValidateBot(), "news.")

	cfg.News.AlphaVantageAPIKey = "av"
	assert.NoError(t, cfg.ValidateBot())

	cfg.News.WindowDays = -1
	assert.Error(t, cfg.Validate())
}
