// Package config loads the process configuration from the environment,
// optionally seeded from a .env file. Values are read once at start and
// injected into the engine as immutable parameters.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full configuration surface.
type Config struct {
	// Broker credentials and environment.
	APIKey    string
	APISecret string
	BaseURL   string // trading API override; empty derives from Paper
	DataURL   string // market data API override
	Paper     bool

	// Strategy parameters.
	Symbol              string
	CashAtRisk          float64
	SentimentWindowDays int
	Interval            time.Duration

	// Sentiment backend: "lexicon", "openai" or "deepseek".
	SentimentProvider string
	OpenAIAPIKey      string
	DeepSeekAPIKey    string
	SentimentModel    string
	SentimentBaseURL  string

	// Backtest defaults.
	BacktestStart string
	BacktestEnd   string
	BacktestCash  float64

	// Data cache.
	DataCacheDir string
	CacheEnabled bool

	Debug bool
}

// DefaultConfig returns the defaults overridden by the environment. A .env
// file in the working directory is honored when present.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		Paper: true,

		Symbol:              "SPY",
		CashAtRisk:          0.5,
		SentimentWindowDays: 3,
		Interval:            24 * time.Hour,

		SentimentProvider: "lexicon",

		BacktestCash: 100_000,

		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		CacheEnabled: true,
	}

	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("API_KEY"); val != "" {
		c.APIKey = val
	}
	if val := os.Getenv("API_SECRET"); val != "" {
		c.APISecret = val
	}
	if val := os.Getenv("BASE_URL"); val != "" {
		c.BaseURL = val
	}
	if val := os.Getenv("DATA_URL"); val != "" {
		c.DataURL = val
	}
	if val := os.Getenv("PAPER"); val != "" {
		if paper, err := strconv.ParseBool(val); err == nil {
			c.Paper = paper
		}
	}

	if val := os.Getenv("SYMBOL"); val != "" {
		c.Symbol = val
	}
	if val := os.Getenv("CASH_AT_RISK"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.CashAtRisk = f
		}
	}
	if val := os.Getenv("SENTIMENT_WINDOW_DAYS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.SentimentWindowDays = n
		}
	}
	if val := os.Getenv("TRADE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Interval = d
		}
	}

	if val := os.Getenv("SENTIMENT_PROVIDER"); val != "" {
		c.SentimentProvider = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("SENTIMENT_MODEL"); val != "" {
		c.SentimentModel = val
	}
	if val := os.Getenv("SENTIMENT_BASE_URL"); val != "" {
		c.SentimentBaseURL = val
	}

	if val := os.Getenv("BACKTEST_START"); val != "" {
		c.BacktestStart = val
	}
	if val := os.Getenv("BACKTEST_END"); val != "" {
		c.BacktestEnd = val
	}
	if val := os.Getenv("BACKTEST_CASH"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.BacktestCash = f
		}
	}

	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("TRADER_DEBUG"); val != "" {
		if debug, err := strconv.ParseBool(val); err == nil {
			c.Debug = debug
		}
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if c.CashAtRisk <= 0 || c.CashAtRisk > 1 {
		return fmt.Errorf("cash-at-risk must be in (0,1], got %v", c.CashAtRisk)
	}
	if c.SentimentWindowDays <= 0 {
		return fmt.Errorf("sentiment window must be positive, got %d", c.SentimentWindowDays)
	}
	switch c.SentimentProvider {
	case "lexicon":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required for the deepseek provider")
		}
	default:
		return fmt.Errorf("unknown sentiment provider: %q", c.SentimentProvider)
	}
	return nil
}

// EnsureDirectories creates the cache directory tree.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.DataCacheDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", c.DataCacheDir, err)
	}
	return nil
}
