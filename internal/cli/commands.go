// Package cli wires the configuration, collaborators and engine behind the
// trader's cobra commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mattjblanch/tradingApp/internal/backtest"
	"github.com/mattjblanch/tradingApp/internal/broker"
	"github.com/mattjblanch/tradingApp/internal/config"
	"github.com/mattjblanch/tradingApp/internal/display"
	"github.com/mattjblanch/tradingApp/internal/engine"
	"github.com/mattjblanch/tradingApp/internal/marketdata"
	"github.com/mattjblanch/tradingApp/internal/sentiment"
	"github.com/mattjblanch/tradingApp/internal/strategy"
)

const version = "1.0.0"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "trader",
		Short: "Sentiment-gated bracket-order trading bot",
		Long: `A trading bot that sizes a position from available cash, scores recent
news sentiment for one instrument and places bracketed buy or sell orders
when the sentiment signal is strong enough. Runs live against Alpaca or as
a backtest over historical Yahoo Finance bars.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newBacktestCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")

	return rootCmd
}

// newRunCmd creates the live trading command.
func newRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live trading loop",
		Long: `Run one trading iteration per interval against the configured Alpaca
environment. The first iteration starts immediately; stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if symbol, _ := cmd.Flags().GetString("symbol"); symbol != "" {
				cfg.Symbol = symbol
			} else if !cmd.Flags().Changed("symbol") && cfg.Symbol == "" {
				symbol, err := PromptForSymbol()
				if err != nil {
					return err
				}
				cfg.Symbol = symbol
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.APIKey == "" || cfg.APISecret == "" {
				return fmt.Errorf("API_KEY and API_SECRET must be set for live trading")
			}

			return runLive(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("symbol", "", "Instrument symbol (default from SYMBOL env, \"SPY\")")
	return cmd
}

func runLive(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	alpaca := broker.NewAlpacaClient(broker.AlpacaConfig{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
		DataURL:   cfg.DataURL,
		Paper:     cfg.Paper,
	})

	estimator, err := newEstimator(ctx, cfg)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Options{
		Log:      log,
		Account:  alpaca,
		Orders:   alpaca,
		Clock:    broker.SystemClock{},
		Gate:     strategy.NewSentimentGate(alpaca, estimator, cfg.SentimentWindowDays),
		State:    strategy.NewState(cfg.Symbol, decimal.NewFromFloat(cfg.CashAtRisk)),
		Interval: cfg.Interval,
	})

	log.Info().
		Str("symbol", cfg.Symbol).
		Float64("cash_at_risk", cfg.CashAtRisk).
		Bool("paper", cfg.Paper).
		Str("sentiment_provider", cfg.SentimentProvider).
		Dur("interval", cfg.Interval).
		Msg("starting trading loop")

	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info().Msg("trading loop stopped")
	return nil
}

// newBacktestCmd creates the backtest command.
func newBacktestCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay the strategy over historical daily bars",
		Long: `Replay the strategy over Yahoo Finance daily bars for a date range,
with a simulated account and bracket-exit fills. Headlines still come from
the Alpaca news API, which serves historical ranges.
Example: trader backtest --symbol=SPY --start=2023-10-01 --end=2024-02-27`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if symbol, _ := cmd.Flags().GetString("symbol"); symbol != "" {
				cfg.Symbol = symbol
			}
			if start, _ := cmd.Flags().GetString("start"); start != "" {
				cfg.BacktestStart = start
			}
			if end, _ := cmd.Flags().GetString("end"); end != "" {
				cfg.BacktestEnd = end
			}
			if cash, _ := cmd.Flags().GetFloat64("cash"); cmd.Flags().Changed("cash") {
				cfg.BacktestCash = cash
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runBacktest(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("symbol", "", "Instrument symbol")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().Float64("cash", 100_000, "Starting cash")
	return cmd
}

func runBacktest(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg.Debug)

	start, end, err := backtestRange(cfg)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return fmt.Errorf("API_KEY and API_SECRET must be set: backtests read historical news from Alpaca")
	}

	estimator, err := newEstimator(ctx, cfg)
	if err != nil {
		return err
	}

	yahoo := marketdata.NewYahooClient(cfg.DataCacheDir, cfg.CacheEnabled)
	bars, err := yahoo.DailyBars(cfg.Symbol, start, end)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	log.Info().
		Str("symbol", cfg.Symbol).
		Int("bars", len(bars)).
		Msg("replaying historical bars")

	news := broker.NewAlpacaClient(broker.AlpacaConfig{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		DataURL:   cfg.DataURL,
		Paper:     true,
	})

	result, err := backtest.Run(ctx, log, backtest.Config{
		Symbol:     cfg.Symbol,
		CashAtRisk: decimal.NewFromFloat(cfg.CashAtRisk),
		StartCash:  decimal.NewFromFloat(cfg.BacktestCash),
		WindowDays: cfg.SentimentWindowDays,
	}, bars, news, estimator)
	if err != nil {
		return err
	}

	fmt.Println(display.RenderBacktest(result))
	return nil
}

// backtestRange resolves the date range from config, prompting when absent.
func backtestRange(cfg *config.Config) (time.Time, time.Time, error) {
	startStr, endStr := cfg.BacktestStart, cfg.BacktestEnd
	var err error
	if startStr == "" {
		if startStr, err = PromptForDate("Backtest start date (YYYY-MM-DD):"); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr == "" {
		if endStr, err = PromptForDate("Backtest end date (YYYY-MM-DD):"); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startStr, err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endStr, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return start, end, nil
}

// newConfigCmd creates the config command group.
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Symbol:              %s\n", cfg.Symbol)
			fmt.Printf("Cash at risk:        %.2f\n", cfg.CashAtRisk)
			fmt.Printf("Sentiment window:    %d days\n", cfg.SentimentWindowDays)
			fmt.Printf("Interval:            %s\n", cfg.Interval)
			fmt.Printf("Sentiment provider:  %s\n", cfg.SentimentProvider)
			fmt.Printf("Paper trading:       %v\n", cfg.Paper)
			fmt.Printf("API key:             %s\n", maskSecret(cfg.APIKey))
			fmt.Printf("API secret:          %s\n", maskSecret(cfg.APISecret))
			fmt.Printf("Cache dir:           %s\n", cfg.DataCacheDir)
			fmt.Printf("Cache enabled:       %v\n", cfg.CacheEnabled)
		},
	})

	return configCmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("trader v%s\n", version)
		},
	}
}

// newEstimator builds the configured sentiment backend.
func newEstimator(ctx context.Context, cfg *config.Config) (sentiment.Estimator, error) {
	switch cfg.SentimentProvider {
	case "lexicon":
		return sentiment.NewLexiconEstimator(), nil
	case "openai":
		return sentiment.NewLLMEstimator(ctx, sentiment.LLMConfig{
			Provider: "openai",
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.SentimentModel,
			BaseURL:  cfg.SentimentBaseURL,
		})
	case "deepseek":
		return sentiment.NewLLMEstimator(ctx, sentiment.LLMConfig{
			Provider: "deepseek",
			APIKey:   cfg.DeepSeekAPIKey,
			Model:    cfg.SentimentModel,
			BaseURL:  cfg.SentimentBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown sentiment provider: %q", cfg.SentimentProvider)
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "(unset)"
	}
	return s[:4] + "****"
}
