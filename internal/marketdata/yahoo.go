package marketdata

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// YahooClient fetches quotes and historical daily bars from Yahoo Finance.
type YahooClient struct {
	cache *Cache
	retry *RetryConfig
}

// NewYahooClient creates a client caching under cacheDir.
func NewYahooClient(cacheDir string, cacheEnabled bool) *YahooClient {
	return &YahooClient{
		cache: NewCache(filepath.Join(cacheDir, "yahoo"), 24*time.Hour, cacheEnabled),
		retry: DefaultRetryConfig(),
	}
}

// Quote returns the current regular-market price for a symbol.
func (y *YahooClient) Quote(symbol string) (decimal.Decimal, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return decimal.Zero, err
	}
	symbol = NormalizeSymbol(symbol)

	var price decimal.Decimal
	err := WithRetry(y.retry, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get quote for %s: %w", symbol, err)
		}
		price = decimal.NewFromFloat(q.RegularMarketPrice)
		return nil
	})
	return price, err
}

// DailyBars returns daily bars for [start, end], oldest first.
func (y *YahooClient) DailyBars(symbol string, start, end time.Time) ([]Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]string{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}
	var cached []Bar
	if y.cache.Get("daily_bars", cacheKey, &cached) {
		return cached, nil
	}

	var bars []Bar
	err := WithRetry(y.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)
		bars = bars[:0]
		for iter.Next() {
			b := iter.Bar()
			bars = append(bars, Bar{
				Symbol: symbol,
				Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: int64(b.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("get daily bars for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for %s between %s and %s",
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	y.cache.Set("daily_bars", cacheKey, bars)
	return bars, nil
}
