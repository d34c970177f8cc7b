// Package marketdata retrieves historical daily bars and quotes from Yahoo
// Finance for the backtest harness, with a small file cache so repeated
// backtests over the same range stay offline.
package marketdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLC bar.
type Bar struct {
	Symbol string          `json:"symbol"`
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// ValidateSymbol rejects empty or implausible ticker symbols before they hit
// an API.
func ValidateSymbol(symbol string) error {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	if len(symbol) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	return nil
}

// NormalizeSymbol converts a symbol to the canonical upper-case form.
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}
