// Package broker defines the collaborator contracts the trading engine
// consumes: account state, news retrieval, order submission and the clock.
// The live implementation talks to Alpaca; the backtest package provides a
// simulated implementation of the same interfaces.
package broker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// NewsItem is one news article. Only the headline participates in sentiment
// scoring; the rest is carried for logging.
type NewsItem struct {
	Headline  string    `json:"headline"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// BracketOrder is a market entry bundled with cancel-on-fill take-profit and
// stop-loss exits.
type BracketOrder struct {
	Symbol     string
	Qty        int64
	Side       Side
	TakeProfit decimal.Decimal
	StopLoss   decimal.Decimal
}

// Account exposes broker account state.
type Account interface {
	// Cash returns the available cash balance.
	Cash(ctx context.Context) (decimal.Decimal, error)
	// LastPrice returns the last traded price for the symbol.
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// NewsProvider returns news for a symbol within a calendar-date range,
// both ends inclusive.
type NewsProvider interface {
	News(ctx context.Context, symbol string, start, end time.Time) ([]NewsItem, error)
}

// OrderPlacer submits orders and liquidates positions.
type OrderPlacer interface {
	// SubmitBracket places a bracket order and returns the broker order id.
	SubmitBracket(ctx context.Context, order BracketOrder) (string, error)
	// CloseAll liquidates every open position for the symbol.
	CloseAll(ctx context.Context, symbol string) error
}

// Clock supplies "now" so backtests can replay historical time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the live Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
