// Package backtest replays the strategy over historical daily bars with a
// simulated broker, mirroring the live iteration exactly: one engine step
// per bar.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mattjblanch/tradingApp/internal/broker"
	"github.com/mattjblanch/tradingApp/internal/engine"
	"github.com/mattjblanch/tradingApp/internal/marketdata"
	"github.com/mattjblanch/tradingApp/internal/sentiment"
	"github.com/mattjblanch/tradingApp/internal/strategy"
)

// Config parameterizes one backtest run.
type Config struct {
	Symbol     string
	CashAtRisk decimal.Decimal
	StartCash  decimal.Decimal
	WindowDays int
}

// Result summarizes a completed run.
type Result struct {
	Symbol       string
	Start        time.Time
	End          time.Time
	Bars         int
	Orders       int
	Exits        int
	Liquidations int
	StartCash    decimal.Decimal
	EndEquity    decimal.Decimal
	Return       decimal.Decimal // fractional return, 0.1 == +10%
	LastSide     strategy.Side
}

// Run replays the bars oldest-first. News and sentiment come from the same
// collaborators the live engine uses, so historical news providers (Alpaca)
// plug in unchanged.
func Run(ctx context.Context, log zerolog.Logger, cfg Config, bars []marketdata.Bar,
	news broker.NewsProvider, estimator sentiment.Estimator) (*Result, error) {

	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars to replay")
	}
	if cfg.StartCash.Sign() <= 0 {
		return nil, fmt.Errorf("starting cash must be positive")
	}

	sim := NewSimBroker(cfg.StartCash)
	eng := engine.New(engine.Options{
		Log:     log,
		Account: sim,
		Orders:  sim,
		Clock:   sim,
		Gate:    strategy.NewSentimentGate(news, estimator, cfg.WindowDays),
		State:   strategy.NewState(cfg.Symbol, cfg.CashAtRisk),
	})

	for _, bar := range bars {
		sim.Advance(bar)
		if _, err := eng.Step(ctx); err != nil {
			return nil, fmt.Errorf("bar %s: %w", bar.Date.Format("2006-01-02"), err)
		}
	}

	endEquity := sim.Equity()
	return &Result{
		Symbol:       cfg.Symbol,
		Start:        bars[0].Date,
		End:          bars[len(bars)-1].Date,
		Bars:         len(bars),
		Orders:       sim.Orders,
		Exits:        sim.ExitFills,
		Liquidations: sim.Liquidations,
		StartCash:    cfg.StartCash,
		EndEquity:    endEquity,
		Return:       endEquity.Sub(cfg.StartCash).Div(cfg.StartCash),
		LastSide:     eng.State().LastSide,
	}, nil
}
