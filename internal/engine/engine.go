// Package engine drives the strategy: one iteration sizes the position,
// reads sentiment, asks the decision core for an order and performs the
// submission side effects. Iterations are strictly sequential; the live loop
// runs one per interval and the backtest runs one per historical bar.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mattjblanch/tradingApp/internal/broker"
	"github.com/mattjblanch/tradingApp/internal/strategy"
)

// DefaultInterval matches the strategy's daily cadence.
const DefaultInterval = 24 * time.Hour

// Engine owns the mutable strategy state and the collaborator handles.
type Engine struct {
	log      zerolog.Logger
	account  broker.Account
	orders   broker.OrderPlacer
	clock    broker.Clock
	gate     *strategy.SentimentGate
	state    strategy.State
	interval time.Duration
}

// Options wires an Engine.
type Options struct {
	Log      zerolog.Logger
	Account  broker.Account
	Orders   broker.OrderPlacer
	Clock    broker.Clock
	Gate     *strategy.SentimentGate
	State    strategy.State
	Interval time.Duration
}

// New builds an engine. A nil clock defaults to the system clock and a
// non-positive interval to the daily cadence.
func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = broker.SystemClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Engine{
		log:      opts.Log,
		account:  opts.Account,
		orders:   opts.Orders,
		clock:    opts.Clock,
		gate:     opts.Gate,
		state:    opts.State,
		interval: opts.Interval,
	}
}

// State returns a copy of the current strategy state.
func (e *Engine) State() strategy.State { return e.state }

// Run executes one iteration immediately, then one per interval until the
// context is cancelled. Collaborator failures abort the run; a no-trade
// iteration is a normal silent outcome.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if _, err := e.Step(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step runs exactly one trading iteration and returns the decision it acted
// on. The strategy state advances only after the broker confirmed the
// submission.
func (e *Engine) Step(ctx context.Context) (strategy.Decision, error) {
	none := strategy.Decision{Action: strategy.ActionNone}
	now := e.clock.Now()

	cash, err := e.account.Cash(ctx)
	if err != nil {
		return none, fmt.Errorf("read cash balance: %w", err)
	}
	lastPrice, err := e.account.LastPrice(ctx, e.state.Symbol)
	if err != nil {
		return none, fmt.Errorf("read last price: %w", err)
	}

	sizing, err := strategy.Size(cash, lastPrice, e.state.CashAtRisk)
	if err != nil {
		if errors.Is(err, strategy.ErrInvalidPrice) {
			e.log.Warn().
				Str("symbol", e.state.Symbol).
				Str("last_price", lastPrice.String()).
				Msg("invalid last price, skipping iteration")
			return none, nil
		}
		return none, fmt.Errorf("position sizing: %w", err)
	}

	reading, err := e.gate.Read(ctx, e.state.Symbol, now)
	if err != nil {
		return none, fmt.Errorf("sentiment gate: %w", err)
	}

	decision := strategy.Decide(e.state, sizing, reading)

	e.log.Debug().
		Time("as_of", now).
		Str("symbol", e.state.Symbol).
		Str("cash", cash.String()).
		Str("last_price", lastPrice.String()).
		Int64("quantity", sizing.Quantity).
		Str("sentiment", string(reading.Label)).
		Float64("probability", reading.Probability).
		Str("action", decision.Action.String()).
		Msg("iteration evaluated")

	if decision.Action == strategy.ActionNone {
		return decision, nil
	}

	if decision.LiquidateFirst {
		if err := e.orders.CloseAll(ctx, e.state.Symbol); err != nil {
			return none, fmt.Errorf("liquidate before reversal: %w", err)
		}
		e.log.Info().Str("symbol", e.state.Symbol).Msg("liquidated open positions before reversal")
	}

	orderID, err := e.orders.SubmitBracket(ctx, *decision.Order)
	if err != nil {
		// State stays untouched so the next iteration re-evaluates from
		// the same baseline.
		return none, fmt.Errorf("submit order: %w", err)
	}

	e.state.Commit(decision)

	e.log.Info().
		Str("order_id", orderID).
		Str("symbol", decision.Order.Symbol).
		Str("side", string(decision.Order.Side)).
		Int64("qty", decision.Order.Qty).
		Str("take_profit", decision.Order.TakeProfit.StringFixed(2)).
		Str("stop_loss", decision.Order.StopLoss.StringFixed(2)).
		Msg("bracket order submitted")

	return decision, nil
}
