package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mattjblanch/tradingApp/internal/broker"
	"github.com/mattjblanch/tradingApp/internal/marketdata"
)

// openBracket tracks the exit legs of a filled bracket order.
type openBracket struct {
	side       broker.Side
	takeProfit decimal.Decimal
	stopLoss   decimal.Decimal
}

// SimBroker is the backtest implementation of the broker collaborators.
// Entries fill at the current bar's close; bracket exits fill when a later
// bar's range touches them, with the stop checked before the take-profit on
// the same bar (conservative fill assumption).
type SimBroker struct {
	cash      decimal.Decimal
	position  int64 // signed share count
	lastPrice decimal.Decimal
	now       time.Time
	bracket   *openBracket

	orderSeq     int
	Orders       int
	Liquidations int
	ExitFills    int
}

// NewSimBroker starts a simulated account with the given cash.
func NewSimBroker(startCash decimal.Decimal) *SimBroker {
	return &SimBroker{cash: startCash}
}

// Advance moves the simulation to the next bar: updates the clock and last
// price, then fills any bracket exit the bar's range touched.
func (s *SimBroker) Advance(bar marketdata.Bar) {
	s.now = bar.Date
	s.lastPrice = bar.Close

	if s.bracket == nil || s.position == 0 {
		return
	}

	switch s.bracket.side {
	case broker.Buy: // long position
		if bar.Low.LessThanOrEqual(s.bracket.stopLoss) {
			s.fillExit(s.bracket.stopLoss)
		} else if bar.High.GreaterThanOrEqual(s.bracket.takeProfit) {
			s.fillExit(s.bracket.takeProfit)
		}
	case broker.Sell: // short position
		if bar.High.GreaterThanOrEqual(s.bracket.stopLoss) {
			s.fillExit(s.bracket.stopLoss)
		} else if bar.Low.LessThanOrEqual(s.bracket.takeProfit) {
			s.fillExit(s.bracket.takeProfit)
		}
	}
}

// fillExit flattens the position at the given price and clears the bracket.
func (s *SimBroker) fillExit(price decimal.Decimal) {
	s.cash = s.cash.Add(price.Mul(decimal.NewFromInt(s.position)))
	s.position = 0
	s.bracket = nil
	s.ExitFills++
}

// Cash implements broker.Account.
func (s *SimBroker) Cash(_ context.Context) (decimal.Decimal, error) {
	return s.cash, nil
}

// LastPrice implements broker.Account.
func (s *SimBroker) LastPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	return s.lastPrice, nil
}

// Now implements broker.Clock.
func (s *SimBroker) Now() time.Time { return s.now }

// SubmitBracket implements broker.OrderPlacer with an immediate fill at the
// current bar's close.
func (s *SimBroker) SubmitBracket(_ context.Context, order broker.BracketOrder) (string, error) {
	if order.Qty <= 0 {
		return "", fmt.Errorf("rejected %s order with quantity %d", order.Side, order.Qty)
	}

	notional := s.lastPrice.Mul(decimal.NewFromInt(order.Qty))
	switch order.Side {
	case broker.Buy:
		if notional.GreaterThan(s.cash) {
			return "", fmt.Errorf("insufficient cash: need %s, have %s", notional, s.cash)
		}
		s.cash = s.cash.Sub(notional)
		s.position += order.Qty
	case broker.Sell:
		s.cash = s.cash.Add(notional)
		s.position -= order.Qty
	default:
		return "", fmt.Errorf("unknown order side: %q", order.Side)
	}

	s.bracket = &openBracket{
		side:       order.Side,
		takeProfit: order.TakeProfit,
		stopLoss:   order.StopLoss,
	}

	s.orderSeq++
	s.Orders++
	return fmt.Sprintf("sim-%d", s.orderSeq), nil
}

// CloseAll implements broker.OrderPlacer: flattens at the current price and
// cancels any open bracket.
func (s *SimBroker) CloseAll(_ context.Context, _ string) error {
	if s.position != 0 {
		s.cash = s.cash.Add(s.lastPrice.Mul(decimal.NewFromInt(s.position)))
		s.position = 0
		s.Liquidations++
	}
	s.bracket = nil
	return nil
}

// Equity is cash plus the marked-to-market position.
func (s *SimBroker) Equity() decimal.Decimal {
	return s.cash.Add(s.lastPrice.Mul(decimal.NewFromInt(s.position)))
}

// Position returns the signed share count.
func (s *SimBroker) Position() int64 { return s.position }
