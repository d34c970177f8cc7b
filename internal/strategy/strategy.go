// Package strategy holds the decision core: position sizing, the sentiment
// gate and the buy/sell/hold rule with last-trade hysteresis. Everything in
// this package is pure; the engine owns the mutable state and all side
// effects.
package strategy

import (
	"github.com/shopspring/decimal"
)

// Side is the remembered direction of the last submitted order.
type Side int

const (
	SideNone Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "none"
	}
}

// State is the entire persistent state of one running strategy instance.
// It lives for the life of the process; nothing is persisted across
// restarts.
type State struct {
	Symbol     string
	CashAtRisk decimal.Decimal // fraction of cash allocated per entry, in (0,1]
	LastSide   Side
}

// NewState starts a strategy with no trade history.
func NewState(symbol string, cashAtRisk decimal.Decimal) State {
	return State{Symbol: symbol, CashAtRisk: cashAtRisk, LastSide: SideNone}
}

// Commit records a submitted decision. Must be called only after the broker
// confirmed the order; a failed submission leaves the state unchanged so the
// next iteration re-evaluates from the same baseline.
func (s *State) Commit(d Decision) {
	switch d.Action {
	case ActionBuy:
		s.LastSide = SideBuy
	case ActionSell:
		s.LastSide = SideSell
	}
}
