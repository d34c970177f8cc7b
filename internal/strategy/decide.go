package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/mattjblanch/tradingApp/internal/broker"
	"github.com/mattjblanch/tradingApp/internal/sentiment"
)

// probabilityThreshold is the minimum sentiment confidence that triggers a
// trade. Anything at or below it is a normal no-op iteration.
const probabilityThreshold = 0.999

// Bracket exit multipliers relative to the entry price.
var (
	buyTakeProfit  = decimal.NewFromFloat(1.20)
	buyStopLoss    = decimal.NewFromFloat(0.95)
	sellTakeProfit = decimal.NewFromFloat(0.80)
	sellStopLoss   = decimal.NewFromFloat(1.05)
)

// Action is the tagged outcome of one decision. Using a single tag makes the
// buy/sell mutual exclusion a type-level guarantee instead of an accident of
// nested conditionals.
type Action int

const (
	ActionNone Action = iota
	ActionBuy
	ActionSell
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return "none"
	}
}

// Decision is the engine's sole output per iteration. Order is nil exactly
// when Action is ActionNone. LiquidateFirst asks the caller to close all
// open positions before submitting the order (direction reversal).
type Decision struct {
	Action         Action
	LiquidateFirst bool
	Order          *broker.BracketOrder
}

// Decide applies the trading rule to one iteration's observations.
//
// The branch order is load-bearing: the buy rule is reachable only when
// cash > lastPrice, otherwise only the negative-sentiment rule is evaluated.
// The two entry conditions are never both tested in one iteration.
//
// Zero-quantity sizings never emit an order; brokers reject 0-share
// submissions.
func Decide(state State, sizing Sizing, reading sentiment.Reading) Decision {
	if sizing.Quantity == 0 {
		return Decision{Action: ActionNone}
	}

	if sizing.Cash.GreaterThan(sizing.LastPrice) {
		if reading.Label == sentiment.Positive && reading.Probability > probabilityThreshold {
			return Decision{
				Action:         ActionBuy,
				LiquidateFirst: state.LastSide == SideSell,
				Order: &broker.BracketOrder{
					Symbol:     state.Symbol,
					Qty:        sizing.Quantity,
					Side:       broker.Buy,
					TakeProfit: sizing.LastPrice.Mul(buyTakeProfit),
					StopLoss:   sizing.LastPrice.Mul(buyStopLoss),
				},
			}
		}
		return Decision{Action: ActionNone}
	}

	if reading.Label == sentiment.Negative && reading.Probability > probabilityThreshold {
		return Decision{
			Action:         ActionSell,
			LiquidateFirst: state.LastSide == SideBuy,
			Order: &broker.BracketOrder{
				Symbol:     state.Symbol,
				Qty:        sizing.Quantity,
				Side:       broker.Sell,
				TakeProfit: sizing.LastPrice.Mul(sellTakeProfit),
				StopLoss:   sizing.LastPrice.Mul(sellStopLoss),
			},
		}
	}

	return Decision{Action: ActionNone}
}
