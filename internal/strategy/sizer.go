package strategy

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice reports a non-positive last price. The engine treats it as
// "no decision this iteration" rather than a fatal error.
var ErrInvalidPrice = errors.New("last price must be positive")

// Sizing is the per-iteration sizing snapshot. Cash and LastPrice are kept
// alongside Quantity so the decision and the bracket prices are computed
// from the same observation.
type Sizing struct {
	Cash      decimal.Decimal
	LastPrice decimal.Decimal
	Quantity  int64
}

// Size computes the share quantity for one entry:
//
//	quantity = round(cash * cashAtRisk / lastPrice)
//
// Rounding is half away from zero (decimal.Round), which on this
// non-negative domain is plain round-half-up: 49.5 sizes to 50 shares.
func Size(cash, lastPrice, cashAtRisk decimal.Decimal) (Sizing, error) {
	if lastPrice.Sign() <= 0 {
		return Sizing{}, ErrInvalidPrice
	}

	qty := cash.Mul(cashAtRisk).Div(lastPrice).Round(0).IntPart()
	if qty < 0 {
		qty = 0
	}

	return Sizing{Cash: cash, LastPrice: lastPrice, Quantity: qty}, nil
}
