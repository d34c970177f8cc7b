package strategy

import (
	"testing"

	"github.com/mattjblanch/tradingApp/internal/broker"
	"github.com/mattjblanch/tradingApp/internal/sentiment"
)

func mustSize(t *testing.T, cash, price, risk string) Sizing {
	t.Helper()
	sizing, err := Size(d(cash), d(price), d(risk))
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	return sizing
}

func TestDecideBuy(t *testing.T) {
	state := NewState("SPY", d("0.5"))
	sizing := mustSize(t, "10000", "100", "0.5")
	reading := sentiment.Reading{Probability: 0.9995, Label: sentiment.Positive}

	decision := Decide(state, sizing, reading)

	if decision.Action != ActionBuy {
		t.Fatalf("action = %s, want buy", decision.Action)
	}
	if decision.LiquidateFirst {
		t.Fatal("no liquidation expected with no prior trade")
	}
	order := decision.Order
	if order == nil {
		t.Fatal("buy decision must carry an order")
	}
	if order.Qty != 50 || order.Side != broker.Buy || order.Symbol != "SPY" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.TakeProfit.Equal(d("120")) {
		t.Fatalf("take profit = %s, want 120", order.TakeProfit)
	}
	if !order.StopLoss.Equal(d("95")) {
		t.Fatalf("stop loss = %s, want 95", order.StopLoss)
	}

	state.Commit(decision)
	if state.LastSide != SideBuy {
		t.Fatalf("last side = %s, want buy", state.LastSide)
	}
}

func TestDecideBuyAfterSellLiquidatesFirst(t *testing.T) {
	state := NewState("SPY", d("0.5"))
	state.LastSide = SideSell

	decision := Decide(state, mustSize(t, "10000", "100", "0.5"),
		sentiment.Reading{Probability: 0.9995, Label: sentiment.Positive})

	if decision.Action != ActionBuy {
		t.Fatalf("action = %s, want buy", decision.Action)
	}
	if !decision.LiquidateFirst {
		t.Fatal("reversal from sell must liquidate before buying")
	}
}

func TestDecideSell(t *testing.T) {
	state := NewState("SPY", d("0.5"))
	state.LastSide = SideBuy
	// cash <= lastPrice reaches the sell branch; quantity stays positive.
	sizing := mustSize(t, "100", "100", "1")
	reading := sentiment.Reading{Probability: 0.9996, Label: sentiment.Negative}

	decision := Decide(state, sizing, reading)

	if decision.Action != ActionSell {
		t.Fatalf("action = %s, want sell", decision.Action)
	}
	if !decision.LiquidateFirst {
		t.Fatal("reversal from buy must liquidate before selling")
	}
	if !decision.Order.TakeProfit.Equal(d("80")) {
		t.Fatalf("take profit = %s, want 80", decision.Order.TakeProfit)
	}
	if !decision.Order.StopLoss.Equal(d("105")) {
		t.Fatalf("stop loss = %s, want 105", decision.Order.StopLoss)
	}

	// The committed side is the side actually traded, keeping the
	// hysteresis symmetric.
	state.Commit(decision)
	if state.LastSide != SideSell {
		t.Fatalf("last side = %s, want sell", state.LastSide)
	}
}

func TestDecideZeroQuantityGuard(t *testing.T) {
	state := NewState("SPY", d("0.5"))
	// cash=50, price=100 sizes to zero shares; no order may go out.
	sizing := mustSize(t, "50", "100", "0.5")
	reading := sentiment.Reading{Probability: 0.9996, Label: sentiment.Negative}

	decision := Decide(state, sizing, reading)

	if decision.Action != ActionNone {
		t.Fatalf("action = %s, want none for zero quantity", decision.Action)
	}
	if decision.Order != nil {
		t.Fatal("no order may be emitted for a zero-quantity sizing")
	}
}

func TestDecideBranchExclusivity(t *testing.T) {
	// With cash <= lastPrice the buy rule is unreachable even on a strong
	// positive signal; only the negative branch is evaluated.
	state := NewState("SPY", d("1"))
	sizing := mustSize(t, "100", "100", "1")

	decision := Decide(state, sizing, sentiment.Reading{Probability: 0.9999, Label: sentiment.Positive})
	if decision.Action != ActionNone {
		t.Fatalf("action = %s, want none: buy branch requires cash > lastPrice", decision.Action)
	}
}

func TestDecideBelowThresholdIsNoOp(t *testing.T) {
	state := NewState("SPY", d("0.5"))
	state.LastSide = SideBuy
	sizing := mustSize(t, "10000", "100", "0.5")

	for _, label := range []sentiment.Label{sentiment.Positive, sentiment.Negative, sentiment.Neutral} {
		for _, prob := range []float64{0.998, 0.999} { // threshold is strict
			decision := Decide(state, sizing, sentiment.Reading{Probability: prob, Label: label})
			if decision.Action != ActionNone {
				t.Fatalf("label=%s prob=%v: action = %s, want none", label, prob, decision.Action)
			}
			state.Commit(decision)
			if state.LastSide != SideBuy {
				t.Fatalf("no-trade iteration must not change state, got %s", state.LastSide)
			}
		}
	}
}
