// Package display renders backtest results for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mattjblanch/tradingApp/internal/backtest"
)

var hundred = decimal.NewFromInt(100)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(60)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(18)

	gainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// RenderBacktest formats a backtest result as a bordered summary block.
func RenderBacktest(r *backtest.Result) string {
	returnPct := r.Return.Mul(hundred).StringFixed(2) + "%"
	returnStyled := gainStyle.Render(returnPct)
	if r.Return.Sign() < 0 {
		returnStyled = lossStyle.Render(returnPct)
	}

	rows := []struct {
		label string
		value string
	}{
		{"Symbol", r.Symbol},
		{"Period", fmt.Sprintf("%s → %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))},
		{"Trading days", fmt.Sprintf("%d", r.Bars)},
		{"Orders", fmt.Sprintf("%d", r.Orders)},
		{"Bracket exits", fmt.Sprintf("%d", r.Exits)},
		{"Liquidations", fmt.Sprintf("%d", r.Liquidations)},
		{"Starting cash", "$" + r.StartCash.StringFixed(2)},
		{"Final equity", "$" + r.EndEquity.StringFixed(2)},
		{"Return", returnStyled},
		{"Last trade side", r.LastSide.String()},
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(labelStyle.Render(row.label))
		sb.WriteString(row.value)
		sb.WriteString("\n")
	}

	return titleStyle.Render("Backtest Results") + "\n" +
		boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
