package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/mattjblanch/tradingApp/internal/broker"
	"github.com/mattjblanch/tradingApp/internal/sentiment"
)

// DefaultSentimentWindowDays is the trailing headline window.
const DefaultSentimentWindowDays = 3

// SentimentGate fetches a trailing window of headlines and delegates the
// scoring to an Estimator. It never mutates strategy state.
type SentimentGate struct {
	news       broker.NewsProvider
	estimator  sentiment.Estimator
	windowDays int
}

// NewSentimentGate wires a gate. windowDays <= 0 falls back to the default.
func NewSentimentGate(news broker.NewsProvider, estimator sentiment.Estimator, windowDays int) *SentimentGate {
	if windowDays <= 0 {
		windowDays = DefaultSentimentWindowDays
	}
	return &SentimentGate{news: news, estimator: estimator, windowDays: windowDays}
}

// Read scores the news window [asOf - windowDays, asOf], both ends treated
// as calendar dates. Only the headline text of each article is scored; an
// empty window yields the estimator's neutral fallback.
func (g *SentimentGate) Read(ctx context.Context, symbol string, asOf time.Time) (sentiment.Reading, error) {
	start := asOf.AddDate(0, 0, -g.windowDays)

	items, err := g.news.News(ctx, symbol, start, asOf)
	if err != nil {
		return sentiment.Reading{}, fmt.Errorf("fetch news window for %s: %w", symbol, err)
	}

	headlines := make([]string, 0, len(items))
	for _, item := range items {
		headlines = append(headlines, item.Headline)
	}

	reading, err := g.estimator.Estimate(ctx, headlines)
	if err != nil {
		return sentiment.Reading{}, fmt.Errorf("estimate sentiment for %s: %w", symbol, err)
	}
	return reading, nil
}
