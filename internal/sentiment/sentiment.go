// Package sentiment scores news headlines into a (probability, label) pair.
//
// The Estimator interface is the pluggable boundary: the engine only ever
// sees a Reading, so the scoring backend (LLM or offline lexicon) can be
// swapped without touching the decision logic.
package sentiment

import "context"

// Label is the categorical outcome of a sentiment estimate.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Reading is one sentiment estimate over a batch of headlines.
type Reading struct {
	Probability float64 `json:"probability"` // confidence in [0,1]
	Label       Label   `json:"label"`
}

// Estimator scores a batch of headlines.
//
// Contract: an empty batch must yield Reading{Probability: 0, Label: Neutral}
// without calling any remote backend.
type Estimator interface {
	Estimate(ctx context.Context, headlines []string) (Reading, error)
}

// NeutralReading is the defined fallback when there is nothing to score.
func NeutralReading() Reading {
	return Reading{Probability: 0, Label: Neutral}
}
