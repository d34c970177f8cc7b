package sentiment

import (
	"context"
	"regexp"
	"strings"
)

// LexiconEstimator scores headlines with keyword pattern matching. It is the
// offline backend: deterministic, no API key, suitable for backtests and for
// running the bot without an LLM provider configured.
type LexiconEstimator struct {
	positive []*regexp.Regexp
	negative []*regexp.Regexp
	neutral  []*regexp.Regexp
}

// NewLexiconEstimator builds an estimator with the built-in pattern sets.
func NewLexiconEstimator() *LexiconEstimator {
	return &LexiconEstimator{
		positive: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(surge[sd]?|soar[sed]*|rall(y|ies|ied)|jump[sed]*|gain[sed]*|climb[sed]*|record high|beat[s]?|outperform[sed]*)\b`),
			regexp.MustCompile(`(?i)\b(bullish|upgrade[sd]?|buy rating|strong growth|profit[s]? (rise|rose|up)|raises guidance)\b`),
			regexp.MustCompile(`(?i)\b(breakthrough|approval|wins?|expand[sed]*|upbeat|optimis(m|tic))\b`),
		},
		negative: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(plunge[sd]?|tumble[sd]?|sink[s]?|sank|crash(es|ed)?|slump[sed]*|drop[sped]*|fall[s]?|fell|slide[sd]?|record low)\b`),
			regexp.MustCompile(`(?i)\b(bearish|downgrade[sd]?|sell rating|miss(es|ed)?|lawsuit|recall[sed]*|cuts? guidance)\b`),
			regexp.MustCompile(`(?i)\b(bankrupt(cy)?|layoff[s]?|fraud|probe[sd]?|warning|fears?|loss(es)?)\b`),
		},
		neutral: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(unchanged|flat|steady|holds?|mixed|sideways|in line)\b`),
		},
	}
}

// Estimate implements Estimator. The label is the dominant pattern class and
// the probability grows with the margin of that class over the runner-up.
func (e *LexiconEstimator) Estimate(_ context.Context, headlines []string) (Reading, error) {
	if len(headlines) == 0 {
		return NeutralReading(), nil
	}

	text := strings.ToLower(strings.Join(headlines, " "))

	pos := countMatches(e.positive, text)
	neg := countMatches(e.negative, text)
	neu := countMatches(e.neutral, text)

	total := pos + neg + neu
	if total == 0 {
		return NeutralReading(), nil
	}

	label := Neutral
	top, second := neu, max(pos, neg)
	switch {
	case pos > neg && pos > neu:
		label, top, second = Positive, pos, max(neg, neu)
	case neg > pos && neg > neu:
		label, top, second = Negative, neg, max(pos, neu)
	}

	// Margin-based confidence: unanimous matches approach 1, a split vote
	// stays near 0.5.
	probability := float64(top) / float64(top+second)
	return Reading{Probability: probability, Label: label}, nil
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllString(text, -1))
	}
	return n
}
