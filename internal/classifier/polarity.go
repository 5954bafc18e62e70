package classifier

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"plstream-engine/internal/types"
	"plstream-engine/internal/wordvec"
)

// Labels emitted by the classifier.
const (
	LabelNegative = 0
	LabelPositive = 1
)

// Polarity scores embedded texts against the reference word sets. One
// instance per stream partition; not safe for concurrent use.
type Polarity struct {
	posRef []string
	negRef []string

	confidence float64 // similarity-difference threshold for a confident call
	useTrend   bool
	trend      *Trend
}

// NewPolarity builds a classifier with the given confidence threshold. When
// useTrend is set, low-confidence calls are weighted by the running class
// balance in trend.
func NewPolarity(confidence float64, useTrend bool, trend *Trend) *Polarity {
	return &Polarity{
		posRef:     defaultPosRef,
		negRef:     defaultNegRef,
		confidence: confidence,
		useTrend:   useTrend,
		trend:      trend,
	}
}

// Trend exposes the trend state so the batch cycle can fold in predictions
// after classifying a whole batch.
func (p *Polarity) Trend() *Trend { return p.trend }

// Classify embeds tokens with the model and returns (confidence, label).
//
// The decision order is fixed: a similarity difference beyond the threshold
// wins outright (negative checked first), then the trend-weighted comparison
// when enabled, then the raw comparison. Negative wins exact ties.
func (p *Polarity) Classify(m *wordvec.Model, tokens []string) (float64, int) {
	vec := m.Mean(tokens)

	simPos := p.referenceSimilarity(m, vec, p.posRef)
	simNeg := p.referenceSimilarity(m, vec, p.negRef)

	if simNeg-simPos > p.confidence {
		return simNeg - simPos, LabelNegative
	}
	if simPos-simNeg > p.confidence {
		return simPos - simNeg, LabelPositive
	}
	if p.useTrend {
		posCoef, negCoef := p.trend.Coefficients()
		if simNeg*negCoef >= simPos*posCoef {
			return math.Abs(simNeg - simPos), LabelNegative
		}
		return math.Abs(simPos - simNeg), LabelPositive
	}
	if simNeg > simPos {
		return simNeg - simPos, LabelNegative
	}
	return simPos - simNeg, LabelPositive
}

// referenceSimilarity sums cosine similarity between vec and every reference
// word present in the model vocabulary. Missing words contribute nothing.
func (p *Polarity) referenceSimilarity(m *wordvec.Model, vec types.Vector, ref []string) float64 {
	var sum float64
	for _, w := range ref {
		if rv, ok := m.Lookup(w); ok {
			sum += cosine(vec, rv)
		}
	}
	return sum
}

// cosine returns the cosine similarity of a and b. A zero-magnitude operand
// (e.g. the embedding of an all-unknown-token text) yields 0 rather than
// NaN.
func cosine(a, b types.Vector) float64 {
	dot := floats.Dot(a, b)
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
