// Package classifier decides the polarity of an embedded text by comparing
// it against fixed positive/negative reference word sets, with a temporal
// trend term that biases low-confidence calls toward the class balance
// observed so far.
package classifier

// Trend tracks the running class balance across batches. Counters only grow;
// coefficients are recomputed on every Update and read by the *next* batch's
// low-confidence classifications, so the trend lags by one batch.
type Trend struct {
	PosCount uint64
	NegCount uint64

	posCoef float64
	negCoef float64
}

// NewTrend returns a trend state with the neutral 0.5/0.5 split used before
// any prediction has been recorded.
func NewTrend() *Trend {
	return &Trend{posCoef: 0.5, negCoef: 0.5}
}

// NewTrendFromCounts rebuilds a trend state from persisted counters, as when
// resuming a run from its checkpoint.
func NewTrendFromCounts(pos, neg uint64) *Trend {
	t := &Trend{PosCount: pos, NegCount: neg, posCoef: 0.5, negCoef: 0.5}
	if total := pos + neg; total > 0 {
		t.posCoef = float64(pos) / float64(total)
		t.negCoef = float64(neg) / float64(total)
	}
	return t
}

// Update folds a batch of predicted labels (1 positive, everything else
// negative) into the counters and recomputes the coefficients.
func (t *Trend) Update(preds []int) {
	for _, p := range preds {
		if p == 1 {
			t.PosCount++
		} else {
			t.NegCount++
		}
	}
	total := t.PosCount + t.NegCount
	if total == 0 {
		return
	}
	t.posCoef = float64(t.PosCount) / float64(total)
	t.negCoef = float64(t.NegCount) / float64(total)
}

// Coefficients returns the current (positive, negative) trend weights.
// They sum to 1 whenever any prediction has been recorded.
func (t *Trend) Coefficients() (pos, neg float64) {
	return t.posCoef, t.negCoef
}
