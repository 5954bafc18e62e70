package pipeline

import "plstream-engine/internal/types"

// Merger reconciles the unsupervised and supervised predictions for the
// same document into one pseudo-label. When the two agree, the stronger
// confidence wins; when they disagree, the stronger vote must also clear
// the acceptance threshold or the document is dropped.
type Merger struct {
	threshold float64
}

func NewMerger(threshold float64) *Merger {
	return &Merger{threshold: threshold}
}

// Merge combines two votes over the same token sequence. The boolean is
// false when the votes conflict and neither is confident enough to keep.
func (m *Merger) Merge(unsup, sup types.PredictionRecord) (types.PseudoLabel, bool) {
	if unsup.Label == sup.Label {
		best := unsup
		if sup.Confidence > best.Confidence {
			best = sup
		}
		return pseudo(best), true
	}

	best := unsup
	if sup.Confidence > best.Confidence {
		best = sup
	}
	if best.Confidence < m.threshold {
		return types.PseudoLabel{}, false
	}
	return pseudo(best), true
}

// MergeBatch pairs up two equally long prediction slices and keeps the
// records that survive merging.
func (m *Merger) MergeBatch(unsup, sup []types.PredictionRecord) []types.PseudoLabel {
	n := len(unsup)
	if len(sup) < n {
		n = len(sup)
	}
	out := make([]types.PseudoLabel, 0, n)
	for i := 0; i < n; i++ {
		if pl, ok := m.Merge(unsup[i], sup[i]); ok {
			out = append(out, pl)
		}
	}
	return out
}

func pseudo(r types.PredictionRecord) types.PseudoLabel {
	return types.PseudoLabel{
		Label:      r.Label,
		Confidence: r.Confidence,
		Tokens:     r.Tokens,
	}
}
