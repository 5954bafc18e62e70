package pipeline

import (
	"plstream-engine/internal/engine"
	"plstream-engine/internal/supervised"
	"plstream-engine/internal/types"
)

// CoLabeler runs the supervised classifier over each completed batch,
// merges its votes with the unsupervised predictions, and feeds the
// surviving pseudo-labels back into the supervised model. Neither vote
// sees the ground-truth labels.
type CoLabeler struct {
	sup    *supervised.Classifier
	merger *Merger

	accepted int
	dropped  int
}

func NewCoLabeler(sup *supervised.Classifier, merger *Merger) *CoLabeler {
	return &CoLabeler{sup: sup, merger: merger}
}

// Process merges one batch and returns the accepted pseudo-labels.
func (c *CoLabeler) Process(res engine.Result) []types.PseudoLabel {
	supVotes := make([]types.PredictionRecord, len(res.Records))
	for i, rec := range res.Records {
		conf, label := c.sup.Predict(rec.Tokens)
		supVotes[i] = types.PredictionRecord{
			Confidence: conf,
			Label:      label,
			Tokens:     rec.Tokens,
		}
	}

	merged := c.merger.MergeBatch(res.Records, supVotes)
	c.accepted += len(merged)
	c.dropped += len(res.Records) - len(merged)

	items := make([]types.StreamItem, len(merged))
	tokens := make([][]string, len(merged))
	for i, pl := range merged {
		items[i] = types.StreamItem{Label: pl.Label}
		tokens[i] = pl.Tokens
	}
	c.sup.Train(items, tokens)
	return merged
}

// Accepted and Dropped report cumulative pseudo-label counts.
func (c *CoLabeler) Accepted() int { return c.accepted }
func (c *CoLabeler) Dropped() int  { return c.dropped }
