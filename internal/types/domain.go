package types

import "time"

// Vector represents a dense word or sentence embedding.
type Vector []float64

// StreamItem is one record of the input stream: a ground-truth class id
// (0 = negative, 1 = positive) and the raw, untokenized text.
type StreamItem struct {
	Label int    `json:"label"`
	Text  string `json:"text"`
}

// PredictionRecord is the per-item output of a completed batch.
type PredictionRecord struct {
	Confidence float64  `json:"confidence"`
	Label      int      `json:"label"`
	Tokens     []string `json:"tokens"`
}

// BatchReport summarizes one completed batch cycle.
type BatchReport struct {
	Index     int       `json:"index"` // 0-based batch number
	Size      int       `json:"size"`
	Accuracy  float64   `json:"accuracy"`
	Positive  int       `json:"positive"` // predicted-positive count
	Negative  int       `json:"negative"` // predicted-negative count
	Timestamp time.Time `json:"timestamp"`
}

// PseudoLabel is a consolidated label derived from the unsupervised and
// supervised classifiers by the merge stage.
type PseudoLabel struct {
	Label      int      `json:"label"`
	Confidence float64  `json:"confidence"`
	Tokens     []string `json:"tokens"`
}
