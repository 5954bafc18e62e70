// Package engine contains the PLStream core: a batch accumulator that
// buffers incoming stream items, and at every full batch trains the
// word-vector model, classifies the buffered items, updates the temporal
// trend, and evaluates the batch against ground truth.
//
// One PLStream instance owns one model and one trend state — one per logical
// stream partition. A partition is processed strictly sequentially, so the
// type is not safe for concurrent use.
package engine

import (
	"fmt"
	"time"

	"plstream-engine/internal/classifier"
	"plstream-engine/internal/storage"
	"plstream-engine/internal/text"
	"plstream-engine/internal/types"
	"plstream-engine/internal/wordvec"
)

// State reports what Ingest did with an item.
type State int

const (
	// Batching: the item was buffered; the batch is not full yet.
	Batching State = iota
	// Processed: the item completed a batch; the Result carries its output.
	Processed
)

func (s State) String() string {
	switch s {
	case Batching:
		return "BATCHING"
	case Processed:
		return "PROCESSED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the outcome of one Ingest call. Records and Report are populated
// only when State is Processed.
type Result struct {
	State   State
	Records []types.PredictionRecord
	Report  types.BatchReport
}

// Config wires the accumulator's collaborators.
type Config struct {
	// BatchSize is the number of buffered items that triggers a
	// train+classify cycle (default 250).
	BatchSize int

	// Snapshot persists the model after every training pass. When nil,
	// persistence is skipped.
	Snapshot storage.Snapshotter

	// Runs records batch reports and trend checkpoints. Optional.
	Runs storage.RunRecorder

	// Trainer overrides the training backend. When nil the model itself
	// trains.
	Trainer wordvec.Trainer
}

// PLStream is the batch accumulator and per-batch processing cycle.
type PLStream struct {
	model    *wordvec.Model
	trainer  wordvec.Trainer
	polarity *classifier.Polarity
	eval     *classifier.Evaluator

	batchSize int
	snapshot  storage.Snapshotter
	runs      storage.RunRecorder

	labels []int
	tokens [][]string

	update     bool // false until the first from-scratch fit has run
	batchIndex int
}

// New builds a PLStream core around model and polarity. A model restored from
// a snapshot (non-empty vocabulary) resumes directly in update mode.
func New(model *wordvec.Model, polarity *classifier.Polarity, cfg Config) *PLStream {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 250
	}
	trainer := cfg.Trainer
	if trainer == nil {
		trainer = model
	}
	return &PLStream{
		model:     model,
		trainer:   trainer,
		polarity:  polarity,
		eval:      classifier.NewEvaluator(),
		batchSize: cfg.BatchSize,
		snapshot:  cfg.Snapshot,
		runs:      cfg.Runs,
		labels:    make([]int, 0, cfg.BatchSize),
		tokens:    make([][]string, 0, cfg.BatchSize),
		update:    model.VocabSize() > 0,
	}
}

// Model returns the owned word-vector model.
func (p *PLStream) Model() *wordvec.Model { return p.model }

// Classify scores text against the current model without ingesting it.
func (p *PLStream) Classify(raw string) (float64, int) {
	return p.polarity.Classify(p.model, text.Normalize(raw))
}

// Ingest buffers one stream item. Below the batch threshold it returns a
// Batching result; at exactly the threshold it runs the full batch cycle
// (train, snapshot, classify, trend update, evaluate, clear) and returns the
// batch's prediction records with its report. A cycle error is fatal for the
// partition: the buffer is left intact and the caller decides restart policy.
func (p *PLStream) Ingest(label int, raw string) (*Result, error) {
	p.labels = append(p.labels, label)
	p.tokens = append(p.tokens, text.Normalize(raw))

	if len(p.labels) < p.batchSize {
		return &Result{State: Batching}, nil
	}
	return p.processBatch()
}

// Buffered returns the number of items waiting for the current batch.
func (p *PLStream) Buffered() int { return len(p.labels) }

// BatchesDone returns the number of completed batch cycles.
func (p *PLStream) BatchesDone() int { return p.batchIndex }

// UpdateMode reports whether the next training call will be incremental.
func (p *PLStream) UpdateMode() bool { return p.update }

// Trend returns the temporal trend state owned by the classifier.
func (p *PLStream) Trend() *classifier.Trend { return p.polarity.Trend() }

// AccuracyHistory returns per-batch accuracies in processing order.
func (p *PLStream) AccuracyHistory() []float64 { return p.eval.History() }

func (p *PLStream) processBatch() (*Result, error) {
	if p.update {
		if err := p.trainer.FitUpdate(p.tokens); err != nil {
			return nil, fmt.Errorf("engine: batch %d incremental fit: %w", p.batchIndex, err)
		}
	} else {
		if err := p.trainer.FitNew(p.tokens); err != nil {
			return nil, fmt.Errorf("engine: batch %d initial fit: %w", p.batchIndex, err)
		}
	}

	if p.snapshot != nil {
		if err := p.snapshot.Save(p.model); err != nil {
			return nil, fmt.Errorf("engine: batch %d persist model: %w", p.batchIndex, err)
		}
	}

	records := make([]types.PredictionRecord, len(p.tokens))
	preds := make([]int, len(p.tokens))
	positive := 0
	for i, toks := range p.tokens {
		conf, label := p.polarity.Classify(p.model, toks)
		records[i] = types.PredictionRecord{Confidence: conf, Label: label, Tokens: toks}
		preds[i] = label
		if label == classifier.LabelPositive {
			positive++
		}
	}

	// Trend folds in after the whole batch is classified, so these
	// predictions only influence the next batch's coefficients.
	p.polarity.Trend().Update(preds)

	report := types.BatchReport{
		Index:     p.batchIndex,
		Size:      len(preds),
		Accuracy:  p.eval.Accuracy(p.labels, preds),
		Positive:  positive,
		Negative:  len(preds) - positive,
		Timestamp: time.Now().UTC(),
	}

	if p.runs != nil {
		if err := p.runs.SaveBatch(report); err != nil {
			return nil, fmt.Errorf("engine: batch %d record report: %w", p.batchIndex, err)
		}
		trend := p.polarity.Trend()
		cp := storage.TrendCheckpoint{PosCount: trend.PosCount, NegCount: trend.NegCount}
		if err := p.runs.SaveTrend(cp); err != nil {
			return nil, fmt.Errorf("engine: batch %d record trend: %w", p.batchIndex, err)
		}
	}

	p.labels = p.labels[:0]
	p.tokens = p.tokens[:0]
	p.update = true
	p.batchIndex++

	return &Result{State: Processed, Records: records, Report: report}, nil
}
