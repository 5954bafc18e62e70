// Package pipeline drives the streaming loop: it feeds items from an input
// channel into the batch engine and merges the unsupervised predictions with
// the supervised classifier's votes into a single pseudo-label stream.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"plstream-engine/internal/engine"
	"plstream-engine/internal/types"
)

// Stats summarizes one run of the streaming loop.
type Stats struct {
	Consumed int
	Batches  int
	Leftover int
	Reports  []types.BatchReport
}

// Runner pumps a stream of labeled items through a PLStream instance.
type Runner struct {
	stream  *engine.PLStream
	onBatch func(engine.Result)
}

func NewRunner(stream *engine.PLStream) *Runner {
	return &Runner{stream: stream}
}

// OnBatch registers a callback invoked after every completed batch. The
// callback runs on the consuming goroutine.
func (r *Runner) OnBatch(fn func(engine.Result)) {
	r.onBatch = fn
}

// Run consumes items until the channel closes or the context is canceled.
// A trailing partial batch is never trained or classified; its size is
// reported in Stats.Leftover and logged.
func (r *Runner) Run(ctx context.Context, input <-chan types.StreamItem) (Stats, error) {
	var stats Stats
	for {
		select {
		case <-ctx.Done():
			stats.Leftover = r.stream.Buffered()
			return stats, ctx.Err()
		case item, ok := <-input:
			if !ok {
				stats.Leftover = r.stream.Buffered()
				if stats.Leftover > 0 {
					log.Printf("[pipeline] stream closed with %d items below batch size, discarded from training", stats.Leftover)
				}
				return stats, nil
			}
			res, err := r.stream.Ingest(item.Label, item.Text)
			if err != nil {
				stats.Leftover = r.stream.Buffered()
				return stats, fmt.Errorf("pipeline: item %d: %w", stats.Consumed, err)
			}
			stats.Consumed++
			if res.State == engine.Processed {
				stats.Batches++
				stats.Reports = append(stats.Reports, res.Report)
				if r.onBatch != nil {
					r.onBatch(*res)
				}
			}
		}
	}
}
