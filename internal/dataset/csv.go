// Package dataset reads review corpora from disk. The expected layout is
// the headerless two-column CSV used by the Yelp polarity dataset: class
// label (1 = negative, 2 = positive) followed by the review text.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"

	"plstream-engine/internal/types"
)

// Load reads every row of a review CSV into memory. Labels are shifted
// down by one so downstream code sees 0/1.
func Load(path string) ([]types.StreamItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: opening %s", path)
	}
	defer f.Close()

	items, err := read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: reading %s", path)
	}
	return items, nil
}

func read(r io.Reader) ([]types.StreamItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	var items []types.StreamItem
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		label, err := parseLabel(rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		items = append(items, types.StreamItem{Label: label, Text: rec[1]})
	}
	return items, nil
}

func parseLabel(s string) (int, error) {
	switch s {
	case "1":
		return 0, nil
	case "2":
		return 1, nil
	default:
		return 0, errors.Errorf("class label %q is not 1 or 2", s)
	}
}

// Stream loads a review CSV and replays it on a channel, closing the
// channel after the last row. It fits the pipeline.Runner input side.
// Canceling ctx stops the feeder even when the consumer is gone.
func Stream(ctx context.Context, path string) (<-chan types.StreamItem, error) {
	items, err := Load(path)
	if err != nil {
		return nil, err
	}
	ch := make(chan types.StreamItem)
	go func() {
		defer close(ch)
		for _, item := range items {
			select {
			case ch <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
