package storage

import (
	"plstream-engine/internal/types"
	"plstream-engine/internal/wordvec"
)

// Snapshotter persists the word-vector model after every training pass.
type Snapshotter interface {
	// Save overwrites the snapshot with the model's current state.
	Save(m *wordvec.Model) error
}

// RunRecorder receives per-batch observability records.
type RunRecorder interface {
	// SaveBatch stores one batch report.
	SaveBatch(report types.BatchReport) error

	// SaveTrend overwrites the trend checkpoint.
	SaveTrend(cp TrendCheckpoint) error
}

var (
	_ Snapshotter = (*SnapshotStore)(nil)
	_ RunRecorder = (*BoltRunStore)(nil)
)
