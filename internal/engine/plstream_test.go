package engine

import (
	"path/filepath"
	"testing"

	"plstream-engine/internal/classifier"
	"plstream-engine/internal/storage"
	"plstream-engine/internal/types"
	"plstream-engine/internal/wordvec"
)

// spyTrainer records the mode of every training call and otherwise leaves the
// model untouched, so tests can pin model vectors exactly.
type spyTrainer struct {
	calls []bool // true = update
}

func (s *spyTrainer) FitNew(corpus [][]string) error {
	s.calls = append(s.calls, false)
	return nil
}

func (s *spyTrainer) FitUpdate(corpus [][]string) error {
	s.calls = append(s.calls, true)
	return nil
}

// fixedModel pins "great"/"wonderful" on the positive reference axis and
// "bad"/"awful" on the negative one; "ok" stays out of vocabulary.
func fixedModel(t *testing.T) *wordvec.Model {
	t.Helper()
	m, err := wordvec.FromVectors(wordvec.Options{Dim: 2}, map[string]types.Vector{
		"love": {1, 0}, "best": {1, 0},
		"worst": {0, 1},
		"great": {1, 0}, "wonderful": {1, 0},
		"bad": {0, 1}, "awful": {0, 1},
	})
	if err != nil {
		t.Fatalf("FromVectors failed: %v", err)
	}
	return m
}

func newTestStream(t *testing.T, batchSize int) (*PLStream, *spyTrainer) {
	t.Helper()
	spy := &spyTrainer{}
	m := fixedModel(t)
	pol := classifier.NewPolarity(0.5, true, classifier.NewTrend())
	p := New(m, pol, Config{BatchSize: batchSize, Trainer: spy})
	return p, spy
}

func TestIngestEndToEndScenario(t *testing.T) {
	p, _ := newTestStream(t, 3)

	texts := []string{"great wonderful", "bad awful", "ok"}
	labels := []int{1, 0, 1}

	for i := 0; i < 2; i++ {
		res, err := p.Ingest(labels[i], texts[i])
		if err != nil {
			t.Fatalf("Ingest(%d) failed: %v", i, err)
		}
		if res.State != Batching {
			t.Fatalf("Ingest(%d) state = %v, want BATCHING", i, res.State)
		}
	}

	res, err := p.Ingest(labels[2], texts[2])
	if err != nil {
		t.Fatalf("final Ingest failed: %v", err)
	}
	if res.State != Processed {
		t.Fatalf("final state = %v, want PROCESSED", res.State)
	}
	if len(res.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(res.Records))
	}

	wantLabels := []int{1, 0, 0} // "ok" is OOV: zero vector ties negative on a fresh trend
	for i, rec := range res.Records {
		if rec.Label != wantLabels[i] {
			t.Errorf("record %d label = %d, want %d", i, rec.Label, wantLabels[i])
		}
	}
	if res.Records[0].Confidence <= 0.5 || res.Records[1].Confidence <= 0.5 {
		t.Errorf("in-vocabulary records should be confident: got %v, %v",
			res.Records[0].Confidence, res.Records[1].Confidence)
	}
	if res.Records[2].Confidence != 0 {
		t.Errorf("OOV record confidence = %v, want 0", res.Records[2].Confidence)
	}

	// 2 of 3 ground-truth labels matched.
	if got := res.Report.Accuracy; got < 0.66 || got > 0.67 {
		t.Errorf("Report.Accuracy = %v, want 2/3", got)
	}
	if p.Buffered() != 0 {
		t.Errorf("Buffered = %d after batch, want 0", p.Buffered())
	}
}

func TestIngestBatchingInvariant(t *testing.T) {
	const batchSize = 3
	const n = 11

	p, _ := newTestStream(t, batchSize)

	processed := 0
	for i := 0; i < n; i++ {
		res, err := p.Ingest(i%2, "great wonderful")
		if err != nil {
			t.Fatalf("Ingest(%d) failed: %v", i, err)
		}
		if res.State == Processed {
			processed++
			if len(res.Records) != batchSize {
				t.Fatalf("batch %d emitted %d records, want %d", processed, len(res.Records), batchSize)
			}
		}
	}

	if want := n / batchSize; processed != want {
		t.Errorf("emitted %d batches for %d items, want %d", processed, n, want)
	}
	if want := n % batchSize; p.Buffered() != want {
		t.Errorf("Buffered = %d, want %d", p.Buffered(), want)
	}
}

func TestUpdateModeTransition(t *testing.T) {
	p, spy := newTestStream(t, 2)

	if p.UpdateMode() {
		t.Fatal("fresh stream should not start in update mode")
	}

	for i := 0; i < 6; i++ {
		if _, err := p.Ingest(1, "great wonderful"); err != nil {
			t.Fatalf("Ingest(%d) failed: %v", i, err)
		}
	}

	want := []bool{false, true, true}
	if len(spy.calls) != len(want) {
		t.Fatalf("trainer called %d times, want %d", len(spy.calls), len(want))
	}
	for i, update := range spy.calls {
		if update != want[i] {
			t.Errorf("training call %d update = %v, want %v", i, update, want[i])
		}
	}
}

func TestRestoredModelStartsInUpdateMode(t *testing.T) {
	m := fixedModel(t) // non-empty vocabulary, as after a snapshot load
	pol := classifier.NewPolarity(0.5, true, classifier.NewTrend())
	p := New(m, pol, Config{BatchSize: 2, Trainer: &spyTrainer{}})

	if !p.UpdateMode() {
		t.Error("stream over a restored model should start in update mode")
	}
}

func TestIngestPersistsSnapshotAndReports(t *testing.T) {
	dir := t.TempDir()
	snap := storage.NewSnapshotStore(filepath.Join(dir, "plstream-wv.model"))
	runs, err := storage.NewBoltRunStore(filepath.Join(dir, "run.db"))
	if err != nil {
		t.Fatalf("NewBoltRunStore failed: %v", err)
	}
	defer runs.Close()

	opts := wordvec.Options{Dim: 8, Epochs: 1, Workers: 1, Seed: 1}
	m := wordvec.New(opts)
	pol := classifier.NewPolarity(0.5, true, classifier.NewTrend())
	p := New(m, pol, Config{BatchSize: 2, Snapshot: snap, Runs: runs})

	inputs := []types.StreamItem{
		{Label: 1, Text: "a great wonderful movie"},
		{Label: 0, Text: "a bad awful movie"},
	}
	for _, item := range inputs {
		if _, err := p.Ingest(item.Label, item.Text); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
	}

	if !snap.Exists() {
		t.Error("snapshot file missing after completed batch")
	}
	restored, err := snap.Load(opts)
	if err != nil {
		t.Fatalf("snapshot Load failed: %v", err)
	}
	if !restored.Contains("great") || !restored.Contains("awful") {
		t.Error("persisted model missing batch vocabulary")
	}

	reports, err := runs.Batches()
	if err != nil {
		t.Fatalf("Batches failed: %v", err)
	}
	if len(reports) != 1 || reports[0].Size != 2 {
		t.Errorf("run store has %v, want one report of size 2", reports)
	}

	cp, err := runs.Trend()
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if cp.PosCount+cp.NegCount != 2 {
		t.Errorf("trend checkpoint counts sum = %d, want 2", cp.PosCount+cp.NegCount)
	}
}

func TestIngestEmptyBatchFailsFast(t *testing.T) {
	opts := wordvec.Options{Dim: 4, Epochs: 1, Workers: 1, Seed: 1}
	m := wordvec.New(opts)
	pol := classifier.NewPolarity(0.5, true, classifier.NewTrend())
	p := New(m, pol, Config{BatchSize: 1})

	// All-stopword text normalizes to nothing: the batch has no trainable
	// token and training must fail fast rather than no-op.
	if _, err := p.Ingest(0, "it is what it is"); err == nil {
		t.Fatal("expected error training on an empty corpus, got nil")
	}
}
