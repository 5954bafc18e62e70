package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"plstream-engine/internal/types"
	"plstream-engine/internal/wordvec"
)

func trainedModel(t *testing.T) *wordvec.Model {
	t.Helper()
	m := wordvec.New(wordvec.Options{Dim: 4, Epochs: 1, Workers: 1, Seed: 1})
	err := m.FitNew([][]string{
		{"great", "movie", "love"},
		{"bad", "movie", "awful"},
	})
	if err != nil {
		t.Fatalf("FitNew failed: %v", err)
	}
	return m
}

func TestSnapshotSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plstream-wv.model")
	store := NewSnapshotStore(path)

	if store.Exists() {
		t.Fatal("Exists() = true before first save")
	}

	m := trainedModel(t)
	if err := store.Save(m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !store.Exists() {
		t.Fatal("Exists() = false after save")
	}

	restored, err := store.Load(wordvec.Options{Dim: 4, Epochs: 1, Workers: 1, Seed: 1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if restored.VocabSize() != m.VocabSize() {
		t.Fatalf("restored VocabSize = %d, want %d", restored.VocabSize(), m.VocabSize())
	}
	for _, tok := range m.Words() {
		orig, _ := m.Lookup(tok)
		got, ok := restored.Lookup(tok)
		if !ok || !reflect.DeepEqual(got, orig) {
			t.Errorf("restored vector for %q differs", tok)
		}
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plstream-wv.model")
	store := NewSnapshotStore(path)

	m := trainedModel(t)
	if err := store.Save(m); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := m.FitUpdate([][]string{{"great", "sequel"}}); err != nil {
		t.Fatalf("FitUpdate failed: %v", err)
	}
	if err := store.Save(m); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	restored, err := store.Load(wordvec.Options{Dim: 4, Epochs: 1, Workers: 1, Seed: 1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !restored.Contains("sequel") {
		t.Error("overwritten snapshot lost the updated vocabulary")
	}

	// Only the snapshot itself may remain: no leftover temp files.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("snapshot dir has %d entries, want 1 (temp file leaked?)", len(entries))
	}
}

func TestSnapshotLoadMissingFile(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "absent.model"))
	if _, err := store.Load(wordvec.Options{Dim: 4}); err == nil {
		t.Fatal("expected error loading a missing snapshot, got nil")
	}
}

func TestRunStoreBatchesOrdered(t *testing.T) {
	store, err := NewBoltRunStore(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatalf("NewBoltRunStore failed: %v", err)
	}
	defer store.Close()

	for i := 0; i < 3; i++ {
		err := store.SaveBatch(types.BatchReport{
			Index:    i,
			Size:     2,
			Accuracy: float64(i) / 10,
		})
		if err != nil {
			t.Fatalf("SaveBatch(%d) failed: %v", i, err)
		}
	}

	reports, err := store.Batches()
	if err != nil {
		t.Fatalf("Batches failed: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("len(Batches) = %d, want 3", len(reports))
	}
	for i, r := range reports {
		if r.Index != i {
			t.Errorf("report %d has index %d, want %d", i, r.Index, i)
		}
	}
}

func TestRunStoreTrendCheckpoint(t *testing.T) {
	store, err := NewBoltRunStore(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatalf("NewBoltRunStore failed: %v", err)
	}
	defer store.Close()

	cp, err := store.Trend()
	if err != nil {
		t.Fatalf("Trend on empty store failed: %v", err)
	}
	if cp.PosCount != 0 || cp.NegCount != 0 {
		t.Errorf("empty store trend = %+v, want zero checkpoint", cp)
	}

	want := TrendCheckpoint{PosCount: 12, NegCount: 34}
	if err := store.SaveTrend(want); err != nil {
		t.Fatalf("SaveTrend failed: %v", err)
	}
	got, err := store.Trend()
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if got != want {
		t.Errorf("Trend = %+v, want %+v", got, want)
	}
}
