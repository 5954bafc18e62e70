package index

import (
	"testing"

	"plstream-engine/internal/types"
	"plstream-engine/internal/wordvec"
)

func testModel(t *testing.T) *wordvec.Model {
	t.Helper()
	m, err := wordvec.FromVectors(wordvec.Options{Dim: 2}, map[string]types.Vector{
		"great":     {1, 0},
		"wonderful": {0.9, 0.1},
		"decent":    {0.5, 0.5},
		"awful":     {0, 1},
		"ghost":     {0, 0},
	})
	if err != nil {
		t.Fatalf("FromVectors failed: %v", err)
	}
	return m
}

func TestNearestOrdersBySimilarity(t *testing.T) {
	m := testModel(t)

	hits, err := Nearest(m, "great", 2)
	if err != nil {
		t.Fatalf("Nearest failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Word != "wonderful" || hits[1].Word != "decent" {
		t.Errorf("hits = %v, want wonderful then decent", hits)
	}
	if hits[0].Similarity <= hits[1].Similarity {
		t.Errorf("similarities not descending: %v", hits)
	}
}

func TestNearestExcludesQueryAndZeroVectors(t *testing.T) {
	m := testModel(t)

	hits, err := Nearest(m, "great", 10)
	if err != nil {
		t.Fatalf("Nearest failed: %v", err)
	}
	for _, h := range hits {
		if h.Word == "great" {
			t.Error("query word returned as its own neighbor")
		}
		if h.Word == "ghost" {
			t.Error("zero vector returned as neighbor")
		}
	}
	if len(hits) != 3 {
		t.Errorf("len(hits) = %d, want 3", len(hits))
	}
}

func TestNearestErrors(t *testing.T) {
	m := testModel(t)

	if _, err := Nearest(m, "missing", 3); err == nil {
		t.Error("expected error for out-of-vocabulary word")
	}
	if _, err := Nearest(m, "ghost", 3); err == nil {
		t.Error("expected error for zero-vector word")
	}
	if _, err := Nearest(m, "great", 0); err == nil {
		t.Error("expected error for non-positive k")
	}
}
