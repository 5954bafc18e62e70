// Package index answers most-similar-word queries against a trained
// word-vector model. Vocabularies here are small enough (tens of
// thousands of words) that an exact scan beats maintaining an
// approximate graph.
package index

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"plstream-engine/internal/wordvec"
)

// Neighbor is one hit from a similarity query.
type Neighbor struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// Nearest returns the k vocabulary words most cosine-similar to word,
// excluding the word itself, best first.
func Nearest(m *wordvec.Model, word string, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("index: k must be positive, got %d", k)
	}
	query, ok := m.Lookup(word)
	if !ok {
		return nil, fmt.Errorf("index: %q not in vocabulary", word)
	}
	qnorm := floats.Norm(query, 2)
	if qnorm == 0 {
		return nil, fmt.Errorf("index: %q has a zero vector", word)
	}

	hits := make([]Neighbor, 0, m.VocabSize())
	for _, w := range m.Words() {
		if w == word {
			continue
		}
		vec, _ := m.Lookup(w)
		norm := floats.Norm(vec, 2)
		if norm == 0 {
			continue
		}
		hits = append(hits, Neighbor{
			Word:       w,
			Similarity: floats.Dot(query, vec) / (qnorm * norm),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
