// Package wordvec implements an incrementally trainable word-embedding model
// (skip-gram with negative sampling). A model is built from scratch with
// FitNew and extended over later batches with FitUpdate: new tokens join the
// vocabulary and every vector keeps training, so the same instance serves an
// unbounded stream.
//
// A Model instance is not safe for concurrent use; the stream core owns one
// model per partition and calls it sequentially. Training internally shards
// work across goroutines, which is opaque to callers.
package wordvec

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/floats"

	"plstream-engine/internal/types"
)

// ErrEmptyCorpus is returned by FitNew and FitUpdate when the corpus contains
// no trainable token. Training on nothing is treated as a caller bug (e.g. a
// zero batch size) rather than a silent no-op.
var ErrEmptyCorpus = errors.New("wordvec: empty training corpus")

// Trainer is the capability the stream core needs from an embedding backend:
// a from-scratch fit and an incremental vocabulary/weight update. Model
// implements it; alternative backends can be substituted behind it.
type Trainer interface {
	FitNew(corpus [][]string) error
	FitUpdate(corpus [][]string) error
}

// Options are the trainer hyperparameters. Zero values select defaults.
type Options struct {
	Dim      int     // embedding dimensionality (default 20)
	Epochs   int     // passes per training call (default 5)
	Window   int     // max context window (default 5)
	Negative int     // negative samples per position (default 5)
	MinCount int     // minimum corpus frequency to enter the vocabulary (default 1)
	Alpha    float64 // initial learning rate (default 0.025)
	MinAlpha float64 // learning-rate floor (default 1e-4)
	Workers  int     // training goroutines (default 80% of CPUs); >1 trains lock-free and trips the race detector, use 1 under -race
	Seed     int64   // RNG seed for init and sampling (default 1)
}

func (o Options) withDefaults() Options {
	if o.Dim <= 0 {
		o.Dim = 20
	}
	if o.Epochs <= 0 {
		o.Epochs = 5
	}
	if o.Window <= 0 {
		o.Window = 5
	}
	if o.Negative <= 0 {
		o.Negative = 5
	}
	if o.MinCount <= 0 {
		o.MinCount = 1
	}
	if o.Alpha <= 0 {
		o.Alpha = 0.025
	}
	if o.MinAlpha <= 0 {
		o.MinAlpha = 1e-4
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers()
	}
	if o.Seed == 0 {
		o.Seed = 1
	}
	return o
}

func defaultWorkers() int {
	n := runtime.NumCPU() * 8 / 10
	if n < 1 {
		n = 1
	}
	return n
}

// Model is a token-to-vector table plus the training state needed to keep
// fitting it incrementally.
type Model struct {
	opts Options

	vocab  map[string]int // token -> id
	words  []string       // id -> token
	counts []int64        // id -> corpus frequency

	vectors [][]float64 // input vectors (the embeddings callers see)
	ctx     [][]float64 // output vectors used by negative sampling

	totalExamples int64 // sentences seen across all fits
	totalWords    int64 // in-vocabulary tokens seen across all fits

	rng *rand.Rand
}

// New returns an empty model. It holds no vocabulary until FitNew runs.
func New(opts Options) *Model {
	opts = opts.withDefaults()
	return &Model{
		opts:  opts,
		vocab: make(map[string]int),
		rng:   rand.New(rand.NewSource(opts.Seed)),
	}
}

// FromVectors builds a model directly from pretrained embeddings, bypassing
// training. Context vectors start zeroed, so FitUpdate may continue training
// from this state. Vector lengths must match opts.Dim.
func FromVectors(opts Options, vectors map[string]types.Vector) (*Model, error) {
	m := New(opts)
	for tok, vec := range vectors {
		if len(vec) != m.opts.Dim {
			return nil, fmt.Errorf("wordvec: vector for %q has dim %d, want %d", tok, len(vec), m.opts.Dim)
		}
	}
	// Map iteration order is random; insert sorted for stable ids.
	tokens := make([]string, 0, len(vectors))
	for tok := range vectors {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	for _, tok := range tokens {
		id := m.addWord(tok)
		copy(m.vectors[id], vectors[tok])
		m.counts[id] = 1
	}
	return m, nil
}

// Dim returns the embedding dimensionality.
func (m *Model) Dim() int { return m.opts.Dim }

// VocabSize returns the number of tokens in the vocabulary.
func (m *Model) VocabSize() int { return len(m.words) }

// TotalExamples returns the number of sentences trained on so far.
func (m *Model) TotalExamples() int64 { return m.totalExamples }

// TotalWords returns the number of in-vocabulary token occurrences trained
// on so far.
func (m *Model) TotalWords() int64 { return m.totalWords }

// Contains reports whether token is in the vocabulary.
func (m *Model) Contains(token string) bool {
	_, ok := m.vocab[token]
	return ok
}

// Lookup returns the embedding for token. The returned slice is the model's
// backing storage; callers must not modify it.
func (m *Model) Lookup(token string) (types.Vector, bool) {
	id, ok := m.vocab[token]
	if !ok {
		return nil, false
	}
	return m.vectors[id], true
}

// Words returns the vocabulary tokens in id order. The returned slice is the
// model's backing storage; callers must not modify it.
func (m *Model) Words() []string { return m.words }

// Mean computes the average embedding of the known tokens in the sequence.
// Unknown tokens are skipped; if none match, the zero vector is returned.
// The result is order-independent and reproducible for a fixed model state.
func (m *Model) Mean(tokens []string) types.Vector {
	vec := make(types.Vector, m.opts.Dim)
	matched := 0
	for _, tok := range tokens {
		if id, ok := m.vocab[tok]; ok {
			floats.Add(vec, m.vectors[id])
			matched++
		}
	}
	if matched > 0 {
		floats.Scale(1/float64(matched), vec)
	}
	return vec
}

// newVector draws an initialization vector, uniform in [-0.5/dim, 0.5/dim).
func (m *Model) newVector() []float64 {
	v := make([]float64, m.opts.Dim)
	for i := range v {
		v[i] = (m.rng.Float64() - 0.5) / float64(m.opts.Dim)
	}
	return v
}

// addWord appends a token to the vocabulary with a fresh input vector and a
// zeroed context vector, returning its id.
func (m *Model) addWord(token string) int {
	id := len(m.words)
	m.vocab[token] = id
	m.words = append(m.words, token)
	m.counts = append(m.counts, 0)
	m.vectors = append(m.vectors, m.newVector())
	m.ctx = append(m.ctx, make([]float64, m.opts.Dim))
	return id
}
