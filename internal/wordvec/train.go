package wordvec

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
)

// maxExp clips the sigmoid argument, matching the usual word2vec bound;
// beyond it the gradient is effectively zero.
const maxExp = 6.0

// FitNew discards any existing vocabulary and fits the model from scratch on
// corpus: vocabulary build, vector initialization, then Options.Epochs
// training passes. Returns ErrEmptyCorpus when nothing is trainable.
func (m *Model) FitNew(corpus [][]string) error {
	m.vocab = make(map[string]int)
	m.words = nil
	m.counts = nil
	m.vectors = nil
	m.ctx = nil
	m.totalExamples = 0
	m.totalWords = 0

	freq := make(map[string]int64)
	for _, sent := range corpus {
		for _, tok := range sent {
			freq[tok]++
		}
	}
	for tok, n := range freq {
		if n >= int64(m.opts.MinCount) {
			id := m.addWord(tok)
			m.counts[id] = n
		}
	}
	if len(m.words) == 0 {
		return ErrEmptyCorpus
	}

	return m.train(corpus)
}

// FitUpdate extends the vocabulary with unseen tokens from corpus (existing
// vectors are preserved at entry) and continues training for Options.Epochs
// passes, updating every vector including previously known ones. Returns
// ErrEmptyCorpus when nothing is trainable.
func (m *Model) FitUpdate(corpus [][]string) error {
	if len(m.words) == 0 {
		// Update before any from-scratch fit degenerates to one.
		return m.FitNew(corpus)
	}

	freq := make(map[string]int64)
	for _, sent := range corpus {
		for _, tok := range sent {
			freq[tok]++
		}
	}
	trainable := false
	for tok, n := range freq {
		if id, ok := m.vocab[tok]; ok {
			m.counts[id] += n
			trainable = true
			continue
		}
		if n >= int64(m.opts.MinCount) {
			id := m.addWord(tok)
			m.counts[id] = n
			trainable = true
		}
	}
	if !trainable {
		return ErrEmptyCorpus
	}

	return m.train(corpus)
}

// train runs the skip-gram negative-sampling passes over corpus. Sentences
// are sharded across Options.Workers goroutines which update the shared
// weight tables without locking (hogwild); the call blocks until all passes
// finish.
//
// With Workers > 1 the unlocked weight updates are a data race the race
// detector will report. Run race-enabled builds and anything needing
// reproducible vectors with Workers: 1.
func (m *Model) train(corpus [][]string) error {
	sents := make([][]int, 0, len(corpus))
	var corpusWords int64
	for _, sent := range corpus {
		ids := make([]int, 0, len(sent))
		for _, tok := range sent {
			if id, ok := m.vocab[tok]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			sents = append(sents, ids)
			corpusWords += int64(len(ids))
		}
	}
	if len(sents) == 0 {
		return ErrEmptyCorpus
	}

	table := m.unigramTable()
	scheduled := corpusWords * int64(m.opts.Epochs)
	var processed int64

	workers := m.opts.Workers
	if workers > len(sents) {
		workers = len(sents)
	}

	for epoch := 0; epoch < m.opts.Epochs; epoch++ {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w, epoch int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(m.opts.Seed + int64(epoch*workers+w+1)))
				for i := w; i < len(sents); i += workers {
					m.trainSentence(sents[i], table, rng, &processed, scheduled)
				}
			}(w, epoch)
		}
		wg.Wait()
	}

	m.totalExamples += int64(len(sents))
	m.totalWords += corpusWords
	return nil
}

// trainSentence applies one skip-gram pass over a sentence of vocabulary ids.
func (m *Model) trainSentence(sent []int, table []float64, rng *rand.Rand, processed *int64, scheduled int64) {
	neu1e := make([]float64, m.opts.Dim)

	for pos, center := range sent {
		done := atomic.AddInt64(processed, 1)
		alpha := m.opts.Alpha * (1 - float64(done)/float64(scheduled+1))
		if alpha < m.opts.MinAlpha {
			alpha = m.opts.MinAlpha
		}

		// Dynamic window, as in word2vec: sample an effective size per
		// position so nearer context words are weighted more often.
		reduced := rng.Intn(m.opts.Window)
		lo := pos - (m.opts.Window - reduced)
		hi := pos + (m.opts.Window - reduced)
		if lo < 0 {
			lo = 0
		}
		if hi >= len(sent) {
			hi = len(sent) - 1
		}

		for c := lo; c <= hi; c++ {
			if c == pos {
				continue
			}
			word := sent[c]
			syn0 := m.vectors[word]
			for i := range neu1e {
				neu1e[i] = 0
			}

			for n := 0; n <= m.opts.Negative; n++ {
				var target int
				var label float64
				if n == 0 {
					target, label = center, 1
				} else {
					target = sampleUnigram(table, rng)
					if target == center {
						continue
					}
					label = 0
				}
				syn1 := m.ctx[target]

				g := (label - sigmoid(floats.Dot(syn0, syn1))) * alpha
				floats.AddScaled(neu1e, g, syn1)
				floats.AddScaled(syn1, g, syn0)
			}

			floats.Add(syn0, neu1e)
		}
	}
}

// unigramTable builds the cumulative distribution used for negative
// sampling, with the standard 3/4-power damping of raw frequencies.
func (m *Model) unigramTable() []float64 {
	cum := make([]float64, len(m.counts))
	var total float64
	for i, n := range m.counts {
		total += math.Pow(float64(n), 0.75)
		cum[i] = total
	}
	return cum
}

func sampleUnigram(cum []float64, rng *rand.Rand) int {
	r := rng.Float64() * cum[len(cum)-1]
	i := sort.SearchFloat64s(cum, r)
	if i >= len(cum) {
		i = len(cum) - 1
	}
	return i
}

func sigmoid(x float64) float64 {
	switch {
	case x > maxExp:
		return 1
	case x < -maxExp:
		return 0
	default:
		return 1 / (1 + math.Exp(-x))
	}
}
