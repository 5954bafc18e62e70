// Package supervised holds the second-stage sentiment classifier: a
// multinomial naive Bayes over TF-IDF weighted token counts, trained on
// labeled reviews and used alongside the unsupervised stream to co-label
// incoming text.
package supervised

import (
	"math"
	"sync"

	"github.com/go-nlp/tfidf"

	"plstream-engine/internal/classifier"
	"plstream-engine/internal/types"
)

// tiny stands in for the probability of a token never seen in a class.
const tiny = 1e-7

const numClasses = 2

// doc adapts a slice of lexicon ids to tfidf.Document.
type doc []int

func (d doc) IDs() []int { return []int(d) }

// lexicon assigns stable integer ids to tokens. It replaces a full corpus
// package: the classifier only needs the token-to-id direction.
type lexicon struct {
	ids   map[string]int
	words []string
}

func newLexicon() *lexicon {
	return &lexicon{ids: make(map[string]int)}
}

func (l *lexicon) add(word string) int {
	if id, ok := l.ids[word]; ok {
		return id
	}
	id := len(l.words)
	l.ids[word] = id
	l.words = append(l.words, word)
	return id
}

func (l *lexicon) id(word string) (int, bool) {
	id, ok := l.ids[word]
	return id, ok
}

// Classifier is a two-class naive Bayes sentiment model. Train it on
// tokenized labeled examples, then call Finalize once before Predict;
// Predict finalizes lazily if the caller forgets.
type Classifier struct {
	lex *lexicon

	tfidfs [numClasses]*tfidf.TFIDF
	totals [numClasses]float64

	ready bool
	mu    sync.Mutex
}

func New() *Classifier {
	var tfidfs [numClasses]*tfidf.TFIDF
	for i := range tfidfs {
		tfidfs[i] = tfidf.New()
	}
	return &Classifier{
		lex:    newLexicon(),
		tfidfs: tfidfs,
	}
}

// Train adds labeled token sequences to the model. Labels outside
// {LabelNegative, LabelPositive} and empty documents are skipped.
func (c *Classifier) Train(items []types.StreamItem, tokens [][]string) {
	for i, item := range items {
		if item.Label != classifier.LabelNegative && item.Label != classifier.LabelPositive {
			continue
		}
		if i >= len(tokens) || len(tokens[i]) == 0 {
			continue
		}
		c.trainOne(item.Label, tokens[i])
	}
}

func (c *Classifier) trainOne(label int, tokens []string) {
	d := make(doc, len(tokens))
	for i, word := range tokens {
		d[i] = c.lex.add(word)
	}
	c.tfidfs[label].Add(d)
	c.totals[label]++
	c.ready = false
}

// Finalize recomputes IDF over the pooled document count of both classes.
// Per-class IDF alone would favour whichever class saw fewer documents.
// The pooled total comes from c.totals, the true per-class document counts:
// t.Docs is overwritten here, so summing it would re-pool already-pooled
// values on every incremental training round.
func (c *Classifier) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return
	}

	var docs float64
	for _, total := range c.totals {
		docs += total
	}
	for _, t := range c.tfidfs {
		t.Docs = int(docs)
		for k, v := range t.TF {
			t.IDF[k] = math.Log1p(docs / v)
		}
	}
	c.ready = true
}

// Score returns per-class log posteriors for a tokenized document.
func (c *Classifier) Score(tokens []string) (scores [numClasses]float64) {
	if !c.ready {
		c.Finalize()
	}

	priors := c.priors()
	for i := range c.tfidfs {
		score := math.Log(priors[i])
		for _, word := range tokens {
			score += math.Log(c.prob(word, i))
		}
		scores[i] = score
	}
	return
}

// Predict labels a tokenized document and reports a confidence derived
// from the log-posterior gap, squashed to (0.5, 1).
func (c *Classifier) Predict(tokens []string) (float64, int) {
	scores := c.Score(tokens)

	label := classifier.LabelNegative
	if scores[classifier.LabelPositive] > scores[classifier.LabelNegative] {
		label = classifier.LabelPositive
	}
	gap := math.Abs(scores[classifier.LabelPositive] - scores[classifier.LabelNegative])
	confidence := 1 / (1 + math.Exp(-gap))
	return confidence, label
}

func (c *Classifier) priors() [numClasses]float64 {
	var priors [numClasses]float64
	var sum float64
	for i, total := range c.totals {
		priors[i] = total
		sum += total
	}
	if sum == 0 {
		for i := range priors {
			priors[i] = 1.0 / numClasses
		}
		return priors
	}
	for i := range priors {
		priors[i] /= sum
	}
	return priors
}

func (c *Classifier) prob(word string, class int) float64 {
	id, ok := c.lex.id(word)
	if !ok {
		return tiny
	}

	freq := c.tfidfs[class].TF[id]
	if freq == 0 {
		return tiny
	}
	idf := c.tfidfs[class].IDF[id]
	return freq * idf / c.totals[class]
}
