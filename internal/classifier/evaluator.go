package classifier

// Evaluator tracks per-batch exact-match accuracy against ground truth. It is
// pure observability: nothing in the classification path reads it.
type Evaluator struct {
	history []float64
}

// NewEvaluator returns an evaluator with empty history.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Accuracy scores predicted against true labels, appends the result to the
// running history, and returns it. Mismatched or empty inputs score 0.
func (e *Evaluator) Accuracy(truth, preds []int) float64 {
	acc := Accuracy(truth, preds)
	e.history = append(e.history, acc)
	return acc
}

// History returns the accuracies of all evaluated batches in order.
func (e *Evaluator) History() []float64 {
	return append([]float64(nil), e.history...)
}

// Accuracy is standard exact-match accuracy in [0,1].
func Accuracy(truth, preds []int) float64 {
	if len(truth) == 0 || len(truth) != len(preds) {
		return 0
	}
	correct := 0
	for i, want := range truth {
		if preds[i] == want {
			correct++
		}
	}
	return float64(correct) / float64(len(truth))
}
