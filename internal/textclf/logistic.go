package textclf

import (
	"math"
	"math/rand"
)

// LogisticRegression is a multinomial (softmax) linear classifier.
type LogisticRegression struct {
	Classes []string
	Weights [][]float64
	Bias    []float64
}

func newLogisticRegression(classes []string, features int) *LogisticRegression {
	m := &LogisticRegression{
		Classes: classes,
		Weights: make([][]float64, len(classes)),
		Bias:    make([]float64, len(classes)),
	}
	for k := range m.Weights {
		m.Weights[k] = make([]float64, features)
	}
	return m
}

// Probabilities returns the softmax distribution over classes for x.
func (m *LogisticRegression) Probabilities(x SparseVector) []float64 {
	scores := make([]float64, len(m.Classes))
	maxScore := math.Inf(-1)
	for k := range m.Classes {
		s := m.Bias[k]
		w := m.Weights[k]
		for i, idx := range x.Indices {
			s += w[idx] * x.Values[i]
		}
		scores[k] = s
		if s > maxScore {
			maxScore = s
		}
	}

	var sum float64
	for k, s := range scores {
		scores[k] = math.Exp(s - maxScore)
		sum += scores[k]
	}
	for k := range scores {
		scores[k] /= sum
	}
	return scores
}

// Predict returns the index of the most probable class.
func (m *LogisticRegression) Predict(x SparseVector) int {
	probs := m.Probabilities(x)
	best := 0
	for k := 1; k < len(probs); k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return best
}

// sgdConfig controls stochastic gradient descent.
type sgdConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
	OnEpoch      func(epoch int, loss float64)
}

// fit trains the model with per-sample SGD on cross-entropy loss.
// The learning rate decays as lr / (1 + 0.1*epoch); L2 shrinkage is applied once per epoch.
func (m *LogisticRegression) fit(xs []SparseVector, ys []int, cfg sgdConfig) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		lr := cfg.LearningRate / (1 + 0.1*float64(epoch))
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var loss float64
		for _, n := range order {
			x := xs[n]
			probs := m.Probabilities(x)
			loss -= math.Log(math.Max(probs[ys[n]], 1e-15))

			for k := range m.Classes {
				g := probs[k]
				if k == ys[n] {
					g--
				}
				if g == 0 {
					continue
				}
				w := m.Weights[k]
				for i, idx := range x.Indices {
					w[idx] -= lr * g * x.Values[i]
				}
				m.Bias[k] -= lr * g
			}
		}

		if cfg.L2 > 0 {
			shrink := 1 - lr*cfg.L2
			for _, w := range m.Weights {
				for j := range w {
					w[j] *= shrink
				}
			}
		}

		if cfg.OnEpoch != nil {
			cfg.OnEpoch(epoch+1, loss/float64(max(len(xs), 1)))
		}
	}
}
