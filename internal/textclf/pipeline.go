package textclf

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrEmptyTrainingSet is returned when Fit receives no usable examples.
var ErrEmptyTrainingSet = errors.New("training set is empty")

// Options configures pipeline training.
type Options struct {
	// OnEpoch is called after every training epoch with the mean loss.
	OnEpoch      func(epoch int, loss float64)
	MaxFeatures  int
	NgramMax     int
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

// DefaultOptions returns the settings used by the offline trainer.
func DefaultOptions() Options {
	return Options{
		MaxFeatures:  20000,
		NgramMax:     2,
		Epochs:       20,
		LearningRate: 0.5,
		L2:           1e-4,
		Seed:         42,
	}
}

// Pipeline is a trained text-to-category model.
// It is read-only after construction and safe for concurrent Predict calls.
type Pipeline struct {
	TrainedAt    time.Time
	Vectorizer   *Vectorizer
	Model        *LogisticRegression
	TrainingRows int
}

// Fit trains a pipeline on parallel slices of documents and labels.
func Fit(docs, labels []string, opts Options) (*Pipeline, error) {
	if len(docs) != len(labels) {
		return nil, fmt.Errorf("got %d documents but %d labels", len(docs), len(labels))
	}
	if len(docs) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if opts.NgramMax <= 0 {
		opts.NgramMax = 1
	}
	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultOptions().LearningRate
	}

	classIndex := make(map[string]int)
	for _, label := range labels {
		classIndex[label] = 0
	}
	classes := make([]string, 0, len(classIndex))
	for label := range classIndex {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	for i, label := range classes {
		classIndex[label] = i
	}

	vec := fitVectorizer(docs, opts.MaxFeatures, opts.NgramMax)

	xs := make([]SparseVector, len(docs))
	ys := make([]int, len(docs))
	for i, doc := range docs {
		xs[i] = vec.Transform(doc)
		ys[i] = classIndex[labels[i]]
	}

	model := newLogisticRegression(classes, vec.Features())
	model.fit(xs, ys, sgdConfig{
		Epochs:       opts.Epochs,
		LearningRate: opts.LearningRate,
		L2:           opts.L2,
		Seed:         opts.Seed,
		OnEpoch:      opts.OnEpoch,
	})

	return &Pipeline{
		Vectorizer:   vec,
		Model:        model,
		TrainedAt:    time.Now().UTC(),
		TrainingRows: len(docs),
	}, nil
}

// Predict returns the most likely category for description.
func (p *Pipeline) Predict(description string) (string, error) {
	if p == nil || p.Model == nil || p.Vectorizer == nil {
		return "", errors.New("pipeline is not initialised")
	}
	if len(p.Model.Classes) == 0 {
		return "", errors.New("pipeline has no classes")
	}
	x := p.Vectorizer.Transform(description)
	return p.Model.Classes[p.Model.Predict(x)], nil
}

// PredictBatch classifies many descriptions at once.
func (p *Pipeline) PredictBatch(descriptions []string) ([]string, error) {
	out := make([]string, len(descriptions))
	for i, d := range descriptions {
		label, err := p.Predict(d)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// Classes returns the labels the pipeline can emit.
func (p *Pipeline) Classes() []string {
	out := make([]string, len(p.Model.Classes))
	copy(out, p.Model.Classes)
	return out
}
