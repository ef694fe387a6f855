package textclf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactVersion is the schema version written by Save.
const ArtifactVersion = 1

// ErrIncompatibleArtifact is returned when an artifact cannot be used by this build.
var ErrIncompatibleArtifact = errors.New("incompatible model artifact")

type artifact struct {
	TrainedAt    time.Time      `json:"trained_at"`
	Vocabulary   map[string]int `json:"vocabulary"`
	Classes      []string       `json:"classes"`
	IDF          []float64      `json:"idf"`
	Weights      [][]float64    `json:"weights"`
	Bias         []float64      `json:"bias"`
	Version      int            `json:"version"`
	NgramMax     int            `json:"ngram_max"`
	TrainingRows int            `json:"training_rows"`
}

// Save writes the pipeline to path, replacing any existing artifact.
// The file is written to a temporary sibling first so readers never see a partial artifact.
func (p *Pipeline) Save(path string) error {
	if p == nil || p.Model == nil || p.Vectorizer == nil {
		return errors.New("cannot save an empty pipeline")
	}

	a := artifact{
		Version:      ArtifactVersion,
		TrainedAt:    p.TrainedAt,
		TrainingRows: p.TrainingRows,
		NgramMax:     p.Vectorizer.NgramMax,
		Vocabulary:   p.Vectorizer.Vocabulary,
		IDF:          p.Vectorizer.IDF,
		Classes:      p.Model.Classes,
		Weights:      p.Model.Weights,
		Bias:         p.Model.Bias,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := json.NewEncoder(tmp).Encode(&a); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace model: %w", err)
	}

	return nil
}

// Load reads a pipeline saved by Save. Any missing, corrupt or
// incompatible artifact is reported as an error.
func Load(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	var a artifact
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}

	if err := a.validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		TrainedAt:    a.TrainedAt,
		TrainingRows: a.TrainingRows,
		Vectorizer: &Vectorizer{
			Vocabulary: a.Vocabulary,
			IDF:        a.IDF,
			NgramMax:   a.NgramMax,
		},
		Model: &LogisticRegression{
			Classes: a.Classes,
			Weights: a.Weights,
			Bias:    a.Bias,
		},
	}, nil
}

func (a *artifact) validate() error {
	if a.Version != ArtifactVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrIncompatibleArtifact, a.Version, ArtifactVersion)
	}
	if len(a.Classes) == 0 {
		return fmt.Errorf("%w: no classes", ErrIncompatibleArtifact)
	}
	if a.NgramMax < 1 {
		return fmt.Errorf("%w: ngram_max %d", ErrIncompatibleArtifact, a.NgramMax)
	}
	if len(a.Weights) != len(a.Classes) || len(a.Bias) != len(a.Classes) {
		return fmt.Errorf("%w: %d classes but %d weight rows and %d biases",
			ErrIncompatibleArtifact, len(a.Classes), len(a.Weights), len(a.Bias))
	}
	features := len(a.IDF)
	for k, row := range a.Weights {
		if len(row) != features {
			return fmt.Errorf("%w: weight row %d has %d features, want %d",
				ErrIncompatibleArtifact, k, len(row), features)
		}
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= features {
			return fmt.Errorf("%w: term %q has index %d outside %d features",
				ErrIncompatibleArtifact, term, idx, features)
		}
	}
	return nil
}
