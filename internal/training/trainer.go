package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/fixit/internal/dataset"
	"github.com/Veraticus/fixit/internal/textclf"
)

// Config holds trainer settings.
type Config struct {
	InputPath    string
	ModelPath    string
	Model        textclf.Options
	MinSupport   int
	TestFraction float64
}

// DefaultConfig returns the standard training configuration for the given paths.
func DefaultConfig(inputPath, modelPath string) Config {
	return Config{
		InputPath:    inputPath,
		ModelPath:    modelPath,
		MinSupport:   20,
		TestFraction: 0.2,
		Model:        textclf.DefaultOptions(),
	}
}

// Result describes a completed training run.
type Result struct {
	Dropped   map[string]int
	ModelPath string
	Report    Report
	Examples  int
	TrainRows int
	TestRows  int
	Duration  time.Duration
}

// Run trains a classifier from cfg.InputPath and writes it to cfg.ModelPath.
// Evaluation never gates the save: the artifact is written whatever accuracy was reached.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()

	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("test fraction must be between 0 and 1, got %v", cfg.TestFraction)
	}

	table, err := dataset.ReadFile(cfg.InputPath)
	if err != nil {
		return nil, err
	}

	examples, err := ExamplesFromTable(table)
	if err != nil {
		return nil, err
	}

	kept, dropped := FilterRare(examples, cfg.MinSupport)
	slog.Info("Filtered rare categories",
		"rows", len(examples),
		"kept", len(kept),
		"dropped_categories", len(dropped),
		"min_support", cfg.MinSupport)
	if len(kept) == 0 {
		return nil, fmt.Errorf("no category has at least %d examples", cfg.MinSupport)
	}

	train, test := StratifiedSplit(kept, cfg.TestFraction, cfg.Model.Seed)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("Training department classifier", "samples", len(train))
	docs, labels := split(train)
	pipe, err := textclf.Fit(docs, labels, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var report Report
	if len(test) > 0 {
		testDocs, truth := split(test)
		predicted, err := pipe.PredictBatch(testDocs)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate model: %w", err)
		}
		report, err = Evaluate(truth, predicted)
		if err != nil {
			return nil, err
		}
		slog.Info("Validation complete", "accuracy", fmt.Sprintf("%.4f", report.Accuracy))
	} else {
		slog.Warn("No held-out rows, skipping evaluation")
	}

	if err := pipe.Save(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}
	slog.Info("Saved department model", "path", cfg.ModelPath)

	return &Result{
		Dropped:   dropped,
		ModelPath: cfg.ModelPath,
		Report:    report,
		Examples:  len(examples),
		TrainRows: len(train),
		TestRows:  len(test),
		Duration:  time.Since(start),
	}, nil
}
