package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/fixit/internal/classification"
	"github.com/Veraticus/fixit/internal/department"
	"github.com/Veraticus/fixit/internal/intake"
	"github.com/Veraticus/fixit/internal/storage"
)

// initStorage opens the report database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(appConfig.Database)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initLookup returns the configured department table, or the built-in one.
func initLookup() (*department.Lookup, error) {
	if appConfig.Departments == "" {
		return department.Default(), nil
	}
	lookup, err := department.Load(appConfig.Departments)
	if err != nil {
		return nil, fmt.Errorf("failed to load department table: %w", err)
	}
	return lookup, nil
}

// initEngine builds the classification engine. A missing or broken model
// leaves the engine on rules and the fallback.
func initEngine(useModel bool) (*classification.Engine, error) {
	lookup, err := initLookup()
	if err != nil {
		return nil, err
	}

	opts := []classification.Option{classification.WithLookup(lookup)}
	if useModel {
		if predictor := classification.LoadModel(appConfig.ModelPath); predictor != nil {
			opts = append(opts, classification.WithPredictor(predictor))
		}
	}
	return classification.New(opts...), nil
}

// initIntake wires storage and classification into the intake service.
// The caller must close the returned store.
func initIntake(ctx context.Context) (*intake.Service, *storage.SQLiteStorage, error) {
	engine, err := initEngine(true)
	if err != nil {
		return nil, nil, err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	return intake.NewService(store, engine), store, nil
}
