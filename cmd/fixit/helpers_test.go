package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/fixit/internal/config"
	"github.com/Veraticus/fixit/internal/intake"
	"github.com/Veraticus/fixit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	prev := appConfig
	appConfig = &config.Config{
		DataDir:   dir,
		Database:  filepath.Join(dir, config.DatabaseFile),
		ModelPath: filepath.Join(dir, config.ModelFile),
	}
	t.Cleanup(func() { appConfig = prev })
	return appConfig
}

func TestInitEngine_MissingModel(t *testing.T) {
	withTestConfig(t)

	engine, err := initEngine(true)
	require.NoError(t, err)
	assert.False(t, engine.HasModel())

	result := engine.Classify("noise from the bar downstairs")
	assert.Equal(t, model.DefaultClassification(), result)
}

func TestInitLookup_CustomTable(t *testing.T) {
	cfg := withTestConfig(t)

	path := filepath.Join(cfg.DataDir, "departments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`default: City Hall
departments:
  - name: Parks Department
    categories: [Noise - Park, Dead Tree]
`), 0o600))
	cfg.Departments = path

	lookup, err := initLookup()
	require.NoError(t, err)
	assert.Equal(t, "Parks Department", lookup.Resolve("Dead Tree"))
	assert.Equal(t, "City Hall", lookup.Resolve("Illegal Parking"))

	cfg.Departments = filepath.Join(cfg.DataDir, "missing.yaml")
	_, err = initLookup()
	assert.Error(t, err)
}

func TestInitIntake_SubmitAndTriage(t *testing.T) {
	withTestConfig(t)
	ctx := context.Background()

	svc, store, err := initIntake(ctx)
	require.NoError(t, err)
	defer store.Close()

	report, err := svc.CreateReport(ctx, intake.Submission{
		Title:       "Broken light",
		Description: "The street light on Oak Ave has been out for a week",
		SubmittedBy: "frank",
	})
	require.NoError(t, err)
	assert.Equal(t, "Traffic Department", report.Department)

	updated, err := svc.UpdateStatus(ctx, report.ID, model.StatusResolved, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, updated.Status)
}
