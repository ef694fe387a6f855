// Package testutil provides shared fixtures for tests that need a report database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/fixit/internal/model"
	"github.com/Veraticus/fixit/internal/storage"
)

// TestDB is a migrated in-memory report database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database seeded with reports.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewReport("r-1").InDepartment("Traffic Department").Build(),
//	)
func SetupTestDB(t *testing.T, reports ...*model.Report) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Reports: reports})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	Reports        []*model.Report
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	for _, r := range opts.Reports {
		if err := store.CreateReport(ctx, r); err != nil {
			t.Fatalf("failed to seed report %q: %v", r.ID, err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustGetReport returns the stored report or fails the test.
func (db *TestDB) MustGetReport(id string) *model.Report {
	db.t.Helper()
	r, err := db.Storage.GetReport(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get report %q: %v", id, err)
	}
	return r
}
