package intake

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/fixit/internal/classification"
	"github.com/Veraticus/fixit/internal/common"
	"github.com/Veraticus/fixit/internal/model"
	"github.com/Veraticus/fixit/internal/service"
	"github.com/Veraticus/fixit/internal/storage"
	"github.com/Veraticus/fixit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *storage.SQLiteStorage) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewService(db.Storage, classification.New(), opts...), db.Storage
}

func TestCreateReport_ClassifiesOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, Submission{
		Title:       "Pothole",
		Description: "There's a huge pothole on Main Street",
		SubmittedBy: "alice@example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, model.StatusPending, report.Status)
	assert.Equal(t, "Traffic/Infrastructure", report.Category)
	assert.Equal(t, "Traffic Department", report.Department)
	assert.Equal(t, "Road or traffic infrastructure issue", report.AISummary)
	assert.Equal(t, model.TierRule, report.ClassifiedBy)

	stored, err := store.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Category, stored.Category)
	assert.Equal(t, report.Department, stored.Department)
	assert.Equal(t, report.AISummary, stored.AISummary)
}

func TestCreateReport_DefaultTier(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.CreateReport(context.Background(), Submission{
		Title:       "Graffiti",
		Description: "tags sprayed on the wall",
		SubmittedBy: "bob@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Other", report.Category)
	assert.Equal(t, "General Administration", report.Department)
	assert.Equal(t, "Issue reported", report.AISummary)
	assert.Equal(t, model.TierDefault, report.ClassifiedBy)
}

func TestCreateReport_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sub  Submission
	}{
		{"missing title", Submission{Description: "water leak", SubmittedBy: "a"}},
		{"missing description", Submission{Title: "Leak", Description: "   ", SubmittedBy: "a"}},
		{"missing submitter", Submission{Title: "Leak", Description: "water leak"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReport(ctx, tt.sub)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidReport)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
}

func TestCreateReport_DuplicateID(t *testing.T) {
	svc, _ := newTestService(t, WithIDGenerator(func() string { return "fixed" }))
	ctx := context.Background()
	sub := Submission{Title: "Leak", Description: "water leak", SubmittedBy: "alice"}

	_, err := svc.CreateReport(ctx, sub)
	require.NoError(t, err)

	_, err = svc.CreateReport(ctx, sub)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestStatusWorkflow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, Submission{
		Title:       "Trash",
		Description: "Overflowing garbage bins by the park",
		SubmittedBy: "carol@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Sanitation", report.Category)

	updated, err := svc.UpdateStatus(ctx, report.ID, model.StatusInProgress, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, "Sanitation", updated.Category)

	_, err = svc.UpdateStatus(ctx, report.ID, model.StatusResolved, "admin")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, report.ID, model.StatusRejected, "admin")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, report.ID, "archived", "admin")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, report.ID, model.StatusInProgress, " ")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	history, err := svc.History(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.StatusResolved, history[1].To)

	_, err = svc.History(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListAndStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	descriptions := []string{
		"water leak on Elm",
		"pothole near the school",
		"garbage not collected",
		"burst pipe in the basement",
	}
	for i, d := range descriptions {
		_, err := svc.CreateReport(ctx, Submission{
			Title:       fmt.Sprintf("Report %d", i),
			Description: d,
			SubmittedBy: "dave",
		})
		require.NoError(t, err)
	}

	all, err := svc.ListReports(ctx, service.ReportFilter{SubmittedBy: "dave"})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	utilities, err := svc.ListReports(ctx, service.ReportFilter{Department: "Utilities Department"})
	require.NoError(t, err)
	assert.Len(t, utilities, 2)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByDepartment["Utilities Department"])
	assert.Equal(t, 1, stats.ByDepartment["Traffic Department"])
	assert.Equal(t, 1, stats.ByDepartment["Sanitation Department"])
}

// busyStore fails CreateReport with lock contention a fixed number of times.
type busyStore struct {
	service.ReportStore
	mu       sync.Mutex
	failures int
	calls    int
}

func (b *busyStore) CreateReport(_ context.Context, _ *model.Report) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= b.failures {
		return fmt.Errorf("failed to insert report: %w", common.ErrStoreBusy)
	}
	return nil
}

type fixedClassifier struct{}

func (fixedClassifier) Classify(string) model.ClassificationResult {
	return model.DefaultClassification()
}

func TestCreateReport_RetriesBusyStore(t *testing.T) {
	fast := WithRetryOptions(service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	})
	sub := Submission{Title: "Noise", Description: "loud music", SubmittedBy: "erin"}

	store := &busyStore{failures: 2}
	svc := NewService(store, fixedClassifier{}, fast)
	report, err := svc.CreateReport(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, model.TierDefault, report.ClassifiedBy)
	assert.Equal(t, 3, store.calls)

	store = &busyStore{failures: 5}
	svc = NewService(store, fixedClassifier{}, fast)
	_, err = svc.CreateReport(context.Background(), sub)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, 3, store.calls)
}

func TestUpdateStatus_SeededReports(t *testing.T) {
	db := testutil.SetupTestDB(t,
		testutil.NewReport("open").Build(),
		testutil.NewReport("closed").WithStatus(model.StatusRejected).Build(),
	)
	svc := NewService(db.Storage, classification.New())
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "closed", model.StatusResolved, "admin")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	reopened, err := svc.UpdateStatus(ctx, "closed", model.StatusPending, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reopened.Status)

	_, err = svc.UpdateStatus(ctx, "missing", model.StatusResolved, "admin")
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.Equal(t, model.StatusPending, db.MustGetReport("open").Status)
}
