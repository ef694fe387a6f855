// Package intake creates citizen reports and drives their triage lifecycle.
//
// A report is classified exactly once, when it is submitted. The category,
// department and summary written at that point are never recomputed; later
// updates only move the report through its status workflow.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/fixit/internal/common"
	"github.com/Veraticus/fixit/internal/model"
	"github.com/Veraticus/fixit/internal/service"
	"github.com/google/uuid"
)

// Submission is the citizen-supplied part of a new report.
type Submission struct {
	Title       string
	Description string
	PhotoURL    string
	SubmittedBy string
}

// Stats summarizes report volume per department.
type Stats struct {
	ByDepartment map[string]int
	Total        int
}

// Service ties classification to report persistence.
type Service struct {
	store      service.ReportStore
	classifier service.Classifier
	logger     *slog.Logger
	newID      func() string
	retry      service.RetryOptions
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for intake events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRetryOptions overrides how busy-database writes are retried.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(s *Service) {
		s.retry = opts
	}
}

// WithIDGenerator replaces the UUID generator. Used by tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService creates an intake service.
func NewService(store service.ReportStore, classifier service.Classifier, opts ...Option) *Service {
	s := &Service{
		store:      store,
		classifier: classifier,
		logger:     slog.Default(),
		newID:      uuid.NewString,
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
			Multiplier:   2,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReport classifies and stores a new pending report.
func (s *Service) CreateReport(ctx context.Context, sub Submission) (*model.Report, error) {
	sub.Title = strings.TrimSpace(sub.Title)
	sub.SubmittedBy = strings.TrimSpace(sub.SubmittedBy)
	if sub.Title == "" {
		return nil, common.NewUserError("a report needs a title", common.ErrInvalidReport)
	}
	if strings.TrimSpace(sub.Description) == "" {
		return nil, common.NewUserError("a report needs a description", common.ErrInvalidReport)
	}
	if sub.SubmittedBy == "" {
		return nil, common.NewUserError("a report needs a submitter", common.ErrInvalidReport)
	}

	result := s.classifier.Classify(sub.Description)

	report := &model.Report{
		ID:          s.newID(),
		Title:       sub.Title,
		Description: sub.Description,
		Status:      model.StatusPending,
		Priority:    model.PriorityMedium,
		PhotoURL:    strings.TrimSpace(sub.PhotoURL),
		SubmittedBy: sub.SubmittedBy,
	}
	report.ApplyClassification(result)

	err := common.WithRetry(ctx, func() error {
		return common.RetryBusy(s.store.CreateReport(ctx, report))
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	s.logger.Info("report created",
		"id", report.ID,
		"category", report.Category,
		"department", report.Department,
		"tier", report.ClassifiedBy)

	return report, nil
}

// GetReport returns a single report.
func (s *Service) GetReport(ctx context.Context, id string) (*model.Report, error) {
	return s.store.GetReport(ctx, id)
}

// ListReports returns the reports matching filter, newest first.
func (s *Service) ListReports(ctx context.Context, filter service.ReportFilter) ([]model.Report, error) {
	return s.store.ListReports(ctx, filter)
}

// UpdateStatus moves a report through the triage workflow.
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.ReportStatus, changedBy string) (*model.Report, error) {
	if _, err := model.ParseReportStatus(string(status)); err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("unknown status %q (use pending, in_progress, resolved or rejected)", status),
			common.ErrInvalidTransition)
	}
	if strings.TrimSpace(changedBy) == "" {
		return nil, common.NewUserError("a status change needs an actor", common.ErrInvalidTransition)
	}

	var updated *model.Report
	err := common.WithRetry(ctx, func() error {
		var err error
		updated, err = s.store.UpdateReportStatus(ctx, id, status, changedBy)
		return common.RetryBusy(err)
	}, s.retry)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// History returns the recorded status changes for a report.
func (s *Service) History(ctx context.Context, id string) ([]model.StatusChange, error) {
	if _, err := s.store.GetReport(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetStatusHistory(ctx, id)
}

// Stats counts reports per department.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.CountByDepartment(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	stats := &Stats{ByDepartment: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
