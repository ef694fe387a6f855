// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/fixit/internal/model"
)

// ReportFilter defines filtering options for report queries.
type ReportFilter struct {
	SubmittedBy string
	Status      model.ReportStatus
	Department  string
	Limit       int
}

// ReportStore defines the contract for report persistence.
type ReportStore interface {
	CreateReport(ctx context.Context, report *model.Report) error
	GetReport(ctx context.Context, id string) (*model.Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.Report, error)
	UpdateReportStatus(ctx context.Context, id string, status model.ReportStatus, changedBy string) (*model.Report, error)
	GetStatusHistory(ctx context.Context, id string) ([]model.StatusChange, error)
	CountByDepartment(ctx context.Context) (map[string]int, error)
}

// Classifier routes a complaint description. It never fails.
type Classifier interface {
	Classify(description string) model.ClassificationResult
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
