package testutil

import (
	"time"

	"github.com/Veraticus/fixit/internal/model"
)

// ReportBuilder builds valid, already-classified reports for seeding.
type ReportBuilder struct {
	report model.Report
}

// NewReport starts a pending report routed by the default tier.
func NewReport(id string) *ReportBuilder {
	b := &ReportBuilder{report: model.Report{
		ID:          id,
		Title:       "Report " + id,
		Description: "Something needs fixing",
		Status:      model.StatusPending,
		Priority:    model.PriorityMedium,
		SubmittedBy: "citizen@example.com",
	}}
	b.report.ApplyClassification(model.DefaultClassification())
	return b
}

// WithDescription sets the description.
func (b *ReportBuilder) WithDescription(description string) *ReportBuilder {
	b.report.Description = description
	return b
}

// SubmittedBy sets the submitter.
func (b *ReportBuilder) SubmittedBy(who string) *ReportBuilder {
	b.report.SubmittedBy = who
	return b
}

// InDepartment overrides the routed department.
func (b *ReportBuilder) InDepartment(department string) *ReportBuilder {
	b.report.Department = department
	return b
}

// Classified applies a full classification result.
func (b *ReportBuilder) Classified(result model.ClassificationResult) *ReportBuilder {
	b.report.ApplyClassification(result)
	return b
}

// WithStatus sets the starting status.
func (b *ReportBuilder) WithStatus(status model.ReportStatus) *ReportBuilder {
	b.report.Status = status
	return b
}

// CreatedAt sets the creation time.
func (b *ReportBuilder) CreatedAt(at time.Time) *ReportBuilder {
	b.report.CreatedAt = at
	return b
}

// Build returns a copy of the report.
func (b *ReportBuilder) Build() *model.Report {
	r := b.report
	return &r
}
