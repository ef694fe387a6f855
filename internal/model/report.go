package model

import (
	"fmt"
	"time"
)

// ReportStatus tracks where a report is in the triage workflow.
type ReportStatus string

// Report status constants.
const (
	StatusPending    ReportStatus = "pending"
	StatusInProgress ReportStatus = "in_progress"
	StatusResolved   ReportStatus = "resolved"
	StatusRejected   ReportStatus = "rejected"
)

// Report priority constants.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var statusTransitions = map[ReportStatus][]ReportStatus{
	StatusPending:    {StatusInProgress, StatusResolved, StatusRejected},
	StatusInProgress: {StatusResolved, StatusRejected, StatusPending},
	StatusResolved:   {StatusInProgress},
	StatusRejected:   {StatusPending},
}

// ParseReportStatus converts a user-supplied string into a ReportStatus.
func ParseReportStatus(s string) (ReportStatus, error) {
	status := ReportStatus(s)
	if _, ok := statusTransitions[status]; !ok {
		return "", fmt.Errorf("unknown report status %q", s)
	}
	return status, nil
}

// CanTransitionTo reports whether moving from s to next is a legal triage step.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Report is a citizen-submitted issue.
// Category, Department and AISummary are copied from a ClassificationResult
// at creation time and are not modified afterwards.
type Report struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	Title          string
	Description    string
	Status         ReportStatus
	Category       string
	Department     string
	Priority       string
	AISummary      string
	PhotoURL       string
	SubmittedBy    string
	ClassifiedBy   Tier
	SuspiciousFlag bool
}

// ApplyClassification copies a routing outcome onto the report.
func (r *Report) ApplyClassification(result ClassificationResult) {
	r.Category = result.Category
	r.Department = result.Department
	r.AISummary = result.Summary
	r.ClassifiedBy = result.Tier
}

// StatusChange is one entry in a report's triage history.
type StatusChange struct {
	ChangedAt time.Time
	ReportID  string
	From      ReportStatus
	To        ReportStatus
	ChangedBy string
	ID        int64
}
