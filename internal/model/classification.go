// Package model defines the core domain models used throughout the application.
package model

// Tier identifies which stage of the classification cascade produced a result.
type Tier string

// Classification tier constants.
const (
	TierRule    Tier = "rule"
	TierModel   Tier = "model"
	TierDefault Tier = "default"
)

// Fallback values returned when neither a rule nor the model produced an answer.
const (
	DefaultCategory   = "Other"
	DefaultDepartment = "General Administration"
	DefaultSummary    = "Issue reported"
)

// ClassificationResult is the routing outcome for a single complaint description.
// It is produced once at report creation and never recomputed.
type ClassificationResult struct {
	Category   string
	Department string
	Summary    string
	Tier       Tier
}

// DefaultClassification returns the terminal fallback result.
func DefaultClassification() ClassificationResult {
	return ClassificationResult{
		Category:   DefaultCategory,
		Department: DefaultDepartment,
		Summary:    DefaultSummary,
		Tier:       TierDefault,
	}
}
