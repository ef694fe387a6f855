// Package storage provides the data persistence layer for reports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fixit/internal/common"
	"github.com/Veraticus/fixit/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidStatus = errors.New("invalid report status")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStatus ensures the status is one of the known report states.
func validateStatus(status model.ReportStatus) error {
	if _, err := model.ParseReportStatus(string(status)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

// validateReport checks the fields a stored report must carry.
func validateReport(r *model.Report) error {
	if r == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: missing ID", common.ErrInvalidReport)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title", common.ErrInvalidReport)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: missing description", common.ErrInvalidReport)
	}
	if r.SubmittedBy == "" {
		return fmt.Errorf("%w: missing submitter", common.ErrInvalidReport)
	}
	if r.Category == "" || r.Department == "" {
		return fmt.Errorf("%w: report has not been classified", common.ErrInvalidReport)
	}
	return validateStatus(r.Status)
}
