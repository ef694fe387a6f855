package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/fixit/internal/common"
	"github.com/Veraticus/fixit/internal/model"
	"github.com/Veraticus/fixit/internal/service"
	"github.com/mattn/go-sqlite3"
)

const reportColumns = `id, title, description, status, category, department, priority,
	ai_summary, suspicious_flag, photo_url, submitted_by, classified_by, created_at, updated_at`

// CreateReport inserts a new report.
func (s *SQLiteStorage) CreateReport(ctx context.Context, r *model.Report) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReport(r); err != nil {
		return err
	}

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = r.CreatedAt
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}

	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Title, r.Description, string(r.Status), r.Category, r.Department, r.Priority,
		nullString(r.AISummary), r.SuspiciousFlag, nullString(r.PhotoURL), r.SubmittedBy,
		string(r.ClassifiedBy), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: report %s", common.ErrDuplicateEntry, r.ID)
		}
		return fmt.Errorf("failed to insert report: %w", busy(err))
	}

	slog.Debug("stored report", "id", r.ID, "category", r.Category, "department", r.Department)
	return nil
}

// GetReport returns a report by ID.
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*model.Report, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getReport(ctx, s.db, id)
}

// ListReports returns reports newest first. Zero-valued filter fields are ignored.
func (s *SQLiteStorage) ListReports(ctx context.Context, filter service.ReportFilter) ([]model.Report, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.SubmittedBy != "" {
		where = append(where, "submitted_by = ?")
		args = append(args, filter.SubmittedBy)
	}
	if filter.Status != "" {
		if err := validateStatus(filter.Status); err != nil {
			return nil, err
		}
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Department != "" {
		where = append(where, "department = ?")
		args = append(args, filter.Department)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

// UpdateReportStatus moves a report to a new status and records the change.
// The transition is checked against the current status inside the same transaction.
func (s *SQLiteStorage) UpdateReportStatus(ctx context.Context, id string, status model.ReportStatus, changedBy string) (*model.Report, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if err := validateString(changedBy, "changedBy"); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", busy(err))
	}
	defer func() { _ = tx.Rollback() }()

	report, err := getReport(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !report.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, report.Status, status)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE reports SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", busy(err))
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO report_status_history (report_id, from_status, to_status, changed_by, changed_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, string(report.Status), string(status), changedBy, now,
	); err != nil {
		return nil, fmt.Errorf("failed to record status change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", busy(err))
	}

	slog.Info("report status changed", "id", id, "from", report.Status, "to", status, "by", changedBy)

	report.Status = status
	report.UpdatedAt = now
	return report, nil
}

// GetStatusHistory returns the status changes of a report, oldest first.
func (s *SQLiteStorage) GetStatusHistory(ctx context.Context, id string) ([]model.StatusChange, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_id, from_status, to_status, changed_by, changed_at
		FROM report_status_history
		WHERE report_id = ?
		ORDER BY changed_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var history []model.StatusChange
	for rows.Next() {
		var (
			c        model.StatusChange
			from, to string
		)
		if err := rows.Scan(&c.ID, &c.ReportID, &from, &to, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		c.From = model.ReportStatus(from)
		c.To = model.ReportStatus(to)
		history = append(history, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}
	return history, nil
}

// CountByDepartment returns the number of reports routed to each department.
func (s *SQLiteStorage) CountByDepartment(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(department, ''), COUNT(*)
		FROM reports
		GROUP BY department`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			dept string
			n    int
		)
		if err := rows.Scan(&dept, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[dept] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getReport(ctx context.Context, q queryer, id string) (*model.Report, error) {
	row := q.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: report %s", common.ErrNotFound, id)
	}
	return r, err
}

func scanReport(row scanner) (*model.Report, error) {
	var (
		r                          model.Report
		status, classifiedBy       string
		department, summary, photo sql.NullString
	)
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &status, &r.Category, &department, &r.Priority,
		&summary, &r.SuspiciousFlag, &photo, &r.SubmittedBy, &classifiedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	r.Status = model.ReportStatus(status)
	r.ClassifiedBy = model.Tier(classifiedBy)
	r.Department = department.String
	r.AISummary = summary.String
	r.PhotoURL = photo.String
	return &r, nil
}

// busy tags lock contention so callers can retry it.
func busy(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%w: %w", common.ErrStoreBusy, err)
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
