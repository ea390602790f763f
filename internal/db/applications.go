package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/autojob/internal/types"
)

// AppendApplication records one terminal pipeline outcome. The ledger is
// append-only: rows are never updated or deleted.
func (db *DB) AppendApplication(ctx context.Context, entry *types.ApplicationLogEntry) error {
	var resumeJSON, reportJSON []byte
	var err error

	if entry.MutatedResume != nil {
		resumeJSON, err = json.Marshal(entry.MutatedResume)
		if err != nil {
			return fmt.Errorf("failed to marshal mutated resume: %w", err)
		}
	}
	if entry.MutationReport != nil {
		reportJSON, err = json.Marshal(entry.MutationReport)
		if err != nil {
			return fmt.Errorf("failed to marshal mutation report: %w", err)
		}
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO applications
		 (id, job_id, job_title, company, status, applied_at, url, platform, location,
		  cover_letter, cover_letter_style, mutated_resume, mutation_report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID, entry.JobID, entry.JobTitle, entry.Company, string(entry.Status),
		entry.Timestamp, entry.URL, string(entry.Platform), entry.Location,
		entry.CoverLetter, string(entry.CoverLetterStyle), resumeJSON, reportJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append application: %w", err)
	}
	return nil
}

// ApplicationFilters holds optional filters for listing applications
type ApplicationFilters struct {
	Status  types.ApplicationStatus
	Company string
	Limit   int
}

// ListApplications retrieves recent ledger entries, newest first.
func (db *DB) ListApplications(ctx context.Context, filters ApplicationFilters) ([]types.ApplicationLogEntry, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, job_id, job_title, company, status, applied_at, url, platform, location,
		cover_letter, cover_letter_style, mutated_resume, mutation_report
		FROM applications WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}
	if filters.Company != "" {
		query += fmt.Sprintf(" AND company ILIKE $%d", argNum)
		args = append(args, "%"+filters.Company+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY applied_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var entries []types.ApplicationLogEntry
	for rows.Next() {
		entry, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// GetApplication retrieves a single ledger entry by ID.
func (db *DB) GetApplication(ctx context.Context, id string) (*types.ApplicationLogEntry, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, job_id, job_title, company, status, applied_at, url, platform, location,
		 cover_letter, cover_letter_style, mutated_resume, mutation_report
		 FROM applications WHERE id = $1`, id)

	entry, err := scanApplication(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// HasAppliedToURL reports whether a completed application already exists for
// the given job URL. Used to skip duplicates during bulk runs.
func (db *DB) HasAppliedToURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE url = $1 AND status = $2)`,
		url, string(types.StatusCompleted),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check application history: %w", err)
	}
	return exists, nil
}

// CountApplicationsSince counts completed applications after the cutoff.
// Used to enforce the strategy plan's daily quota.
func (db *DB) CountApplicationsSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications WHERE status = $1 AND applied_at >= $2`,
		string(types.StatusCompleted), cutoff,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*types.ApplicationLogEntry, error) {
	var entry types.ApplicationLogEntry
	var status, platform, style string
	var location, coverLetter *string
	var resumeJSON, reportJSON []byte

	err := row.Scan(&entry.ID, &entry.JobID, &entry.JobTitle, &entry.Company, &status,
		&entry.Timestamp, &entry.URL, &platform, &location,
		&coverLetter, &style, &resumeJSON, &reportJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	entry.Status = types.ApplicationStatus(status)
	entry.Platform = types.Platform(platform)
	entry.CoverLetterStyle = types.CoverLetterStyle(style)
	if location != nil {
		entry.Location = *location
	}
	if coverLetter != nil {
		entry.CoverLetter = *coverLetter
	}
	if len(resumeJSON) > 0 {
		var resume types.ResumeJSON
		if err := json.Unmarshal(resumeJSON, &resume); err == nil {
			entry.MutatedResume = &resume
		}
	}
	if len(reportJSON) > 0 {
		var report types.MutationReport
		if err := json.Unmarshal(reportJSON, &report); err == nil {
			entry.MutationReport = &report
		}
	}
	return &entry, nil
}
