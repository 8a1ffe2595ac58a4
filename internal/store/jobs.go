package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const jobColumns = "id, user_id, resume_id, job_id, title, company, description, job_link, created_at"

// SaveJobs writes the batch in a single transaction and statement.
// IDs and creation times are assigned here when missing.
func (s *Store) SaveJobs(ctx context.Context, jobs []MatchedJob) error {
	if len(jobs) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO jobs (" + jobColumns + ") VALUES ")

	args := make([]interface{}, 0, len(jobs)*9)
	now := s.now()
	for i := range jobs {
		job := &jobs[i]
		if job.ID == "" {
			job.ID = s.newID()
		}
		if job.CreatedAt.IsZero() {
			job.CreatedAt = now
		}

		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			job.ID, job.UserID, job.ResumeID, job.JobID,
			job.Title, job.Company, job.Description, job.JobLink,
			job.CreatedAt.UTC().Format(timeLayout),
		)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(b.String()), args...); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rolling back jobs insert", zap.Error(rbErr))
		}
		return fmt.Errorf("inserting %d jobs: %w", len(jobs), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %d jobs: %w", len(jobs), err)
	}

	return nil
}

// StoredLinks returns the application links already stored for a resume.
func (s *Store) StoredLinks(ctx context.Context, resumeID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT job_link FROM jobs WHERE resume_id = ?`), resumeID)
	if err != nil {
		return nil, fmt.Errorf("querying stored links of resume %s: %w", resumeID, err)
	}
	defer rows.Close()

	links := make(map[string]struct{})
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scanning stored link: %w", err)
		}
		links[strings.TrimSpace(link)] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stored links: %w", err)
	}

	return links, nil
}

// Jobs lists stored jobs of a resume, oldest first.
func (s *Store) Jobs(ctx context.Context, resumeID string) ([]MatchedJob, error) {
	query := s.rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE resume_id = ? ORDER BY created_at, id`)
	rows, err := s.db.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, fmt.Errorf("querying jobs of resume %s: %w", resumeID, err)
	}
	defer rows.Close()

	var jobs []MatchedJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}

	return jobs, nil
}

// Job returns a stored job by its id or ErrNotFound.
func (s *Store) Job(ctx context.Context, id string) (*MatchedJob, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`), id)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return job, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (*MatchedJob, error) {
	var job MatchedJob
	var created string
	err := row.Scan(
		&job.ID, &job.UserID, &job.ResumeID, &job.JobID,
		&job.Title, &job.Company, &job.Description, &job.JobLink,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	if job.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at of job %s: %w", job.ID, err)
	}

	return &job, nil
}
