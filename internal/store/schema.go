package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS resume_skills (
		resume_id TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL,
		skills    TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		resume_id   TEXT NOT NULL,
		job_id      TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		description TEXT NOT NULL,
		job_link    TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_resume_id_idx ON jobs (resume_id)`,
}

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}
