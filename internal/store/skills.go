package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ResumeSkills returns every resume skill set ordered by resume id.
// Rows with undecodable skills are logged and skipped.
func (s *Store) ResumeSkills(ctx context.Context) ([]ResumeSkillSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT resume_id, user_id, skills FROM resume_skills ORDER BY resume_id`)
	if err != nil {
		return nil, fmt.Errorf("querying resume skills: %w", err)
	}
	defer rows.Close()

	var sets []ResumeSkillSet
	for rows.Next() {
		var set ResumeSkillSet
		var raw string
		if err := rows.Scan(&set.ResumeID, &set.UserID, &raw); err != nil {
			return nil, fmt.Errorf("scanning resume skills: %w", err)
		}

		if err := json.Unmarshal([]byte(raw), &set.Skills); err != nil {
			s.logger.Warn("skipping resume with malformed skills",
				zap.String("resume_id", set.ResumeID),
				zap.Error(err),
			)
			continue
		}

		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resume skills: %w", err)
	}

	return sets, nil
}

// SaveResumeSkills inserts or replaces the skill set of a resume.
func (s *Store) SaveResumeSkills(ctx context.Context, set ResumeSkillSet) error {
	if strings.TrimSpace(set.ResumeID) == "" {
		return errors.New("resume id is required")
	}
	if strings.TrimSpace(set.UserID) == "" {
		return fmt.Errorf("user id is required for resume %s", set.ResumeID)
	}

	skills := set.Skills
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("encoding skills of resume %s: %w", set.ResumeID, err)
	}

	query := s.rebind(`INSERT INTO resume_skills (resume_id, user_id, skills) VALUES (?, ?, ?)
		ON CONFLICT (resume_id) DO UPDATE SET user_id = excluded.user_id, skills = excluded.skills`)

	if _, err := s.db.ExecContext(ctx, query, set.ResumeID, set.UserID, string(raw)); err != nil {
		return fmt.Errorf("saving skills of resume %s: %w", set.ResumeID, err)
	}

	return nil
}
