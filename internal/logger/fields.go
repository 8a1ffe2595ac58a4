package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldResumeID is the structured log field key for the resume identifier.
	FieldResumeID = "resume_id"
	// FieldUserID is the structured log field key for the resume owner.
	FieldUserID = "user_id"
	// FieldSkill is the structured log field key for the searched skill.
	FieldSkill = "skill"

	FieldTitle   = "title"
	FieldCompany = "company"
	FieldJobLink = "job_link"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ResumeFields returns the fields identifying a resume and its owner.
func ResumeFields(resumeID, userID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldResumeID, Value: resumeID},
		StringField{Key: FieldUserID, Value: userID},
	)
}

// WithResume attaches the resume fields to the provided logger.
func WithResume(logger *zap.Logger, resumeID, userID string) *zap.Logger {
	return WithFields(logger, ResumeFields(resumeID, userID)...)
}

// JobFields returns the fields describing a job posting.
func JobFields(title, company, link string) []zap.Field {
	return StringFields(
		StringField{Key: FieldTitle, Value: title},
		StringField{Key: FieldCompany, Value: company},
		StringField{Key: FieldJobLink, Value: link},
	)
}
