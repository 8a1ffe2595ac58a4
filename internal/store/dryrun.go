package store

import (
	"context"

	"go.uber.org/zap"
)

// DryRun accepts job batches and only logs them.
type DryRun struct {
	logger *zap.Logger
}

func NewDryRun(logger *zap.Logger) *DryRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRun{logger: logger}
}

func (d *DryRun) SaveJobs(_ context.Context, jobs []MatchedJob) error {
	for _, job := range jobs {
		d.logger.Info("dry run: would store job",
			zap.String("resume_id", job.ResumeID),
			zap.String("title", job.Title),
			zap.String("company", job.Company),
			zap.String("job_link", job.JobLink),
		)
	}
	return nil
}
