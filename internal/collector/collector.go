// Package collector runs the per-resume search, match and store pass.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/filtering"
	"github.com/spigell/job-matcher/internal/jsearch"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/skills"
	"github.com/spigell/job-matcher/internal/store"
	"github.com/spigell/job-matcher/internal/utils"
)

const (
	// DefaultCap is the maximum number of matched jobs per resume and run.
	DefaultCap = 3
	// DefaultPause is the wait after every search call.
	DefaultPause = time.Second

	descriptionPreview = 120
)

type SkillSource interface {
	ResumeSkills(ctx context.Context) ([]store.ResumeSkillSet, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) *jsearch.SearchResult
}

type SkillMatcher interface {
	Match(ctx context.Context, description string, skillList []string) (skills.Matches, error)
}

type JobWriter interface {
	SaveJobs(ctx context.Context, jobs []store.MatchedJob) error
}

type Config struct {
	Cap         int           `mapstructure:"cap"`
	SearchLimit int           `mapstructure:"search-limit"`
	Pause       time.Duration `mapstructure:"pause"`
}

// Deps are the collaborators of a Collector. Filters and Metrics are optional.
type Deps struct {
	Skills  SkillSource
	Search  Searcher
	Matcher SkillMatcher
	Jobs    JobWriter
	Filters []filtering.Filter
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// ResumeReport summarizes the pass over one resume.
type ResumeReport struct {
	ResumeID string
	UserID   string
	Searches int
	Matched  int
	Stored   int
	Err      error
}

// Report summarizes a whole run.
type Report struct {
	Resumes   int
	Stored    int
	Failed    int
	PerResume []ResumeReport
}

type Collector struct {
	deps Deps
	cfg  Config
	wait func(ctx context.Context, d time.Duration) error
}

func New(cfg *Config, deps Deps) (*Collector, error) {
	switch {
	case deps.Skills == nil:
		return nil, errors.New("skill source is required")
	case deps.Search == nil:
		return nil, errors.New("searcher is required")
	case deps.Matcher == nil:
		return nil, errors.New("matcher is required")
	case deps.Jobs == nil:
		return nil, errors.New("job writer is required")
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	c := &Collector{
		deps: deps,
		cfg: Config{
			Cap:         DefaultCap,
			SearchLimit: jsearch.DefaultLimit,
			Pause:       DefaultPause,
		},
		wait: utils.WaitFor,
	}

	if cfg != nil {
		if cfg.Cap > 0 {
			c.cfg.Cap = cfg.Cap
		}
		if cfg.SearchLimit > 0 {
			c.cfg.SearchLimit = cfg.SearchLimit
		}
		if cfg.Pause > 0 {
			c.cfg.Pause = cfg.Pause
		}
	}

	return c, nil
}

// FindAndStoreJobs runs one pass over every resume. Failures to read skills,
// to search or to store a batch are logged and never abort the run; only a
// cancelled context does.
func (c *Collector) FindAndStoreJobs(ctx context.Context) (*Report, error) {
	started := time.Now()
	defer func() { c.deps.Metrics.ObserveRun(time.Since(started)) }()

	report := &Report{}

	sets, err := c.deps.Skills.ResumeSkills(ctx)
	if err != nil {
		c.deps.Logger.Error("fetching resume skills", zap.Error(err))
		sets = nil
	}

	c.deps.Logger.Info("starting collection",
		zap.Int("resumes", len(sets)),
		zap.Int("cap", c.cfg.Cap),
	)

	for _, set := range sets {
		resume, err := c.processResume(ctx, set)
		report.Resumes++
		report.PerResume = append(report.PerResume, resume)
		report.Stored += resume.Stored
		if resume.Err != nil {
			report.Failed++
		}

		if err != nil {
			return report, err
		}
	}

	c.deps.Logger.Info("total jobs stored",
		zap.Int("total", report.Stored),
		zap.Int("resumes", report.Resumes),
		zap.Int("failed_writes", report.Failed),
	)

	return report, nil
}

// processResume returns an error only when the run must stop.
func (c *Collector) processResume(ctx context.Context, set store.ResumeSkillSet) (ResumeReport, error) {
	log := logger.WithResume(c.deps.Logger, set.ResumeID, set.UserID)
	report := ResumeReport{ResumeID: set.ResumeID, UserID: set.UserID}

	log.Info("processing resume", zap.Int("skills", len(set.Skills)))

	filtering.Reset(c.deps.Filters)
	accepted := make(map[string]struct{})
	var jobs []store.MatchedJob
	matched := 0

	for _, skill := range set.Skills {
		if matched >= c.cfg.Cap {
			break
		}

		result := c.deps.Search.Search(ctx, skill, c.cfg.SearchLimit)
		report.Searches++
		c.deps.Metrics.Search(result.Outcome.String())

		if err := c.wait(ctx, c.cfg.Pause); err != nil {
			return report, fmt.Errorf("waiting after search: %w", err)
		}

		skillLog := log.With(zap.String(logger.FieldSkill, skill))
		switch result.Outcome {
		case jsearch.OutcomeFailed:
			skillLog.Warn("search failed, treating as no results", zap.Error(result.Err))
			continue
		case jsearch.OutcomeEmpty:
			skillLog.Debug("search returned no postings")
			continue
		}

		postings, steps, err := filtering.Run(ctx, filtering.Deps{
			Logger:   skillLog,
			ResumeID: set.ResumeID,
			Accepted: accepted,
		}, c.deps.Filters, result.Postings)
		if err != nil {
			skillLog.Warn("filtering postings", zap.Error(err))
			continue
		}
		for _, step := range steps {
			c.deps.Metrics.Skipped(step.Name, step.Step.Dropped)
		}

		for _, posting := range postings.Items {
			if matched >= c.cfg.Cap {
				break
			}

			link, ok := posting.Link()
			if !ok {
				continue
			}

			found, err := c.deps.Matcher.Match(ctx, posting.Description, set.Skills)
			if err != nil {
				skillLog.Warn("matching degraded", zap.String(logger.FieldJobLink, link), zap.Error(err))
			}
			if found.Len() == 0 {
				continue
			}

			jobs = append(jobs, store.MatchedJob{
				UserID:      set.UserID,
				ResumeID:    set.ResumeID,
				JobID:       posting.JobID,
				Title:       posting.TitleOrDefault(),
				Company:     posting.CompanyOrDefault(),
				Description: posting.Description,
				JobLink:     link,
			})
			accepted[link] = struct{}{}
			matched++
			c.deps.Metrics.Matched()

			skillLog.Debug("posting matched", append(
				logger.JobFields(posting.TitleOrDefault(), posting.CompanyOrDefault(), link),
				zap.Strings("matched_skills", found.Sorted()),
				zap.String("description", utils.TruncateForLog(posting.Description, descriptionPreview)),
			)...)
		}
	}

	report.Matched = len(jobs)

	if len(jobs) == 0 {
		log.Info("no jobs matched", zap.Int("searches", report.Searches))
		return report, nil
	}

	if err := c.deps.Jobs.SaveJobs(ctx, jobs); err != nil {
		c.deps.Metrics.StoreFailed()
		report.Err = err
		log.Error("storing jobs", zap.Int("count", len(jobs)), zap.Error(err))
		return report, nil
	}

	c.deps.Metrics.Stored(len(jobs))
	report.Stored = len(jobs)
	log.Info("stored jobs", zap.Int("count", len(jobs)))

	return report, nil
}
