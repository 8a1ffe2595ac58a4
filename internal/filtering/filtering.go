package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/jsearch"
)

// Filter represents a single filtering step applied to search results.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, p *jsearch.Postings) (*jsearch.Postings, Step, error)
}

// Deps carries the per-resume context shared across all filtering steps.
type Deps struct {
	Logger   *zap.Logger
	ResumeID string
	// Accepted holds links already matched for the resume during this run.
	Accepted map[string]struct{}
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Report is the outcome of one step inside Run.
type Report struct {
	Name string
	Step Step
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// resetter is implemented by filters that keep per-resume state.
type resetter interface {
	Reset()
}

// Reset clears per-resume state of the filters. Call it before each resume.
func Reset(steps []Filter) {
	for _, step := range steps {
		if r, ok := step.(resetter); ok {
			r.Reset()
		}
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the postings left.
func Run(ctx context.Context, deps Deps, steps []Filter, p *jsearch.Postings) (*jsearch.Postings, []Report, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	reports := make([]Report, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, reports, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if info.Dropped > 0 {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		reports = append(reports, Report{Name: step.Name(), Step: info})
		p = next
	}

	return p, reports, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
