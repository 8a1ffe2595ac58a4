package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/jsearch"
)

// LinkLookup returns the application links already stored for a resume.
type LinkLookup interface {
	StoredLinks(ctx context.Context, resumeID string) (map[string]struct{}, error)
}

type alreadyStoredFilter struct {
	lookup   LinkLookup
	disabled bool
	reason   string

	// loaded on the first Apply after Reset
	stored map[string]struct{}
}

// NewAlreadyStored creates a filter that removes postings already stored for
// the resume or already accepted earlier in the run.
func NewAlreadyStored(lookup LinkLookup) Filter {
	return &alreadyStoredFilter{lookup: lookup}
}

func (f *alreadyStoredFilter) Name() string { return "already_stored" }

func (f *alreadyStoredFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *alreadyStoredFilter) IsEnabled() bool { return !f.disabled }

func (f *alreadyStoredFilter) Apply(ctx context.Context, deps Deps, p *jsearch.Postings) (*jsearch.Postings, Step, error) {
	initial := p.Len()
	stored := f.storedLinks(ctx, deps)

	dropped := p.Keep(func(posting *jsearch.Posting) bool {
		link, _ := posting.Link()
		if _, ok := stored[link]; ok {
			return false
		}
		_, ok := deps.Accepted[link]
		return !ok
	})

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *alreadyStoredFilter) storedLinks(ctx context.Context, deps Deps) map[string]struct{} {
	if f.lookup == nil {
		return nil
	}
	if f.stored != nil {
		return f.stored
	}

	links, err := f.lookup.StoredLinks(ctx, deps.ResumeID)
	if err != nil {
		// accepted links of the current run still apply
		deps.Logger.Warn("loading stored links", zap.String("resume_id", deps.ResumeID), zap.Error(err))
		links = map[string]struct{}{}
	}

	f.stored = links
	return links
}

// Reset forgets the stored links so the next Apply reads them again.
func (f *alreadyStoredFilter) Reset() {
	f.stored = nil
}

func (f *alreadyStoredFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
