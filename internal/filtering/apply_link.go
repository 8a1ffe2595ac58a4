package filtering

import (
	"context"

	"github.com/spigell/job-matcher/internal/jsearch"
)

type applyLinkFilter struct{}

// NewApplyLink creates a filter that removes postings without a usable application link.
func NewApplyLink() Filter {
	return &applyLinkFilter{}
}

func (f *applyLinkFilter) Name() string { return "apply_link" }

// Disable is a no-op. A posting without a link can never be stored.
func (f *applyLinkFilter) Disable(string) {}

func (f *applyLinkFilter) IsEnabled() bool { return true }

func (f *applyLinkFilter) Apply(_ context.Context, _ Deps, p *jsearch.Postings) (*jsearch.Postings, Step, error) {
	initial := p.Len()
	dropped := p.Keep(func(posting *jsearch.Posting) bool {
		_, ok := posting.Link()
		return ok
	})

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}
