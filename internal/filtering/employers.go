package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/jsearch"
)

type employersFilter struct {
	employers map[string]struct{}
	names     []string
}

// NewExcludedEmployers creates a filter that removes postings of the given employers.
// Names are compared case-insensitively.
func NewExcludedEmployers(employers []string) Filter {
	f := &employersFilter{employers: make(map[string]struct{})}
	for _, name := range employers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f.employers[strings.ToLower(name)] = struct{}{}
		f.names = append(f.names, name)
	}
	return f
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) Disable(string) {}

func (f *employersFilter) IsEnabled() bool { return len(f.employers) > 0 }

func (f *employersFilter) Apply(_ context.Context, deps Deps, p *jsearch.Postings) (*jsearch.Postings, Step, error) {
	initial := p.Len()
	dropped := p.Keep(func(posting *jsearch.Posting) bool {
		_, excluded := f.employers[strings.ToLower(strings.TrimSpace(posting.Company))]
		return !excluded
	})

	if len(dropped) > 0 {
		deps.Logger.Debug("excluding postings by employers",
			zap.Strings("excluded_employers", f.names),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *employersFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["employers"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}
