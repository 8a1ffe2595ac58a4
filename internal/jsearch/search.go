package jsearch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchPath  = "/search"
	DetailsPath = "/job-details"
)

// ErrNotFound is returned by JobDetails when the API has no such job.
var ErrNotFound = errors.New("job not found")

// SearchParams holds optional filters sent with every search.
type SearchParams struct {
	// jsparam is custom tag for reflect. Please see buildParams.
	Country           string   `jsparam:"country" mapstructure:"country"`
	Language          string   `jsparam:"language" mapstructure:"language"`
	DatePosted        string   `jsparam:"date_posted" mapstructure:"date-posted"`
	WorkFromHome      bool     `jsparam:"work_from_home" mapstructure:"work-from-home"`
	EmploymentTypes   []string `jsparam:"employment_types" mapstructure:"employment-types"`
	ExcludePublishers []string `jsparam:"exclude_job_publishers" mapstructure:"exclude-publishers"`
}

// Outcome classifies a search call.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SearchResult is the explicit result of a single search call.
// Postings is never nil and is empty unless Outcome is OutcomeFound.
type SearchResult struct {
	Query    string
	Postings *Postings
	Outcome  Outcome
	Err      error
}

// Search queries JSearch for the given text and keeps at most limit postings.
// A non-positive limit means DefaultLimit. Failures are reported through the
// result, never retried.
func (c *Client) Search(ctx context.Context, query string, limit int) *SearchResult {
	result := &SearchResult{Query: query, Postings: &Postings{}}

	if limit <= 0 {
		limit = DefaultLimit
	}

	data, err := c.GetData(ctx, SearchPath, c.searchQuery(query))
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("search %q: %w", query, err)
		return result
	}

	items, err := decodePostings(data)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("search %q: %w", query, err)
		return result
	}

	if len(items) > limit {
		items = items[:limit]
	}

	result.Postings.Items = items
	if len(items) == 0 {
		result.Outcome = OutcomeEmpty
		return result
	}

	result.Outcome = OutcomeFound
	return result
}

// JobDetails fetches a single posting by its JSearch job id.
func (c *Client) JobDetails(ctx context.Context, jobID string) (*Posting, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.New("job id is required")
	}

	q := url.Values{}
	q.Set("job_id", jobID)

	data, err := c.GetData(ctx, DetailsPath, q)
	if err != nil {
		return nil, fmt.Errorf("job details %q: %w", jobID, err)
	}

	// job-details answers with a one-element array, older versions with an object.
	if obj, ok := data.(map[string]interface{}); ok {
		data = []interface{}{obj}
	}

	items, err := decodePostings(data)
	if err != nil {
		return nil, fmt.Errorf("job details %q: %w", jobID, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("job details %q: %w", jobID, ErrNotFound)
	}

	return items[0], nil
}

func (c *Client) searchQuery(query string) url.Values {
	q := buildParams(c.Params)
	q.Set("query", query)

	pages := c.NumPages
	if pages <= 0 {
		pages = defaultPages
	}
	q.Set("num_pages", strconv.Itoa(pages))

	return q
}

func decodePostings(data interface{}) ([]*Posting, error) {
	var postings []*Posting
	if data == nil {
		return postings, nil
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &postings,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode postings: %w", err)
	}

	// null entries in data decode as nil pointers
	items := postings[:0]
	for _, p := range postings {
		if p != nil {
			items = append(items, p)
		}
	}

	return items, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	if params == nil {
		return q
	}

	value := reflect.ValueOf(params).Elem()
	for _, field := range reflect.VisibleFields(value.Type()) {
		key := field.Tag.Get("jsparam")
		if key == "" {
			continue
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case []string:
			// JSearch expects comma separated lists.
			values := make([]string, 0, len(v))
			for _, s := range v {
				if s = strings.TrimSpace(s); s != "" {
					values = append(values, s)
				}
			}
			if len(values) > 0 {
				q.Set(key, strings.Join(values, ","))
			}
		case bool:
			if v {
				q.Set(key, "true")
			}
		default:
			s := strings.TrimSpace(fmt.Sprintf("%v", v))
			if s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}
