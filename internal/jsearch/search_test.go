package jsearch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(zap.NewNop(), "test-key")
	c.APIURL = srv.URL
	c.HTTPClient = srv.Client()
	return c
}

func postingsJSON(n int) string {
	items := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]interface{}{
			"job_id":          fmt.Sprintf("id-%d", i),
			"job_title":       fmt.Sprintf("Job %d", i),
			"employer_name":   "Acme",
			"job_description": "Python developer wanted",
			"job_apply_link":  fmt.Sprintf("https://example.com/%d", i),
			"job_is_remote":   true,
		})
	}
	data, _ := json.Marshal(map[string]interface{}{"status": "OK", "request_id": "r1", "data": items})
	return string(data)
}

func TestSearchSendsQueryAndHeaders(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		fmt.Fprint(w, postingsJSON(1))
	})
	c.Params = &SearchParams{
		Country:         "us",
		WorkFromHome:    true,
		EmploymentTypes: []string{"FULLTIME", " ", "CONTRACTOR"},
	}

	result := c.Search(context.Background(), "Python", 0)
	if result.Outcome != OutcomeFound {
		t.Fatalf("expected found, got %s (%v)", result.Outcome, result.Err)
	}

	if got.URL.Path != SearchPath {
		t.Fatalf("unexpected path %q", got.URL.Path)
	}

	q := got.URL.Query()
	checks := map[string]string{
		"query":            "Python",
		"num_pages":        "1",
		"country":          "us",
		"work_from_home":   "true",
		"employment_types": "FULLTIME,CONTRACTOR",
	}
	for key, want := range checks {
		if q.Get(key) != want {
			t.Fatalf("expected %s=%q, got %q", key, want, q.Get(key))
		}
	}
	if q.Has("date_posted") {
		t.Fatalf("empty params must not be sent")
	}

	if got.Header.Get("X-RapidAPI-Key") != "test-key" {
		t.Fatalf("unexpected api key header %q", got.Header.Get("X-RapidAPI-Key"))
	}
	if got.Header.Get("X-RapidAPI-Host") != "jsearch.p.rapidapi.com" {
		t.Fatalf("unexpected api host header %q", got.Header.Get("X-RapidAPI-Host"))
	}

	posting := result.Postings.Items[0]
	if posting.Title != "Job 0" || posting.Company != "Acme" || !posting.IsRemote {
		t.Fatalf("unexpected posting: %+v", posting)
	}
}

func TestSearchTruncatesToLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, postingsJSON(15))
	})

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default limit", limit: 0, want: DefaultLimit},
		{name: "explicit limit", limit: 3, want: 3},
		{name: "limit above result size", limit: 20, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Search(context.Background(), "Go", tt.limit)
			if result.Postings.Len() != tt.want {
				t.Fatalf("expected %d postings, got %d", tt.want, result.Postings.Len())
			}
			if result.Postings.Items[0].JobID != "id-0" {
				t.Fatalf("expected order to be preserved, got %q first", result.Postings.Items[0].JobID)
			}
		})
	}
}

func TestSearchOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    Outcome
	}{
		{
			name: "empty data",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"status":"OK","data":[]}`)
			},
			want: OutcomeEmpty,
		},
		{
			name: "missing data",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"status":"OK"}`)
			},
			want: OutcomeEmpty,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: OutcomeFailed,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: OutcomeFailed,
		},
		{
			name: "broken body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"data": [`)
			},
			want: OutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			result := c.Search(context.Background(), "Go", 10)
			if result.Outcome != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, result.Outcome)
			}
			if result.Postings == nil || result.Postings.Len() != 0 {
				t.Fatalf("expected empty postings, got %+v", result.Postings)
			}
			if tt.want == OutcomeFailed && result.Err == nil {
				t.Fatalf("expected error for failed search")
			}
			if tt.want != OutcomeFailed && result.Err != nil {
				t.Fatalf("unexpected error: %v", result.Err)
			}
		})
	}
}

func TestSearchFailureCarriesHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	result := c.Search(context.Background(), "Go", 10)

	var httpErr *HTTPError
	if !errors.As(result.Err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", result.Err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || !httpErr.Temporary() {
		t.Fatalf("unexpected http error: %+v", httpErr)
	}
	if httpErr.RetryAfter.Seconds() != 7 {
		t.Fatalf("expected retry after 7s, got %s", httpErr.RetryAfter)
	}
}

func TestSearchDecodesGzip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		fmt.Fprint(gz, postingsJSON(2))
	})

	result := c.Search(context.Background(), "Go", 10)
	if result.Outcome != OutcomeFound || result.Postings.Len() != 2 {
		t.Fatalf("unexpected result: %s %v", result.Outcome, result.Err)
	}
}

func TestJobDetails(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "array data", body: `{"data":[{"job_id":"abc","job_description":"Build things"}]}`},
		{name: "object data", body: `{"data":{"job_id":"abc","job_description":"Build things"}}`},
		{name: "no data", body: `{"data":[]}`, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != DetailsPath || r.URL.Query().Get("job_id") != "abc" {
					t.Errorf("unexpected request %s", r.URL.String())
				}
				fmt.Fprint(w, tt.body)
			})

			posting, err := c.JobDetails(context.Background(), "abc")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(posting.Description, "Build") {
				t.Fatalf("unexpected description %q", posting.Description)
			}
		})
	}
}
