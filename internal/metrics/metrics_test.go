package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Search("found")
	m.Search("found")
	m.Search("failed")
	m.Skipped("apply_link", 3)
	m.Skipped("employers", 0)
	m.Matched()
	m.Stored(2)
	m.StoreFailed()
	m.ObserveRun(30 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Searches.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PostingsSkipped.WithLabelValues("apply_link")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Matches))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobsStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreWrites.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreWrites.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PostingsSkipped), "zero skips must not create a series")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Search("found")
		m.Skipped("apply_link", 1)
		m.Matched()
		m.Stored(1)
		m.StoreFailed()
		m.ObserveRun(time.Second)
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Stored(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "jobmatcher_jobs_stored_total 3")
}
