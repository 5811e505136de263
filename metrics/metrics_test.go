package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Mutations(t *testing.T) {
	c := NewCollector("test")

	c.MutationQueued()
	c.MutationQueued()
	c.MutationDone("insert", "committed")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.PendingMutations))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Mutations.WithLabelValues("insert", "committed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Mutations.WithLabelValues("insert", "failed")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("test")
	c.CompletionDone("success", 200*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_completion_requests_total{outcome="success"} 1`)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.MutationQueued()
		c.MutationDone("insert", "failed")
		c.CompletionDone("failure", time.Second)
		c.HTTPDone(http.MethodGet, http.StatusOK, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
