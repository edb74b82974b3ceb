package metric

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRegistryIsNoOp(t *testing.T) {
	var r *Registry

	// None of these may panic on a nil receiver.
	r.IncNodesCreated()
	r.IncDedupHits()
	r.IncBackLinksCreated()
	r.IncBackLinksSuppressed()
	r.IncNodesEmitted()
	r.IncReferencesEmitted()
	r.AddTriplesIndexed(10)
	r.IncQueriesExecuted()
	r.AddQueryRows(5)

	assert.Nil(t, r.PrometheusRegistry())
	assert.Nil(t, r.Serve(9999))
}

func TestCounters(t *testing.T) {
	r := NewRegistry()

	r.IncNodesCreated()
	r.IncNodesCreated()
	r.IncDedupHits()
	r.AddTriplesIndexed(7)
	r.AddQueryRows(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.NodesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DedupHits))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.TriplesIndexed))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.QueryRows))
}

func TestHandlerServesMetrics(t *testing.T) {
	r := NewRegistry()
	r.IncNodesCreated()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gtecetl_store_nodes_created_total 1")
}

func TestServeReturnsShutdownableServer(t *testing.T) {
	r := NewRegistry()

	srv := r.Serve(0)
	assert.Nil(t, srv, "port 0 disables the listener")

	srv = r.Serve(39301)
	require.NotNil(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
