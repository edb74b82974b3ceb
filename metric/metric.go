// Package metric provides run metrics for the conversion and query
// pipeline, backed by Prometheus counters. A nil *Registry is a valid
// no-op receiver so that core packages can record metrics without caring
// whether a registry was wired in.
package metric

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gtecetl"

// Registry owns the Prometheus registry and the pipeline counters.
type Registry struct {
	registry *prometheus.Registry

	// Node store counters
	NodesCreated        prometheus.Counter
	DedupHits           prometheus.Counter
	BackLinksCreated    prometheus.Counter
	BackLinksSuppressed prometheus.Counter

	// Serialization and index counters
	NodesEmitted      prometheus.Counter
	ReferencesEmitted prometheus.Counter
	TriplesIndexed    prometheus.Counter

	// Query counters
	QueriesExecuted prometheus.Counter
	QueryRows       prometheus.Counter
}

// NewRegistry creates a registry with all pipeline counters registered,
// plus the standard Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "nodes_created_total",
			Help:      "Total number of canonical nodes registered in the object store",
		}),
		DedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "dedup_hits_total",
			Help:      "Total number of node creations resolved to an existing canonical node",
		}),
		BackLinksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "backlinks_created_total",
			Help:      "Total number of back-link characteristics appended",
		}),
		BackLinksSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "backlinks_suppressed_total",
			Help:      "Total number of back-links skipped because back-links are disabled",
		}),
		NodesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "nodes_emitted_total",
			Help:      "Total number of full node emissions in serialized documents",
		}),
		ReferencesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "references_emitted_total",
			Help:      "Total number of reference emissions in serialized documents",
		}),
		TriplesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "triples_total",
			Help:      "Total number of triples extracted into the index",
		}),
		QueriesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "executed_total",
			Help:      "Total number of join chains executed",
		}),
		QueryRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "rows_total",
			Help:      "Total number of result rows produced",
		}),
	}

	reg.MustRegister(
		r.NodesCreated,
		r.DedupHits,
		r.BackLinksCreated,
		r.BackLinksSuppressed,
		r.NodesEmitted,
		r.ReferencesEmitted,
		r.TriplesIndexed,
		r.QueriesExecuted,
		r.QueryRows,
	)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler returns an HTTP handler exposing the registry in the Prometheus
// text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on the given port in a background goroutine and
// returns the server so the caller can shut it down. Port 0 disables the
// listener and returns nil.
func (r *Registry) Serve(port int) *http.Server {
	if r == nil || port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		// ErrServerClosed on shutdown is expected; anything else is a
		// debug-listener failure and must not abort the run.
		_ = srv.ListenAndServe()
	}()
	return srv
}

// add increments a counter if the registry is non-nil.
func (r *Registry) add(c prometheus.Counter, n float64) {
	if r == nil || c == nil {
		return
	}
	c.Add(n)
}

// IncNodesCreated records a new canonical node registration.
func (r *Registry) IncNodesCreated() {
	if r == nil {
		return
	}
	r.add(r.NodesCreated, 1)
}

// IncDedupHits records a node creation resolved to an existing node.
func (r *Registry) IncDedupHits() {
	if r == nil {
		return
	}
	r.add(r.DedupHits, 1)
}

// IncBackLinksCreated records an appended back-link.
func (r *Registry) IncBackLinksCreated() {
	if r == nil {
		return
	}
	r.add(r.BackLinksCreated, 1)
}

// IncBackLinksSuppressed records a skipped back-link.
func (r *Registry) IncBackLinksSuppressed() {
	if r == nil {
		return
	}
	r.add(r.BackLinksSuppressed, 1)
}

// IncNodesEmitted records a full node emission.
func (r *Registry) IncNodesEmitted() {
	if r == nil {
		return
	}
	r.add(r.NodesEmitted, 1)
}

// IncReferencesEmitted records a reference emission.
func (r *Registry) IncReferencesEmitted() {
	if r == nil {
		return
	}
	r.add(r.ReferencesEmitted, 1)
}

// AddTriplesIndexed records n triples extracted into an index.
func (r *Registry) AddTriplesIndexed(n int) {
	if r == nil {
		return
	}
	r.add(r.TriplesIndexed, float64(n))
}

// IncQueriesExecuted records one executed join chain.
func (r *Registry) IncQueriesExecuted() {
	if r == nil {
		return
	}
	r.add(r.QueriesExecuted, 1)
}

// AddQueryRows records n produced result rows.
func (r *Registry) AddQueryRows(n int) {
	if r == nil {
		return
	}
	r.add(r.QueryRows, float64(n))
}
