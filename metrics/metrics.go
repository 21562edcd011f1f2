// Package metrics exposes Prometheus instrumentation for mamgo services and
// a small standalone metrics HTTP server that the BaseServer runs alongside
// the API listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesPublished counts messages masked and attached to the tangle.
	MessagesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mamgo",
		Name:      "messages_published_total",
		Help:      "Number of channel messages published.",
	})

	// MessagesFetched counts messages decoded during chain traversal.
	MessagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mamgo",
		Name:      "messages_fetched_total",
		Help:      "Number of channel messages fetched and decoded.",
	})

	// PollsSkipped counts listener polls skipped because the previous poll
	// for the same subscription was still in flight.
	PollsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mamgo",
		Name:      "listener_polls_skipped_total",
		Help:      "Number of subscription polls skipped due to an in-flight poll.",
	})

	// BundlesAbandoned counts incomplete fragment bundles evicted from the
	// reassembly cache before completing.
	BundlesAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mamgo",
		Name:      "bundles_abandoned_total",
		Help:      "Number of incomplete bundles evicted from the fragment cache.",
	})

	// SubmissionErrors counts failed tangle submissions.
	SubmissionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mamgo",
		Name:      "submission_errors_total",
		Help:      "Number of failed attach operations.",
	})
)

// MetricsServer serves the Prometheus scrape endpoint on its own listener.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name and listen address.
// The address may be empty; the caller is expected to skip ListenAndServe in
// that case.
func New(name, addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
