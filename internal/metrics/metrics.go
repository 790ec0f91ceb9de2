package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pricetracker_web"

// Loader outcomes
const (
	OutcomeOK       = "ok"
	OutcomeRedirect = "redirect"
	OutcomeError    = "error"
)

var (
	// LoaderResults counts page loads by page and outcome.
	LoaderResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loader_results_total",
		Help:      "Page loader results by page and outcome.",
	}, []string{"page", "outcome"})

	// UpstreamDuration observes calls to the PriceTracker API.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of PriceTracker API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "status"})

	// DegradedFetches counts sub-fetches replaced by an empty result.
	DegradedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degraded_fetches_total",
		Help:      "Sub-fetches that failed and were replaced by an empty result.",
	}, []string{"resource"})

	// UpstreamUp is 1 while the last probe of the API succeeded.
	UpstreamUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "upstream_up",
		Help:      "Whether the last probe of the PriceTracker API succeeded.",
	})
)

// ObserveUpstream records an API call. A status of 0 means the request
// never got a response.
func ObserveUpstream(path string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamDuration.WithLabelValues(path, label).Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
