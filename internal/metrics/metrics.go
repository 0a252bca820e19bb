// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapePagesTotal           *prometheus.CounterVec
	scrapeItemsTotal           *prometheus.CounterVec
	scrapeRunDurationSeconds   *prometheus.HistogramVec
	scrapeRunsTotal            *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_pages_total",
				Help: "Total number of listing pages fetched, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		scrapeItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_items_total",
				Help: "Total number of items processed, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		scrapeRunDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrape_run_duration_seconds",
				Help:    "Histogram of full run durations, labeled by site.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
			[]string{"site"},
		)

		scrapeRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_runs_total",
				Help: "Total number of runs, labeled by site and result.",
			},
			[]string{"site", "result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the listing-page counter.
func ObservePage(site, status string) {
	scrapePagesTotal.WithLabelValues(site, status).Inc()
}

// ObserveItem increments the item counter for the given outcome.
func ObserveItem(site, outcome string) {
	scrapeItemsTotal.WithLabelValues(site, outcome).Inc()
}

// ObserveRun records the duration and result of one full run.
func ObserveRun(site, result string, duration time.Duration) {
	scrapeRunsTotal.WithLabelValues(site, result).Inc()
	scrapeRunDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
