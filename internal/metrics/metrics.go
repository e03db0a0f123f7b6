package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitepulse_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// UpstreamRequests counts calls to the upstream API by outcome.
	// status is the HTTP status class ("2xx", "4xx", ...) or "transport".
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_upstream_requests_total",
			Help: "Number of upstream API calls",
		},
		[]string{"method", "status"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitepulse_upstream_request_duration_seconds",
			Help:    "Duration of upstream API calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method"},
	)

	// CheckResults counts normalized check results
	CheckResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_check_results_total",
			Help: "Number of normalized health check results",
		},
		[]string{"check_type", "status"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCount, RequestDuration, UpstreamRequests, UpstreamDuration, CheckResults)
}

// StatusClass maps an HTTP status code to its class label.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "transport"
	}
}
