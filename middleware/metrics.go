package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	productQueryResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "product_query_results",
			Help:    "Number of products returned per price range query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	seedRecordsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_records_inserted_total",
			Help: "Total number of records inserted by the seeder",
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(productQueryResults)
	prometheus.MustRegister(seedRecordsInserted)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Label by route pattern so path parameters don't explode cardinality.
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func ObserveQueryResults(n int) {
	productQueryResults.Observe(float64(n))
}

func RecordSeedInserted(collection string, n int) {
	seedRecordsInserted.WithLabelValues(collection).Add(float64(n))
}
