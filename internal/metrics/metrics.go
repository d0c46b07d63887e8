// Package metrics provides Prometheus metrics for the Canto adapter.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cantofal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cantofal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cantofal_cache_lookups_total",
			Help: "Resource cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	cacheFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cantofal_cache_flushes_total",
			Help: "Storage cache tag flushes",
		},
	)

	rpcCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cantofal_rpc_calls_total",
			Help: "Canto API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	batchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cantofal_batch_items_total",
			Help: "Batch job items by job and result",
		},
		[]string{"job", "result"},
	)

	batchPausesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cantofal_batch_pauses_total",
			Help: "Rate limit pauses taken by batch jobs",
		},
		[]string{"job"},
	)

	uploadTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cantofal_upload_timeouts_total",
			Help: "Uploads that were not processed within the poll budget",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// GinMiddleware records every request using the route template as path label
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordCacheFlush records a tag flush.
func RecordCacheFlush() {
	cacheFlushesTotal.Inc()
}

// RecordRPC records a Canto API call.
func RecordRPC(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcCallsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordBatchItem records one processed batch item.
func RecordBatchItem(job string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	batchItemsTotal.WithLabelValues(job, result).Inc()
}

// RecordBatchPause records a rate limit pause.
func RecordBatchPause(job string) {
	batchPausesTotal.WithLabelValues(job).Inc()
}

// RecordUploadTimeout records an upload that did not finish processing in time.
func RecordUploadTimeout() {
	uploadTimeoutsTotal.Inc()
}
