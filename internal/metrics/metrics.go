package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes recorded by ObserveUpload.
const (
	OutcomeCreated      = "created"
	OutcomeRejected     = "rejected"
	OutcomeInvalidImage = "invalid_image"
	OutcomeStoreFailed  = "store_failed"
	OutcomeDBFailed     = "db_failed"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photomap",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photomap",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photomap",
		Name:      "uploads_total",
		Help:      "Image uploads by outcome.",
	}, []string{"outcome"})

	gpsLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photomap",
		Name:      "gps_lookups_total",
		Help:      "Processed images by whether a GPS position was found.",
	}, []string{"found"})

	initOnce sync.Once
)

// InitMetrics registers the collectors with the default Prometheus registry.
// Calling it more than once is harmless.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, uploads, gpsLookups)
	})
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpload counts one upload attempt ending in outcome.
func ObserveUpload(outcome string) {
	uploads.WithLabelValues(outcome).Inc()
}

// ObserveGPS counts one processed image by whether it carried a position.
func ObserveGPS(found bool) {
	gpsLookups.WithLabelValues(strconv.FormatBool(found)).Inc()
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
