package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicenotes_http_requests_total",
			Help: "HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voicenotes_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	uploadRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicenotes_upload_rejections_total",
			Help: "Upload validation rejections by kind",
		},
		[]string{"kind"},
	)

	uploadsAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicenotes_uploads_accepted_total",
			Help: "Uploads that passed the full validation pipeline",
		},
	)

	transcriptionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voicenotes_transcription_duration_seconds",
			Help:    "Wall-clock time spent in the transcription collaborator",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

// Metrics records request counts and latency for every route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath gives the route template, keeping label cardinality
		// bounded even under hostile path input.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// RecordRejection counts an upload rejection by its kind label.
func RecordRejection(kind string) {
	uploadRejectionsTotal.WithLabelValues(kind).Inc()
}

// RecordAccepted counts an upload that passed validation.
func RecordAccepted() {
	uploadsAcceptedTotal.Inc()
}

// ObserveTranscription records the duration of one transcription call.
func ObserveTranscription(d time.Duration) {
	transcriptionDuration.Observe(d.Seconds())
}
