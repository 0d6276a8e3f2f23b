package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// TrainingEvents 培训状态变更事件计数（unlock / start / complete / assign / remove）
	TrainingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_events_total",
			Help: "Training lifecycle transitions",
		},
		[]string{"event"},
	)

	OverdueAssignments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_overdue_assignments",
			Help: "Open training assignments whose due date has passed",
		},
	)
)

const (
	EventAssigned  = "assigned"
	EventUnlocked  = "unlocked"
	EventStarted   = "started"
	EventCompleted = "completed"
	EventRemoved   = "removed"
	EventQRIssued  = "qr_issued"
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(TrainingEvents)
		prometheus.MustRegister(OverdueAssignments)
	})
}

func RecordTrainingEvent(event string) {
	TrainingEvents.WithLabelValues(event).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
