package http

import (
	"time"

	"github.com/opencua/gateway/internal/infrastructure/monitoring"
)

// HandlerMetrics tracks session-level operation timings behind the
// handlers. Nil-safe so tests can run handlers without a collector.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track times one session operation. The returned func records the
// outcome; pass the operation's error.
func (hm *HandlerMetrics) Track(operation string) func(err error) {
	if hm == nil || hm.metrics == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		hm.metrics.RecordSessionOperation(operation, status, time.Since(start))
	}
}
