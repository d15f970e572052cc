package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks operational metrics for a service
type ServiceMetrics struct {
	mu              sync.RWMutex
	serviceName     string
	requestCount    int64
	successCount    int64
	errorCount      int64
	totalLatency    time.Duration
	lastRequestTime time.Time
	errorsByCode    map[string]int64
	startTime       time.Time
}

// NewServiceMetrics creates a metrics tracker for the named service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		serviceName:  serviceName,
		errorsByCode: make(map[string]int64),
		startTime:    time.Now(),
	}
}

// RecordRequest records a completed request with its outcome and latency
func (m *ServiceMetrics) RecordRequest(success bool, latency time.Duration, errorCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requestCount++
	m.totalLatency += latency
	m.lastRequestTime = time.Now()

	if success {
		m.successCount++
	} else {
		m.errorCount++
		if errorCode != "" {
			m.errorsByCode[errorCode]++
		}
	}
}

// Snapshot returns a point-in-time copy of the metrics
func (m *ServiceMetrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avgLatencyMs float64
	if m.requestCount > 0 {
		avgLatencyMs = float64(m.totalLatency.Milliseconds()) / float64(m.requestCount)
	}

	errorsByCode := make(map[string]int64, len(m.errorsByCode))
	for code, count := range m.errorsByCode {
		errorsByCode[code] = count
	}

	return map[string]interface{}{
		"service_name":   m.serviceName,
		"request_count":  m.requestCount,
		"success_count":  m.successCount,
		"error_count":    m.errorCount,
		"avg_latency_ms": avgLatencyMs,
		"errors_by_code": errorsByCode,
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// LogSummary logs the current metrics at info level
func (m *ServiceMetrics) LogSummary() {
	snapshot := m.Snapshot()
	logrus.WithFields(logrus.Fields(snapshot)).Info("Service metrics summary")
}
