// Package metrics exposes Prometheus metrics for capture sessions.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camcore",
		Subsystem: "capture",
		Name:      "frames_total",
		Help:      "Frames dequeued from the device",
	}, []string{"device"})

	frameBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camcore",
		Subsystem: "capture",
		Name:      "frame_bytes_total",
		Help:      "Payload bytes dequeued from the device",
	}, []string{"device"})

	captureErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camcore",
		Subsystem: "capture",
		Name:      "errors_total",
		Help:      "Capture errors per device",
	}, []string{"device"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "camcore",
		Subsystem: "capture",
		Name:      "sessions_active",
		Help:      "Capture sessions currently streaming",
	})

	// Local cache so the API can report per-device stats without
	// scraping the registry.
	statsCache   = make(map[string]*CaptureStats)
	statsCacheMu sync.RWMutex
)

// CaptureStats holds current counter values for one device.
type CaptureStats struct {
	Frames uint64
	Bytes  uint64
	Errors uint64
}

// RecordFrame counts one dequeued frame and its payload size.
func RecordFrame(device string, bytes int) {
	framesTotal.WithLabelValues(device).Inc()
	frameBytesTotal.WithLabelValues(device).Add(float64(bytes))
	updateCache(device, func(s *CaptureStats) {
		s.Frames++
		s.Bytes += uint64(bytes)
	})
}

// RecordCaptureError counts a failed dequeue or stream error.
func RecordCaptureError(device string) {
	captureErrorsTotal.WithLabelValues(device).Inc()
	updateCache(device, func(s *CaptureStats) { s.Errors++ })
}

// SessionStarted marks a session as streaming.
func SessionStarted() {
	sessionsActive.Inc()
}

// SessionStopped marks a session as no longer streaming.
func SessionStopped() {
	sessionsActive.Dec()
}

// DeleteDevice removes all metrics for an unplugged device.
func DeleteDevice(device string) {
	framesTotal.DeleteLabelValues(device)
	frameBytesTotal.DeleteLabelValues(device)
	captureErrorsTotal.DeleteLabelValues(device)

	statsCacheMu.Lock()
	delete(statsCache, device)
	statsCacheMu.Unlock()
}

// GetCaptureStats returns current counter values for a device, or nil
// if nothing has been recorded for it.
func GetCaptureStats(device string) *CaptureStats {
	statsCacheMu.RLock()
	defer statsCacheMu.RUnlock()
	if s, ok := statsCache[device]; ok {
		dup := *s
		return &dup
	}
	return nil
}

// Handler returns the Prometheus scrape handler. All promauto-registered
// metrics are collected automatically.
func Handler() http.Handler {
	return promhttp.Handler()
}

func updateCache(device string, update func(*CaptureStats)) {
	statsCacheMu.Lock()
	defer statsCacheMu.Unlock()
	s, ok := statsCache[device]
	if !ok {
		s = &CaptureStats{}
		statsCache[device] = s
	}
	update(s)
}
