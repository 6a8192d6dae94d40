package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	enhanceStartedTotal   atomic.Uint64
	enhanceSucceededTotal atomic.Uint64
	enhanceFailedTotal    atomic.Uint64
	sessionsActive        atomic.Int64

	runEventsReceivedTotal atomic.Uint64
	runEventsRecordedTotal atomic.Uint64
	runEventsDroppedTotal  atomic.Uint64
	runEventsFailedTotal   atomic.Uint64

	failuresMu     sync.Mutex
	failuresByKind = map[string]uint64{}

	enhanceDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncEnhanceStarted increments the started counter.
func IncEnhanceStarted() {
	enhanceStartedTotal.Add(1)
}

// IncEnhanceSucceeded increments the succeeded counter.
func IncEnhanceSucceeded() {
	enhanceSucceededTotal.Add(1)
}

// IncEnhanceFailed increments the failed counter and the per-kind breakdown.
func IncEnhanceFailed(kind string) {
	enhanceFailedTotal.Add(1)
	if kind == "" {
		kind = "unknown"
	}
	failuresMu.Lock()
	failuresByKind[kind]++
	failuresMu.Unlock()
}

// ObserveEnhanceDurationMs records an enhancement duration in milliseconds.
func ObserveEnhanceDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	enhanceDuration.Observe(value)
}

// IncRunEventsReceived increments the consumed run event counter.
func IncRunEventsReceived() {
	runEventsReceivedTotal.Add(1)
}

// IncRunEventsRecorded increments the counter of events written to the ledger.
func IncRunEventsRecorded() {
	runEventsRecordedTotal.Add(1)
}

// IncRunEventsDropped increments the counter of unusable events deleted from the queue.
func IncRunEventsDropped() {
	runEventsDroppedTotal.Add(1)
}

// IncRunEventsFailed increments the counter of events left for redelivery.
func IncRunEventsFailed() {
	runEventsFailedTotal.Add(1)
}

// SetSessionsActive records the number of live editing sessions.
func SetSessionsActive(n int) {
	sessionsActive.Store(int64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "enhance_started_total", "Total enhancement attempts started", enhanceStartedTotal.Load())
	writeCounter(&buf, "enhance_succeeded_total", "Total enhancement attempts that returned a candidate", enhanceSucceededTotal.Load())
	writeCounter(&buf, "enhance_failed_total", "Total enhancement attempts that failed", enhanceFailedTotal.Load())
	writeLabeledCounter(&buf, "enhance_failures_by_kind_total", "Failed enhancement attempts by error kind", "kind", failureSnapshot())
	writeCounter(&buf, "run_events_received_total", "Run events consumed from the queue", runEventsReceivedTotal.Load())
	writeCounter(&buf, "run_events_recorded_total", "Run events written to the run ledger", runEventsRecordedTotal.Load())
	writeCounter(&buf, "run_events_dropped_total", "Unusable run events deleted without recording", runEventsDroppedTotal.Load())
	writeCounter(&buf, "run_events_failed_total", "Run events left for redelivery after a ledger failure", runEventsFailedTotal.Load())
	writeGauge(&buf, "editor_sessions_active", "Live editing sessions", sessionsActive.Load())
	writeHistogram(&buf, "enhance_duration_ms", "Enhancement duration in milliseconds", enhanceDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeGauge(buf *bytes.Buffer, name, help string, value int64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func failureSnapshot() map[string]uint64 {
	failuresMu.Lock()
	defer failuresMu.Unlock()
	out := make(map[string]uint64, len(failuresByKind))
	for k, v := range failuresByKind {
		out[k] = v
	}
	return out
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
