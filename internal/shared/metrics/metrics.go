package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	documentsIngestedTotal         atomic.Uint64
	documentsExtractionFailedTotal atomic.Uint64
	summariesGeneratedTotal        atomic.Uint64
	summariesFailedTotal           atomic.Uint64

	summarizeDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncDocumentsIngested counts a stored upload.
func IncDocumentsIngested() {
	documentsIngestedTotal.Add(1)
}

// IncExtractionFailed counts an upload or re-extraction the PDF parser rejected.
func IncExtractionFailed() {
	documentsExtractionFailedTotal.Add(1)
}

// IncSummaryGenerated counts a summary returned by the provider.
func IncSummaryGenerated() {
	summariesGeneratedTotal.Add(1)
}

// IncSummaryFailed counts a summarization stored as a failure placeholder.
func IncSummaryFailed() {
	summariesFailedTotal.Add(1)
}

// ObserveSummarizeDurationMs records a provider round trip in milliseconds.
func ObserveSummarizeDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	summarizeDuration.Observe(value)
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
	writeCounter(&buf, "documents_ingested_total", "Total documents ingested", documentsIngestedTotal.Load())
	writeCounter(&buf, "documents_extraction_failed_total", "Total PDF extractions that failed", documentsExtractionFailedTotal.Load())
	writeCounter(&buf, "summaries_generated_total", "Total summaries generated", summariesGeneratedTotal.Load())
	writeCounter(&buf, "summaries_failed_total", "Total summaries stored as failure placeholders", summariesFailedTotal.Load())
	writeHistogram(&buf, "summarize_duration_ms", "Summarization round trip in milliseconds", summarizeDuration.Snapshot())
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

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	// Observe already counts a value in every bucket whose bound it fits under.
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), snap.counts[i])
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

// SinceMillis returns the milliseconds elapsed since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
