package sender

import (
	"log/slog"
	"sync"

	"github.com/statsbridge/statsbridge/metrics"
)

const (
	metricsBufferLines  = "buffer_lines"
	metricsDroppedLines = "dropped_lines_total"
)

// Buffer is an ordered list of finished metric lines waiting to be sent
type Buffer struct {
	mu    sync.Mutex
	lines []string
	max   int

	metrics metrics.Instrumenter
	log     *slog.Logger
}

// NewBuffer creates a buffer holding at most max lines (0 means unlimited)
func NewBuffer(max int, m metrics.Instrumenter, l *slog.Logger) *Buffer {
	b := &Buffer{
		max:     max,
		metrics: m,
		log:     l.With("context", "buffer"),
	}

	b.metrics.RegisterGauge(metricsBufferLines, "The number of lines waiting to be sent")
	b.metrics.RegisterCounter(metricsDroppedLines, "The total number of lines dropped due to the buffer limit or publish failures")

	return b
}

// Append adds lines to the end of the buffer
func (b *Buffer) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, lines...)
	b.truncate()
}

// Prepend puts lines back to the head of the buffer, preserving their order
func (b *Buffer) Prepend(lines []string) {
	if len(lines) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]string, 0, len(lines)+len(b.lines))
	merged = append(merged, lines...)
	b.lines = append(merged, b.lines...)
	b.truncate()
}

// Drain returns all buffered lines and empties the buffer
func (b *Buffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := b.lines
	b.lines = nil
	b.metrics.GaugeSet(metricsBufferLines, 0)

	return lines
}

// Len returns the number of buffered lines
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.lines)
}

// Drop accounts lines discarded outside of the buffer
func (b *Buffer) Drop(n int) {
	b.metrics.CounterAdd(metricsDroppedLines, uint64(n))
}

func (b *Buffer) truncate() {
	if b.max > 0 && len(b.lines) > b.max {
		overflow := len(b.lines) - b.max
		b.lines = append([]string(nil), b.lines[overflow:]...)

		b.log.Warn("outgoing buffer is full, dropping oldest lines", "dropped", overflow, "max", b.max)
		b.metrics.CounterAdd(metricsDroppedLines, uint64(overflow))
	}

	b.metrics.GaugeSet(metricsBufferLines, uint64(len(b.lines)))
}
