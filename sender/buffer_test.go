package sender

import (
	"log/slog"
	"testing"

	"github.com/statsbridge/statsbridge/metrics"
	"github.com/stretchr/testify/assert"
)

func TestBuffer_AppendDrain(t *testing.T) {
	b := NewBuffer(0, metrics.NoopMetrics{}, slog.Default())

	assert.Empty(t, b.Drain())

	b.Append("a 1 1", "b 2 1")
	b.Append()
	b.Append("c 3 1")

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []string{"a 1 1", "b 2 1", "c 3 1"}, b.Drain())
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Drain())
}

func TestBuffer_Prepend(t *testing.T) {
	b := NewBuffer(0, metrics.NoopMetrics{}, slog.Default())

	b.Append("new 1 2")
	b.Prepend([]string{"old 1 1", "old 2 1"})

	assert.Equal(t, []string{"old 1 1", "old 2 1", "new 1 2"}, b.Drain())
}

func TestBuffer_MaxLines(t *testing.T) {
	m := metrics.NewMetrics(nil, 10, slog.Default())
	b := NewBuffer(3, m, slog.Default())

	b.Append("1", "2")
	b.Append("3", "4", "5")

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, uint64(3), m.Gauge("buffer_lines").Value())
	assert.Equal(t, uint64(2), m.Counter("dropped_lines_total").Value())

	b.Prepend([]string{"0"})

	assert.Equal(t, []string{"3", "4", "5"}, b.Drain())
	assert.Equal(t, uint64(3), m.Counter("dropped_lines_total").Value())
	assert.Equal(t, uint64(0), m.Gauge("buffer_lines").Value())
}
