// Package aggregator folds parsed statsd samples into per-window stores
// and renders them as Graphite plaintext lines on flush.
package aggregator

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/statsbridge/statsbridge/metrics"
	"github.com/statsbridge/statsbridge/statsd"
	"github.com/statsbridge/statsbridge/utils"
)

const (
	metricsSamples      = "samples_total"
	metricsInvalidPaths = "invalid_paths_total"
	metricsFlushedLines = "flushed_lines_total"
)

// Snapshot is a copy of the aggregated values of the current window
type Snapshot struct {
	Gauges   map[string]float64
	Counters map[string]float64
	Timers   map[string][]float64
}

// Aggregator stores gauges, counters and timers between flushes.
// All methods are safe for concurrent use.
type Aggregator struct {
	config     Config
	clientName string

	mu       sync.Mutex
	gauges   map[string]float64
	counters map[string]float64
	timers   map[string][]float64

	metrics metrics.Instrumenter
	log     *slog.Logger
}

// NewAggregator builds a new aggregator.
// The client name is only used as a path prefix when AddClientPrefix is set.
func NewAggregator(c Config, clientName string, m metrics.Instrumenter, l *slog.Logger) *Aggregator {
	a := &Aggregator{
		config:     c,
		clientName: clientName,
		gauges:     make(map[string]float64),
		counters:   make(map[string]float64),
		timers:     make(map[string][]float64),
		metrics:    m,
		log:        l.With("context", "aggregator"),
	}

	a.registerMetrics()

	return a
}

// Add folds a sample into the current window:
// gauges are replaced, counters are scaled by the sample rate and summed, timers are appended
func (a *Aggregator) Add(s statsd.Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch s.Kind {
	case statsd.Gauge:
		a.gauges[s.Name] = s.Value
	case statsd.Counter:
		rate := s.SampleRate
		if rate <= 0 || rate > 1 {
			rate = 1
		}

		current, ok := a.counters[s.Name]
		if !ok {
			current = 0
		}

		a.counters[s.Name] = current + s.Value*(1/rate)
	case statsd.Timer:
		values, ok := a.timers[s.Name]
		if !ok {
			values = make([]float64, 0, 1)
		}

		a.timers[s.Name] = append(values, s.Value)
	default:
		a.log.Warn("unknown sample kind", "kind", s.Kind, "name", s.Name)
		return
	}

	a.metrics.CounterIncrement(metricsSamples)
}

// Flush takes away all the aggregated values and returns them rendered as
// "<path> <value> <timestamp>" lines: gauges first, then counters, then timers.
// Flushing an empty window returns no lines.
func (a *Aggregator) Flush(now time.Time) []string {
	a.mu.Lock()
	gauges, counters, timers := a.gauges, a.counters, a.timers
	a.gauges = make(map[string]float64)
	a.counters = make(map[string]float64)
	a.timers = make(map[string][]float64)
	a.mu.Unlock()

	ts := strconv.FormatInt(now.Unix(), 10)
	lines := make([]string, 0, len(gauges)+len(counters)+len(timers)*4)

	emit := func(path string, value float64) {
		if !statsd.ValidPath(path) {
			a.log.Info("skip metric with invalid path", "path", path, "value", FormatValue(value))
			a.metrics.CounterIncrement(metricsInvalidPaths)
			return
		}

		lines = append(lines, path+" "+FormatValue(value)+" "+ts)
	}

	gaugesLabel := a.config.GaugesLabel()

	for _, name := range utils.SortedKeys(gauges) {
		emit(a.path(gaugesLabel, name), gauges[name])
	}

	for _, name := range utils.SortedKeys(counters) {
		emit(a.path("counters", name), counters[name])
	}

	pctLabel := "upper_" + strconv.Itoa(a.config.Percentile)

	for _, name := range utils.SortedKeys(timers) {
		values := timers[name]

		if len(values) == 0 {
			continue
		}

		stats := ComputeTimerStats(values, a.config.Percentile)

		emit(a.path("timers", name, "lower"), stats.Lower)
		emit(a.path("timers", name, "mean"), stats.Mean)
		emit(a.path("timers", name, "upper"), stats.Upper)
		emit(a.path("timers", name, pctLabel), stats.UpperPct)
	}

	if len(lines) > 0 {
		a.metrics.CounterAdd(metricsFlushedLines, uint64(len(lines)))
		a.log.Debug("flushed metrics", "lines", len(lines))
	}

	return lines
}

// Snapshot returns a copy of the current window
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Snapshot{
		Gauges:   make(map[string]float64, len(a.gauges)),
		Counters: make(map[string]float64, len(a.counters)),
		Timers:   make(map[string][]float64, len(a.timers)),
	}

	for k, v := range a.gauges {
		s.Gauges[k] = v
	}

	for k, v := range a.counters {
		s.Counters[k] = v
	}

	for k, v := range a.timers {
		s.Timers[k] = append([]float64(nil), v...)
	}

	return s
}

// FormatValue returns the shortest decimal representation of the value (8, 12.5, 0.001)
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (a *Aggregator) path(label string, name string, suffix ...string) string {
	segments := make([]string, 0, 5)

	if a.config.AddClientPrefix && a.clientName != "" {
		segments = append(segments, a.clientName)
	}

	if prefix := strings.Trim(a.config.PathPrefix, "."); prefix != "" {
		segments = append(segments, prefix)
	}

	segments = append(segments, label, name)
	segments = append(segments, suffix...)

	return strings.Join(segments, ".")
}

func (a *Aggregator) registerMetrics() {
	a.metrics.RegisterCounter(metricsSamples, "The total number of aggregated samples")
	a.metrics.RegisterCounter(metricsInvalidPaths, "The total number of metrics dropped on flush due to invalid paths")
	a.metrics.RegisterCounter(metricsFlushedLines, "The total number of rendered metric lines")
}
