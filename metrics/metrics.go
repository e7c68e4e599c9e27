package metrics

import (
	"log/slog"
	"sync"
	"time"
)

// IntervalWriter describes a periodical metrics writer interface
type IntervalWriter interface {
	Run(interval int) error
	Stop()
	Write(m *Metrics) error
}

// Instrumenter is the interface components use to report internal stats
type Instrumenter interface {
	CounterIncrement(name string)
	CounterAdd(name string, val uint64)
	GaugeSet(name string, val uint64)
	GaugeIncrement(name string)
	GaugeDecrement(name string)
	RegisterCounter(name string, desc string)
	RegisterGauge(name string, desc string)
}

// Metrics stores internal stats of the service (received chunks, dropped lines, publish failures, etc.)
type Metrics struct {
	mu             sync.RWMutex
	writers        []IntervalWriter
	rotateInterval time.Duration
	counters       map[string]*Counter
	gauges         map[string]*Gauge
	shutdownCh     chan struct{}
	stopped        bool
	log            *slog.Logger
}

var _ Instrumenter = (*Metrics)(nil)

// FromConfig creates a new metrics instance from the provided configuration
func FromConfig(config *Config, l *slog.Logger) *Metrics {
	writers := []IntervalWriter{}

	if config.Log {
		writers = append(writers, NewBasePrinter(config.LogFilter, l))
	}

	if config.Statsd.Enabled() {
		writers = append(writers, NewStatsdWriter(config.Statsd, l))
	}

	return NewMetrics(writers, config.RotateInterval, l)
}

// NewMetrics build new metrics struct
func NewMetrics(writers []IntervalWriter, rotateIntervalSeconds int, l *slog.Logger) *Metrics {
	rotateInterval := time.Duration(rotateIntervalSeconds) * time.Second

	return &Metrics{
		writers:        writers,
		rotateInterval: rotateInterval,
		counters:       make(map[string]*Counter),
		gauges:         make(map[string]*Gauge),
		shutdownCh:     make(chan struct{}),
		log:            l.With("context", "metrics"),
	}
}

// Run periodically updates counters delta and passes the metrics to writers
func (m *Metrics) Run() error {
	for _, writer := range m.writers {
		if err := writer.Run(int(m.rotateInterval.Seconds())); err != nil {
			return err
		}
	}

	if m.rotateInterval <= 0 {
		<-m.shutdownCh
		return nil
	}

	ticker := time.NewTicker(m.rotateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdownCh:
			return nil
		case <-ticker.C:
			m.rotate()

			for _, writer := range m.writers {
				if err := writer.Write(m); err != nil {
					m.log.Error("metrics writer failed to write", "error", err)
				}
			}
		}
	}
}

// Shutdown stops metrics updates
func (m *Metrics) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	m.stopped = true
	close(m.shutdownCh)

	for _, writer := range m.writers {
		writer.Stop()
	}
}

// RegisterCounter adds new counter to the registry
func (m *Metrics) RegisterCounter(name string, desc string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name] = NewCounter(name, desc)
}

// RegisterGauge adds new gauge to the registry
func (m *Metrics) RegisterGauge(name string, desc string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[name] = NewGauge(name, desc)
}

// Counter returns counter by name
func (m *Metrics) Counter(name string) *Counter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[name]
}

// Gauge returns gauge by name
func (m *Metrics) Gauge(name string) *Gauge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gauges[name]
}

// CounterIncrement increments a registered counter; unknown names are ignored
func (m *Metrics) CounterIncrement(name string) {
	if c := m.Counter(name); c != nil {
		c.Inc()
	}
}

// CounterAdd adds val to a registered counter; unknown names are ignored
func (m *Metrics) CounterAdd(name string, val uint64) {
	if c := m.Counter(name); c != nil {
		c.Add(val)
	}
}

// GaugeSet sets a registered gauge value; unknown names are ignored
func (m *Metrics) GaugeSet(name string, val uint64) {
	if g := m.Gauge(name); g != nil {
		g.Set64(val)
	}
}

func (m *Metrics) GaugeIncrement(name string) {
	if g := m.Gauge(name); g != nil {
		g.Inc()
	}
}

func (m *Metrics) GaugeDecrement(name string) {
	if g := m.Gauge(name); g != nil {
		g.Dec()
	}
}

// EachCounter applies function f(*Counter) to each counter in a set
func (m *Metrics) EachCounter(f func(c *Counter)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, counter := range m.counters {
		f(counter)
	}
}

// EachGauge applies function f(*Gauge) to each gauge in a set
func (m *Metrics) EachGauge(f func(g *Gauge)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, gauge := range m.gauges {
		f(gauge)
	}
}

// IntervalSnapshot returns recorded interval metrics snapshot
func (m *Metrics) IntervalSnapshot() map[string]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]uint64)

	for name, c := range m.counters {
		snapshot[name] = c.IntervalValue()
	}

	for name, g := range m.gauges {
		snapshot[name] = g.Value()
	}

	return snapshot
}

// TotalSnapshot returns counters totals (since start) and current gauge values
func (m *Metrics) TotalSnapshot() map[string]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]uint64, len(m.counters)+len(m.gauges))

	for name, c := range m.counters {
		snapshot[name] = c.Value()
	}

	for name, g := range m.gauges {
		snapshot[name] = g.Value()
	}

	return snapshot
}

func (m *Metrics) rotate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.counters {
		c.UpdateDelta()
	}
}
