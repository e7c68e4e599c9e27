package metrics

// NoopMetrics is an Instrumenter which discards all the stats
// (for components created outside of a running service, e.g., in tests)
type NoopMetrics struct{}

var _ Instrumenter = NoopMetrics{}

func (NoopMetrics) RegisterCounter(string, string) {}
func (NoopMetrics) RegisterGauge(string, string)   {}
func (NoopMetrics) CounterIncrement(string)        {}
func (NoopMetrics) CounterAdd(string, uint64)      {}
func (NoopMetrics) GaugeSet(string, uint64)        {}
func (NoopMetrics) GaugeIncrement(string)          {}
func (NoopMetrics) GaugeDecrement(string)          {}
