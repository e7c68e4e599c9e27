package metrics

import "sync/atomic"

// Counter is a monotonic total (received chunks, published envelopes, etc.).
// It also tracks the increase over the last rotation interval.
type Counter struct {
	name string
	desc string

	value     atomic.Uint64
	lastValue atomic.Uint64
	lastDelta atomic.Uint64
}

func NewCounter(name string, desc string) *Counter {
	return &Counter{name: name, desc: desc}
}

func (c *Counter) Name() string {
	return c.name
}

func (c *Counter) Desc() string {
	return c.desc
}

// Value returns the total value
func (c *Counter) Value() uint64 {
	return c.value.Load()
}

// IntervalValue returns the increase during the last completed interval
func (c *Counter) IntervalValue() uint64 {
	return c.lastDelta.Load()
}

func (c *Counter) Inc() uint64 {
	return c.value.Add(1)
}

func (c *Counter) Add(n uint64) uint64 {
	return c.value.Add(n)
}

// UpdateDelta completes the current interval
func (c *Counter) UpdateDelta() {
	now := c.value.Load()
	prev := c.lastValue.Swap(now)
	c.lastDelta.Store(now - prev)
}
