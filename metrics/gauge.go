package metrics

import (
	"sync/atomic"
)

// Gauge holds the latest observed value (connections, queue or buffer size)
type Gauge struct {
	name  string
	desc  string
	value atomic.Uint64
}

func NewGauge(name string, desc string) *Gauge {
	return &Gauge{name: name, desc: desc}
}

func (g *Gauge) Name() string {
	return g.name
}

func (g *Gauge) Desc() string {
	return g.desc
}

func (g *Gauge) Set(value int) {
	if value < 0 {
		value = 0
	}

	g.value.Store(uint64(value))
}

func (g *Gauge) Set64(value uint64) {
	g.value.Store(value)
}

func (g *Gauge) Inc() uint64 {
	return g.value.Add(1)
}

// Dec decrements the value by 1; it never goes below zero
func (g *Gauge) Dec() uint64 {
	for {
		current := g.value.Load()

		if current == 0 {
			return 0
		}

		if g.value.CompareAndSwap(current, current-1) {
			return current - 1
		}
	}
}

func (g *Gauge) Value() uint64 {
	return g.value.Load()
}
