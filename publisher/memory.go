package publisher

import (
	"context"
	"sync"
)

// MemoryPublisher keeps published payloads in memory
type MemoryPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	ch       chan []byte
}

var _ Publisher = (*MemoryPublisher)(nil)

// NewMemoryPublisher creates a publisher which also notifies about payloads
// via the channel returned by Payloads (buffered, extra payloads are not sent to it)
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{ch: make(chan []byte, 100)}
}

func (p *MemoryPublisher) ID() string {
	return "memory"
}

func (p *MemoryPublisher) Start(ctx context.Context) error {
	return nil
}

func (p *MemoryPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.payloads = append(p.payloads, payload)

	select {
	case p.ch <- payload:
	default:
	}

	return nil
}

func (p *MemoryPublisher) Shutdown(ctx context.Context) error {
	return nil
}

// Published returns all published payloads
func (p *MemoryPublisher) Published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([][]byte(nil), p.payloads...)
}

// Payloads returns a channel receiving published payloads
func (p *MemoryPublisher) Payloads() <-chan []byte {
	return p.ch
}
