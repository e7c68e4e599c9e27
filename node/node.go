// Package node runs the statsd pipeline: it consumes received chunks, feeds the aggregator,
// and drives the flush and send schedules
package node

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joomcode/errorx"

	"github.com/statsbridge/statsbridge/aggregator"
	"github.com/statsbridge/statsbridge/logger"
	"github.com/statsbridge/statsbridge/metrics"
	"github.com/statsbridge/statsbridge/sender"
	"github.com/statsbridge/statsbridge/statsd"
	"github.com/statsbridge/statsbridge/utils"
)

const (
	metricsQueueSize      = "queue_size"
	metricsMalformedLines = "malformed_lines_total"
	metricsInvalidNames   = "invalid_names_total"
	metricsGoroutines     = "goroutines_num"

	statsCollectInterval = 5 * time.Second
	queueInitialCapacity = 1024
)

// Listener is a source of raw chunks
type Listener interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// Node wires the ingestion queue, the aggregator and the sender together
type Node struct {
	config *Config

	queue      *utils.Queue[[]byte]
	aggregator *aggregator.Aggregator
	buffer     *sender.Buffer
	sender     *sender.Sender
	listener   Listener

	// a flush never overlaps with another one
	flushMu sync.Mutex

	mu           sync.Mutex
	started      bool
	closed       bool
	consumerDone chan struct{}
	// set when the drain deadline is exceeded; the consumer stops after the current chunk
	abandoned    atomic.Bool
	shutdownCh   chan struct{}
	schedulesWg  sync.WaitGroup

	metrics metrics.Instrumenter
	log     *slog.Logger
}

// NewNode builds a new node
func NewNode(c *Config, agg *aggregator.Aggregator, buf *sender.Buffer, snd *sender.Sender, m metrics.Instrumenter, l *slog.Logger) *Node {
	n := &Node{
		config:       c,
		queue:        utils.NewQueue[[]byte](queueInitialCapacity),
		aggregator:   agg,
		buffer:       buf,
		sender:       snd,
		consumerDone: make(chan struct{}),
		shutdownCh:   make(chan struct{}),
		metrics:      m,
		log:          l.With("context", "node"),
	}

	n.registerMetrics()

	return n
}

// HandleChunk enqueues raw data received by a listener; it never blocks
func (n *Node) HandleChunk(chunk []byte) {
	if !n.queue.Add(utils.Item[[]byte]{Data: chunk, Size: uint64(len(chunk))}) {
		n.log.Debug("queue is closed, chunk dropped", "data", logger.CompactValue(chunk))
		return
	}

	n.metrics.GaugeSet(metricsQueueSize, uint64(n.queue.Len()))
}

// Start starts the listener (if any), then launches the consumer and the schedules.
// When the listener fails to start, the node is closed and nothing keeps running.
func (n *Node) Start(ln Listener) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started || n.closed {
		return errorx.IllegalState.New("node is already started")
	}

	if ln != nil {
		if err := ln.Start(); err != nil {
			n.closed = true
			n.queue.Close()
			return err
		}
	}

	n.started = true
	n.listener = ln

	go n.consume()

	n.schedulesWg.Add(3)
	go n.schedule(time.Duration(n.config.FlushInterval)*time.Second, n.flushTick)
	go n.schedule(time.Duration(n.config.SendInterval)*time.Second, n.sendTick)
	go n.schedule(statsCollectInterval, n.collectStats)

	n.log.Info("pipeline started", "client", n.config.ClientName, "flush_interval", n.config.FlushInterval, "send_interval", n.config.SendInterval)

	return nil
}

// Flush moves aggregated metrics to the outgoing buffer and returns the number of lines
func (n *Node) Flush(now time.Time) int {
	n.flushMu.Lock()
	defer n.flushMu.Unlock()

	lines := n.aggregator.Flush(now)
	n.buffer.Append(lines...)

	return len(lines)
}

// Send publishes the outgoing buffer
func (n *Node) Send(ctx context.Context) error {
	return n.sender.Send(ctx)
}

// Shutdown stops accepting data, processes everything received so far,
// then runs the final flush and send
func (n *Node) Shutdown(ctx context.Context) error {
	n.mu.Lock()

	if n.closed {
		n.mu.Unlock()
		return nil
	}

	n.closed = true
	started := n.started
	n.mu.Unlock()

	n.log.Info("shutting down pipeline")

	var errs []error

	if n.listener != nil {
		if err := n.listener.Shutdown(ctx); err != nil {
			errs = append(errs, errorx.Decorate(err, "failed to stop listener"))
		}
	}

	n.queue.Close()

	if started {
		select {
		case <-n.consumerDone:
		case <-ctx.Done():
			n.abandoned.Store(true)
			<-n.consumerDone

			dropped := n.queue.Len()
			n.log.Warn("ingestion queue was not drained in time", "dropped_chunks", dropped)
			errs = append(errs, errorx.Decorate(ctx.Err(), "failed to drain ingestion queue (%d items dropped)", dropped))
		}
	}

	close(n.shutdownCh)
	n.schedulesWg.Wait()

	if lines := n.Flush(time.Now()); lines > 0 {
		n.log.Debug("final flush", "lines", lines)
	}

	if err := n.Send(ctx); err != nil {
		errs = append(errs, errorx.Decorate(err, "final send failed"))
	}

	if len(errs) > 0 {
		return errorx.WrapMany(errorx.ExternalError, "pipeline shutdown finished with errors", errs...)
	}

	n.log.Info("pipeline stopped")

	return nil
}

func (n *Node) consume() {
	defer close(n.consumerDone)

	for n.queue.Wait() {
		if n.abandoned.Load() {
			return
		}

		item, ok := n.queue.Remove()

		if !ok {
			continue
		}

		n.metrics.GaugeSet(metricsQueueSize, uint64(n.queue.Len()))
		n.process(item.Data)
	}
}

func (n *Node) process(chunk []byte) {
	samples, errs := statsd.ParseChunk(chunk)

	for _, err := range errs {
		if errorx.IsOfType(err, statsd.ErrInvalidName) {
			n.metrics.CounterIncrement(metricsInvalidNames)
		} else {
			n.metrics.CounterIncrement(metricsMalformedLines)
		}

		n.log.Debug("skip invalid line", "error", err)
	}

	for _, sample := range samples {
		n.aggregator.Add(sample)
	}
}

func (n *Node) schedule(interval time.Duration, fn func()) {
	defer n.schedulesWg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.shutdownCh:
			return
		case <-ticker.C:
			fn()
		}
	}
}

func (n *Node) flushTick() {
	n.Flush(time.Now())
}

func (n *Node) sendTick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(n.config.SendInterval)*time.Second)
	defer cancel()

	n.Send(ctx) // nolint:errcheck
}

func (n *Node) collectStats() {
	n.metrics.GaugeSet(metricsGoroutines, uint64(runtime.NumGoroutine()))
	n.metrics.GaugeSet(metricsQueueSize, uint64(n.queue.Len()))
}

func (n *Node) registerMetrics() {
	n.metrics.RegisterGauge(metricsQueueSize, "The number of received chunks waiting to be processed")
	n.metrics.RegisterGauge(metricsGoroutines, "The number of Go routines")
	n.metrics.RegisterCounter(metricsMalformedLines, "The total number of lines which could not be parsed")
	n.metrics.RegisterCounter(metricsInvalidNames, "The total number of lines with invalid metric names")
}
