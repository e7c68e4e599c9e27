package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/statsbridge/statsbridge/node"
	"github.com/statsbridge/statsbridge/version"
)

// A minimal interface to the underlying Runner for embedding statsbridge into your own Go application.
// No sockets are bound and no signal handlers are installed: metrics are fed via Handle.
type Embedded struct {
	n *node.Node
	r *Runner
}

// Handle enqueues a chunk of statsd lines (as if it was received over the network)
func (e *Embedded) Handle(chunk []byte) {
	e.n.HandleChunk(chunk)
}

// Flush moves aggregated metrics to the outgoing buffer right away
func (e *Embedded) Flush() int {
	return e.n.Flush(time.Now())
}

// Send publishes the outgoing buffer right away
func (e *Embedded) Send(ctx context.Context) error {
	return e.n.Send(ctx)
}

// Shutdown stops the pipeline gracefully (with the final flush and send).
func (e *Embedded) Shutdown(ctx context.Context) error {
	for _, shutdownable := range e.r.shutdownables {
		if err := shutdownable.Shutdown(ctx); err != nil {
			return err
		}
	}

	e.r.metrics.Shutdown()

	return nil
}

// Embed starts the pipeline without network listeners, signals, etc.
func (r *Runner) Embed() (*Embedded, error) {
	r.announceDebugMode()

	r.log.Info(fmt.Sprintf("Starting embedded %s %s (client: %s)", r.name, version.Version(), r.config.Pipeline.ClientName))

	if _, err := r.runNode(false); err != nil {
		return nil, err
	}

	embed := &Embedded{n: r.node, r: r}

	go r.startMetrics()

	return embed, nil
}
