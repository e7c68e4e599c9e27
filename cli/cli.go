package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/joomcode/errorx"
	natsgo "github.com/nats-io/nats.go"

	"github.com/statsbridge/statsbridge/aggregator"
	"github.com/statsbridge/statsbridge/config"
	"github.com/statsbridge/statsbridge/enats"
	"github.com/statsbridge/statsbridge/encoders"
	"github.com/statsbridge/statsbridge/listener"
	"github.com/statsbridge/statsbridge/logger"
	"github.com/statsbridge/statsbridge/metrics"
	"github.com/statsbridge/statsbridge/node"
	"github.com/statsbridge/statsbridge/publisher"
	"github.com/statsbridge/statsbridge/sender"
	"github.com/statsbridge/statsbridge/server"
	"github.com/statsbridge/statsbridge/utils"
	"github.com/statsbridge/statsbridge/version"
)

type publisherFactory = func(c *config.Config, contentType string, l *slog.Logger) (publisher.Publisher, error)

type Shutdownable interface {
	Shutdown(ctx context.Context) error
}

type shutdownFunc func(ctx context.Context) error

func (fn shutdownFunc) Shutdown(ctx context.Context) error {
	return fn(ctx)
}

// Runner builds the pipeline from config and runs it until a shutdown signal
type Runner struct {
	name   string
	config *config.Config
	log    *slog.Logger

	publisherFactory publisherFactory

	metrics  *metrics.Metrics
	node     *node.Node
	listener *listener.Listener

	errChan       chan error
	shutdownables []Shutdownable
}

// NewRunner returns a new Runner structure
func NewRunner(c *config.Config, opts []Option) (*Runner, error) {
	r := &Runner{
		name:          "statsbridge",
		config:        c,
		shutdownables: []Shutdownable{},
		errChan:       make(chan error, 1),
	}

	err := r.checkAndSetDefaults()
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		err = opt(r)
		if err != nil {
			return nil, err
		}
	}

	if r.publisherFactory == nil {
		r.publisherFactory = defaultPublisherFactory
	}

	if err = r.config.LoadPresets(r.log); err != nil {
		return nil, errorx.Decorate(err, "failed to load configuration presets")
	}

	if err = r.config.Validate(); err != nil {
		return nil, errorx.Decorate(err, "invalid configuration")
	}

	r.metrics = metrics.FromConfig(&r.config.Metrics, r.log)

	return r, nil
}

func (r *Runner) checkAndSetDefaults() error {
	if r.config == nil {
		return errorx.AssertionFailed.New("Config is nil")
	}

	handler, err := logger.InitLogger(r.config.Log.LogFormat, r.config.Log.LogLevel)
	if err != nil {
		return errorx.Decorate(err, "failed to initialize default logger")
	}

	r.log = slog.New(handler)
	slog.SetDefault(r.log)

	return nil
}

// Run starts the listener and the pipeline and blocks until shutdown
func (r *Runner) Run() error {
	r.announceDebugMode()

	r.log.Info(fmt.Sprintf("Starting %s %s (pid: %d, client: %s)", r.name, version.Version(), os.Getpid(), r.config.Pipeline.ClientName))

	if r.config.ConfigFilePath != "" {
		r.log.Info(fmt.Sprintf("Using configuration from file: %s", r.config.ConfigFilePath))
	}

	ln, err := r.runNode(true)
	if err != nil {
		return err
	}

	if r.config.Server.Enabled() {
		if err = r.startHTTPServer(); err != nil {
			r.abort()
			return err
		}
	}

	go r.startMetrics()

	r.log.Info(fmt.Sprintf(
		"Handle statsd metrics at tcp://%s and udp://%s (flush every %ds, send every %ds)",
		ln.TCPAddr(), ln.UDPAddr(), r.config.Pipeline.FlushInterval, r.config.Pipeline.SendInterval,
	))

	r.setupSignalHandlers()

	return r.Wait()
}

// Wait blocks until the runner is stopped
func (r *Runner) Wait() error {
	return <-r.errChan
}

// runNode builds and starts the pipeline. Network listeners are started only when listen is true.
func (r *Runner) runNode(listen bool) (*listener.Listener, error) {
	c := r.config

	if c.EmbeddedNats.Enabled {
		service, err := r.startEmbeddedNats()
		if err != nil {
			return nil, err
		}

		r.shutdownables = append(r.shutdownables, shutdownFunc(func(ctx context.Context) error {
			return service.Shutdown()
		}))
	}

	encoder, err := encoders.FromName(c.Sender.Encoding)
	if err != nil {
		return nil, err
	}

	pub, err := r.publisherFactory(c, encoder.ContentType(), r.log)
	if err != nil {
		return nil, errorx.Decorate(err, "failed to initialize publisher")
	}

	if err = pub.Start(context.Background()); err != nil {
		return nil, errorx.Decorate(err, "failed to start %s publisher", pub.ID())
	}

	agg := aggregator.NewAggregator(c.Aggregator, c.Pipeline.ClientName, r.metrics, r.log)
	buf := sender.NewBuffer(c.Sender.MaxBufferLines, r.metrics, r.log)

	snd, err := sender.NewSender(c.Sender, c.Pipeline.ClientName, buf, pub, r.metrics, r.log)
	if err != nil {
		return nil, err
	}

	r.node = node.NewNode(&c.Pipeline, agg, buf, snd, r.metrics, r.log)

	var ln node.Listener = noopListener{}

	if listen {
		r.listener = listener.NewListener(c.Listener, r.node.HandleChunk, r.metrics, r.log)
		ln = r.listener
	}

	if err = r.node.Start(ln); err != nil {
		_ = pub.Shutdown(context.Background())
		return nil, errorx.Decorate(err, "failed to start statsd listener")
	}

	// node goes first: its final send still needs the publisher
	r.shutdownables = append([]Shutdownable{r.node, pub}, r.shutdownables...)

	r.log.Info(fmt.Sprintf("Publishing results via %s (encoding: %s)", pub.ID(), encoder.ID()))

	return r.listener, nil
}

func (r *Runner) startEmbeddedNats() (*enats.Service, error) {
	service := enats.NewService(&r.config.EmbeddedNats, r.log)

	if err := service.Start(); err != nil {
		return nil, errorx.Decorate(err, "failed to start embedded NATS server")
	}

	// Point the publisher to the embedded server unless NATS is configured explicitly
	if r.config.NATS.Servers == natsgo.DefaultURL {
		r.config.NATS.Servers = service.ClientURL()
	}

	return service, nil
}

func (r *Runner) startHTTPServer() error {
	srv := server.NewServer(r.config.Server, r.metrics.TotalSnapshot, r.log)

	if err := srv.Start(); err != nil {
		return err
	}

	r.shutdownables = append(r.shutdownables, srv)

	r.log.Info(fmt.Sprintf("Serve health checks at http://%s%s", srv.Addr(), r.config.Server.HealthPath))

	return nil
}

func (r *Runner) startMetrics() {
	err := r.metrics.Run()
	if err != nil {
		r.log.Error("metrics server failed to start", "error", err)
		r.stop(err)
	}
}

func (r *Runner) setupSignalHandlers() {
	s := utils.NewGracefulSignals(time.Duration(r.config.ShutdownTimeout)*time.Second, r.log)

	s.HandleForceTerminate(func() {
		r.log.Warn("Immediate termination requested. Stopped")
		r.stop(nil)
	})

	s.Handle(func(ctx context.Context) error {
		r.log.Info(fmt.Sprintf("Shutting down... (hit Ctrl-C to stop immediately or wait for up to %ds for graceful shutdown)", r.config.ShutdownTimeout))
		return nil
	})

	s.Handle(func(ctx context.Context) error {
		r.shutdown(ctx)
		r.stop(nil)
		return nil
	})

	s.Listen()
}

func (r *Runner) shutdown(ctx context.Context) {
	for _, shutdownable := range r.shutdownables {
		if err := shutdownable.Shutdown(ctx); err != nil {
			r.log.Error("failed to shutdown component", "error", err)
		}
	}

	r.metrics.Shutdown()
}

// abort stops the already started components after a startup failure
func (r *Runner) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.config.ShutdownTimeout)*time.Second)
	defer cancel()

	r.shutdown(ctx)
}

// stop unblocks Wait; only the first result is kept
func (r *Runner) stop(err error) {
	select {
	case r.errChan <- err:
	default:
	}
}

func (r *Runner) announceDebugMode() {
	if r.config.Log.Debug {
		r.log.Debug("🔧 🔧 🔧 Debug mode is on 🔧 🔧 🔧")
	}

	r.log.Debug(fmt.Sprintf("GOMAXPROCS=%d", runtime.GOMAXPROCS(0)))
}

func defaultPublisherFactory(c *config.Config, contentType string, l *slog.Logger) (publisher.Publisher, error) {
	return publisher.FromConfig(&c.Publisher, &c.NATS, &c.Redis, contentType, l)
}

type noopListener struct{}

func (noopListener) Start() error { return nil }

func (noopListener) Shutdown(ctx context.Context) error { return nil }
