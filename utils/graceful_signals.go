package utils

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

type signalHandler func(ctx context.Context) error

// GracefulSignals runs registered shutdown handlers once on the first SIGINT/SIGTERM.
// Handlers receive a context which expires after the timeout or on the second signal.
type GracefulSignals struct {
	handlers              []signalHandler
	forceTerminateHandler func()
	timeout               time.Duration
	executed              bool

	ch  chan os.Signal
	log *slog.Logger
	mu  sync.Mutex
}

func NewGracefulSignals(timeout time.Duration, l *slog.Logger) *GracefulSignals {
	return &GracefulSignals{
		timeout:               timeout,
		forceTerminateHandler: func() { os.Exit(0) },
		handlers:              make([]signalHandler, 0),
		ch:                    make(chan os.Signal, 1),
		log:                   l.With("context", "signals"),
	}
}

// Handle registers a shutdown handler. Handlers are called in registration order.
func (s *GracefulSignals) Handle(handler signalHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers = append(s.handlers, handler)
}

func (s *GracefulSignals) HandleForceTerminate(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forceTerminateHandler = handler
}

func (s *GracefulSignals) Listen() {
	signal.Notify(s.ch, syscall.SIGINT, syscall.SIGTERM)
	go s.listen()
}

func (s *GracefulSignals) listen() {
	for sig := range s.ch {
		s.log.Info("signal received", "signal", sig.String())
		s.exec(nil)
	}
}

// exec runs the handlers. force is used instead of the OS signal channel in tests.
func (s *GracefulSignals) exec(force <-chan struct{}) {
	s.mu.Lock()

	if s.executed {
		s.mu.Unlock()
		return
	}

	s.executed = true
	shutdown := make(chan struct{})

	terminateCtx, terminateImmediately := context.WithCancel(context.Background())
	defer terminateImmediately()

	timeoutCtx, cancelTimeout := context.WithTimeout(terminateCtx, s.timeout)
	defer cancelTimeout()

	go func() {
		if force == nil {
			termSig := make(chan os.Signal, 1)
			signal.Notify(termSig, syscall.SIGINT, syscall.SIGTERM)

			select {
			case <-termSig:
			case <-shutdown:
				signal.Stop(termSig)
				return
			}
		} else {
			select {
			case <-force:
			case <-shutdown:
				return
			}
		}

		s.log.Warn("forced termination requested")
		terminateImmediately()

		// handlers are expected to return on context cancellation
		<-shutdown

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.forceTerminateHandler != nil {
			s.forceTerminateHandler()
		}
	}()

	handlers := append([]signalHandler{}, s.handlers...)
	s.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(timeoutCtx); err != nil {
			s.log.Error("shutdown handler failed", "error", err)
		}
	}

	close(shutdown)
}
