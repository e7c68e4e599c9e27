package utils

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGracefulSignalsRunsHandlersInOrder(t *testing.T) {
	gs := NewGracefulSignals(time.Second, slog.Default())

	calls := []string{}

	gs.Handle(func(ctx context.Context) error {
		calls = append(calls, "first")
		return errors.New("failed but not fatal")
	})
	gs.Handle(func(ctx context.Context) error {
		calls = append(calls, "second")
		return nil
	})

	gs.exec(make(chan struct{}))
	gs.exec(make(chan struct{}))

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestGracefulSignalsTimeout(t *testing.T) {
	gs := NewGracefulSignals(50*time.Millisecond, slog.Default())

	var ctxErr error

	gs.Handle(func(ctx context.Context) error {
		<-ctx.Done()
		ctxErr = ctx.Err()
		return nil
	})

	gs.exec(make(chan struct{}))

	assert.ErrorIs(t, ctxErr, context.DeadlineExceeded)
}

func TestGracefulSignalsForceTerminate(t *testing.T) {
	gs := NewGracefulSignals(time.Minute, slog.Default())

	terminated := make(chan struct{})
	force := make(chan struct{})

	gs.HandleForceTerminate(func() { close(terminated) })
	gs.Handle(func(ctx context.Context) error {
		close(force)
		<-ctx.Done()
		return ctx.Err()
	})

	gs.exec(force)

	select {
	case <-terminated:
	case <-time.After(time.Second):
		require.Fail(t, "force terminate handler wasn't called")
	}
}
