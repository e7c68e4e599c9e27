package sender

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/statsbridge/statsbridge/encoders"
	"github.com/statsbridge/statsbridge/metrics"
	"github.com/statsbridge/statsbridge/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, c Config) (*Sender, *Buffer, *mocks.Publisher, *metrics.Metrics) {
	m := metrics.NewMetrics(nil, 10, slog.Default())
	b := NewBuffer(c.MaxBufferLines, m, slog.Default())

	p := mocks.NewPublisher(t)
	p.On("ID").Return("mock").Maybe()

	s, err := NewSender(c, "host", b, p, m, slog.Default())
	require.NoError(t, err)

	return s, b, p, m
}

func decodeResult(t *testing.T, payload []byte) *Result {
	var r Result
	require.NoError(t, encoders.JSON{}.Decode(payload, &r))
	return &r
}

func TestSender_Send(t *testing.T) {
	s, b, p, m := newTestSender(t, NewConfig())

	var published []byte

	p.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).([]byte)
	}).Return(nil).Once()

	b.Append("host.statsd.counters.foo 8 1700000000", "host.statsd.gauges.bar 100 1700000000")

	require.NoError(t, s.Send(context.Background()))

	result := decodeResult(t, published)

	assert.Equal(t, "host", result.Client)
	assert.Equal(t, "host.statsd.counters.foo 8 1700000000\nhost.statsd.gauges.bar 100 1700000000\n", result.Check.Output)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, uint64(1), m.Counter("publish_total").Value())
}

func TestSender_SendEmptyBuffer(t *testing.T) {
	s, _, p, m := newTestSender(t, NewConfig())

	require.NoError(t, s.Send(context.Background()))
	require.NoError(t, s.Send(context.Background()))

	p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	assert.Equal(t, uint64(0), m.Counter("publish_total").Value())
}

func TestSender_RetainOnFailure(t *testing.T) {
	s, b, p, m := newTestSender(t, NewConfig())

	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	b.Append("a 1 1")

	err := s.Send(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	// lines flushed after the failed drain go after the retained ones
	b.Append("b 2 2")

	var published []byte

	p.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).([]byte)
	}).Return(nil).Once()

	require.NoError(t, s.Send(context.Background()))

	assert.Equal(t, []string{"a 1 1", "b 2 2"}, decodeResult(t, published).Lines())
	assert.Equal(t, uint64(1), m.Counter("publish_failures_total").Value())
	assert.Equal(t, uint64(1), m.Counter("publish_total").Value())
}

func TestSender_DropOnFailure(t *testing.T) {
	c := NewConfig()
	c.RetainOnFailure = false

	s, b, p, m := newTestSender(t, c)

	p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("timeout")).Once()

	b.Append("a 1 1", "b 2 1")

	require.Error(t, s.Send(context.Background()))

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, uint64(2), m.Counter("dropped_lines_total").Value())
	assert.Equal(t, uint64(1), m.Counter("publish_failures_total").Value())
}

func TestSender_Msgpack(t *testing.T) {
	c := NewConfig()
	c.Encoding = "msgpack"

	s, b, p, _ := newTestSender(t, c)

	var published []byte

	p.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).([]byte)
	}).Return(nil).Once()

	b.Append("a 1 1")

	require.NoError(t, s.Send(context.Background()))

	var r Result
	require.NoError(t, encoders.Msgpack{}.Decode(published, &r))
	assert.Equal(t, "a 1 1\n", r.Check.Output)
}

func TestNewSender_UnknownEncoding(t *testing.T) {
	c := NewConfig()
	c.Encoding = "xml"

	b := NewBuffer(0, metrics.NoopMetrics{}, slog.Default())

	_, err := NewSender(c, "host", b, mocks.NewPublisher(t), metrics.NoopMetrics{}, slog.Default())
	assert.Error(t, err)
}
