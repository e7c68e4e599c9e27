package sender

import (
	"testing"

	"github.com/statsbridge/statsbridge/encoders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResult(t *testing.T) {
	r := NewResult("host", []string{"host.statsd.counters.foo 8 1700000000", "host.statsd.gauges.bar 100 1700000000"})

	assert.Equal(t, "host", r.Client)
	assert.Equal(t, "statsd", r.Check.Name)
	assert.Equal(t, "metric", r.Check.Type)
	assert.Equal(t, 0, r.Check.Status)
	assert.Equal(t, "graphite", r.Check.Handler)
	assert.Equal(t, "host.statsd.counters.foo 8 1700000000\nhost.statsd.gauges.bar 100 1700000000\n", r.Check.Output)

	assert.Equal(t, []string{"host.statsd.counters.foo 8 1700000000", "host.statsd.gauges.bar 100 1700000000"}, r.Lines())
}

func TestResult_JSON(t *testing.T) {
	payload, err := encoders.JSON{}.Encode(NewResult("host", []string{"a 1 1"}))
	require.NoError(t, err)

	assert.Equal(t,
		`{"client":"host","check":{"name":"statsd","type":"metric","status":0,"output":"a 1 1\n","handler":"graphite"}}`,
		string(payload),
	)
}

func TestResult_Msgpack(t *testing.T) {
	coder := encoders.Msgpack{}

	payload, err := coder.Encode(NewResult("host", []string{"a 1 1", "b 2 1"}))
	require.NoError(t, err)

	var decoded Result

	require.NoError(t, coder.Decode(payload, &decoded))
	assert.Equal(t, *NewResult("host", []string{"a 1 1", "b 2 1"}), decoded)
}
