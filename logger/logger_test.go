package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_json(t *testing.T) {
	var buf bytes.Buffer

	handler, err := NewHandler(&buf, "json", "warn", false)
	require.NoError(t, err)

	l := slog.New(handler)
	l.Info("skipped")
	l.Warn("invalid statsd metric", "path", "statsd.counters.a b")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "statsd.counters.a b", record["path"])
}

func TestNewHandler_text(t *testing.T) {
	var buf bytes.Buffer

	handler, err := NewHandler(&buf, "text", "debug", false)
	require.NoError(t, err)

	slog.New(handler).Debug("flushed", "lines", 4)

	assert.Contains(t, buf.String(), "flushed")
	assert.Contains(t, buf.String(), "lines=4")
}

func TestNewHandler_errors(t *testing.T) {
	_, err := NewHandler(&bytes.Buffer{}, "xml", "info", false)
	assert.ErrorContains(t, err, "unknown log format")

	_, err = NewHandler(&bytes.Buffer{}, "text", "verbose", false)
	assert.ErrorContains(t, err, "unknown log level")
}
