package metrics

import (
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsdWriter(t *testing.T) {
	m := NewMetrics(nil, 0, slog.Default())

	m.RegisterCounter("test_count", "")
	m.RegisterGauge("test_gauge", "")

	for i := 0; i < 10; i++ {
		m.Counter("test_count").Inc()
	}

	m.Gauge("test_gauge").Set(123)
	m.rotate()

	socket, received := startServer(t)
	defer socket.Close()

	t.Run("Write send UDP with metrics", func(t *testing.T) {
		c := NewStatsdConfig()
		c.Host = socket.LocalAddr().String()
		w := NewStatsdWriter(c, slog.Default())
		_ = w.Run(0)
		defer w.Stop()

		err := w.Write(m)
		assert.NoError(t, err)

		var buf []byte

		select {
		case buf = <-received:
		case <-time.After(time.Second):
			t.Error("timeout waiting for UDP payload")
			return
		}

		payload := string(buf)

		assert.Contains(t, payload, "statsbridge.test_count:10|c")
		assert.Contains(t, payload, "statsbridge.test_gauge:123|g")
	})

	t.Run("Write uses custom prefix", func(t *testing.T) {
		c := NewStatsdConfig()
		c.Host = socket.LocalAddr().String()
		c.Prefix = "self."
		w := NewStatsdWriter(c, slog.Default())
		_ = w.Run(0)
		defer w.Stop()

		err := w.Write(m)
		assert.NoError(t, err)

		var buf []byte

		select {
		case buf = <-received:
		case <-time.After(time.Second):
			t.Error("timeout waiting for UDP payload")
			return
		}

		payload := string(buf)

		assert.Contains(t, payload, "self.test_count:10|c")
		assert.Contains(t, payload, "self.test_gauge:123|g")
	})
}

func TestStatsdWriter_TagsFormat(t *testing.T) {
	c := NewStatsdConfig()
	c.Host = "127.0.0.1:8125"
	c.Tags = map[string]string{"env": "test"}
	c.TagFormat = "unknown"

	w := NewStatsdWriter(c, slog.Default())
	err := w.Run(0)

	assert.Error(t, err)
}

func TestStatsdWriter_WriteBeforeRun(t *testing.T) {
	w := NewStatsdWriter(NewStatsdConfig(), slog.Default())

	assert.NoError(t, w.Write(NewMetrics(nil, 0, slog.Default())))
	w.Stop()
}

func startServer(t *testing.T) (*net.UDPConn, chan []byte) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		t.Error(err)
	}

	received := make(chan []byte, 1024)

	go func() {
		for {
			buf := make([]byte, 1500)

			n, err := inSocket.Read(buf)
			if err != nil {
				return
			}

			received <- buf[0:n]
		}

	}()

	return inSocket, received
}
