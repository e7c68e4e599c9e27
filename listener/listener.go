// Package listener accepts statsd traffic over TCP and UDP on the same address
// and forwards raw chunks to a handler without parsing them.
package listener

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/joomcode/errorx"
	nanoid "github.com/matoous/go-nanoid"

	"github.com/statsbridge/statsbridge/logger"
	"github.com/statsbridge/statsbridge/metrics"
)

const (
	metricsChunksReceived = "chunks_received_total"
	metricsBytesReceived  = "bytes_received_total"
	metricsTCPConnections = "tcp_connections"
	metricsTCPRejected    = "tcp_rejected_total"

	tcpReadBufferSize = 4096
)

// Handler receives raw chunks. The chunk is owned by the handler.
type Handler func(chunk []byte)

// Listener serves statsd TCP streams and UDP datagrams
type Listener struct {
	config  Config
	handler Handler

	tcp net.Listener
	udp net.PacketConn

	mu      sync.Mutex
	conns   map[string]net.Conn
	closing bool
	wg      sync.WaitGroup

	metrics metrics.Instrumenter
	log     *slog.Logger
}

// NewListener builds a new listener
func NewListener(c Config, h Handler, m metrics.Instrumenter, l *slog.Logger) *Listener {
	if c.MaxPacketSize <= 0 {
		c.MaxPacketSize = NewConfig().MaxPacketSize
	}

	ln := &Listener{
		config:  c,
		handler: h,
		conns:   make(map[string]net.Conn),
		metrics: m,
		log:     l.With("context", "listener"),
	}

	ln.registerMetrics()

	return ln
}

// Start binds TCP and UDP sockets and starts serving them in background.
// If either socket cannot be bound, nothing is left open.
func (ln *Listener) Start() error {
	tcp, err := net.Listen("tcp", ln.config.Address())

	if err != nil {
		return errorx.Decorate(err, "failed to listen on tcp %s", ln.config.Address())
	}

	// When an ephemeral port is requested, bind UDP to the one picked for TCP
	port := tcp.Addr().(*net.TCPAddr).Port
	udpAddr := net.JoinHostPort(ln.config.Host, strconv.Itoa(port))

	udp, err := net.ListenPacket("udp", udpAddr)

	if err != nil {
		tcp.Close() // nolint:errcheck
		return errorx.Decorate(err, "failed to listen on udp %s", udpAddr)
	}

	ln.mu.Lock()
	ln.tcp = tcp
	ln.udp = udp
	ln.mu.Unlock()

	ln.wg.Add(2)
	go ln.acceptLoop(tcp)
	go ln.readLoop(udp)

	ln.log.Info("statsd listener started", "tcp", tcp.Addr().String(), "udp", udp.LocalAddr().String())

	return nil
}

// TCPAddr returns the bound TCP address (nil before Start)
func (ln *Listener) TCPAddr() net.Addr {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	if ln.tcp == nil {
		return nil
	}

	return ln.tcp.Addr()
}

// UDPAddr returns the bound UDP address (nil before Start)
func (ln *Listener) UDPAddr() net.Addr {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	if ln.udp == nil {
		return nil
	}

	return ln.udp.LocalAddr()
}

// Shutdown closes sockets and open connections and waits for all readers to finish
func (ln *Listener) Shutdown(ctx context.Context) error {
	ln.mu.Lock()

	if ln.closing {
		ln.mu.Unlock()
		return nil
	}

	ln.closing = true

	if ln.tcp != nil {
		ln.tcp.Close() // nolint:errcheck
	}

	if ln.udp != nil {
		ln.udp.Close() // nolint:errcheck
	}

	for _, conn := range ln.conns {
		conn.Close() // nolint:errcheck
	}

	ln.mu.Unlock()

	done := make(chan struct{})

	go func() {
		ln.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		ln.log.Debug("statsd listener stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ln *Listener) isClosing() bool {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	return ln.closing
}

func (ln *Listener) acceptLoop(tcp net.Listener) {
	defer ln.wg.Done()

	for {
		conn, err := tcp.Accept()

		if err != nil {
			if ln.isClosing() || errors.Is(err, net.ErrClosed) {
				return
			}

			ln.log.Error("failed to accept tcp connection", "error", err)
			continue
		}

		id, _ := nanoid.Nanoid(6)

		if !ln.track(id, conn) {
			continue
		}

		ln.wg.Add(1)
		go ln.serveConn(id, conn)
	}
}

func (ln *Listener) track(id string, conn net.Conn) bool {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	if ln.closing {
		conn.Close() // nolint:errcheck
		return false
	}

	if ln.config.MaxConn > 0 && len(ln.conns) >= ln.config.MaxConn {
		ln.log.Warn("too many tcp connections, rejecting", "remote", conn.RemoteAddr().String(), "max_conn", ln.config.MaxConn)
		ln.metrics.CounterIncrement(metricsTCPRejected)
		conn.Close() // nolint:errcheck
		return false
	}

	ln.conns[id] = conn
	ln.metrics.GaugeIncrement(metricsTCPConnections)

	return true
}

func (ln *Listener) untrack(id string) {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	if _, ok := ln.conns[id]; ok {
		delete(ln.conns, id)
		ln.metrics.GaugeDecrement(metricsTCPConnections)
	}
}

// serveConn reads the stream and forwards complete lines only;
// the unterminated tail is forwarded when the peer closes the connection
func (ln *Listener) serveConn(id string, conn net.Conn) {
	defer ln.wg.Done()
	defer ln.untrack(id)
	defer conn.Close() // nolint:errcheck

	log := ln.log.With("conn", id)
	log.Debug("tcp connection opened", "remote", conn.RemoteAddr().String())

	buf := make([]byte, tcpReadBufferSize)
	var pending []byte

	for {
		n, err := conn.Read(buf)

		if n > 0 {
			pending = append(pending, buf[:n]...)

			if i := bytes.LastIndexByte(pending, '\n'); i >= 0 {
				ln.forward(pending[:i+1])
				pending = pending[:copy(pending, pending[i+1:])]
			} else if len(pending) >= ln.config.MaxPacketSize {
				ln.forward(pending)
				pending = pending[:0]
			}
		}

		if err != nil {
			if err != io.EOF && !ln.isClosing() {
				log.Debug("tcp connection read failed", "error", err)
			}

			break
		}
	}

	if len(pending) > 0 {
		ln.forward(pending)
	}

	log.Debug("tcp connection closed")
}

func (ln *Listener) readLoop(udp net.PacketConn) {
	defer ln.wg.Done()

	buf := make([]byte, ln.config.MaxPacketSize)

	for {
		n, addr, err := udp.ReadFrom(buf)

		if err != nil {
			if ln.isClosing() || errors.Is(err, net.ErrClosed) {
				return
			}

			ln.log.Debug("failed to read udp datagram", "error", err)
			continue
		}

		if n == 0 {
			continue
		}

		ln.log.Debug("udp datagram received", "remote", addr.String(), "data", logger.CompactValue(buf[:n]))
		ln.forward(buf[:n])
	}
}

// forward copies data out of the read buffer and passes it to the handler
func (ln *Listener) forward(data []byte) {
	chunk := make([]byte, len(data))
	copy(chunk, data)

	ln.metrics.CounterIncrement(metricsChunksReceived)
	ln.metrics.CounterAdd(metricsBytesReceived, uint64(len(chunk)))

	ln.handler(chunk)
}

func (ln *Listener) registerMetrics() {
	ln.metrics.RegisterCounter(metricsChunksReceived, "The total number of received chunks (datagrams and stream reads)")
	ln.metrics.RegisterCounter(metricsBytesReceived, "The total number of received bytes")
	ln.metrics.RegisterCounter(metricsTCPRejected, "The total number of TCP connections rejected due to max_conn")
	ln.metrics.RegisterGauge(metricsTCPConnections, "The number of open TCP connections")
}
