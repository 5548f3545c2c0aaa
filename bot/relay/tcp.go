package relay

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/pkg/errors"
)

// TCPChannel sends frames to the relay simulator over TCP. Same contract as
// the serial channel, intended for development and integration tests where
// no hardware is attached.
type TCPChannel struct {
	conn     net.Conn
	logger   zerolog.Logger
	listener sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// DialTCP connects to a relay simulator.
func DialTCP(addr string, logDevice bool, logger zerolog.Logger) (*TCPChannel, error) {
	log := logger.With().Str("component", "relay").Logger()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, errors.Wrapf(ErrDialFailed, err, "failed to dial relay simulator at %s", addr)
	}

	ch := &TCPChannel{conn: conn, logger: log}
	if logDevice {
		ch.listener.Add(1)
		go diagnosticListener(bufio.NewScanner(conn), log, &ch.listener)
	}

	log.Info().Str("addr", addr).Msg("Connected to relay simulator")
	return ch, nil
}

// Send writes one encoded frame in a single write call.
func (c *TCPChannel) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New(ErrChannelClosed, "tcp channel is closed")
	}

	n, err := c.conn.Write(frame)
	if err != nil {
		return errors.Wrap(ErrWriteFailed, err, "tcp write failed")
	}
	if n != len(frame) {
		return errors.Newf(ErrShortWrite, "wrote %d of %d bytes", n, len(frame))
	}
	return nil
}

// Close closes the connection and waits for the diagnostic listener.
func (c *TCPChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.conn.Close()
	c.listener.Wait()
	return err
}
