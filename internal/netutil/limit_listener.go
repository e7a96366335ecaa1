// Package netutil limits the number of connections served at once across
// every listener of the process.
package netutil

import (
	"errors"
	"net"
	"sync"
	"time"

	"gitlab.com/gitlab-org/static-pipeline/metrics"
)

var errKeepaliveNotSupported = errors.New("keepalive not supported")

// Limiter is a pool of connection slots shared by listeners.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a Limiter allowing max simultaneous connections.
func NewLimiter(max int) *Limiter {
	metrics.LimitListenerMaxConns.Set(float64(max))

	return &Limiter{slots: make(chan struct{}, max)}
}

// Listen wraps l so that it only accepts a connection once the limiter has
// a free slot. The slot is returned when the connection is closed.
func (lim *Limiter) Listen(l net.Listener) net.Listener {
	return &limitListener{
		Listener: l,
		limiter:  lim,
		done:     make(chan struct{}),
	}
}

func (lim *Limiter) release() {
	<-lim.slots
	metrics.LimitListenerConcurrentConns.Dec()
}

type limitListener struct {
	net.Listener
	limiter   *Limiter
	closeOnce sync.Once
	done      chan struct{}
}

// acquire blocks until a slot is free. It returns false when the listener
// is closed first.
func (l *limitListener) acquire() bool {
	metrics.LimitListenerWaitingConns.Inc()
	defer metrics.LimitListenerWaitingConns.Dec()

	select {
	case <-l.done:
		return false
	case l.limiter.slots <- struct{}{}:
		metrics.LimitListenerConcurrentConns.Inc()
		return true
	}
}

func (l *limitListener) Accept() (net.Conn, error) {
	acquired := l.acquire()

	// a closed listener returns an error straight away
	c, err := l.Listener.Accept()
	if err != nil {
		if acquired {
			l.limiter.release()
		}
		return nil, err
	}

	tcpConn, _ := c.(*net.TCPConn)

	return &limitConn{Conn: c, tcpConn: tcpConn, release: l.limiter.release}, nil
}

func (l *limitListener) Close() error {
	err := l.Listener.Close()
	l.closeOnce.Do(func() { close(l.done) })
	return err
}

type limitConn struct {
	net.Conn
	tcpConn     *net.TCPConn
	releaseOnce sync.Once
	release     func()
}

func (c *limitConn) Close() error {
	err := c.Conn.Close()
	c.releaseOnce.Do(c.release)
	return err
}

// SetKeepAlive lets http.Server enable TCP keep-alive through the wrapper.
func (c *limitConn) SetKeepAlive(enabled bool) error {
	if c.tcpConn == nil {
		return errKeepaliveNotSupported
	}

	return c.tcpConn.SetKeepAlive(enabled)
}

func (c *limitConn) SetKeepAlivePeriod(period time.Duration) error {
	if c.tcpConn == nil {
		return errKeepaliveNotSupported
	}

	return c.tcpConn.SetKeepAlivePeriod(period)
}
