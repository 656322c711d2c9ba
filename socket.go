package nats

import (
	"context"
	"net"
	"sync"
)

// socket is the stream transport abstraction: a plain TCP or TLS-upgraded
// connection with connect, read, write, abort and wait-closed semantics.
// The reader and writer loops depend on this, never on net.Conn directly,
// so reconnect can swap the underlying transport without either loop
// knowing the difference.
type socket struct {
	conn net.Conn

	closeOnce sync.Once
	closedCh  chan struct{}

	errMu sync.Mutex
	err   error
}

func newSocket(conn net.Conn) *socket {
	return &socket{conn: conn, closedCh: make(chan struct{})}
}

// dialSocket opens a plain TCP connection to addr.
func dialSocket(ctx context.Context, addr string) (*socket, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return newSocket(conn), nil
}

func (s *socket) Read(p []byte) (int, error) {
	n, err := s.conn.Read(p)
	if err != nil {
		s.abort(err)
	}
	return n, err
}

func (s *socket) Write(p []byte) (int, error) {
	n, err := s.conn.Write(p)
	if err != nil {
		s.abort(err)
		return n, err
	}
	return n, nil
}

// abort tears the socket down exactly once, recording err as the cause and
// closing the wait-closed channel. Safe to call concurrently and
// repeatedly; only the first call has any effect.
func (s *socket) abort(err error) {
	s.closeOnce.Do(func() {
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
		_ = s.conn.Close()
		close(s.closedCh)
	})
}

// closed returns a channel that is closed once the socket has been
// aborted, by either end.
func (s *socket) closed() <-chan struct{} { return s.closedCh }

func (s *socket) closeErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}
