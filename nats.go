// Copyright 2012 Apcera Inc. All rights reserved.

// Package nats implements the connection engine for a NATS client: the
// state machine that establishes and maintains a session to a NATS
// server, the pipelined writer, the streaming protocol parser, and the
// subscription/request-response registries. Publish/subscribe sugar,
// JetStream and a service framework are deliberately left to other
// packages built on top of this one.
package nats

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Version is this module's protocol/client version string, sent as part
// of CONNECT.
const Version = "0.1.0"

// State is one of the four connection lifecycle states of spec.md §4.1.
type State int32

const (
	Closed State = iota
	Connecting
	Open
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Conn is the connection engine. At most one reader loop, one writer
// loop, one socket and one ping timer exist at any time; the command
// queue, priority lane and registries persist across reconnects.
type Conn struct {
	opts Options

	mu        sync.Mutex
	state     State
	lastURL   string
	sock      *socket
	reader    *readerLoop
	writerL   *writerLoop
	pingTimer *pingTimer
	info      ServerInfo
	disposed  bool
	openSig   *signal

	writerState *writerState
	subs        *subRegistry
	reqs        *reqRegistry
	pool        *cmdPool
	logger      Logger

	connectSF singleflight.Group
	closedCh  chan struct{}
}

// NewConn builds a Conn from opts without dialing; call Connect to
// establish the session.
func NewConn(opts Options) *Conn {
	nc := &Conn{
		opts:        opts,
		state:       Closed,
		openSig:     newSignal(),
		writerState: newWriterState(opts.HighWaterMark),
		pool:        newCmdPool(opts.CommandPoolSize),
		logger:      opts.Logger,
		closedCh:    make(chan struct{}),
	}
	if nc.logger == nil {
		nc.logger = nopLoggerInstance
	}
	nc.subs = newSubRegistry(nc.writerState.enqueue, nc.publishRaw, nc.logger)
	nc.reqs = newReqRegistry(opts.InboxPrefix)
	return nc
}

// Connect dials the configured seed URLs. Concurrent callers on a Closed
// connection share exactly one in-flight attempt and observe the same
// terminal outcome (spec.md §8); this is implemented with
// golang.org/x/sync/singleflight rather than a hand-rolled mutex+cond.
func (nc *Conn) Connect(ctx context.Context) error {
	_, err, _ := nc.connectSF.Do("connect", func() (interface{}, error) {
		return nil, nc.attemptConnect(ctx)
	})
	return err
}

func (nc *Conn) attemptConnect(ctx context.Context) error {
	nc.mu.Lock()
	if nc.disposed {
		nc.mu.Unlock()
		return ErrDisposed
	}
	if nc.state == Open {
		nc.mu.Unlock()
		return nil
	}
	nc.state = Connecting
	openSig := nc.openSig
	nc.mu.Unlock()

	candidates := buildCandidates(nc.opts.SeedURLs, nil, "", nc.opts.NoRandomize)
	var causes []error
	for _, url := range candidates {
		nc.mu.Lock()
		disposed := nc.disposed
		nc.mu.Unlock()
		if disposed {
			return ErrDisposed
		}

		dialCtx, cancel := context.WithTimeout(ctx, nc.opts.ConnectTimeout)
		err := nc.connectOnce(dialCtx, url, false)
		cancel()
		if err != nil {
			causes = append(causes, err)
			continue
		}

		openSig.done(nil)
		go nc.superviseReconnect(nc.currentSocket())
		return nil
	}

	cerr := &ConnectError{URLs: candidates, Causes: causes}
	nc.mu.Lock()
	nc.state = Closed
	nc.openSig = newSignal()
	nc.mu.Unlock()
	openSig.done(cerr)
	return cerr
}

func (nc *Conn) currentSocket() *socket {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.sock
}

// Status reports the connection's current lifecycle state.
func (nc *Conn) Status() State {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.state
}

// ConnectedURL reports the URL of the socket currently in use, or "" if
// not connected.
func (nc *Conn) ConnectedURL() string {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	if nc.state != Open {
		return ""
	}
	return nc.lastURL
}

// WaitForOpen blocks until the connection reaches Open (returning nil) or
// the current attempt fails (returning its error), or ctx is done.
func (nc *Conn) WaitForOpen(ctx context.Context) error {
	nc.mu.Lock()
	sig := nc.openSig
	nc.mu.Unlock()
	return sig.wait(ctx)
}

// Dispose gracefully shuts the connection down: cancels the ping timer
// and wait-for-open signal, fails all registries, drains the writer (up
// to Options.DrainTimeout; no bound when it is zero), closes the socket,
// then disposes the reader.
// Dispose is a no-op on a connection that is already disposed.
func (nc *Conn) Dispose() {
	nc.mu.Lock()
	if nc.disposed {
		nc.mu.Unlock()
		return
	}
	nc.disposed = true
	nc.state = Closed
	pt := nc.pingTimer
	wl := nc.writerL
	rl := nc.reader
	sock := nc.sock
	nc.mu.Unlock()

	if pt != nil {
		pt.stop()
	}
	nc.openSig.done(ErrDisposed)
	nc.reqs.reset()
	nc.subs.clearAll()

	if wl != nil {
		wl.requestStop()
		if d := nc.opts.DrainTimeout; d > 0 {
			select {
			case <-wl.doneCh:
			case <-time.After(d):
			}
		} else {
			wl.wait()
		}
	}
	if sock != nil {
		sock.abort(ErrDisposed)
	}
	if rl != nil {
		rl.wait()
	}
	close(nc.closedCh)
}
