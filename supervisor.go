package nats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// superviseReconnect watches sock for its closed signal and, once it
// fires (and the connection has not been disposed), drives the
// reconnect loop of spec.md §4.1: Open -> Reconnecting -> Open, with
// jittered backoff across candidate URLs, until a new socket is
// established or the connection is disposed out from under it.
func (nc *Conn) superviseReconnect(sock *socket) {
	if sock == nil {
		return
	}
	var g errgroup.Group
	g.Go(func() error {
		<-sock.closed()

		nc.mu.Lock()
		disposed := nc.disposed
		nc.mu.Unlock()
		if disposed {
			return nil
		}

		newSock, err := nc.reconnectLoop()
		if err != nil {
			// Only returned when disposed mid-loop; nothing left to
			// supervise.
			return nil
		}
		nc.superviseReconnect(newSock)
		return nil
	})
	_ = g.Wait()
}

// reconnectLoop performs the Open->Reconnecting transition and retries
// candidate URLs with jittered backoff until one succeeds or the
// connection is disposed.
func (nc *Conn) reconnectLoop() (*socket, error) {
	nc.mu.Lock()
	if nc.disposed {
		nc.mu.Unlock()
		return nil, ErrDisposed
	}
	nc.state = Reconnecting
	lastURL := nc.lastURL
	pt := nc.pingTimer
	oldWriter := nc.writerL
	nc.openSig = newSignal()
	nc.mu.Unlock()

	if pt != nil {
		pt.stop()
	}
	nc.reqs.reset()

	// The old writer loop still owns nc.writerState's buffer and queue
	// (single-consumer, per queue.go); connectOnce below starts a new
	// writer loop over that same state, so the old one must be fully
	// stopped first or the two race on the same buffer/queue. This
	// mirrors Dispose()'s requestStop/wait pairing. The old reader is
	// disposed fire-and-forget — it has no shared mutable state with a
	// new reader loop.
	if oldWriter != nil {
		oldWriter.requestStop()
		oldWriter.wait()
	}

	backoff := nc.opts.ReconnectWait
	jitter := nc.opts.ReconnectJitter

	for {
		nc.mu.Lock()
		if nc.disposed {
			nc.mu.Unlock()
			return nil, ErrDisposed
		}
		connectURLs := nc.info.ConnectURLs
		nc.mu.Unlock()

		candidates := buildCandidates(nc.opts.SeedURLs, connectURLs, lastURL, nc.opts.NoRandomize)
		for _, url := range candidates {
			nc.mu.Lock()
			disposed := nc.disposed
			nc.mu.Unlock()
			if disposed {
				return nil, ErrDisposed
			}

			dialCtx, cancel := context.WithTimeout(context.Background(), nc.opts.ConnectTimeout)
			err := nc.connectOnce(dialCtx, url, true)
			cancel()
			if err != nil {
				nc.logger.Warnf("nats: reconnect attempt to %s failed: %v", url, err)
				continue
			}

			nc.mu.Lock()
			sock := nc.sock
			openSig := nc.openSig
			nc.mu.Unlock()
			openSig.done(nil)
			return sock, nil
		}

		wait := jitteredWait(backoff, jitter)
		select {
		case <-time.After(wait):
		case <-nc.closedCh:
			return nil, ErrDisposed
		}
	}
}
