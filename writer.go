package nats

import "sync"

// writerState persists across reconnects: the shared buffer, the command
// queue, and the priority lane. A new writerLoop is started against it on
// every (re)connect, but the state itself outlives any single socket.
type writerState struct {
	buf   *buffer
	queue *cmdQueue

	priMu     sync.Mutex
	priority  []*Command
	priNotify chan struct{}
}

func newWriterState(highWater int) *writerState {
	return &writerState{
		buf:       newBuffer(highWater),
		queue:     newCmdQueue(),
		priNotify: make(chan struct{}, 1),
	}
}

// pushPriority appends c to the priority lane, which always drains before
// the regular queue on a new socket (invariant 1 of spec.md §4.2).
func (w *writerState) pushPriority(c *Command) {
	w.priMu.Lock()
	w.priority = append(w.priority, c)
	w.priMu.Unlock()
	select {
	case w.priNotify <- struct{}{}:
	default:
	}
}

func (w *writerState) enqueue(c *Command) { w.queue.push(c) }

// writerLoop is the single consumer of a writerState's priority lane and
// command queue, bound to one socket for its lifetime. It is the only
// goroutine that ever touches the shared buffer.
type writerLoop struct {
	state *writerState
	sock  *socket

	stopCh chan struct{}
	doneCh chan struct{}
}

func runWriterLoop(state *writerState, sock *socket) *writerLoop {
	wl := &writerLoop{
		state:  state,
		sock:   sock,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go wl.run()
	return wl
}

func (wl *writerLoop) run() {
	defer close(wl.doneCh)

	s := wl.state
	var batch []*Command

	flush := func() bool {
		if s.buf.Len() == 0 {
			return true
		}
		_, err := wl.sock.Write(s.buf.Bytes())
		s.buf.Reset()
		if err != nil {
			wf := &WriteFailed{Cause: err}
			for _, c := range batch {
				c.complete(wf)
			}
			batch = batch[:0]
			return false
		}
		for _, c := range batch {
			c.complete(nil)
		}
		batch = batch[:0]
		return true
	}

	drainPriority := func() bool {
		for {
			s.priMu.Lock()
			if len(s.priority) == 0 {
				s.priMu.Unlock()
				return true
			}
			c := s.priority[0]
			s.priority = s.priority[1:]
			s.priMu.Unlock()

			if err := c.serialize(s.buf); err != nil {
				c.complete(err)
				continue
			}
			batch = append(batch, c)
			if s.buf.full() {
				if !flush() {
					return false
				}
			}
		}
	}

	drainQueue := func() bool {
		for {
			c := s.queue.pop()
			if c == nil {
				return true
			}
			if err := c.serialize(s.buf); err != nil {
				c.complete(err)
				continue
			}
			batch = append(batch, c)
			if s.buf.full() {
				if !flush() {
					return false
				}
			}
		}
	}

	if !drainPriority() || !drainQueue() || !flush() {
		return
	}

	for {
		select {
		case <-wl.sock.closed():
			return
		case <-wl.stopCh:
			drainPriority()
			drainQueue()
			flush()
			return
		case <-s.priNotify:
		case <-s.queue.wait():
		}
		if !drainPriority() || !drainQueue() || !flush() {
			return
		}
	}
}

// requestStop asks the loop to drain whatever is currently queued and
// exit, without waiting for the socket to close. Used by dispose().
func (wl *writerLoop) requestStop() {
	select {
	case <-wl.stopCh:
	default:
		close(wl.stopCh)
	}
}

func (wl *writerLoop) wait() { <-wl.doneCh }
