package nats

import (
	"context"
	"time"
)

// Publish sends data to subject with no reply-to, waiting for the write
// to actually reach the socket (or fail) before returning.
func (nc *Conn) Publish(subject string, data []byte) error {
	return nc.publish(subject, "", nil, data)
}

// PublishWithHeader sends data to subject carrying hdr as an HMSG header
// block.
func (nc *Conn) PublishWithHeader(subject string, hdr Header, data []byte) error {
	return nc.publish(subject, "", hdr, data)
}

// PublishRequest sends data to subject with reply set as the subject the
// responder should publish its answer to.
func (nc *Conn) PublishRequest(subject, reply string, data []byte) error {
	return nc.publish(subject, reply, nil, data)
}

func (nc *Conn) publish(subject, reply string, hdr Header, data []byte) error {
	if err := nc.ensureWritable(); err != nil {
		return err
	}
	c := nc.pool.get()
	c.kind = cmdPublish
	c.pub = pubItem{subject: subject, reply: reply, headers: hdr, data: data}
	c.done = make(chan error, 1)
	nc.writerState.enqueue(c)
	return <-c.done
}

// publishRaw is the entry point subRegistry uses to publish request
// responses; it has the same semantics as publish but takes no
// dependency on the Conn's exported method set.
func (nc *Conn) publishRaw(subject, reply string, hdr Header, data []byte) error {
	return nc.publish(subject, reply, hdr, data)
}

// PublishAsync sends data to subject without waiting for the write to
// complete; errors are delivered to the returned channel.
func (nc *Conn) PublishAsync(subject string, data []byte) <-chan error {
	ch := make(chan error, 1)
	if err := nc.ensureWritable(); err != nil {
		ch <- err
		close(ch)
		return ch
	}
	c := nc.pool.get()
	c.kind = cmdPublish
	c.pub = pubItem{subject: subject, data: data}
	c.done = make(chan error, 1)
	nc.writerState.enqueue(c)
	go func() {
		ch <- <-c.done
		close(ch)
	}()
	return ch
}

// PublishNoWait sends data to subject fire-and-forget: the command is
// enqueued and its eventual write outcome, success or failure, is never
// observed by the caller.
func (nc *Conn) PublishNoWait(subject string, data []byte) error {
	if err := nc.ensureWritable(); err != nil {
		return err
	}
	c := nc.pool.get()
	c.kind = cmdPublish
	c.pub = pubItem{subject: subject, data: data}
	nc.writerState.enqueue(c)
	return nil
}

// PublishBatch sends every item in items as a single serialized batch,
// returning only after all of them have reached the socket (or the batch
// write failed).
func (nc *Conn) PublishBatch(items []Msg) error {
	if err := nc.ensureWritable(); err != nil {
		return err
	}
	pubs := make([]pubItem, len(items))
	for i, m := range items {
		pubs[i] = pubItem{subject: m.Subject, reply: m.Reply, headers: m.Header, data: m.Data}
	}
	c := &Command{kind: cmdPublishBatch, pubs: pubs, done: make(chan error, 1)}
	nc.writerState.enqueue(c)
	return <-c.done
}

// DirectWrite enqueues raw, pre-framed protocol bytes, repeated repeat
// times (minimum 1). It exists for callers that have already encoded
// their own wire frames and want to bypass Command construction
// entirely.
func (nc *Conn) DirectWrite(raw []byte, repeat int) error {
	if err := nc.ensureWritable(); err != nil {
		return err
	}
	c := &Command{kind: cmdDirectWrite, raw: raw, repeat: repeat, done: make(chan error, 1)}
	nc.writerState.enqueue(c)
	return <-c.done
}

// Subscribe registers an asynchronous handler for subject.
func (nc *Conn) Subscribe(subject string, h MsgHandler) (*Subscription, error) {
	if err := nc.ensureWritable(); err != nil {
		return nil, err
	}
	return nc.subs.add(subject, "", h), nil
}

// QueueSubscribe registers h as one member of the named queue group:
// the server load-balances matching messages across the group's active
// members.
func (nc *Conn) QueueSubscribe(subject, queue string, h MsgHandler) (*Subscription, error) {
	if err := nc.ensureWritable(); err != nil {
		return nil, err
	}
	return nc.subs.add(subject, queue, h), nil
}

// SubscribeRequest installs fn as the responder for subject: every
// inbound message is passed to fn, and a non-nil response is published
// back to the message's reply-to, per spec.md §4.4's server-side
// request/response pattern.
func (nc *Conn) SubscribeRequest(subject string, fn RequestHandler) (*Subscription, error) {
	if err := nc.ensureWritable(); err != nil {
		return nil, err
	}
	return nc.subs.addRequestHandler(subject, fn), nil
}

// Request publishes data to subject and blocks for a single reply on a
// connection-wide inbox, or until ctx is done.
func (nc *Conn) Request(ctx context.Context, subject string, data []byte) (*Msg, error) {
	return nc.RequestWithHeader(ctx, subject, nil, data)
}

// RequestWithHeader is Request with an explicit header block.
func (nc *Conn) RequestWithHeader(ctx context.Context, subject string, hdr Header, data []byte) (*Msg, error) {
	if err := nc.ensureWritable(); err != nil {
		return nil, err
	}
	nc.reqs.ensureSubscribed(func(subj string, h MsgHandler) *Subscription {
		sub, _ := nc.Subscribe(subj, h)
		return sub
	})

	id, inbox, result := nc.reqs.newWaiter()
	if err := nc.publish(subject, inbox, hdr, data); err != nil {
		nc.reqs.cancel(id)
		return nil, err
	}

	select {
	case r := <-result:
		if r.err != nil {
			return nil, r.err
		}
		return r.msg, nil
	case <-ctx.Done():
		nc.reqs.cancel(id)
		return nil, ctx.Err()
	}
}

// Ping round-trips a PING/PONG against the server and reports the
// measured latency, or ctx.Err() if ctx is done first.
func (nc *Conn) Ping(ctx context.Context) (time.Duration, error) {
	nc.mu.Lock()
	pt := nc.pingTimer
	nc.mu.Unlock()
	if pt == nil {
		return 0, ErrConnectionClosed
	}

	waitCh := pt.addWaiter()
	c := nc.pool.get()
	c.kind = cmdPing
	c.done = make(chan error, 1)
	nc.writerState.enqueue(c)

	if werr := <-c.done; werr != nil {
		return 0, werr
	}

	select {
	case rtt := <-waitCh:
		return rtt, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Flush blocks until every command enqueued before this call has been
// written to the socket, by enqueuing a PING and waiting for its write
// to complete — it does not wait for the server's PONG.
func (nc *Conn) Flush(ctx context.Context) error {
	c := nc.pool.get()
	c.kind = cmdPing
	c.done = make(chan error, 1)
	nc.writerState.enqueue(c)
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (nc *Conn) ensureWritable() error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	if nc.disposed {
		return ErrDisposed
	}
	return nil
}
