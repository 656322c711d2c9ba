package nats

import "sync"

// MsgHandler processes messages delivered to an asynchronous subscriber.
type MsgHandler func(*Msg)

// RequestHandler handles an inbound request and returns the response to
// publish back to the message's reply-to subject. A nil response with a
// nil error sends no reply.
type RequestHandler func(*Msg) (*Msg, error)

// Subscription represents interest in a subject, owned by a subRegistry
// for as long as it is active.
type Subscription struct {
	mu      sync.Mutex
	id      uint64
	subject string
	queue   string

	handler    MsgHandler
	reqHandler RequestHandler

	registry *subRegistry
	closed   bool
}

// Unsubscribe releases the subscription: it is removed from the registry
// and an UNSUB is enqueued to the server.
func (s *Subscription) Unsubscribe() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrBadSubscription
	}
	s.closed = true
	reg := s.registry
	id := s.id
	s.mu.Unlock()
	if reg == nil {
		return ErrBadSubscription
	}
	reg.remove(id)
	return nil
}

// Subject reports the subscription's subject.
func (s *Subscription) Subject() string { return s.subject }

// subRegistry maps subscription id -> Subscription, assigns ids, and
// drives the SUB/UNSUB commands onto the writer's queue. Routing is
// strictly by sid, matching the server's own sid-binds-to-subject model
// (spec.md §4.4).
type subRegistry struct {
	mu   sync.Mutex
	subs map[uint64]*Subscription
	next uint64

	enqueue func(*Command)
	publish func(subject, reply string, hdr Header, data []byte) error
	logger  Logger
}

func newSubRegistry(enqueue func(*Command), publish func(subject, reply string, hdr Header, data []byte) error, logger Logger) *subRegistry {
	if logger == nil {
		logger = nopLoggerInstance
	}
	return &subRegistry{
		subs:    make(map[uint64]*Subscription),
		enqueue: enqueue,
		publish: publish,
		logger:  logger,
	}
}

// add registers a new subscription and enqueues its SUB command.
func (r *subRegistry) add(subject, queue string, h MsgHandler) *Subscription {
	r.mu.Lock()
	r.next++
	id := r.next
	sub := &Subscription{id: id, subject: subject, queue: queue, handler: h, registry: r}
	r.subs[id] = sub
	r.mu.Unlock()

	r.enqueue(newSubscribeCommand(id, subject, queue))
	return sub
}

// addRequestHandler subscribes subject and routes every inbound message
// through fn, publishing fn's response (if any) to the message's
// reply-to. This is the server-side request/response pattern of
// spec.md §4.4.
func (r *subRegistry) addRequestHandler(subject string, fn RequestHandler) *Subscription {
	r.mu.Lock()
	r.next++
	id := r.next
	sub := &Subscription{id: id, subject: subject, reqHandler: fn, registry: r}
	r.subs[id] = sub
	r.mu.Unlock()

	r.enqueue(newSubscribeCommand(id, subject, ""))
	return sub
}

func (r *subRegistry) remove(id uint64) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
	r.enqueue(newUnsubscribeCommand(id))
}

// listForReplay snapshots every active subscription for SubscribeBatch
// replay on reconnect.
func (r *subRegistry) listForReplay() []subItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]subItem, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, subItem{sid: s.id, subject: s.subject, queue: s.queue})
	}
	return out
}

// dispatch routes an inbound MSG/HMSG payload to its subscription by sid.
// Handler panics are recovered and logged, never propagated to the reader
// loop that called this.
func (r *subRegistry) dispatch(sid uint64, subject, reply string, hdr Header, data []byte) {
	r.mu.Lock()
	sub := r.subs[sid]
	r.mu.Unlock()
	if sub == nil {
		return
	}

	sub.mu.Lock()
	h := sub.handler
	reqH := sub.reqHandler
	sub.mu.Unlock()

	defer recoverInto(r.logger, "subscription handler for "+subject)()

	msg := &Msg{Subject: subject, Reply: reply, Header: hdr, Data: data, Sub: sub}

	if reqH != nil {
		resp, err := reqH(msg)
		if err != nil {
			r.logger.Errorf("nats: request handler for %s returned error: %v", subject, err)
			return
		}
		if resp != nil && reply != "" {
			if err := r.publish(reply, "", resp.Header, resp.Data); err != nil {
				r.logger.Errorf("nats: failed to publish response to %s: %v", reply, err)
			}
		}
		return
	}

	if h != nil {
		h(msg)
	}
}

func (r *subRegistry) clearAll() {
	r.mu.Lock()
	r.subs = make(map[uint64]*Subscription)
	r.mu.Unlock()
}
