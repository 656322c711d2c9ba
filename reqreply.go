package nats

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nats-io/nuid"
)

type reqResult struct {
	msg *Msg
	err error
}

// reqRegistry implements the request/response side of spec.md §4.5: a
// single wildcard inbox subscription per connection, request ids
// monotonic within that connection, and a reply subject of
// "{inbox-prefix}{request-id}".
type reqRegistry struct {
	inboxPrefix string

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan *reqResult

	subscribeOnce sync.Once
	subscribe     func(subject string, h MsgHandler) *Subscription
	sub           *Subscription
}

// newReqRegistry builds a registry whose inbox prefix is rooted at
// prefix and suffixed with a process-unique nuid, so two connections in
// the same process (or process restarts) get disjoint reply-subject
// spaces with overwhelming probability.
func newReqRegistry(prefix string) *reqRegistry {
	if prefix == "" {
		prefix = DefaultInboxPrefix
	}
	return &reqRegistry{
		inboxPrefix: fmt.Sprintf("%s%s.", prefix, nuid.Next()),
		pending:     make(map[uint64]chan *reqResult),
	}
}

// ensureSubscribed installs the single wildcard subscription on first
// use. subscribe is the connection's own subscribe entry point.
func (r *reqRegistry) ensureSubscribed(subscribe func(subject string, h MsgHandler) *Subscription) {
	r.subscribeOnce.Do(func() {
		r.subscribe = subscribe
		r.sub = subscribe(r.inboxPrefix+"*", r.onMsg)
	})
}

func (r *reqRegistry) onMsg(m *Msg) {
	tail := strings.TrimPrefix(m.Subject, r.inboxPrefix)
	id, err := strconv.ParseUint(tail, 10, 64)
	if err != nil {
		return
	}
	r.mu.Lock()
	ch := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()
	if ch == nil {
		return
	}
	// Copy: m.Data/m.Header are a view into the reader's buffer that is
	// only valid for the duration of this callback; the waiter reads it
	// on a different goroutine.
	cp := &Msg{Subject: m.Subject, Reply: m.Reply, Sub: m.Sub}
	if m.Data != nil {
		cp.Data = append([]byte(nil), m.Data...)
	}
	if m.Header != nil {
		cp.Header = make(Header, len(m.Header))
		for k, v := range m.Header {
			cp.Header[k] = append([]string(nil), v...)
		}
	}
	ch <- &reqResult{msg: cp}
	close(ch)
}

// newWaiter allocates a fresh request id and reply inbox, and registers a
// one-shot channel for its response.
func (r *reqRegistry) newWaiter() (id uint64, inbox string, result chan *reqResult) {
	r.mu.Lock()
	r.nextID++
	id = r.nextID
	ch := make(chan *reqResult, 1)
	r.pending[id] = ch
	r.mu.Unlock()
	return id, fmt.Sprintf("%s%d", r.inboxPrefix, id), ch
}

// cancel removes a waiter without affecting the socket; used when the
// caller's context is canceled before a response arrives.
func (r *reqRegistry) cancel(id uint64) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// reset fails every pending waiter with ConnectionLost, used on
// Open->Reconnecting.
func (r *reqRegistry) reset() {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[uint64]chan *reqResult)
	r.mu.Unlock()

	for _, ch := range pending {
		ch <- &reqResult{err: ErrConnectionLost}
		close(ch)
	}
}
