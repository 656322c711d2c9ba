package nats

import "sync/atomic"

// cmdQueue is an unbounded multi-producer/single-consumer queue of
// commands awaiting serialization. It is a Michael & Scott style linked
// queue: push (producer side) is lock-free via a single CAS-free atomic
// swap on the head pointer (safe with any number of concurrent pushers
// because each producer only ever links its own node after claiming the
// previous head), and pop (consumer side) is only ever called from the
// single writer-loop goroutine, so it needs no synchronization at all.
//
// Per spec.md §9's open question, the queue is intentionally left
// unbounded: there is no capacity parameter and no producer-side
// blocking. Backpressure beyond available process memory is not a
// concern this core addresses.
type cmdQueue struct {
	head atomic.Pointer[cmdNode]
	tail atomic.Pointer[cmdNode]
	size atomic.Int64

	// notify wakes the writer loop's select when it may be worth
	// popping again. Buffered(1): a single pending wakeup is enough
	// since the consumer drains until empty on every wakeup.
	notify chan struct{}
}

type cmdNode struct {
	next atomic.Pointer[cmdNode]
	cmd  *Command
}

func newCmdQueue() *cmdQueue {
	q := &cmdQueue{notify: make(chan struct{}, 1)}
	stub := &cmdNode{}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// push enqueues c. Safe for any number of concurrent callers.
func (q *cmdQueue) push(c *Command) {
	n := &cmdNode{cmd: c}
	prev := q.head.Swap(n)
	prev.next.Store(n)
	q.size.Add(1)
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop removes and returns the oldest command, or nil if the queue is
// currently empty. Must only be called from the single consumer
// goroutine (the writer loop).
func (q *cmdQueue) pop() *Command {
	tail := q.tail.Load()
	next := tail.next.Load()
	if next == nil {
		return nil
	}
	q.tail.Store(next)
	c := next.cmd
	next.cmd = nil
	q.size.Add(-1)
	return c
}

func (q *cmdQueue) Len() int { return int(q.size.Load()) }

// wait returns the channel the writer loop selects on to be woken when a
// push makes the queue non-empty.
func (q *cmdQueue) wait() <-chan struct{} { return q.notify }
