package nats

import "sync"

// cmdPool is a bounded free list of *Command used to avoid per-publish
// allocation on the hot path (Publish, Ping, Flush). Unlike a bare
// sync.Pool, it is capped at Options.CommandPoolSize per the spec's
// command-pool-size knob, and it tags every rental with a monotonically
// increasing generation so a completion callback captured before a
// command was recycled can detect that it no longer owns the slot.
type cmdPool struct {
	mu   sync.Mutex
	free []*Command
	max  int
	gen  uint64
}

func newCmdPool(max int) *cmdPool {
	if max <= 0 {
		max = 256
	}
	return &cmdPool{max: max}
}

// get rents a Command, zeroed apart from its pool back-reference, tagged
// with a fresh generation.
func (p *cmdPool) get() *Command {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	var c *Command
	if n := len(p.free); n > 0 {
		c = p.free[n-1]
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if c == nil {
		c = &Command{}
	}
	c.reset(gen, p)
	return c
}

// put returns c to the free list if there is room, and is a no-op
// otherwise (the Command is left for the garbage collector).
func (p *cmdPool) put(c *Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) >= p.max {
		return
	}
	p.free = append(p.free, c)
}
