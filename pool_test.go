package nats

import "testing"

func TestCmdPoolReuseAndGeneration(t *testing.T) {
	p := newCmdPool(2)

	c1 := p.get()
	gen1 := c1.gen
	p.put(c1)

	c2 := p.get()
	if c2 != c1 {
		t.Fatal("get() after put() did not reuse the freed command")
	}
	if c2.gen == gen1 {
		t.Fatal("generation was not bumped on reuse")
	}
}

func TestCmdPoolBoundedFreeList(t *testing.T) {
	p := newCmdPool(1)
	a := p.get()
	b := p.get()
	p.put(a)
	p.put(b) // pool already has 1 free, this one is dropped

	if len(p.free) != 1 {
		t.Fatalf("free list length = %d, want 1", len(p.free))
	}
}

func TestCmdCompleteReturnsToPool(t *testing.T) {
	p := newCmdPool(4)
	c := p.get()
	c.done = make(chan error, 1)
	c.complete(nil)

	if err := <-c.done; err != nil {
		t.Fatalf("complete(nil) delivered err = %v, want nil", err)
	}
	if len(p.free) != 1 {
		t.Fatalf("complete() did not return command to pool")
	}
}
