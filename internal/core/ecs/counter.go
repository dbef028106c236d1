package ecs

import "strconv"

// Counter is a monotonic integer source. It is owned by one engine context;
// there is no package-level instance.
type Counter struct {
	next int
}

// NewCounter returns a counter whose first Next() yields start.
func NewCounter(start int) *Counter {
	return &Counter{next: start}
}

func (c *Counter) Next() int {
	n := c.next
	c.next++
	return n
}

// Peek returns the value the next call to Next will yield.
func (c *Counter) Peek() int { return c.next }

// KeyAllocator issues keys for components added at runtime: "r0", "r1", ...
// One counter is shared by every actor, so keys are unique process-wide and
// never reused. Keys compare lexicographically ("r10" < "r2").
type KeyAllocator struct {
	counter Counter
}

func NewKeyAllocator() *KeyAllocator {
	return &KeyAllocator{}
}

func (k *KeyAllocator) Next() string {
	return "r" + strconv.Itoa(k.counter.Next())
}

// Issued returns how many keys have been allocated so far.
func (k *KeyAllocator) Issued() int { return k.counter.Peek() }
