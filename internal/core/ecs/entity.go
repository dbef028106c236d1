package ecs

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release to invalidate stale refs.
// Slot 0 is never handed out, so the zero Handle always means "no owner".
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

// Pool hands out generational slots for values of type T and resolves handles
// back to them. Stale handles resolve to the zero value.
type Pool[T any] struct {
	generations []uint32
	values      []T
	freeList    []uint32
}

func NewPool[T any]() *Pool[T] {
	return &Pool[T]{
		generations: make([]uint32, 1, 256),
		values:      make([]T, 1, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

// Insert stores v in a free slot and returns its handle.
func (p *Pool[T]) Insert(v T) Handle {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.values[idx] = v
		return NewHandle(idx, p.generations[idx])
	}
	idx := uint32(len(p.values))
	p.values = append(p.values, v)
	p.generations = append(p.generations, 1)
	return NewHandle(idx, 1)
}

// Get resolves h. ok is false for zero or stale handles.
func (p *Pool[T]) Get(h Handle) (T, bool) {
	var zero T
	if !p.Alive(h) {
		return zero, false
	}
	return p.values[h.Index()], true
}

func (p *Pool[T]) Alive(h Handle) bool {
	idx := h.Index()
	if idx == 0 || int(idx) >= len(p.values) {
		return false
	}
	return p.generations[idx] == h.Generation()
}

// Release frees the slot behind h. Releasing a stale handle is a no-op.
func (p *Pool[T]) Release(h Handle) {
	if !p.Alive(h) {
		return
	}
	idx := h.Index()
	var zero T
	p.values[idx] = zero
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// Len returns the number of live slots.
func (p *Pool[T]) Len() int {
	return len(p.values) - 1 - len(p.freeList)
}
