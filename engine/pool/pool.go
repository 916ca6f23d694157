// Package pool provides a generation-checked slot array.
//
// Slots are addressed by Handle values carrying both the slot index and the
// generation the slot had when it was allocated. Freeing a slot bumps its
// generation, so a Handle kept past the lifetime of its value is detected as
// stale instead of silently aliasing whatever reused the slot.
package pool

// Handle addresses one slot of a Pool. The zero Handle is never live.
type Handle struct {
	Index uint32
	Gen   uint32
}

// Valid reports whether h was ever issued by a Pool.
// A valid Handle may still be stale; use Pool.Live to check liveness.
func (h Handle) Valid() bool {
	return h.Gen != 0
}

type entry[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Pool is a growable slot array of T values with stable addresses.
// Entries are allocated individually so pointers handed out by Alloc and Get
// remain valid while the pool grows; they are invalidated only by Free.
type Pool[T any] struct {
	entries []*entry[T]
	free    []uint32
	live    int
}

// New creates a Pool with room for capacity values before it needs to grow.
//
// Parameters:
//   - capacity: initial slot capacity
//
// Returns:
//   - *Pool[T]: the new pool
func New[T any](capacity int) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool[T]{
		entries: make([]*entry[T], 0, capacity),
	}
}

// Alloc claims a slot, resets it to the zero value of T and returns its handle
// together with a pointer to the stored value.
//
// Returns:
//   - Handle: the handle of the claimed slot
//   - *T: pointer to the zeroed value in the slot
func (p *Pool[T]) Alloc() (Handle, *T) {
	var e *entry[T]
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
		e = p.entries[idx]
	} else {
		idx = uint32(len(p.entries))
		e = &entry[T]{}
		p.entries = append(p.entries, e)
	}
	var zero T
	e.value = zero
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	e.live = true
	p.live++
	return Handle{Index: idx, Gen: e.gen}, &e.value
}

// Free releases the slot addressed by h.
//
// Parameters:
//   - h: the handle to release
//
// Returns:
//   - bool: false if h was stale or never issued
func (p *Pool[T]) Free(h Handle) bool {
	e := p.lookup(h)
	if e == nil {
		return false
	}
	var zero T
	e.value = zero
	e.live = false
	p.free = append(p.free, h.Index)
	p.live--
	return true
}

// Get resolves h to its stored value.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - *T: pointer to the stored value, nil when h is stale
//   - bool: whether h is live
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	e := p.lookup(h)
	if e == nil {
		return nil, false
	}
	return &e.value, true
}

// Live reports whether h addresses a currently allocated slot.
func (p *Pool[T]) Live(h Handle) bool {
	return p.lookup(h) != nil
}

// Len returns the number of live slots.
func (p *Pool[T]) Len() int {
	return p.live
}

// Cap returns the number of slots the pool currently holds, live or free.
func (p *Pool[T]) Cap() int {
	return len(p.entries)
}

// Each calls fn for every live slot in index order until fn returns false.
//
// Parameters:
//   - fn: visitor receiving the slot handle and value
func (p *Pool[T]) Each(fn func(Handle, *T) bool) {
	for i, e := range p.entries {
		if !e.live {
			continue
		}
		if !fn(Handle{Index: uint32(i), Gen: e.gen}, &e.value) {
			return
		}
	}
}

func (p *Pool[T]) lookup(h Handle) *entry[T] {
	if !h.Valid() || int(h.Index) >= len(p.entries) {
		return nil
	}
	e := p.entries[h.Index]
	if !e.live || e.gen != h.Gen {
		return nil
	}
	return e
}
