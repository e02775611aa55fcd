package history

// Ring is a fixed-capacity double-ended queue backed by a circular slice.
// Pushing onto a full ring evicts from the opposite end.
type Ring[T any] struct {
	buf   []T
	head  int
	count int
}

// NewRing returns an empty ring holding at most capacity items. A capacity
// below one is raised to one.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Len returns the number of stored items.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// PushBack appends v, evicting the front item when full. The evicted item is
// returned with ok set.
func (r *Ring[T]) PushBack(v T) (evicted T, ok bool) {
	if r.count == len(r.buf) {
		evicted, ok = r.buf[r.head], true
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		return evicted, ok
	}
	r.buf[(r.head+r.count)%len(r.buf)] = v
	r.count++
	return evicted, false
}

// PushFront prepends v, evicting the back item when full.
func (r *Ring[T]) PushFront(v T) (evicted T, ok bool) {
	r.head = (r.head - 1 + len(r.buf)) % len(r.buf)
	if r.count == len(r.buf) {
		evicted, ok = r.buf[r.head], true
		r.buf[r.head] = v
		return evicted, ok
	}
	r.buf[r.head] = v
	r.count++
	return evicted, false
}

// At returns the i-th item counted from the front.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.count {
		panic("history: ring index out of range")
	}
	return r.buf[(r.head+i)%len(r.buf)]
}

// Items copies the contents front to back.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.count)
	for i := range out {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// IndexFunc returns the position of the first item satisfying fn, or -1.
func (r *Ring[T]) IndexFunc(fn func(T) bool) int {
	for i := 0; i < r.count; i++ {
		if fn(r.buf[(r.head+i)%len(r.buf)]) {
			return i
		}
	}
	return -1
}

// Reset drops every item and releases references held by the buffer.
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head = 0
	r.count = 0
}
