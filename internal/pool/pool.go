// Package pool provides a bounded, channel-backed pool of reusable objects.
package pool

// Resettable is implemented by objects that can be returned to a clean state.
type Resettable interface {
	Reset()
}

// Poolable constrains pooled types: resettable and comparable so that nil can be detected.
type Poolable interface {
	Resettable
	comparable
}

// Pool keeps up to capacity idle objects of type T.
type Pool[T Poolable] struct {
	items chan T
}

// New returns a pool holding at most capacity idle objects.
func New[T Poolable](capacity int) *Pool[T] {
	return &Pool[T]{
		items: make(chan T, capacity),
	}
}

// Get takes an idle object out of the pool.
// ok is false when the pool is empty and the caller has to allocate.
func (p *Pool[T]) Get() (item T, ok bool) {
	select {
	case item = <-p.items:
		return item, true
	default:
		return item, false
	}
}

// Put resets item and keeps it for reuse. Zero values are ignored,
// and the item is dropped when the pool is already full.
func (p *Pool[T]) Put(item T) {
	var zero T
	if item == zero {
		return
	}
	item.Reset()

	select {
	case p.items <- item:
	default:
	}
}

// Len reports the number of idle objects.
func (p *Pool[T]) Len() int {
	return len(p.items)
}
