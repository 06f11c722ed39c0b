// Package vector implements a minimal contiguous container driven entirely
// through the memory.Allocator protocol. It is the consumer side of the
// allocator contract: storage crossing between vectors is governed by the
// allocators' Equal and PropagateOnMove answers.
package vector

import "github.com/memkit/poolmem/memory"

// Vector holds a sequence of T in a single allocator-owned block. The zero
// value is an empty vector backed by a pooled allocator.
type Vector[T any] struct {
	mem  memory.Allocator[T]
	data []T
	size int
}

// New returns an empty vector backed by mem. A nil mem selects a pooled
// allocator.
func New[T any](mem memory.Allocator[T]) *Vector[T] {
	if mem == nil {
		mem = memory.PoolAllocator[T]{}
	}
	return &Vector[T]{mem: mem}
}

// Allocator returns the allocator currently backing v.
func (v *Vector[T]) Allocator() memory.Allocator[T] {
	if v.mem == nil {
		v.mem = memory.PoolAllocator[T]{}
	}
	return v.mem
}

func (v *Vector[T]) Len() int { return v.size }

func (v *Vector[T]) Cap() int { return len(v.data) }

func (v *Vector[T]) Get(i int) T {
	if i < 0 || i >= v.size {
		panic("vector: index out of range")
	}
	return v.data[i]
}

func (v *Vector[T]) Set(i int, x T) {
	if i < 0 || i >= v.size {
		panic("vector: index out of range")
	}
	v.data[i] = x
}

// Reserve grows the capacity to at least n elements. Existing elements are
// carried over; the old block goes back to the allocator.
func (v *Vector[T]) Reserve(n int) error {
	if n <= len(v.data) {
		return nil
	}
	data, err := v.Allocator().Allocate(memory.NextPowerOf2(n))
	if err != nil {
		return err
	}
	copy(data, v.data[:v.size])
	v.free()
	v.data = data
	return nil
}

// Append adds x at the end, growing the capacity by powers of two. The first
// element lands in single-cell storage, so small vectors ride the recycling
// path.
func (v *Vector[T]) Append(x T) error {
	if v.size == len(v.data) {
		grow := 2 * v.size
		if grow == 0 {
			grow = 1
		}
		if err := v.Reserve(grow); err != nil {
			return err
		}
	}
	v.data[v.size] = x
	v.size++
	return nil
}

// Release returns the storage to the allocator and empties the vector. The
// vector remains usable.
func (v *Vector[T]) Release() {
	v.free()
	v.data = nil
	v.size = 0
}

// MoveFrom move-assigns o into v and leaves o empty. When o's allocator
// propagates on move, v adopts the allocator together with the storage; when
// the two allocators compare equal, v steals the storage and keeps its own
// allocator; otherwise elements are copied through v's allocator and o's
// storage is released through o's. In every case exactly one vector owns the
// storage afterwards.
func (v *Vector[T]) MoveFrom(o *Vector[T]) error {
	if v == o {
		return nil
	}
	switch {
	case o.Allocator().PropagateOnMove():
		v.free()
		v.mem = o.mem
		v.data, v.size = o.data, o.size

	case v.Allocator().Equal(o.Allocator()):
		v.free()
		v.data, v.size = o.data, o.size

	default:
		v.Release()
		if err := v.Reserve(o.size); err != nil {
			return err
		}
		copy(v.data, o.data[:o.size])
		v.size = o.size
		o.free()
	}
	o.data = nil
	o.size = 0
	return nil
}

func (v *Vector[T]) free() {
	if v.data != nil {
		v.Allocator().Deallocate(v.data, len(v.data))
	}
}
