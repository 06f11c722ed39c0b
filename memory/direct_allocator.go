package memory

import "golang.org/x/xerrors"

// DirectAllocator forwards every request to the system allocator and
// recycles nothing. It is the baseline the pool is measured against and a
// second protocol implementation for containers that must not retain
// storage. The zero value uses the Go runtime.
type DirectAllocator[T any] struct {
	sys SystemAllocator[T]
}

func NewDirectAllocator[T any](sys SystemAllocator[T]) DirectAllocator[T] {
	return DirectAllocator[T]{sys: sys}
}

func (a DirectAllocator[T]) s() SystemAllocator[T] {
	if a.sys != nil {
		return a.sys
	}
	return GoSystem[T]{}
}

func (a DirectAllocator[T]) Allocate(n int) ([]T, error) {
	switch {
	case n < 0:
		panic("poolmem: negative element count")
	case n == 0:
		return []T{}, nil
	default:
		b, err := a.s().AllocateBlock(n)
		if err != nil {
			return nil, xerrors.Errorf("poolmem: block of %d elements: %w", n, err)
		}
		return b, nil
	}
}

// Deallocate hands the block back to the system allocator of the releasing
// instance.
func (a DirectAllocator[T]) Deallocate(p []T, n int) {
	if p == nil || n == 0 {
		return
	}
	a.s().FreeBlock(p, n)
}

func (a DirectAllocator[T]) Equal(other Allocator[T]) bool {
	_, ok := other.(DirectAllocator[T])
	return ok
}

func (a DirectAllocator[T]) PropagateOnMove() bool { return true }

var _ Allocator[int] = DirectAllocator[int]{}
