package memory

import (
	"golang.org/x/xerrors"

	"github.com/memkit/poolmem/internal/debug"
)

// PoolAllocator is the recycling allocation strategy. Single-element
// deallocations park storage in per-goroutine caches and single-element
// allocations reuse it; every other request goes straight to the system
// allocator. The zero value allocates through DefaultPool.
type PoolAllocator[T any] struct {
	pool *Pool[T]
}

func (a PoolAllocator[T]) p() *Pool[T] {
	if a.pool != nil {
		return a.pool
	}
	return DefaultPool[T]()
}

// Allocate returns storage for n elements of T. For n == 1 the calling
// goroutine's cache is consulted before the system allocator; recycled cells
// keep their stale contents. A negative n panics.
func (a PoolAllocator[T]) Allocate(n int) ([]T, error) {
	switch {
	case n < 0:
		panic("poolmem: negative element count")

	case n == 0:
		return []T{}, nil

	case n == 1:
		pool := a.p()
		own := pool.current()
		if c := own.pop(); c != nil {
			return c.storage(), nil
		}
		c, err := pool.sys.AllocateCell()
		if err != nil {
			return nil, xerrors.Errorf("poolmem: mint cell: %w", err)
		}
		c.owner = own
		return c.storage(), nil

	default:
		b, err := a.p().sys.AllocateBlock(n)
		if err != nil {
			return nil, xerrors.Errorf("poolmem: block of %d elements: %w", n, err)
		}
		return b, nil
	}
}

// Deallocate releases storage previously returned by Allocate with the same
// n. A single cell is pushed onto the cache that minted it, wherever the
// call happens; larger blocks go straight back to the system allocator. A
// nil p or zero n is a no-op.
func (a PoolAllocator[T]) Deallocate(p []T, n int) {
	if p == nil || n == 0 {
		return
	}
	debug.Assert(n == len(p), "poolmem: deallocate count does not match allocation")
	if n == 1 {
		c := cellOf(&p[0])
		c.owner.push(c)
		return
	}
	a.p().sys.FreeBlock(p, n)
}

// Clear empties the calling goroutine's cache, handing every currently free
// cell back to the system allocator instead of waiting for Pool.Release.
// Long-lived goroutines that allocate in bursts use it to bound retained
// memory. Reports the number of cells released. Not part of the Allocator
// protocol.
func (a PoolAllocator[T]) Clear() int {
	return a.p().current().drain()
}

// Equal reports whether storage from a may be released through other. It is
// true for any other PoolAllocator of the same element type, whichever pool
// it is bound to: single cells route by their own back-reference, and blocks
// release through the releasing facade's pool, so pools must share a system
// allocator for bulk storage to cross between them.
func (a PoolAllocator[T]) Equal(other Allocator[T]) bool {
	_, ok := other.(PoolAllocator[T])
	return ok
}

// PropagateOnMove reports that containers must adopt the allocator itself on
// move-assignment rather than moving elements one by one.
func (a PoolAllocator[T]) PropagateOnMove() bool { return true }

var _ Allocator[int] = PoolAllocator[int]{}
