package memory

import "unsafe"

// Cell is the unit the pool recycles: storage for one element of T, the
// free-list link used while the cell is parked in a cache, and a
// back-reference to the cache that minted it.
//
// The element storage is the first field, so a pointer to a pooled element
// is also a pointer to its Cell. The owner field is written once when the
// cell is minted and never changes, even when the cell is freed on another
// goroutine.
type Cell[T any] struct {
	value T
	next  *Cell[T] // meaningful only while the cell sits in a free list
	owner *cache[T]
}

// storage returns the one-element slice handed to allocator callers.
func (c *Cell[T]) storage() []T {
	return unsafe.Slice(&c.value, 1)
}

// cellOf recovers the Cell backing a pooled element.
func cellOf[T any](p *T) *Cell[T] {
	return (*Cell[T])(unsafe.Pointer(p))
}

// CellSize reports the accounting size of one pooled cell of T, link and
// back-reference included. System allocators account cells with this size on
// both the allocate and the free side.
func CellSize[T any]() int {
	return int(unsafe.Sizeof(Cell[T]{}))
}

func elemSize[T any]() int {
	var v T
	return int(unsafe.Sizeof(v))
}
