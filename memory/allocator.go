package memory

import "errors"

// ErrOutOfMemory is in the error chain of every failed allocation. Cache hits
// never fail; only the fallback to the system allocator can.
var ErrOutOfMemory = errors.New("poolmem: out of memory")

// Allocator is the protocol container implementations consume. It hands out
// raw, unconstructed storage for elements of T and takes it back without
// touching element lifetimes.
type Allocator[T any] interface {
	// Allocate returns storage for n elements. The storage is uninitialized
	// in the sense that recycled cells may hold stale element data.
	Allocate(n int) ([]T, error)

	// Deallocate releases storage previously returned by Allocate with the
	// same element count n. A nil p or zero n is a no-op. Passing a p/n pair
	// that no Allocate returned is undefined behavior.
	Deallocate(p []T, n int)

	// Equal reports whether storage obtained from this allocator may be
	// released through other, and vice versa. Containers use it to decide
	// whether storage may be shared across instances after copy or move.
	Equal(other Allocator[T]) bool

	// PropagateOnMove reports whether a container must adopt the allocator
	// object itself, rather than re-binding elements, on move-assignment.
	PropagateOnMove() bool
}
