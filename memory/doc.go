/*
Package memory provides pluggable allocation strategies for container
implementations.

The central piece is PoolAllocator, a lock-free recycling allocator:
deallocating a single element does not return its storage to the system
allocator but parks it in a per-goroutine cache, and a later single-element
allocation on that goroutine reuses it. Multi-element requests always bypass
the caches and go straight to the system allocator.

Basics

A cache belongs to the goroutine that first allocates through it. Only the
owning goroutine removes cells from its cache; any goroutine may return cells
to it, because every cell carries a back-reference to the cache that minted
it. Deallocation routes by that back-reference, never by the caller, which is
what makes cross-goroutine hand-off of pooled storage work without locks.

Goroutines that allocate through a Pool release their cache with Pool.Release
before exiting; Pool.Close tears down whatever is left once all workers have
stopped. PoolAllocator.Clear hands the calling goroutine's free cells back to
the system allocator immediately, bounding the memory a bursty long-lived
goroutine retains.

The system allocator behind a pool is swappable: GoSystem (the default) leans
on the Go runtime, LimitSystem adds a byte budget and with it a real
out-of-memory failure path, and CheckedSystem tracks live storage for leak
assertions in tests.
*/
package memory
