package memory

import (
	"sync/atomic"

	"github.com/petermattis/goid"
	"golang.org/x/sys/cpu"

	"github.com/memkit/poolmem/internal/debug"
)

// cache is the free list of one owning goroutine. Any goroutine may push a
// cell; only the owner pops. All list transitions are single compare-and-swap
// steps on the head, so pushes and pops on one cache are linearizable and the
// list is never observed half-linked.
//
// A closed cache keeps &c.sentinel as its head. Encoding teardown in the head
// itself means a push can never land on a cache after its final drain: the
// push either wins its CAS before the close does, and the closer releases the
// cell, or it loses, re-reads the sentinel and releases the cell directly.
type cache[T any] struct {
	sys   SystemAllocator[T]
	owner int64 // goroutine id, for assertions

	sentinel Cell[T]

	_    cpu.CacheLinePad
	head atomic.Pointer[Cell[T]]
	_    cpu.CacheLinePad
}

func newCache[T any](sys SystemAllocator[T], owner int64) *cache[T] {
	return &cache[T]{sys: sys, owner: owner}
}

// pop removes the most recently freed cell, or returns nil when the list is
// empty or closed. Owner only: the CAS can lose only to a concurrent push,
// so retries are bounded by the number of in-flight pushers. A cell's next
// link cannot change while it is reachable from the head, because unlinking
// is exclusively the owner's doing.
func (c *cache[T]) pop() *Cell[T] {
	debug.Assert(goid.Get() == c.owner, "cache: pop from non-owning goroutine")
	for {
		top := c.head.Load()
		if top == nil || top == &c.sentinel {
			return nil
		}
		if c.head.CompareAndSwap(top, top.next) {
			top.next = nil
			return top
		}
	}
}

// push parks cl in the cache. Any goroutine may call it; cl must have been
// minted by this cache. If the cache is already closed the cell goes straight
// back to the system allocator.
func (c *cache[T]) push(cl *Cell[T]) {
	debug.Assert(cl.owner == c, "cache: push of foreign cell")
	for {
		top := c.head.Load()
		if top == &c.sentinel {
			c.sys.FreeCell(cl)
			return
		}
		cl.next = top
		if c.head.CompareAndSwap(top, cl) {
			return
		}
	}
}

// drain unlinks every resident cell and releases it to the system allocator,
// leaving the cache usable. Owner only. Reports the number released.
func (c *cache[T]) drain() int {
	debug.Assert(goid.Get() == c.owner, "cache: drain from non-owning goroutine")
	for {
		top := c.head.Load()
		if top == nil || top == &c.sentinel {
			return 0
		}
		if c.head.CompareAndSwap(top, nil) {
			return c.releaseChain(top)
		}
	}
}

// close marks the cache dead and releases every resident cell. Runs exactly
// once per cache, at owner exit or pool teardown. Reports the number
// released.
func (c *cache[T]) close() int {
	for {
		top := c.head.Load()
		if top == &c.sentinel {
			return 0
		}
		if c.head.CompareAndSwap(top, &c.sentinel) {
			return c.releaseChain(top)
		}
	}
}

func (c *cache[T]) closed() bool {
	return c.head.Load() == &c.sentinel
}

func (c *cache[T]) releaseChain(cl *Cell[T]) int {
	released := 0
	for cl != nil {
		next := cl.next
		cl.next = nil
		c.sys.FreeCell(cl)
		released++
		cl = next
	}
	return released
}
