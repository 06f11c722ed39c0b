package memory

import (
	"reflect"
	"sync"

	"github.com/petermattis/goid"
)

// Pool holds the state every PoolAllocator of one element type shares: the
// system allocator and the registry of per-goroutine caches. A cache is
// created the first time a goroutine allocates a single element through the
// pool and lives until that goroutine calls Release or the pool is closed.
type Pool[T any] struct {
	sys    SystemAllocator[T]
	caches sync.Map // goroutine id (int64) -> *cache[T]
}

// Option configures a Pool.
type Option[T any] func(*Pool[T])

// WithSystemAllocator routes the pool's cell and block requests through sys
// instead of the Go runtime.
func WithSystemAllocator[T any](sys SystemAllocator[T]) Option[T] {
	return func(p *Pool[T]) { p.sys = sys }
}

func NewPool[T any](opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{sys: NewGoSystem[T]()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Allocator returns a facade bound to p. Facades carry no state of their own;
// every facade of one pool observes the same cache on any given goroutine.
func (p *Pool[T]) Allocator() PoolAllocator[T] {
	return PoolAllocator[T]{pool: p}
}

// current returns the calling goroutine's cache, creating and registering it
// on first use.
func (p *Pool[T]) current() *cache[T] {
	id := goid.Get()
	if c, ok := p.caches.Load(id); ok {
		return c.(*cache[T])
	}
	c, _ := p.caches.LoadOrStore(id, newCache[T](p.sys, id))
	return c.(*cache[T])
}

// Release is the owner-side exit hook: it tears down the calling goroutine's
// cache and returns every resident cell to the system allocator. Goroutines
// that allocated through the pool call it, usually deferred, before exiting.
// Cells of this cache still in flight elsewhere remain valid; freeing them
// later hands them straight back to the system allocator. Reports the number
// of cells released.
func (p *Pool[T]) Release() int {
	c, ok := p.caches.LoadAndDelete(goid.Get())
	if !ok {
		return 0
	}
	return c.(*cache[T]).close()
}

// Close tears down every cache still registered. Only meaningful once no
// goroutine allocates through the pool anymore. Reports the number of cells
// released.
func (p *Pool[T]) Close() int {
	released := 0
	p.caches.Range(func(key, value interface{}) bool {
		p.caches.Delete(key)
		released += value.(*cache[T]).close()
		return true
	})
	return released
}

// defaultPools indexes the process-wide pools that back zero value facades,
// one per element type.
var defaultPools sync.Map // reflect.Type -> *Pool[T]

// DefaultPool returns the process-wide pool for T.
func DefaultPool[T any]() *Pool[T] {
	key := reflect.TypeOf((*T)(nil))
	if p, ok := defaultPools.Load(key); ok {
		return p.(*Pool[T])
	}
	p, _ := defaultPools.LoadOrStore(key, NewPool[T]())
	return p.(*Pool[T])
}
