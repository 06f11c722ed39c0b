package memory

import (
	"sync/atomic"

	"github.com/JohnCGriffin/overflow"
	"golang.org/x/xerrors"
)

// SystemAllocator supplies raw storage to the pool and takes it back. It is
// the only collaborator that can fail: a failed request carries
// ErrOutOfMemory in its chain. A free must present the exact object or
// pointer/count pair of a prior successful request.
type SystemAllocator[T any] interface {
	AllocateCell() (*Cell[T], error)
	FreeCell(c *Cell[T])
	AllocateBlock(n int) ([]T, error)
	FreeBlock(p []T, n int)
}

// GoSystem is the default SystemAllocator, backed by the Go runtime. It never
// reports out-of-memory (the runtime aborts instead) and its frees only drop
// references for the collector.
type GoSystem[T any] struct{}

func NewGoSystem[T any]() GoSystem[T] { return GoSystem[T]{} }

func (GoSystem[T]) AllocateCell() (*Cell[T], error) { return new(Cell[T]), nil }

func (GoSystem[T]) FreeCell(*Cell[T]) {}

func (GoSystem[T]) AllocateBlock(n int) ([]T, error) { return make([]T, n), nil }

func (GoSystem[T]) FreeBlock([]T, int) {}

// LimitSystem enforces a byte budget on another SystemAllocator. It is how
// the pool gets a concrete failure path: GoSystem cannot fail, a limited one
// can. Cells are accounted at CellSize, blocks at n times the element size,
// identically on the allocate and the free side.
type LimitSystem[T any] struct {
	sys   SystemAllocator[T]
	limit int64
	used  atomic.Int64
}

func NewLimitSystem[T any](sys SystemAllocator[T], limit int64) *LimitSystem[T] {
	return &LimitSystem[T]{sys: sys, limit: limit}
}

// Used reports the bytes currently drawn from the budget.
func (s *LimitSystem[T]) Used() int64 { return s.used.Load() }

func (s *LimitSystem[T]) AllocateCell() (*Cell[T], error) {
	if err := s.reserve(CellSize[T]()); err != nil {
		return nil, err
	}
	c, err := s.sys.AllocateCell()
	if err != nil {
		s.used.Add(-int64(CellSize[T]()))
		return nil, err
	}
	return c, nil
}

func (s *LimitSystem[T]) FreeCell(c *Cell[T]) {
	s.sys.FreeCell(c)
	s.used.Add(-int64(CellSize[T]()))
}

func (s *LimitSystem[T]) AllocateBlock(n int) ([]T, error) {
	sz, ok := overflow.Mul(n, elemSize[T]())
	if !ok {
		return nil, xerrors.Errorf("poolmem: block of %d elements overflows: %w", n, ErrOutOfMemory)
	}
	if err := s.reserve(sz); err != nil {
		return nil, err
	}
	b, err := s.sys.AllocateBlock(n)
	if err != nil {
		s.used.Add(-int64(sz))
		return nil, err
	}
	return b, nil
}

func (s *LimitSystem[T]) FreeBlock(p []T, n int) {
	s.sys.FreeBlock(p, n)
	s.used.Add(-int64(n * elemSize[T]()))
}

func (s *LimitSystem[T]) reserve(sz int) error {
	for {
		used := s.used.Load()
		if used+int64(sz) > s.limit {
			return xerrors.Errorf("poolmem: %d byte request exceeds limit %d (used %d): %w",
				sz, s.limit, used, ErrOutOfMemory)
		}
		if s.used.CompareAndSwap(used, used+int64(sz)) {
			return nil
		}
	}
}

var (
	_ SystemAllocator[int] = GoSystem[int]{}
	_ SystemAllocator[int] = (*LimitSystem[int])(nil)
)
