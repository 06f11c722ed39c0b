package memory

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"unsafe"
)

// CheckedSystem wraps a SystemAllocator with live accounting and caller
// tracking. Tests route a pool through it and assert a zero balance after
// teardown; anything still live is reported with the call site that produced
// it.
type CheckedSystem[T any] struct {
	sys SystemAllocator[T]

	bytes  atomic.Int64
	cells  atomic.Int64
	blocks atomic.Int64

	live sync.Map // uintptr -> *callsite
}

type callsite struct {
	pc   uintptr
	line int
	sz   int
}

// Allocations usually reach the system allocator through the facade, not by
// tests calling it directly, so the recorded caller defaults to the frame
// above the facade dispatch.
const defCheckedCallFrames = 3

// Use POOLMEM_CHECKED_CALL_FRAMES to control how many frames up the caller is
// captured when hunting leaks.
var checkedCallFrames = defCheckedCallFrames

func init() {
	if val, ok := os.LookupEnv("POOLMEM_CHECKED_CALL_FRAMES"); ok {
		if f, err := strconv.Atoi(val); err == nil {
			checkedCallFrames = f
		}
	}
}

func NewCheckedSystem[T any](sys SystemAllocator[T]) *CheckedSystem[T] {
	return &CheckedSystem[T]{sys: sys}
}

// CurrentAlloc reports the bytes currently held by callers or resident in
// caches, i.e. allocated and not yet freed back.
func (s *CheckedSystem[T]) CurrentAlloc() int { return int(s.bytes.Load()) }

// LiveCells reports the number of cells minted and not yet released.
func (s *CheckedSystem[T]) LiveCells() int { return int(s.cells.Load()) }

// LiveBlocks reports the number of multi-element blocks outstanding.
func (s *CheckedSystem[T]) LiveBlocks() int { return int(s.blocks.Load()) }

func (s *CheckedSystem[T]) AllocateCell() (*Cell[T], error) {
	c, err := s.sys.AllocateCell()
	if err != nil {
		return nil, err
	}
	s.cells.Add(1)
	s.bytes.Add(int64(CellSize[T]()))
	s.record(uintptr(unsafe.Pointer(c)), CellSize[T]())
	return c, nil
}

func (s *CheckedSystem[T]) FreeCell(c *Cell[T]) {
	s.cells.Add(-1)
	s.bytes.Add(-int64(CellSize[T]()))
	s.live.Delete(uintptr(unsafe.Pointer(c)))
	s.sys.FreeCell(c)
}

func (s *CheckedSystem[T]) AllocateBlock(n int) ([]T, error) {
	b, err := s.sys.AllocateBlock(n)
	if err != nil {
		return nil, err
	}
	sz := n * elemSize[T]()
	s.blocks.Add(1)
	s.bytes.Add(int64(sz))
	if n > 0 {
		s.record(uintptr(unsafe.Pointer(&b[0])), sz)
	}
	return b, nil
}

func (s *CheckedSystem[T]) FreeBlock(p []T, n int) {
	s.blocks.Add(-1)
	s.bytes.Add(-int64(n * elemSize[T]()))
	if n > 0 {
		s.live.Delete(uintptr(unsafe.Pointer(&p[0])))
	}
	s.sys.FreeBlock(p, n)
}

func (s *CheckedSystem[T]) record(ptr uintptr, sz int) {
	if pc, _, line, ok := runtime.Caller(checkedCallFrames); ok {
		s.live.Store(ptr, &callsite{pc: pc, line: line, sz: sz})
	}
}

// TestingT is the subset of testing.TB that AssertSize reports through.
type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// AssertSize fails t unless exactly sz bytes are outstanding, reporting the
// call site of every live allocation.
func (s *CheckedSystem[T]) AssertSize(t TestingT, sz int) {
	s.live.Range(func(_, value interface{}) bool {
		site := value.(*callsite)
		f := runtime.FuncForPC(site.pc)
		t.Errorf("LEAK of %d bytes FROM %s line %d\n", site.sz, f.Name(), site.line)
		return true
	})

	if int(s.bytes.Load()) != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, s.bytes.Load())
	}
}

var _ SystemAllocator[int] = (*CheckedSystem[int])(nil)
