package memory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/poolmem/memory"
)

func TestGoSystemBlocks(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"small", 3},
		{"large", 4096},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sys := memory.NewGoSystem[uint32]()
			b, err := sys.AllocateBlock(test.n)
			require.NoError(t, err)
			assert.Len(t, b, test.n)
			for i, v := range b {
				assert.Zero(t, v, "index %d", i)
			}
			sys.FreeBlock(b, test.n)
		})
	}
}

func TestLimitSystemAccounting(t *testing.T) {
	cellSz := int64(memory.CellSize[int64]())
	limit := memory.NewLimitSystem[int64](memory.NewGoSystem[int64](), 2*cellSz+64)

	c1, err := limit.AllocateCell()
	require.NoError(t, err)
	c2, err := limit.AllocateCell()
	require.NoError(t, err)
	assert.Equal(t, 2*cellSz, limit.Used())

	b, err := limit.AllocateBlock(8) // 64 bytes of int64
	require.NoError(t, err)
	assert.Equal(t, 2*cellSz+64, limit.Used())

	_, err = limit.AllocateCell()
	require.Error(t, err)
	assert.ErrorIs(t, err, memory.ErrOutOfMemory)

	limit.FreeBlock(b, 8)
	limit.FreeCell(c1)
	limit.FreeCell(c2)
	assert.Zero(t, limit.Used())
}

func TestLimitSystemOverflow(t *testing.T) {
	limit := memory.NewLimitSystem[int64](memory.NewGoSystem[int64](), math.MaxInt64)

	_, err := limit.AllocateBlock(math.MaxInt)
	require.Error(t, err)
	assert.ErrorIs(t, err, memory.ErrOutOfMemory, "size overflow must surface as out of memory")
}

func TestCheckedSystemTracksLive(t *testing.T) {
	sys := memory.NewCheckedSystem[byte](memory.NewGoSystem[byte]())

	c, err := sys.AllocateCell()
	require.NoError(t, err)
	b, err := sys.AllocateBlock(16)
	require.NoError(t, err)

	assert.Equal(t, 1, sys.LiveCells())
	assert.Equal(t, 1, sys.LiveBlocks())
	assert.Equal(t, memory.CellSize[byte]()+16, sys.CurrentAlloc())

	sys.FreeBlock(b, 16)
	sys.FreeCell(c)
	assert.Equal(t, 0, sys.LiveCells())
	assert.Equal(t, 0, sys.LiveBlocks())
	sys.AssertSize(t, 0)
}
