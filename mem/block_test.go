package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockPoolAllocRecordsOwner(t *testing.T) {
	t.Parallel()

	pool := NewBlockPool(2)

	b, ok := pool.Alloc(PID(7), 3)
	require.True(t, ok)
	require.Equal(t, BlockNo(0), b)

	_, ok = pool.Alloc(PID(8), 0)
	require.True(t, ok)

	_, ok = pool.Alloc(PID(9), 0)
	require.False(t, ok, "pool of 2 blocks must not hand out a third")
}

func TestBlockPoolFreeIgnoresNoBlock(t *testing.T) {
	t.Parallel()

	pool := NewBlockPool(1)
	require.NotPanics(t, func() { pool.Free(NoBlock) })
}

func TestBlockPoolInUse(t *testing.T) {
	t.Parallel()

	pool := NewBlockPool(3)
	b0, _ := pool.Alloc(PID(1), 0)
	_, _ = pool.Alloc(PID(1), 1)
	require.Equal(t, 2, pool.InUse())

	pool.Free(b0)
	require.Equal(t, 1, pool.InUse())
}
