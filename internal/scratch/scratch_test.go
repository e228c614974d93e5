package scratch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerReentrantAcquirePanics(t *testing.T) {
	w := NewWorker()
	w.Acquire()
	require.Panics(t, func() { w.Acquire() })
	w.Release()
	require.NotPanics(t, func() { w.Acquire() })
}

func TestSparePoolBorrowReturn(t *testing.T) {
	p := NewSparePool(2)
	require.Equal(t, 2, p.Available())

	b1, ok := p.Borrow([]byte("abc"))
	require.True(t, ok)
	require.Equal(t, []byte("abc"), b1)
	require.Equal(t, 1, p.Available())

	b2, ok := p.Borrow([]byte("defg"))
	require.True(t, ok)
	require.Equal(t, 0, p.Available())

	_, ok = p.Borrow([]byte("x"))
	require.False(t, ok, "exhaustion must be reported, never a wait")

	p.Return(b1)
	p.Return(b2)
	require.Equal(t, 2, p.Available())
}
