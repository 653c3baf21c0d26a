package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndCopyOutRoundTrip(t *testing.T) {
	b := New()
	src := []byte("hello mr fusion")
	n := b.AppendMany(src)
	require.Equal(t, len(src), n)

	dst := make([]byte, b.Len())
	got := b.CopyOut(dst, 0)
	require.Equal(t, len(src), got)
	require.Equal(t, src, dst)
}

func TestFullRejectsAppend(t *testing.T) {
	b := New()
	filler := make([]byte, Usable)
	n := b.AppendMany(filler)
	require.Equal(t, Usable, n)
	require.True(t, b.IsFull())
	require.False(t, b.Append('x'))
}

func TestRemoveFrontClampsToLength(t *testing.T) {
	b := New()
	b.AppendMany([]byte("abc"))
	removed := b.RemoveFront(100)
	require.Equal(t, 3, removed)
	require.Equal(t, 0, b.Len())
}

func TestInvariantsAfterWraparound(t *testing.T) {
	b := New()
	// Force the start/end pointers to wrap by cycling append/remove.
	for i := 0; i < Capacity*2; i++ {
		b.Append(byte(i))
		if i%3 == 0 {
			b.RemoveFront(1)
		}
		require.True(t, b.Len() >= 0 && b.Len() <= Usable)
		require.Equal(t, b.IsFull(), b.Len() == Usable)
	}
}

func TestIndexByte(t *testing.T) {
	b := New()
	b.AppendMany([]byte("abc*def"))
	require.Equal(t, 3, b.IndexByte('*', 0))
	require.Equal(t, -1, b.IndexByte('Z', 0))
}
