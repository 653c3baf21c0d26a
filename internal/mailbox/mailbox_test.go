package mailbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBeforePublishReturnsNotValid(t *testing.T) {
	b := New[int]()
	_, ok := b.Load()
	require.False(t, ok)
}

func TestPublishThenLoadRoundTrips(t *testing.T) {
	b := New[string]()
	b.Publish("first")
	v, ok := b.Load()
	require.True(t, ok)
	require.Equal(t, "first", v)

	b.Publish("second")
	v, ok = b.Load()
	require.True(t, ok)
	require.Equal(t, "second", v)
}
