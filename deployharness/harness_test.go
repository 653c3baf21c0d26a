package deployharness

import (
	"testing"

	"github.com/dstockhouse/mrfusion/mesh"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsDistinctKeys(t *testing.T) {
	h1 := New(nil, nil)
	h2 := New(nil, nil)
	// Not a strict guarantee, but astronomically likely, and this is the
	// one property a "unique per run" key actually needs.
	require.NotEqual(t, h1.Key, h2.Key)
}

func TestInitMessageCarriesHarnessKey(t *testing.T) {
	h := &Harness{StartTime: 1.7e9, Key: 0xDEADBEEF}
	msg := mesh.EncodeInit(mesh.InitMessage{StartTime: h.StartTime, Key: h.Key})
	decoded, err := mesh.DecodeInit(msg[4:])
	require.NoError(t, err)
	require.Equal(t, h.Key, decoded.Key)
}
