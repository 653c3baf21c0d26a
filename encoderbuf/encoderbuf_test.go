package encoderbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeChip records every instruction byte sequence Tx receives and answers
// ReadCounter's two-phase LOAD/RD exchange with a fixed count.
type fakeChip struct {
	txs    [][]byte
	closed bool
	count  int32
}

func (f *fakeChip) Tx(data []byte) ([]byte, error) {
	cp := append([]byte{}, data...)
	f.txs = append(f.txs, cp)

	if len(data) == 5 && data[0] == opRead|regCNTR {
		v := uint32(f.count)
		return []byte{data[0], byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}, nil
	}
	return append([]byte{}, data...), nil
}

func (f *fakeChip) Close() error {
	f.closed = true
	return nil
}

func TestOpenResetsRegisters(t *testing.T) {
	chip := &fakeChip{}
	_, err := newWithTransceiver(chip)
	require.NoError(t, err)

	require.Equal(t, []byte{opClear | regMDR0}, chip.txs[0])
	require.Equal(t, []byte{opClear | regMDR1}, chip.txs[1])
	require.Equal(t, []byte{opClear | regCNTR}, chip.txs[2])
	require.Equal(t, []byte{opClear | regSTR}, chip.txs[3])
	require.Equal(t, []byte{opWrite | regMDR0, defaultMDR0}, chip.txs[4])
	require.Equal(t, []byte{opWrite | regMDR1, defaultMDR1}, chip.txs[5])
}

func TestReadCounterDecodesBigEndianSignedCount(t *testing.T) {
	chip := &fakeChip{count: -100}
	d, err := newWithTransceiver(chip)
	require.NoError(t, err)

	count, err := d.ReadCounter()
	require.NoError(t, err)
	require.Equal(t, int32(-100), count)

	// ReadCounter latches OTR before reading CNTR back.
	last := chip.txs[len(chip.txs)-2]
	require.Equal(t, []byte{opLoad | regOTR}, last)
}

func TestClearZeroesCounter(t *testing.T) {
	chip := &fakeChip{}
	d, err := newWithTransceiver(chip)
	require.NoError(t, err)

	require.NoError(t, d.Clear())
	require.Equal(t, []byte{opClear | regCNTR}, chip.txs[len(chip.txs)-1])
}

func TestCloseClosesUnderlyingChip(t *testing.T) {
	chip := &fakeChip{}
	d, err := newWithTransceiver(chip)
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.True(t, chip.closed)
}
