package logsink

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenWritesCanonicalFilename(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	f, err := Open(dir, "VN200_IMU", ts, 0xDEADBEEF, KindCSV)
	require.NoError(t, err)
	defer f.Close()

	require.True(t, strings.HasSuffix(f.Path, "_deadbeef.csv"))
	require.Contains(t, f.Path, "VN200_IMU-03.05.2024_12-00-00")

	_, err = os.Stat(f.Path)
	require.NoError(t, err)
}

func TestWriteCSVRowAndFlush(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, "ODOMETRY_K", time.Now(), 1, KindCSV)
	require.NoError(t, err)

	require.NoError(t, f.WriteCSVRow("120", "-118", "1.000"))
	require.NoError(t, f.Flush())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	require.Equal(t, "120,-118,1.000\n", string(data))
}

func TestCloseCompressedProducesGzipAndRemovesOriginal(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, "raw", time.Now(), 2, KindRawBin)
	require.NoError(t, err)
	_, err = f.Write([]byte("raw bytes"))
	require.NoError(t, err)

	path := f.Path
	require.NoError(t, f.CloseCompressed())

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".gz")
	require.NoError(t, err)
}
