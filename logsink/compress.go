package logsink

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// CloseCompressed flushes and closes the sink, then gzips the resulting
// file in place and removes the uncompressed original. The append-only
// persistence model is unchanged — this only shrinks what is already
// being kept, it does not add a new persistence tier.
func (s *File) CloseCompressed() error {
	if err := s.Close(); err != nil {
		return err
	}

	src, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("logsink: reopening %q for compression: %w", s.Path, err)
	}
	defer src.Close()

	gzPath := s.Path + ".gz"
	dst, err := os.Create(gzPath)
	if err != nil {
		return fmt.Errorf("logsink: creating %q: %w", gzPath, err)
	}
	gw := gzip.NewWriter(dst)

	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		dst.Close()
		return fmt.Errorf("logsink: compressing %q: %w", s.Path, err)
	}
	if err := gw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(s.Path)
}
