// Package logsink implements the timestamped, append-only, directory-aware
// file sinks shared by every driver: a raw .log/.bin sink that records
// every byte received, and a .csv sink that records typed, parsed records.
package logsink

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/dstockhouse/mrfusion/mrutil"
)

// Kind selects the sink's file extension and intended content.
type Kind int

const (
	KindRawLog Kind = iota
	KindRawBin
	KindCSV
)

func (k Kind) ext() string {
	switch k {
	case KindRawLog:
		return "log"
	case KindRawBin:
		return "bin"
	case KindCSV:
		return "csv"
	default:
		return "dat"
	}
}

// File is an open, append-only log sink. Writes are not synchronized: a
// File is owned by exactly one goroutine for its lifetime, per the
// module's single-writer log discipline.
type File struct {
	f       *os.File
	w       *bufio.Writer
	Path    string
	Created time.Time
}

// Open creates (or truncates) the canonical-named file
// <dir>/<prefix>-MM.DD.YYYY_HH-MM-SS_<key8>.<ext> and returns a File ready
// for Write/Flush/Close.
func Open(dir, prefix string, t time.Time, key uint32, kind Kind) (*File, error) {
	path, err := mrutil.MakeFilename(dir, prefix, t, key, kind.ext())
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("logsink: creating %q: %w", path, err)
	}
	return &File{
		f:       f,
		w:       bufio.NewWriter(f),
		Path:    path,
		Created: t,
	}, nil
}

// Write appends bytes to the sink's in-process buffer. The bytes are not
// handed to the OS until that buffer fills or Flush or Close is called;
// until then they are not in the file.
func (s *File) Write(b []byte) (int, error) {
	return s.w.Write(b)
}

// WriteCSVRow writes a comma-joined row followed by a newline.
func (s *File) WriteCSVRow(fields ...string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := s.w.WriteString(","); err != nil {
				return err
			}
		}
		if _, err := s.w.WriteString(f); err != nil {
			return err
		}
	}
	_, err := s.w.WriteString("\n")
	return err
}

// Flush forces buffered bytes to the underlying file.
func (s *File) Flush() error {
	return s.w.Flush()
}

// Close flushes and closes the sink.
func (s *File) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
