package writers

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression of a row file, chosen from its extension.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	}
	return "none"
}

// CompressionFor maps ".gz" to gzip and ".zst" to zstd.
func CompressionFor(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	}
	return None
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe.
// Useful when downstream consumers (like `head`) close early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

// RowSink is a buffered, optionally compressed row destination.
type RowSink struct {
	path string
	bw   *bufio.Writer
	enc  io.WriteCloser // compressor; nil when uncompressed
	f    io.Closer      // nil for stdout
	rows int
}

// OpenRowSink creates path for writing. "-" writes to stdout (never
// compressed, never closed).
func OpenRowSink(path string, stdout io.Writer) (*RowSink, error) {
	if path == "-" {
		return &RowSink{path: path, bw: bufio.NewWriterSize(stdout, 1<<16)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := &RowSink{path: path, f: f}
	var w io.Writer = f
	switch CompressionFor(path) {
	case Gzip:
		s.enc = gzip.NewWriter(f)
		w = s.enc
	case Zstd:
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		s.enc = enc
		w = enc
	}
	s.bw = bufio.NewWriterSize(w, 1<<16)
	return s, nil
}

// Path returns the destination path.
func (s *RowSink) Path() string { return s.path }

// Rows returns the number of rows written so far, header excluded.
func (s *RowSink) Rows() int { return s.rows }

// WriteHeader writes one header line. An empty header writes nothing.
func (s *RowSink) WriteHeader(h string) error {
	if h == "" {
		return nil
	}
	if _, err := s.bw.WriteString(h); err != nil {
		return err
	}
	return s.bw.WriteByte('\n')
}

// WriteRow writes one pre-rendered row, newline included.
func (s *RowSink) WriteRow(row []byte) error {
	if _, err := s.bw.Write(row); err != nil {
		return err
	}
	s.rows++
	return nil
}

// Close flushes buffered rows, finishes the compressed stream and closes
// the file. The first error wins.
func (s *RowSink) Close() error {
	err := s.bw.Flush()
	if s.enc != nil {
		if cerr := s.enc.Close(); err == nil {
			err = cerr
		}
	}
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
