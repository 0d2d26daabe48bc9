package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// ErrHeaderWrite is returned by Create when the destination opened but
// the header could not be written to it.
var ErrHeaderWrite = errors.New("write header")

type recordWriter interface {
	Write(*sam.Record) error
}

// Writer writes alignment records to a file. Output is BAM unless the
// path ends in ".sam".
type Writer struct {
	path string
	f    *os.File
	w    recordWriter
	c    io.Closer // BGZF stream; nil for SAM
}

// Create opens path and writes h to it. threads sets the number of
// concurrent BGZF compressors for BAM output.
func Create(path string, h *sam.Header, threads int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if threads < 1 {
		threads = 1
	}
	w := &Writer{path: path, f: f}
	if filepath.Ext(path) == ".sam" {
		sw, err := sam.NewWriter(f, h, sam.FlagDecimal)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w to %s: %v", ErrHeaderWrite, path, err)
		}
		w.w = sw
		return w, nil
	}
	bw, err := bam.NewWriter(f, h, threads)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w to %s: %v", ErrHeaderWrite, path, err)
	}
	w.w, w.c = bw, bw
	return w, nil
}

// Path returns the destination path.
func (w *Writer) Path() string { return w.path }

// Write appends r unchanged.
func (w *Writer) Write(r *sam.Record) error { return w.w.Write(r) }

// Close flushes the stream, writes the BGZF EOF marker for BAM, and closes
// the file.
func (w *Writer) Close() error {
	var err error
	if w.c != nil {
		err = w.c.Close()
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Indexable reports whether files written to path can carry a BAI index.
func Indexable(path string) bool { return filepath.Ext(path) == ".bam" }
