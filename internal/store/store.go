// Package store wraps biogo/hts into the alignment store a block scan
// reads from and writes to: an indexed BAM reader with region queries
// (BAI or CSI), a BAM/SAM record writer sharing the input header, and an
// index builder.
//
// A Store holds its file open and its reader is stateful; it is not safe
// to query from multiple goroutines.
package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/csi"
	"github.com/biogo/hts/sam"
)

var (
	// ErrNoIndex is returned by LoadIndex when no .bai or .csi file is found.
	ErrNoIndex = errors.New("no index")
	// ErrUnknownContig is returned by ResolveContig.
	ErrUnknownContig = errors.New("unknown contig")
	// ErrNotIndexed is returned by Query before LoadIndex succeeded.
	ErrNotIndexed = errors.New("index not loaded")
)

// Store is an open, coordinate-sorted BAM file.
type Store struct {
	path string
	f    *os.File
	r    *bam.Reader
	idx  chunker
	refs map[string]*sam.Reference
}

// Open opens path and reads its header. threads sets the number of
// concurrent BGZF decompressors (minimum 1).
func Open(path string, threads int) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if threads < 1 {
		threads = 1
	}
	br, err := bam.NewReader(f, threads)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	s := &Store{path: path, f: f, r: br, refs: make(map[string]*sam.Reference)}
	for _, ref := range br.Header().Refs() {
		s.refs[ref.Name()] = ref
	}
	return s, nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string { return s.path }

// Header returns the alignment header.
func (s *Store) Header() *sam.Header { return s.r.Header() }

// chunker maps a region to the BGZF chunks that may hold its records.
type chunker interface {
	Chunks(ref *sam.Reference, beg, end int) ([]bgzf.Chunk, error)
}

// csiIndex adapts a CSI index, which is keyed by reference ID.
type csiIndex struct{ idx *csi.Index }

func (c csiIndex) Chunks(ref *sam.Reference, beg, end int) ([]bgzf.Chunk, error) {
	return c.idx.Chunks(ref.ID(), beg, end), nil
}

// IndexPaths lists the locations searched for the index of path, in order:
// BAI beside and in place of the .bam suffix, then CSI.
func IndexPaths(path string) []string {
	out := []string{path + ".bai"}
	trimmed := strings.TrimSuffix(path, ".bam")
	if trimmed != path {
		out = append(out, trimmed+".bai")
	}
	out = append(out, path+".csi")
	if trimmed != path {
		out = append(out, trimmed+".csi")
	}
	return out
}

// LoadIndex reads the first BAI or CSI index found next to the BAM file.
func (s *Store) LoadIndex() error {
	for _, p := range IndexPaths(s.path) {
		f, err := os.Open(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		idx, err := readIndex(f, p)
		f.Close()
		if err != nil {
			return fmt.Errorf("read index %s: %w", p, err)
		}
		s.idx = idx
		return nil
	}
	return fmt.Errorf("%w for %s", ErrNoIndex, s.path)
}

// readIndex decodes a BAI, or a BGZF-compressed CSI when p ends in ".csi".
func readIndex(f *os.File, p string) (chunker, error) {
	if !strings.HasSuffix(p, ".csi") {
		return bam.ReadIndex(f)
	}
	bg, err := bgzf.NewReader(f, 1)
	if err != nil {
		return nil, err
	}
	defer bg.Close()
	idx, err := csi.ReadFrom(bg)
	if err != nil {
		return nil, err
	}
	return csiIndex{idx: idx}, nil
}

// ResolveContig returns the header reference named name.
func (s *Store) ResolveContig(name string) (*sam.Reference, error) {
	ref, ok := s.refs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContig, name)
	}
	return ref, nil
}

// Query returns an iterator over records on ref overlapping the 0-based
// half-open interval [beg, end), in file order.
func (s *Store) Query(ref *sam.Reference, beg, end int) (*Iterator, error) {
	if s.idx == nil {
		return nil, ErrNotIndexed
	}
	it := &Iterator{refID: ref.ID(), beg: beg, end: end}
	if beg >= end {
		return it, nil
	}
	chunks, err := s.idx.Chunks(ref, beg, end)
	if err != nil || len(chunks) == 0 {
		// Contigs without mapped reads have no bins in the index.
		return it, nil
	}
	it.it, err = bam.NewIterator(s.r, chunks)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// Close releases the reader and the underlying file.
func (s *Store) Close() error {
	err := s.r.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Iterator yields the records of one region query. Index chunks cover
// whole bins, so records outside the interval are skipped here.
type Iterator struct {
	it       *bam.Iterator
	refID    int
	beg, end int
	rec      *sam.Record
	err      error
	done     bool
}

// Next advances to the next overlapping record.
func (i *Iterator) Next() bool {
	if i.it == nil || i.done {
		return false
	}
	for i.it.Next() {
		r := i.it.Record()
		if r.Ref == nil || r.Ref.ID() != i.refID {
			continue
		}
		if r.Pos >= i.end {
			// Sorted input: nothing further can overlap.
			i.done = true
			return false
		}
		if endPos(r) <= i.beg {
			continue
		}
		i.rec = r
		return true
	}
	i.err = i.it.Error()
	i.done = true
	return false
}

// Record returns the current record. It is owned by the caller.
func (i *Iterator) Record() *sam.Record { return i.rec }

// Err returns the first decoding error met by Next.
func (i *Iterator) Err() error { return i.err }

// Close stops the iteration.
func (i *Iterator) Close() error {
	i.done = true
	if i.it == nil {
		return nil
	}
	return i.it.Close()
}

// endPos is the 0-based exclusive alignment end. Records that consume no
// reference cover one base at Pos.
func endPos(r *sam.Record) int {
	if e := r.End(); e > r.Pos {
		return e
	}
	return r.Pos + 1
}
