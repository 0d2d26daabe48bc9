package store

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/csi"
	"github.com/biogo/hts/sam"
)

// baiMaxLen is the longest reference a BAI can address (2^29 bases).
const baiMaxLen = 1 << 29

// NeedsCSI reports whether h has a reference too long for a BAI index.
func NeedsCSI(h *sam.Header) bool {
	for _, r := range h.Refs() {
		if r.Len() > baiMaxLen {
			return true
		}
	}
	return false
}

// BuildIndex reads the coordinate-sorted BAM file at path and writes its
// index: path+".bai", or path+".csi" when a reference is too long for BAI.
func BuildIndex(path string) error { return buildIndex(path, false) }

// BuildCSI indexes the BAM file at path as CSI, writing path+".csi".
func BuildCSI(path string) error { return buildIndex(path, true) }

// recordIndex accumulates index entries for one BAM file.
type recordIndex interface {
	add(r *sam.Record, c bgzf.Chunk) error
	write(w io.Writer) error
	suffix() string
}

type baiBuilder struct{ idx bam.Index }

func (b *baiBuilder) add(r *sam.Record, c bgzf.Chunk) error { return b.idx.Add(r, c) }
func (b *baiBuilder) write(w io.Writer) error                { return bam.WriteIndex(w, &b.idx) }
func (b *baiBuilder) suffix() string                         { return ".bai" }

type csiBuilder struct{ idx *csi.Index }

func newCSIBuilder(h *sam.Header) (*csiBuilder, error) {
	var longest int64
	for _, r := range h.Refs() {
		if l := int64(r.Len()); l > longest {
			longest = l
		}
	}
	depth, ok := csi.MinimumDepthFor(longest, csi.DefaultShift)
	if !ok {
		return nil, fmt.Errorf("reference of %d bases cannot be indexed", longest)
	}
	if depth < csi.DefaultDepth {
		depth = csi.DefaultDepth
	}
	return &csiBuilder{idx: csi.New(csi.DefaultShift, int(depth))}, nil
}

func (b *csiBuilder) add(r *sam.Record, c bgzf.Chunk) error {
	return b.idx.Add(r, c, r.Flags&sam.Unmapped == 0, r.Ref != nil && r.Pos != -1)
}

// CSI files are BGZF-compressed on disk.
func (b *csiBuilder) write(w io.Writer) error {
	bg := bgzf.NewWriter(w, 1)
	if err := csi.WriteTo(bg, b.idx); err != nil {
		bg.Close()
		return err
	}
	return bg.Close()
}

func (b *csiBuilder) suffix() string { return ".csi" }

func buildIndex(path string, forceCSI bool) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br, err := bam.NewReader(f, 1)
	if err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}
	defer br.Close()

	var ri recordIndex = &baiBuilder{}
	if forceCSI || NeedsCSI(br.Header()) {
		if ri, err = newCSIBuilder(br.Header()); err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
	}
	for {
		r, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		if err := ri.add(r, br.LastChunk()); err != nil {
			return fmt.Errorf("index %s: record %s: %w", path, r.Name, err)
		}
	}

	out, err := os.Create(path + ri.suffix())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return ri.write(out)
}
