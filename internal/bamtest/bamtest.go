// Package bamtest builds small indexed BAM fixtures for tests.
package bamtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"exonblocks/internal/store"
)

// Contig is a header reference.
type Contig struct {
	Name string
	Len  int
}

// Read describes one alignment. Pos is 0-based.
type Read struct {
	Name   string
	Contig string
	Pos    int
	Cigar  string
	Seq    string
	Flags  sam.Flags
	Tags   []sam.Aux
}

// Header returns a coordinate-sorted header over contigs.
func Header(t testing.TB, contigs ...Contig) *sam.Header {
	t.Helper()
	refs := make([]*sam.Reference, len(contigs))
	for i, c := range contigs {
		ref, err := sam.NewReference(c.Name, "", "", c.Len, nil, nil)
		if err != nil {
			t.Fatalf("reference %s: %v", c.Name, err)
		}
		refs[i] = ref
	}
	h, err := sam.NewHeader(nil, refs)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	h.SortOrder = sam.Coordinate
	return h
}

// Aux builds an aux field, failing the test on error.
func Aux(t testing.TB, tag string, v interface{}) sam.Aux {
	t.Helper()
	a, err := sam.NewAux(sam.NewTag(tag), v)
	if err != nil {
		t.Fatalf("aux %s: %v", tag, err)
	}
	return a
}

// Tags returns the passing tag triple used throughout the tests.
func Tags(t testing.TB, xf int32, cb, umi string) []sam.Aux {
	t.Helper()
	return []sam.Aux{Aux(t, "xf", xf), Aux(t, "CB", cb), Aux(t, "UB", umi)}
}

// Record converts rd into a record on h.
func Record(t testing.TB, h *sam.Header, rd Read) *sam.Record {
	t.Helper()
	var ref *sam.Reference
	for _, r := range h.Refs() {
		if r.Name() == rd.Contig {
			ref = r
		}
	}
	if ref == nil {
		t.Fatalf("read %s: no contig %q", rd.Name, rd.Contig)
	}
	co, err := sam.ParseCigar([]byte(rd.Cigar))
	if err != nil {
		t.Fatalf("read %s: cigar: %v", rd.Name, err)
	}
	qual := make([]byte, len(rd.Seq))
	for i := range qual {
		qual[i] = 30
	}
	r, err := sam.NewRecord(rd.Name, ref, nil, rd.Pos, -1, 0, 60, co, []byte(rd.Seq), qual, rd.Tags)
	if err != nil {
		t.Fatalf("read %s: %v", rd.Name, err)
	}
	r.Flags = rd.Flags
	return r
}

// WriteBAM writes reads (already sorted by position) to dir/name and
// returns the path. When index is true the file is indexed with
// store.BuildIndex.
func WriteBAM(t testing.TB, dir, name string, h *sam.Header, reads []Read, index bool) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	bw, err := bam.NewWriter(f, h, 1)
	if err != nil {
		t.Fatalf("bam writer: %v", err)
	}
	for _, rd := range reads {
		if err := bw.Write(Record(t, h, rd)); err != nil {
			t.Fatalf("write %s: %v", rd.Name, err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("close bam: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	if index {
		writeIndex(t, path)
	}
	return path
}

func writeIndex(t testing.TB, path string) {
	t.Helper()
	if err := store.BuildIndex(path); err != nil {
		t.Fatalf("index %s: %v", path, err)
	}
}

// WriteCSI indexes the BAM file at path as CSI only.
func WriteCSI(t testing.TB, path string) {
	t.Helper()
	if err := store.BuildCSI(path); err != nil {
		t.Fatalf("csi index %s: %v", path, err)
	}
}

// ReadAll returns every record in the BAM file at path.
func ReadAll(t testing.TB, path string) []*sam.Record {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	br, err := bam.NewReader(f, 1)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	defer br.Close()
	var out []*sam.Record
	for {
		r, err := br.Read()
		if err != nil {
			break
		}
		out = append(out, r)
	}
	return out
}
