// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"exonblocks/internal/app"
	"exonblocks/internal/bamtest"
	"exonblocks/internal/output"
	"exonblocks/pkg/api"
)

func fixture(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	h := bamtest.Header(t, bamtest.Contig{Name: "chr1", Len: 2000})
	reads := []bamtest.Read{
		{Name: "spliced", Contig: "chr1", Pos: 0, Cigar: "5M2D5M", Seq: "AAAAACCCCC", Tags: bamtest.Tags(t, 25, "C2", "U2")},
		{Name: "dup", Contig: "chr1", Pos: 50, Cigar: "4M", Seq: "ACGT", Flags: sam.Duplicate, Tags: bamtest.Tags(t, 17, "C4", "U4")},
		{Name: "filtered", Contig: "chr1", Pos: 60, Cigar: "4M", Seq: "ACGT", Tags: bamtest.Tags(t, 3, "C9", "U9")},
		{Name: "plain", Contig: "chr1", Pos: 100, Cigar: "10M", Seq: "ACGTACGTAC", Tags: bamtest.Tags(t, 17, "C1", "U1")},
	}
	return dir, bamtest.WriteBAM(t, dir, "in.bam", h, reads, true)
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code = app.Run(args, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func TestEndToEnd(t *testing.T) {
	dir, in := fixture(t)
	rows := filepath.Join(dir, "rows.tsv")
	outBAM := filepath.Join(dir, "filtered.bam")
	prom := filepath.Join(dir, "scan.prom")
	summary := filepath.Join(dir, "summary.json")

	code, stdout, stderr := run(t,
		"--bam", in, "--region", "chr1:1-1000", "--tsv", rows,
		"--out-bam", outBAM, "--xf", "17,25", "--metrics-file", prom, "--summary", summary, "-q")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "3\n", stdout)

	b, err := os.ReadFile(rows)
	require.NoError(t, err)
	require.Equal(t, output.TSVHeader+"\n"+
		"C2\tU2\t1;8\t5;12\tAAAAA;CCCCC\t2\n"+
		"C4\tU4\t51\t54\tACGT\t1\n"+
		"C1\tU1\t101\t110\tACGTACGTAC\t1\n", string(b))

	var names []string
	for _, r := range bamtest.ReadAll(t, outBAM) {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"spliced", "dup", "plain"}, names)
	_, err = os.Stat(outBAM + ".bai")
	require.NoError(t, err)

	m, err := os.ReadFile(prom)
	require.NoError(t, err)
	require.Contains(t, string(m), "exonblocks_records_scanned_total 4")
	require.Contains(t, string(m), `exonblocks_records_rejected_total{reason="tag"} 1`)
	require.Contains(t, string(m), "exonblocks_rows_written_total 3")

	var sum api.ScanSummaryV1
	js, err := os.ReadFile(summary)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(js, &sum))
	require.Equal(t, "chr1:1-1000", sum.Region)
	require.Equal(t, 4, sum.Scanned)
	require.Equal(t, 3, sum.Passed)
	require.Equal(t, 1, sum.Rejected["tag"])
	require.Equal(t, 3, sum.SecondaryWritten)
	require.True(t, sum.IndexBuilt)
	require.NotEmpty(t, sum.RunID)
}

func TestFilteredOutputRescans(t *testing.T) {
	dir, in := fixture(t)
	outBAM := filepath.Join(dir, "filtered.bam")
	code, _, stderr := run(t, in, "--region", "chr1", "--tsv", filepath.Join(dir, "a.tsv"), "--out-bam", outBAM, "--xf", "17,25")
	require.Equal(t, 0, code, stderr)

	again := filepath.Join(dir, "b.tsv")
	code, stdout, stderr := run(t, outBAM, "--region", "chr1", "--tsv", again, "--xf", "17,25")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "3\n", stdout)
	a, _ := os.ReadFile(filepath.Join(dir, "a.tsv"))
	b, _ := os.ReadFile(again)
	require.Equal(t, string(a), string(b))
}

func TestRowsToStdoutGzipAndJSONL(t *testing.T) {
	dir, in := fixture(t)

	code, stdout, stderr := run(t, "--bam", in, "--contig", "chr1", "--start", "90", "--tsv", "-", "--xf", "17", "--format", "jsonl")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, `{"cb":"C1","umi":"U1","num_blocks":1,"blocks":[{"start":101,"end":110,"seq":"ACGTACGTAC"}]}`+"\n", stdout)

	gz := filepath.Join(dir, "rows.tsv.gz")
	code, _, stderr = run(t, "--bam", in, "--region", "chr1", "--tsv", gz, "--xf", "25")
	require.Equal(t, 0, code, stderr)
	f, err := os.Open(gz)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, output.TSVHeader+"\nC2\tU2\t1;8\t5;12\tAAAAA;CCCCC\t2\n", string(b))
}

func TestConfigFile(t *testing.T) {
	dir, in := fixture(t)
	cfg := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"allow":[3],"log_level":"error"}`), 0o644))
	code, stdout, stderr := run(t, "--bam", in, "--region", "chr1", "--tsv", filepath.Join(dir, "r.tsv"), "--config", cfg)
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "1\n", stdout)
}

func TestExitCodes(t *testing.T) {
	dir, in := fixture(t)
	rows := filepath.Join(dir, "rows.tsv")

	code, stdout, _ := run(t)
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Usage:")

	code, stdout, _ = run(t, "--examples")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "quickstart")

	code, stdout, _ = run(t, "--version")
	require.Equal(t, 0, code)
	require.True(t, strings.HasPrefix(stdout, "exonblocks version "))

	code, _, stderr := run(t, "--bam", in, "--tsv", rows, "--xf", "1")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "--region")

	code, _, _ = run(t, "--bam", in, "--region", "chr1", "--tsv", rows, "--xf", "1", "--log-level", "loud")
	require.Equal(t, 2, code)

	code, _, stderr = run(t, "--bam", in, "--region", "chrX", "--tsv", rows, "--xf", "1")
	require.Equal(t, 3, code)
	require.Contains(t, stderr, "unknown contig")

	code, _, _ = run(t, "--bam", filepath.Join(dir, "missing.bam"), "--region", "chr1", "--tsv", rows, "--xf", "1")
	require.Equal(t, 3, code)

	code, stdout, _ = run(t, "--bam", in, "--region", "chr1", "--tsv", rows, "--xf", "99", "--no-match-exit-code", "1")
	require.Equal(t, 1, code)
	require.Equal(t, "0\n", stdout)
}
