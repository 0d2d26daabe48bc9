// internal/cli/options_test.go
package cli

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newFS() *flag.FlagSet { return flag.NewFlagSet("test", flag.ContinueOnError) }

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := ParseArgs(newFS(), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func TestRegionOK(t *testing.T) {
	o := mustParse(t,
		"--bam", "in.bam",
		"--region", "chr1:1,000-2,000",
		"--tsv", "out.tsv",
		"--xf", "17",
	)
	if o.Interval.Contig != "chr1" || o.Interval.Start != 1000 || o.Interval.End != 2000 {
		t.Errorf("bad interval %+v", o.Interval)
	}
	if o.IntTag != "xf" || o.CBTag != "CB" || o.UMITag != "UB" {
		t.Errorf("bad default tags %+v", o)
	}
	if o.Format != "tsv" || o.Threads != 1 || o.LogLevel != "info" {
		t.Errorf("bad defaults %+v", o)
	}
}

func TestContigStartEndOK(t *testing.T) {
	o := mustParse(t,
		"-b", "in.bam", "-o", "out.tsv",
		"--contig", "chr2", "--start", "5", "--end", "50",
		"--xf", "1",
	)
	if o.Interval.Contig != "chr2" || o.Interval.Start != 5 || o.Interval.End != 50 {
		t.Errorf("bad interval %+v", o.Interval)
	}
}

func TestPositionalInput(t *testing.T) {
	o := mustParse(t, "in.bam", "--region", "chr1", "--tsv", "o", "--xf", "1")
	if o.BAM != "in.bam" {
		t.Errorf("bam = %q", o.BAM)
	}
}

func TestContigOnlyIsWholeContig(t *testing.T) {
	o := mustParse(t, "--bam", "in.bam", "--tsv", "-", "--contig", "chrM", "--xf", "1")
	if o.Interval.Start != 1 || o.Interval.End != 0 {
		t.Errorf("want open interval from 1, got %+v", o.Interval)
	}
}

func TestXFRepeatableAndComma(t *testing.T) {
	o := mustParse(t,
		"--bam", "in.bam", "--tsv", "out.tsv", "--region", "chr1",
		"--xf", "17,25", "--xf", "33", "--xf", " 41 ,",
	)
	if want := []int64{17, 25, 33, 41}; !reflect.DeepEqual(o.Allow, want) {
		t.Errorf("allow = %v, want %v", o.Allow, want)
	}
}

func TestErrorBadXF(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"--bam", "in.bam", "--tsv", "o", "--region", "chr1", "--xf", "x1"})
	if err == nil {
		t.Fatalf("expected error for non-integer --xf")
	}
}

func TestErrorMissingRequired(t *testing.T) {
	cases := map[string][]string{
		"bam":    {"--tsv", "o", "--region", "chr1", "--xf", "1"},
		"tsv":    {"--bam", "in.bam", "--region", "chr1", "--xf", "1"},
		"region": {"--bam", "in.bam", "--tsv", "o", "--xf", "1"},
		"xf":     {"--bam", "in.bam", "--tsv", "o", "--region", "chr1"},
	}
	for name, args := range cases {
		if _, err := ParseArgs(newFS(), args); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestErrorMutualExclusion(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{
		"--bam", "in.bam", "--tsv", "o", "--xf", "1",
		"--region", "chr1:1-10", "--contig", "chr1",
	})
	if err == nil {
		t.Fatalf("expected error with both --region and --contig")
	}
}

func TestErrorInvalidValues(t *testing.T) {
	base := []string{"--bam", "in.bam", "--tsv", "o", "--region", "chr1:1-10", "--xf", "1"}
	cases := map[string][]string{
		"reversed region": {"--bam", "in.bam", "--tsv", "o", "--region", "chr1:10-1", "--xf", "1"},
		"tag length":      append(append([]string{}, base...), "--cb-tag", "CBX"),
		"format":          append(append([]string{}, base...), "--format", "csv"),
		"threads":         append(append([]string{}, base...), "--threads", "0"),
		"exit code":       append(append([]string{}, base...), "--no-match-exit-code", "300"),
		"same output":     {"--bam", "in.bam", "--tsv", "o", "--region", "chr1", "--xf", "1", "--out-bam", "in.bam"},
		"two inputs":      append(append([]string{}, base...), "extra.bam"),
	}
	for name, args := range cases {
		if _, err := ParseArgs(newFS(), args); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestHelpAndVersion(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("want flag.ErrHelp, got %v", err)
	}
	o, err := ParseArgs(newFS(), []string{"--version"})
	if err != nil || !o.Version {
		t.Fatalf("version: %+v %v", o, err)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestConfigFillsUnsetFlags(t *testing.T) {
	p := writeConfig(t, `{"int_tag":"xt","cb_tag":"CR","allow":[3,4],"format":"jsonl","threads":4,"log_level":"debug"}`)
	o := mustParse(t, "--bam", "in.bam", "--tsv", "o", "--region", "chr1", "--config", p)
	if o.IntTag != "xt" || o.CBTag != "CR" || o.UMITag != "UB" {
		t.Errorf("tags from config: %+v", o)
	}
	if !reflect.DeepEqual(o.Allow, []int64{3, 4}) || o.Format != "jsonl" || o.Threads != 4 || o.LogLevel != "debug" {
		t.Errorf("config values not applied: %+v", o)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	p := writeConfig(t, `{"cb_tag":"CR","allow":[3],"threads":4}`)
	o := mustParse(t, "--bam", "in.bam", "--tsv", "o", "--region", "chr1",
		"--config", p, "--cb-tag", "CB", "--xf", "9", "-t", "2")
	if o.CBTag != "CB" || !reflect.DeepEqual(o.Allow, []int64{9}) || o.Threads != 2 {
		t.Errorf("flags should win: %+v", o)
	}
}

func TestConfigErrors(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"--bam", "in.bam", "--tsv", "o", "--region", "chr1", "--xf", "1",
		"--config", filepath.Join(t.TempDir(), "nope.json")})
	if err == nil {
		t.Fatalf("expected error for missing config")
	}
	p := writeConfig(t, `{"bogus":1}`)
	_, err = ParseArgs(newFS(), []string{"--bam", "in.bam", "--tsv", "o", "--region", "chr1", "--xf", "1", "--config", p})
	if err == nil {
		t.Fatalf("expected error for unknown config field")
	}
}

func TestUsageMentionsFlags(t *testing.T) {
	fs := NewFlagSet("exonblocks")
	var sb strings.Builder
	fs.SetOutput(&sb)
	_, _ = ParseArgs(fs, []string{"-h"})
	fs.Usage()
	for _, want := range []string{"--bam", "--region", "--tsv", "--out-bam", "--xf", "--format", "--config", "[xf]"} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}
