package cliutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestSplitFlagsAndPositionals(t *testing.T) {
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	var b bool
	var s string
	fs.BoolVar(&b, "quiet", false, "")
	fs.StringVar(&s, "region", "", "")
	flagArgs, posArgs := SplitFlagsAndPositionals(fs, []string{"in.bam", "--region", "chr1", "--quiet", "--tsv=o", "--", "-x"})
	if len(flagArgs) != 4 || len(posArgs) != 2 || posArgs[0] != "in.bam" || posArgs[1] != "-x" {
		t.Fatalf("unexpected split: %v / %v", flagArgs, posArgs)
	}
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bam")
	b := filepath.Join(dir, "b.bam")
	_ = os.WriteFile(a, []byte("x"), 0o644)
	_ = os.WriteFile(b, []byte("x"), 0o644)

	if got, err := ResolveInput(filepath.Join(dir, "a*.bam"), nil); err != nil || got != a {
		t.Fatalf("glob one: got=%q err=%v", got, err)
	}
	if got, err := ResolveInput("", []string{b}); err != nil || got != b {
		t.Fatalf("positional: got=%q err=%v", got, err)
	}
	if got, err := ResolveInput("", nil); err != nil || got != "" {
		t.Fatalf("none: got=%q err=%v", got, err)
	}
	bad := [][2]interface{}{
		{"", []string{filepath.Join(dir, "*.bam")}},
		{"", []string{filepath.Join(dir, "z*.bam")}},
		{a, []string{b}},
		{"", []string{a, b}},
		{"-", []string(nil)},
	}
	for i, c := range bad {
		if _, err := ResolveInput(c[0].(string), c[1].([]string)); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
