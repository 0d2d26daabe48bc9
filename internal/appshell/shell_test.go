package appshell

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestMainPassesArgsAndCode(t *testing.T) {
	var got []string
	run := func(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
		got = argv
		_, _ = io.WriteString(stdout, "ok\n")
		return 4
	}
	var out bytes.Buffer
	if code := runWithSignals(run, []string{"--bam", "x"}, &out, io.Discard); code != 4 {
		t.Fatalf("code = %d", code)
	}
	if len(got) != 2 || got[1] != "x" || out.String() != "ok\n" {
		t.Fatalf("argv=%v out=%q", got, out.String())
	}
}
