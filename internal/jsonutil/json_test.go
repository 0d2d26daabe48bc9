package jsonutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodePretty(t *testing.T) {
	var sb strings.Builder
	if err := EncodePretty(&sb, map[string]int{"passed": 2}); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "{\n  \"passed\": 2\n}\n" {
		t.Fatalf("got %q", sb.String())
	}
}

func TestWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "s.json")
	if err := WriteFile(p, []int{1}); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "[\n  1\n]\n" {
		t.Fatalf("got %q", b)
	}
	if err := WriteFile(filepath.Join(t.TempDir(), "no", "s.json"), 1); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
