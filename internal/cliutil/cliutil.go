package cliutil

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
)

// BoolFlags returns names of flags that don't require a value.
func BoolFlags(fs *flag.FlagSet) map[string]bool {
	m := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			m[f.Name] = true
		}
	})
	return m
}

// SplitFlagsAndPositionals separates flag-like args from positionals so that
// flags may follow the input path. '--' ends flag parsing.
func SplitFlagsAndPositionals(fs *flag.FlagSet, argv []string) (flagArgs, posArgs []string) {
	boolFlags := BoolFlags(fs)
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			posArgs = append(posArgs, argv[i+1:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			posArgs = append(posArgs, arg)
			continue
		}
		flagArgs = append(flagArgs, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if !boolFlags[name] && i+1 < len(argv) {
			flagArgs = append(flagArgs, argv[i+1])
			i++
		}
	}
	return
}

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

// ResolveInput picks the single input path from an explicit flag value or
// the positionals. A glob must match exactly one file.
func ResolveInput(flagVal string, posArgs []string) (string, error) {
	switch {
	case flagVal != "" && len(posArgs) > 0:
		return "", fmt.Errorf("input given twice: --bam %s and %s", flagVal, strings.Join(posArgs, " "))
	case len(posArgs) > 1:
		return "", fmt.Errorf("expected one input, got %d: %s", len(posArgs), strings.Join(posArgs, " "))
	case flagVal == "" && len(posArgs) == 0:
		return "", nil
	}
	p := flagVal
	if p == "" {
		p = posArgs[0]
	}
	if p == "-" {
		return "", errors.New("input must be a seekable, indexed file; '-' is not supported")
	}
	if !hasGlobMeta(p) {
		return p, nil
	}
	m, err := filepath.Glob(p)
	if err != nil {
		return "", fmt.Errorf("bad glob %q: %v", p, err)
	}
	switch len(m) {
	case 0:
		return "", fmt.Errorf("no input matched %q", p)
	case 1:
		return m[0], nil
	default:
		return "", fmt.Errorf("glob %q matched %d files; give one", p, len(m))
	}
}
