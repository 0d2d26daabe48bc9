// internal/clibase/examples.go
package clibase

import (
	"errors"
	"fmt"
	"io"
)

// ErrPrintedAndExitOK signals that --examples was given. The caller prints
// the quickstart and exits 0 without scanning.
var ErrPrintedAndExitOK = errors.New("examples requested")

// PrintExamples writes a "<name> — quickstart" title, the command lines
// produced by body, and a pointer to --help. A nil out prints nothing.
func PrintExamples(out io.Writer, name string, body func(io.Writer)) {
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "%s — quickstart\n\n", name)
	if body != nil {
		body(out)
	}
	_, _ = fmt.Fprintf(out, "\nRun %s --help for every flag.\n", name)
}
