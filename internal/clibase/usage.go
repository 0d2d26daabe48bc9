// internal/clibase/usage.go
package clibase

import (
	"flag"
	"fmt"
	"io"

	"exonblocks/internal/version"
)

// Defaults returns a lookup of each flag's default value, for help text.
func Defaults(fs *flag.FlagSet) func(string) string {
	return func(name string) string {
		if f := fs.Lookup(name); f != nil {
			return f.DefValue
		}
		return ""
	}
}

// Banner prints the header shared by help and quickstart output.
func Banner(out io.Writer, name, tagline string) {
	fmt.Fprintf(out, "%s – %s\n\n", name, tagline)
	fmt.Fprintf(out, "Version: %s\n\n", version.Version)
}
