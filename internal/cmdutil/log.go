// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger returns a leveled logger writing to dst. level is one of
// debug|info|warn|error ("" means info); quiet raises it to error.
func NewLogger(dst io.Writer, level string, quiet bool) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		if lvl, err = log.ParseLevel(strings.ToLower(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
	}
	if quiet && lvl < log.ErrorLevel {
		lvl = log.ErrorLevel
	}
	return log.NewWithOptions(dst, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "exonblocks",
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
