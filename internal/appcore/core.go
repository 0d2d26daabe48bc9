// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"exonblocks/internal/cmdutil"
	"exonblocks/internal/jsonutil"
	"exonblocks/internal/metrics"
	"exonblocks/internal/scan"
	"exonblocks/internal/writers"
)

type Options struct {
	Scan scan.Config

	LogLevel        string
	Quiet           bool
	MetricsFile     string
	SummaryFile     string
	NoMatchExitCode int
}

// Run executes one scan and maps its outcome to an exit code.
func Run(parent context.Context, stdout, stderr io.Writer, o Options) int {
	outw := bufio.NewWriter(stdout)

	lg, err := cmdutil.NewLogger(stderr, o.LogLevel, o.Quiet)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	reg := prometheus.NewRegistry()
	sc := scan.New(lg, metrics.New(reg))
	sc.Stdout = outw

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sum, serr := sc.Run(ctx, o.Scan)

	if o.MetricsFile != "" {
		if err := metrics.WriteTextfile(o.MetricsFile, reg); err != nil {
			lg.Error("writing metrics failed", "path", o.MetricsFile, "err", err)
			if serr == nil {
				serr = err
			}
		}
	}

	if o.SummaryFile != "" {
		if err := jsonutil.WriteFile(o.SummaryFile, sum.API(o.Scan.Input, serr)); err != nil {
			lg.Error("writing summary failed", "path", o.SummaryFile, "err", err)
			if serr == nil {
				serr = err
			}
		}
	}

	if serr == nil {
		if o.Scan.Rows == "-" {
			lg.Info("reads passed", "n", sum.Passed)
		} else {
			fmt.Fprintf(outw, "%d\n", sum.Passed)
		}
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return 3
	}

	switch {
	case serr == nil:
	case writers.IsBrokenPipe(serr):
		return 0
	case errors.Is(serr, context.Canceled):
		lg.Warn("scan cancelled", "scanned", sum.Scanned, "passed", sum.Passed)
		return 130
	default:
		lg.Error("scan failed", "err", serr)
		return 3
	}
	if sum.Passed == 0 {
		return o.NoMatchExitCode
	}
	return 0
}
