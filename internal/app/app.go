// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"exonblocks/internal/appcore"
	"exonblocks/internal/cli"
	"exonblocks/internal/clibase"
	"exonblocks/internal/filter"
	"exonblocks/internal/scan"
	"exonblocks/internal/version"
	"exonblocks/internal/writers"
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("exonblocks")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		argv = []string{"-h"}
	}

	opts, err := cli.ParseArgs(fs, argv)
	if errors.Is(err, clibase.ErrPrintedAndExitOK) {
		cli.PrintExamples(outw, "exonblocks")
		if e := outw.Flush(); e != nil && !writers.IsBrokenPipe(e) {
			_, _ = fmt.Fprintln(stderr, e)
			return 3
		}
		return 0
	}
	if err != nil {
		code := 2
		if errors.Is(err, flag.ErrHelp) {
			code = 0
		} else {
			_, _ = fmt.Fprintln(stderr, "error:", err)
		}
		fs.SetOutput(outw)
		fs.Usage()
		if e := outw.Flush(); writers.IsBrokenPipe(e) {
			return 0
		} else if e != nil {
			_, _ = fmt.Fprintln(stderr, e)
			return 3
		}
		return code
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "exonblocks version %s\n", version.Version)
		if e := outw.Flush(); writers.IsBrokenPipe(e) {
			return 0
		} else if e != nil {
			_, _ = fmt.Fprintln(stderr, e)
			return 3
		}
		return 0
	}

	coreOpts := appcore.Options{
		Scan: scan.Config{
			Input:   opts.BAM,
			Region:  opts.Interval,
			Output:  opts.OutBAM,
			Rows:    opts.Rows,
			Format:  opts.Format,
			Tags:    filter.Tags{Int: opts.IntTag, CB: opts.CBTag, UMI: opts.UMITag},
			Allow:   filter.NewTagSet(opts.Allow...),
			Threads: opts.Threads,
		},
		LogLevel:        opts.LogLevel,
		Quiet:           opts.Quiet,
		MetricsFile:     opts.MetricsFile,
		SummaryFile:     opts.SummaryFile,
		NoMatchExitCode: opts.NoMatchExitCode,
	}
	return appcore.Run(parent, stdout, stderr, coreOpts)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
