// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"exonblocks/internal/clibase"
	"exonblocks/internal/cliutil"
	"exonblocks/internal/config"
	"exonblocks/internal/filter"
	"exonblocks/internal/output"
	"exonblocks/internal/region"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	BAM    string
	Region string
	Contig string
	Start  int
	End    int

	// Filtering
	Allow  []int64
	IntTag string
	CBTag  string
	UMITag string

	// Output
	Rows            string
	OutBAM          string
	Format          string
	MetricsFile     string
	SummaryFile     string
	NoMatchExitCode int

	// Misc
	Config   string
	Threads  int
	LogLevel string
	Quiet    bool
	Version  bool

	// Interval is the resolved scan interval (from --region or
	// --contig/--start/--end).
	Interval region.Interval
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs.Output(), name, fs) }
	return fs
}

func printUsage(out io.Writer, name string, fs *flag.FlagSet) {
	def := clibase.Defaults(fs)
	clibase.Banner(out, name, "split aligned reads into reference blocks")
	fmt.Fprintf(out, "Usage:\n  %s [--bam] in.bam --region chr1:1000-2000 --tsv blocks.tsv [--out-bam filtered.bam] --xf 17,25\n", name)

	fmt.Fprintln(out, "\nInput:")
	fmt.Fprintln(out, "  -b, --bam file              Coordinate-sorted, indexed BAM [*]")
	fmt.Fprintln(out, "  -r, --region string         Interval chr:start-end, 1-based inclusive [*]")
	fmt.Fprintln(out, "      --contig string         Contig (alternative to --region)")
	fmt.Fprintln(out, "      --start int             1-based start (with --contig)")
	fmt.Fprintln(out, "      --end int               1-based inclusive end (with --contig, 0=contig end)")

	fmt.Fprintln(out, "\nFiltering:")
	fmt.Fprintln(out, "      --xf int[,int...]       Allowed integer tag values (repeatable) [*]")
	fmt.Fprintf(out, "      --int-tag string        Integer tag matched against --xf [%s]\n", def("int-tag"))
	fmt.Fprintf(out, "      --cb-tag string         Cell barcode tag [%s]\n", def("cb-tag"))
	fmt.Fprintf(out, "      --umi-tag string        UMI tag [%s]\n", def("umi-tag"))

	fmt.Fprintln(out, "\nOutput:")
	fmt.Fprintln(out, "  -o, --tsv file              Block table (.gz/.zst compress, '-' for STDOUT) [*]")
	fmt.Fprintln(out, "      --out-bam file          Filtered copy of passing records (.bam indexed, .sam text)")
	fmt.Fprintf(out, "      --format string         Row format: tsv | jsonl [%s]\n", def("format"))
	fmt.Fprintln(out, "      --metrics-file file     Write Prometheus textfile metrics after the scan")
	fmt.Fprintln(out, "      --summary file          Write a JSON scan summary after the scan")
	fmt.Fprintf(out, "      --no-match-exit-code int  Exit code when no read passes [%s]\n", def("no-match-exit-code"))

	fmt.Fprintln(out, "\nMiscellaneous:")
	fmt.Fprintln(out, "      --config file           JSON defaults (flags override)")
	fmt.Fprintf(out, "  -t, --threads int           BGZF worker threads [%s]\n", def("threads"))
	fmt.Fprintf(out, "      --log-level string      debug | info | warn | error [%s]\n", def("log-level"))
	fmt.Fprintf(out, "  -q, --quiet                 Only log errors [%s]\n", def("quiet"))
	fmt.Fprintln(out, "  -v, --version               Print version and exit")
	fmt.Fprintln(out, "      --examples              Show quickstart examples and exit")
	fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
}

// PrintExamples prints a short quickstart for name.
func PrintExamples(out io.Writer, name string) {
	clibase.PrintExamples(out, name, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "Split reads overlapping a region into reference blocks,")
		_, _ = fmt.Fprintln(w, "keeping reads whose xf tag is 17 or 25.")
		_, _ = fmt.Fprintln(w, "\nExample:")
		_, _ = fmt.Fprintf(w, "  %s possorted.bam \\\n", name)
		_, _ = fmt.Fprintln(w, "    --region chr7:5,527,000-5,563,000 \\")
		_, _ = fmt.Fprintln(w, "    --xf 17,25 \\")
		_, _ = fmt.Fprintln(w, "    --tsv actb.blocks.tsv.gz \\")
		_, _ = fmt.Fprintln(w, "    --out-bam actb.filtered.bam")
	})
}

// ParseArgs registers and parses all flags, merges --config defaults, and
// validates the result.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool
	var showExamples bool
	var allow int64List

	fs.StringVar(&opt.BAM, "bam", "", "input BAM [*]")
	fs.StringVar(&opt.BAM, "b", "", "alias of --bam")
	fs.StringVar(&opt.Region, "region", "", "interval chr:start-end [*]")
	fs.StringVar(&opt.Region, "r", "", "alias of --region")
	fs.StringVar(&opt.Contig, "contig", "", "contig name")
	fs.IntVar(&opt.Start, "start", 0, "1-based start")
	fs.IntVar(&opt.End, "end", 0, "1-based inclusive end")

	fs.Var(&allow, "xf", "allowed integer tag values (repeatable, comma-separated)")
	fs.StringVar(&opt.IntTag, "int-tag", filter.DefaultTags.Int, "integer filter tag")
	fs.StringVar(&opt.CBTag, "cb-tag", filter.DefaultTags.CB, "cell barcode tag")
	fs.StringVar(&opt.UMITag, "umi-tag", filter.DefaultTags.UMI, "UMI tag")

	fs.StringVar(&opt.Rows, "tsv", "", "block table path [*]")
	fs.StringVar(&opt.Rows, "o", "", "alias of --tsv")
	fs.StringVar(&opt.OutBAM, "out-bam", "", "filtered alignment output")
	fs.StringVar(&opt.Format, "format", output.FormatTSV, "row format")
	fs.StringVar(&opt.MetricsFile, "metrics-file", "", "Prometheus textfile output")
	fs.StringVar(&opt.SummaryFile, "summary", "", "JSON scan summary output")
	fs.IntVar(&opt.NoMatchExitCode, "no-match-exit-code", 0, "exit code when no read passes")

	fs.StringVar(&opt.Config, "config", "", "JSON config file")
	fs.IntVar(&opt.Threads, "threads", 1, "BGZF worker threads")
	fs.IntVar(&opt.Threads, "t", 1, "alias of --threads")
	fs.StringVar(&opt.LogLevel, "log-level", "info", "log level")
	fs.BoolVar(&opt.Quiet, "quiet", false, "only log errors")
	fs.BoolVar(&opt.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand)")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand)")
	fs.BoolVar(&showExamples, "examples", false, "show quickstart examples and exit")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if showExamples {
		return opt, clibase.ErrPrintedAndExitOK
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	posArgs = append(posArgs, fs.Args()...)
	in, err := cliutil.ResolveInput(opt.BAM, posArgs)
	if err != nil {
		return opt, err
	}
	opt.BAM = in
	opt.Allow = allow

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if opt.Config != "" {
		cfg, err := config.LoadConfig(opt.Config)
		if err != nil {
			return opt, err
		}
		applyConfig(&opt, cfg, set)
	}

	if err := Validate(&opt); err != nil {
		return opt, err
	}
	return opt, nil
}

// applyConfig fills every option whose flag was not given explicitly.
func applyConfig(o *Options, c *config.Config, set map[string]bool) {
	str := func(dst *string, v string, names ...string) {
		for _, n := range names {
			if set[n] {
				return
			}
		}
		if v != "" {
			*dst = v
		}
	}
	str(&o.IntTag, c.IntTag, "int-tag")
	str(&o.CBTag, c.CBTag, "cb-tag")
	str(&o.UMITag, c.UMITag, "umi-tag")
	str(&o.Format, c.Format, "format")
	str(&o.LogLevel, c.LogLevel, "log-level")
	str(&o.MetricsFile, c.MetricsFile, "metrics-file")
	if !set["xf"] && len(c.Allow) > 0 {
		o.Allow = append([]int64(nil), c.Allow...)
	}
	if !set["threads"] && !set["t"] && c.Threads > 0 {
		o.Threads = c.Threads
	}
}

// Validate applies CLI invariants and resolves o.Interval.
func Validate(o *Options) error {
	if o.BAM == "" {
		return errors.New("--bam is required")
	}
	if o.Rows == "" {
		return errors.New("--tsv is required")
	}
	usingRegion := o.Region != ""
	usingContig := o.Contig != "" || o.Start != 0 || o.End != 0
	switch {
	case usingRegion && usingContig:
		return errors.New("--region conflicts with --contig/--start/--end")
	case usingRegion:
		iv, err := region.Parse(o.Region)
		if err != nil {
			return err
		}
		o.Interval = iv
	case usingContig:
		start := o.Start
		if start == 0 {
			start = 1
		}
		iv, err := region.New(o.Contig, start, o.End)
		if err != nil {
			return err
		}
		o.Interval = iv
	default:
		return errors.New("provide --region or --contig")
	}
	if len(o.Allow) == 0 {
		return errors.New("at least one --xf value is required")
	}
	if err := (filter.Tags{Int: o.IntTag, CB: o.CBTag, UMI: o.UMITag}).Validate(); err != nil {
		return err
	}
	if !output.ValidFormat(o.Format) {
		return fmt.Errorf("invalid --format %q", o.Format)
	}
	if o.Threads < 1 {
		return errors.New("--threads must be ≥ 1")
	}
	if o.NoMatchExitCode < 0 || o.NoMatchExitCode > 255 {
		return errors.New("--no-match-exit-code must be between 0 and 255")
	}
	if o.OutBAM != "" && o.OutBAM == o.BAM {
		return errors.New("--out-bam must differ from --bam")
	}
	return nil
}

// int64List allows repeatable, comma-separated integer flags.
type int64List []int64

func (l *int64List) String() string {
	ss := make([]string, len(*l))
	for i, v := range *l {
		ss[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(ss, ",")
}

func (l *int64List) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return fmt.Errorf("bad integer %q", p)
		}
		*l = append(*l, n)
	}
	return nil
}
