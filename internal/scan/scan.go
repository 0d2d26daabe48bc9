// internal/scan/scan.go
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/biogo/hts/sam"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"exonblocks/internal/blocks"
	"exonblocks/internal/cmdutil"
	"exonblocks/internal/filter"
	"exonblocks/internal/metrics"
	"exonblocks/internal/output"
	"exonblocks/internal/region"
	"exonblocks/internal/store"
	"exonblocks/internal/writers"
)

// Fatal errors abort a scan before any row is written.
var (
	ErrInputOpen     = errors.New("open input")
	ErrIndexMissing  = errors.New("load index")
	ErrUnknownContig = errors.New("unknown contig")
	ErrOutputOpen    = errors.New("open output")
)

// Errors raised while streaming. ErrRowWrite and ErrRead are fatal;
// ErrSecondaryWrite and ErrIndexBuild only degrade the scan.
var (
	ErrRowWrite       = errors.New("write row")
	ErrRead           = errors.New("read input")
	ErrSecondaryWrite = errors.New("write filtered alignment")
	ErrIndexBuild     = errors.New("build index")
)

// Config describes one scan.
type Config struct {
	Input   string          // indexed BAM
	Region  region.Interval // 1-based inclusive
	Output  string          // filtered alignment copy; "" skips it
	Rows    string          // row file; "-" for stdout
	Format  string          // output.FormatTSV (default) or output.FormatJSONL
	Tags    filter.Tags     // zero value means filter.DefaultTags
	Allow   filter.TagSet
	Threads int // BGZF workers for reading and writing
}

// Summary reports what a scan did. Passed is the number of rows written.
type Summary struct {
	RunID            string
	Region           region.Interval // after clamping to the contig
	Scanned          int
	Passed           int
	Rejected         map[filter.Reason]int
	NoBlocks         int
	Blocks           int
	SecondaryWritten int
	SecondaryFailed  bool
	IndexBuilt       bool
	IndexErr         error // wraps ErrIndexBuild
	SecondaryErr     error // wraps ErrSecondaryWrite
	Elapsed          time.Duration
}

// RejectedTotal sums rejections over all reasons.
func (s Summary) RejectedTotal() int {
	n := 0
	for _, v := range s.Rejected {
		n += v
	}
	return n
}

// RecordWriter is a destination for passing records.
type RecordWriter interface {
	Write(*sam.Record) error
	Close() error
}

// Scanner runs scans. The zero value is usable: it logs nowhere, counts
// into a private registry, and writes through internal/store.
type Scanner struct {
	Log     *log.Logger
	Metrics *metrics.Metrics
	Stdout  io.Writer // destination for Rows == "-"

	// CreateWriter opens the secondary output. Defaults to store.Create.
	CreateWriter func(path string, h *sam.Header, threads int) (RecordWriter, error)
	// BuildIndex indexes a finished BAM output. Defaults to store.BuildIndex.
	BuildIndex func(path string) error
}

// New returns a Scanner logging to l and counting into m.
func New(l *log.Logger, m *metrics.Metrics) *Scanner {
	return &Scanner{Log: l, Metrics: m}
}

// Run scans cfg with a default Scanner logging to l.
func Run(ctx context.Context, cfg Config, l *log.Logger) (Summary, error) {
	return New(l, nil).Run(ctx, cfg)
}

func createWriter(path string, h *sam.Header, threads int) (RecordWriter, error) {
	w, err := store.Create(path, h, threads)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Scanner) defaults() {
	if s.Log == nil {
		s.Log = cmdutil.Discard()
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.CreateWriter == nil {
		s.CreateWriter = createWriter
	}
	if s.BuildIndex == nil {
		s.BuildIndex = store.BuildIndex
	}
}

// Run executes one scan. On a fatal error the returned Summary holds the
// counts reached so far.
func (s *Scanner) Run(ctx context.Context, cfg Config) (Summary, error) {
	s.defaults()
	started := time.Now()
	sum := Summary{RunID: uuid.NewString(), Region: cfg.Region, Rejected: make(map[filter.Reason]int)}
	lg := s.Log.With("run", sum.RunID)
	m := s.Metrics

	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Tags == (filter.Tags{}) {
		cfg.Tags = filter.DefaultTags
	}
	flt, err := filter.New(cfg.Tags, cfg.Allow)
	if err != nil {
		return sum, err
	}
	appendRow, header, ok := output.AppenderFor(cfg.Format)
	if !ok {
		return sum, fmt.Errorf("unsupported row format %q", cfg.Format)
	}

	// Init
	in, err := store.Open(cfg.Input, cfg.Threads)
	if err != nil {
		return sum, fmt.Errorf("%w %s: %v", ErrInputOpen, cfg.Input, err)
	}
	defer in.Close()
	if err := in.LoadIndex(); err != nil {
		return sum, fmt.Errorf("%w: %v", ErrIndexMissing, err)
	}
	ref, err := in.ResolveContig(cfg.Region.Contig)
	if err != nil {
		return sum, fmt.Errorf("%w %q in %s", ErrUnknownContig, cfg.Region.Contig, cfg.Input)
	}
	var beg, end int
	if iv, cerr := region.Clamp(cfg.Region, ref.Len()); cerr != nil {
		lg.Warn("region outside contig, nothing to scan", "err", cerr)
	} else {
		sum.Region = iv
		beg, end = iv.HalfOpen()
	}
	it, err := in.Query(ref, beg, end)
	if err != nil {
		return sum, fmt.Errorf("%w: %v", ErrIndexMissing, err)
	}
	defer it.Close()

	var sec RecordWriter
	if cfg.Output != "" {
		sec, err = s.CreateWriter(cfg.Output, in.Header(), cfg.Threads)
		switch {
		case errors.Is(err, store.ErrHeaderWrite):
			sum.SecondaryFailed = true
			sum.SecondaryErr = fmt.Errorf("%w: %v", ErrSecondaryWrite, err)
			m.SecondaryErrors.Inc()
			lg.Warn("abandoning filtered alignment output", "path", cfg.Output, "err", err)
			sec = nil
		case err != nil:
			return sum, fmt.Errorf("%w %s: %v", ErrOutputOpen, cfg.Output, err)
		}
	}
	defer func() {
		if sec != nil {
			sec.Close()
		}
	}()

	sink, err := writers.OpenRowSink(cfg.Rows, s.Stdout)
	if err != nil {
		return sum, fmt.Errorf("%w %s: %v", ErrOutputOpen, cfg.Rows, err)
	}
	sinkOpen := true
	defer func() {
		if sinkOpen {
			sink.Close()
		}
	}()
	if err := sink.WriteHeader(header); err != nil {
		return sum, fmt.Errorf("%w %s: %w", ErrOutputOpen, cfg.Rows, err)
	}

	// Streaming
	lg.Info("scan started", "input", cfg.Input, "region", sum.Region.String(), "allow", cfg.Allow.Values())
	var (
		buf blocks.Buffer
		row []byte
	)
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rec := it.Record()
		sum.Scanned++
		m.Scanned.Inc()

		cb, umi, reason := flt.Evaluate(rec)
		if reason != filter.Pass {
			sum.Rejected[reason]++
			m.Reject(reason)
			lg.Debug("rejected", "read", rec.Name, "reason", reason)
			continue
		}
		blks := blocks.FromRecord(&buf, rec)
		if len(blks) == 0 {
			sum.NoBlocks++
			m.NoBlocks.Inc()
			continue
		}
		if row, err = appendRow(row[:0], cb, umi, blks); err != nil {
			return sum, fmt.Errorf("%w: %v", ErrRowWrite, err)
		}
		if err := sink.WriteRow(row); err != nil {
			return sum, fmt.Errorf("%w %s: %w", ErrRowWrite, cfg.Rows, err)
		}
		if sec != nil {
			if werr := sec.Write(rec); werr != nil {
				sum.SecondaryFailed = true
				sum.SecondaryErr = fmt.Errorf("%w %s: %v", ErrSecondaryWrite, cfg.Output, werr)
				m.SecondaryErrors.Inc()
				lg.Warn("abandoning filtered alignment output", "path", cfg.Output, "read", rec.Name, "err", werr)
				sec.Close()
				sec = nil
			} else {
				sum.SecondaryWritten++
				m.SecondaryRecords.Inc()
			}
		}
		sum.Passed++
		sum.Blocks += len(blks)
		m.Rows.Inc()
		m.Blocks.Add(float64(len(blks)))
	}
	if err := it.Err(); err != nil {
		return sum, fmt.Errorf("%w %s: %v", ErrRead, cfg.Input, err)
	}

	// Finalizing
	sinkOpen = false
	if err := sink.Close(); err != nil {
		return sum, fmt.Errorf("%w %s: %w", ErrRowWrite, cfg.Rows, err)
	}
	if sec != nil {
		w := sec
		sec = nil
		if err := w.Close(); err != nil {
			sum.SecondaryFailed = true
			sum.SecondaryErr = fmt.Errorf("%w %s: %v", ErrSecondaryWrite, cfg.Output, err)
			m.SecondaryErrors.Inc()
			lg.Warn("closing filtered alignment output failed", "path", cfg.Output, "err", err)
		} else if store.Indexable(cfg.Output) {
			if err := s.BuildIndex(cfg.Output); err != nil {
				sum.IndexErr = fmt.Errorf("%w %s: %v", ErrIndexBuild, cfg.Output, err)
				m.IndexErrors.Inc()
				lg.Warn("index build failed", "path", cfg.Output, "err", err)
			} else {
				sum.IndexBuilt = true
			}
		}
	}

	// Done
	sum.Elapsed = time.Since(started)
	lg.Info("scan finished",
		"passed", sum.Passed, "scanned", sum.Scanned, "rejected", sum.RejectedTotal(),
		"no_blocks", sum.NoBlocks, "elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum, nil
}
