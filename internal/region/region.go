// Package region parses and normalizes genomic intervals.
//
// Intervals are 1-based and inclusive on both ends, the way they are
// written on the command line (chr1:1000-2000). HalfOpen converts to the
// 0-based half-open form used by alignment indexes.
package region

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cznic/mathutil"
)

// Interval is a 1-based inclusive genomic interval. End == 0 means "to
// the end of the contig" until Clamp resolves it.
type Interval struct {
	Contig string
	Start  int
	End    int
}

func (iv Interval) String() string {
	if iv.End == 0 {
		return fmt.Sprintf("%s:%d-", iv.Contig, iv.Start)
	}
	return fmt.Sprintf("%s:%d-%d", iv.Contig, iv.Start, iv.End)
}

// HalfOpen returns the 0-based half-open bounds [beg, end).
func (iv Interval) HalfOpen() (beg, end int) { return iv.Start - 1, iv.End }

// Len returns the number of bases covered.
func (iv Interval) Len() int { return iv.End - iv.Start + 1 }

// New validates and returns an interval.
func New(contig string, start, end int) (Interval, error) {
	iv := Interval{Contig: contig, Start: start, End: end}
	return iv, iv.Validate()
}

// Validate checks that the interval names a contig and that its bounds
// are ordered.
func (iv Interval) Validate() error {
	if iv.Contig == "" {
		return errors.New("region: blank contig")
	}
	if iv.Start < 1 {
		return fmt.Errorf("region %s: start must be ≥ 1", iv)
	}
	if iv.End != 0 && iv.End < iv.Start {
		return fmt.Errorf("region %s: end precedes start", iv)
	}
	return nil
}

// Parse reads "contig", "contig:start", "contig:start-end" or
// "contig:start-". Thousands separators are accepted. Contig names that
// themselves contain ':' are kept whole when the suffix is not a range.
func Parse(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Interval{}, errors.New("region: empty")
	}
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return New(s, 1, 0)
	}
	contig, rng := s[:i], strings.ReplaceAll(s[i+1:], ",", "")
	startStr, endStr, hasDash := strings.Cut(rng, "-")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		// Not a range: the colon belongs to the contig name.
		return New(s, 1, 0)
	}
	end := 0
	switch {
	case !hasDash:
		end = start
	case endStr != "":
		if end, err = strconv.Atoi(endStr); err != nil {
			return Interval{}, fmt.Errorf("region %q: bad end: %v", s, err)
		}
	}
	return New(contig, start, end)
}

// Clamp bounds iv to a contig of length refLen and resolves an open end.
// It fails when nothing of iv lies on the contig.
func Clamp(iv Interval, refLen int) (Interval, error) {
	if iv.End == 0 {
		iv.End = refLen
	}
	out := Interval{
		Contig: iv.Contig,
		Start:  mathutil.Max(iv.Start, 1),
		End:    mathutil.Min(iv.End, refLen),
	}
	if out.Start > out.End {
		return out, fmt.Errorf("region %s lies outside %s (length %d)", iv, iv.Contig, refLen)
	}
	return out, nil
}
