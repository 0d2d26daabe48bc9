// Package filter decides which alignments take part in a block scan.
//
// A record passes when none of the unmapped/secondary/supplementary flags
// are set, its integer annotation tag holds an allowed value, and both of
// its identifier tags (cell barcode and UMI) are present as strings.
package filter

import (
	"fmt"
	"sort"

	"github.com/biogo/hts/sam"
)

// Reason is the outcome of evaluating one record.
type Reason int

const (
	Pass Reason = iota
	RejectFlags
	RejectTag
	RejectMissingID
)

func (r Reason) String() string {
	switch r {
	case Pass:
		return "pass"
	case RejectFlags:
		return "flags"
	case RejectTag:
		return "tag"
	case RejectMissingID:
		return "missing_id"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Reasons lists every rejection reason, in evaluation order.
var Reasons = []Reason{RejectFlags, RejectTag, RejectMissingID}

// FlagMask holds the flag bits that disqualify a record.
const FlagMask = sam.Unmapped | sam.Secondary | sam.Supplementary

// Tags names the three aux tags the filter reads.
type Tags struct {
	Int string // integer annotation matched against the allow set
	CB  string // cell barcode
	UMI string // molecule identifier
}

// DefaultTags follows the 10x Genomics annotation convention.
var DefaultTags = Tags{Int: "xf", CB: "CB", UMI: "UB"}

// Validate checks that every tag name is two characters long.
func (t Tags) Validate() error {
	for _, n := range []string{t.Int, t.CB, t.UMI} {
		if len(n) != 2 {
			return fmt.Errorf("invalid tag name %q: must be two characters", n)
		}
	}
	return nil
}

// TagSet is the set of allowed integer tag values.
type TagSet map[int64]struct{}

// NewTagSet returns a set holding vals.
func NewTagSet(vals ...int64) TagSet {
	s := make(TagSet, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func (s TagSet) Has(v int64) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in ascending order.
func (s TagSet) Values() []int64 {
	out := make([]int64, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Filter evaluates records against flag and tag rules. It holds no
// per-record state and is safe for concurrent use.
type Filter struct {
	intTag, cbTag, umiTag []byte
	allow                 TagSet
}

// New builds a Filter. An empty allow set rejects every record that
// reaches the tag check.
func New(tags Tags, allow TagSet) (*Filter, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	if allow == nil {
		allow = TagSet{}
	}
	return &Filter{
		intTag: []byte(tags.Int),
		cbTag:  []byte(tags.CB),
		umiTag: []byte(tags.UMI),
		allow:  allow,
	}, nil
}

// Evaluate applies the rules in order and returns the identifier tag
// values of a passing record.
func (f *Filter) Evaluate(r *sam.Record) (cb, umi string, reason Reason) {
	if r.Flags&FlagMask != 0 {
		return "", "", RejectFlags
	}
	v, ok := intTag(r, f.intTag)
	if !ok || !f.allow.Has(v) {
		return "", "", RejectTag
	}
	cb, ok = stringTag(r, f.cbTag)
	if !ok {
		return "", "", RejectMissingID
	}
	umi, ok = stringTag(r, f.umiTag)
	if !ok {
		return "", "", RejectMissingID
	}
	return cb, umi, Pass
}

// Check returns the first rule r fails, or Pass.
func (f *Filter) Check(r *sam.Record) Reason {
	_, _, reason := f.Evaluate(r)
	return reason
}

// Pass reports whether r passes every rule.
func (f *Filter) Pass(r *sam.Record) bool { return f.Check(r) == Pass }

// intTag reads an integer-typed aux tag. Tags of any other type count as
// absent.
func intTag(r *sam.Record, tag []byte) (int64, bool) {
	aux, ok := r.Tag(tag)
	if !ok || aux == nil || aux.Kind() != 'i' {
		return 0, false
	}
	switch v := aux.Value().(type) {
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case int16:
		return int64(v), true
	case uint16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func stringTag(r *sam.Record, tag []byte) (string, bool) {
	aux, ok := r.Tag(tag)
	if !ok || aux == nil || aux.Kind() != 'Z' {
		return "", false
	}
	s, ok := aux.Value().(string)
	return s, ok
}
