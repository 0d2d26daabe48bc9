// internal/scan/summary.go
package scan

import (
	"exonblocks/internal/filter"
	"exonblocks/pkg/api"
)

// API converts s to its stable JSON form. err, when set, is the error the
// scan ended with.
func (s Summary) API(input string, err error) api.ScanSummaryV1 {
	out := api.ScanSummaryV1{
		RunID:            s.RunID,
		Input:            input,
		Region:           s.Region.String(),
		Scanned:          s.Scanned,
		Passed:           s.Passed,
		Rejected:         make(map[string]int, len(filter.Reasons)),
		NoBlocks:         s.NoBlocks,
		Blocks:           s.Blocks,
		SecondaryWritten: s.SecondaryWritten,
		SecondaryFailed:  s.SecondaryFailed,
		IndexBuilt:       s.IndexBuilt,
		ElapsedMS:        s.Elapsed.Milliseconds(),
	}
	for _, r := range filter.Reasons {
		out.Rejected[r.String()] = s.Rejected[r]
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
