// pkg/api/summary_v1.go
package api

// ScanSummaryV1 is the stable JSON schema written by --summary.
type ScanSummaryV1 struct {
	RunID            string         `json:"run_id"`
	Input            string         `json:"input"`
	Region           string         `json:"region"`
	Scanned          int            `json:"scanned"`
	Passed           int            `json:"passed"`
	Rejected         map[string]int `json:"rejected"`
	NoBlocks         int            `json:"no_blocks"`
	Blocks           int            `json:"blocks"`
	SecondaryWritten int            `json:"secondary_written"`
	SecondaryFailed  bool           `json:"secondary_failed"`
	IndexBuilt       bool           `json:"index_built"`
	ElapsedMS        int64          `json:"elapsed_ms"`
	Error            string         `json:"error,omitempty"`
}
