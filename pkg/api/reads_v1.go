// pkg/api/reads_v1.go
package api

// BlockV1 is one reference block of a read. Coordinates are 1-based inclusive.
type BlockV1 struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Seq   string `json:"seq"`
}

// ReadBlocksV1 is the stable JSONL schema for one decomposed read.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ReadBlocksV1 struct {
	CB        string    `json:"cb"`
	UMI       string    `json:"umi"`
	NumBlocks int       `json:"num_blocks"`
	Blocks    []BlockV1 `json:"blocks"`
}
