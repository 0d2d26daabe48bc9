// internal/output/json.go
package output

import (
	"encoding/json"

	"exonblocks/internal/blocks"
	"exonblocks/pkg/api"
)

// ToAPIRead converts a decomposed read to the stable wire schema (v1).
func ToAPIRead(cb, umi string, blks []blocks.Block) api.ReadBlocksV1 {
	v := api.ReadBlocksV1{
		CB:        cb,
		UMI:       umi,
		NumBlocks: len(blks),
		Blocks:    make([]api.BlockV1, len(blks)),
	}
	for i, b := range blks {
		v.Blocks[i] = api.BlockV1{Start: b.Start, End: b.End, Seq: string(b.Seq)}
	}
	return v
}

// AppendJSONL appends one JSON object (with trailing newline) for a read.
func AppendJSONL(dst []byte, cb, umi string, blks []blocks.Block) ([]byte, error) {
	b, err := json.Marshal(ToAPIRead(cb, umi, blks))
	if err != nil {
		return dst, err
	}
	dst = append(dst, b...)
	return append(dst, '\n'), nil
}

// Appender renders one read in a given row format.
type Appender func(dst []byte, cb, umi string, blks []blocks.Block) ([]byte, error)

// AppenderFor returns the row renderer and header line (empty for none)
// for format f.
func AppenderFor(f string) (Appender, string, bool) {
	switch f {
	case FormatTSV, "":
		return func(dst []byte, cb, umi string, blks []blocks.Block) ([]byte, error) {
			return AppendRow(dst, cb, umi, blks), nil
		}, TSVHeader, true
	case FormatJSONL:
		return AppendJSONL, "", true
	}
	return nil, "", false
}
