// internal/output/rows.go
package output

import (
	"strconv"

	"exonblocks/internal/blocks"
)

// AppendRow appends one TSV row (with trailing newline) for a read to dst:
//
//	CB  UMI  starts  ends  seqs  n
//
// starts, ends and seqs are ';'-joined per block. Tag values are written
// verbatim; a tab inside cb or umi makes the row ambiguous.
func AppendRow(dst []byte, cb, umi string, blks []blocks.Block) []byte {
	dst = append(dst, cb...)
	dst = append(dst, fieldSep)
	dst = append(dst, umi...)
	dst = append(dst, fieldSep)
	for i, b := range blks {
		if i > 0 {
			dst = append(dst, blockSep)
		}
		dst = strconv.AppendInt(dst, int64(b.Start), 10)
	}
	dst = append(dst, fieldSep)
	for i, b := range blks {
		if i > 0 {
			dst = append(dst, blockSep)
		}
		dst = strconv.AppendInt(dst, int64(b.End), 10)
	}
	dst = append(dst, fieldSep)
	for i, b := range blks {
		if i > 0 {
			dst = append(dst, blockSep)
		}
		dst = append(dst, b.Seq...)
	}
	dst = append(dst, fieldSep)
	dst = strconv.AppendInt(dst, int64(len(blks)), 10)
	return append(dst, '\n')
}

// FormatRow is AppendRow into a fresh string.
func FormatRow(cb, umi string, blks []blocks.Block) string {
	return string(AppendRow(nil, cb, umi, blks))
}
