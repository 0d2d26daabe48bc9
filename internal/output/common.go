package output

// TSVHeader is the canonical header row for the block table.
// Keep this as the single source of truth; all writers should use it.
const TSVHeader = "CB\tUMI\tblock_start\tblock_end\tblock_seq\tnum_blocks"

// Row output formats.
const (
	FormatTSV   = "tsv"
	FormatJSONL = "jsonl"
)

const (
	fieldSep = '\t'
	blockSep = ';'
)

// ValidFormat reports whether f names a supported row format.
func ValidFormat(f string) bool { return f == FormatTSV || f == FormatJSONL }
