// internal/blocks/blocks.go
package blocks

import "github.com/biogo/hts/sam"

// nt16 decodes the 4-bit BAM base code.
const nt16 = "=ACMGRSVTWYHKDBN"

// Block is one reference-contiguous span covered by a single M/=/X
// CIGAR operation. Coordinates are 1-based inclusive.
type Block struct {
	Start int
	End   int
	Seq   []byte // query bases aligned to [Start, End]
}

// Len returns the number of reference bases covered by b.
func (b Block) Len() int { return b.End - b.Start + 1 }

// Buffer holds the block list and base arena reused across records.
// Blocks returned by Decompose alias the buffer and are only valid
// until the next call.
type Buffer struct {
	blocks []Block
	offs   []int
	seq    []byte
}

// Reset clears b without releasing its storage.
func (b *Buffer) Reset() {
	b.blocks = b.blocks[:0]
	b.offs = b.offs[:0]
	b.seq = b.seq[:0]
}

// Decompose walks cigar from the 1-based reference position refStart and
// returns one Block per match/equal/mismatch operation, in CIGAR order.
// Insertions and soft clips advance only the query cursor; deletions and
// reference skips advance only the reference cursor; hard clips, pads and
// unknown operations move neither. An empty result means the record has
// no usable blocks.
func Decompose(buf *Buffer, refStart int, cigar sam.Cigar, seq sam.Seq) []Block {
	buf.Reset()
	ref, query := refStart, 0
	for _, co := range cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if n <= 0 {
				continue
			}
			buf.offs = append(buf.offs, len(buf.seq))
			for j := 0; j < n; j++ {
				buf.seq = append(buf.seq, BaseAt(seq, query+j))
			}
			buf.blocks = append(buf.blocks, Block{Start: ref, End: ref + n - 1})
			ref += n
			query += n
		case sam.CigarInsertion, sam.CigarSoftClipped:
			query += n
		case sam.CigarDeletion, sam.CigarSkipped:
			ref += n
		case sam.CigarHardClipped, sam.CigarPadded:
		default:
		}
	}
	// Slices are taken after the walk; the arena may have moved while growing.
	for i := range buf.blocks {
		off := buf.offs[i]
		buf.blocks[i].Seq = buf.seq[off : off+buf.blocks[i].Len() : off+buf.blocks[i].Len()]
	}
	return buf.blocks
}

// FromRecord decomposes r using its 0-based position.
func FromRecord(buf *Buffer, r *sam.Record) []Block {
	return Decompose(buf, r.Pos+1, r.Cigar, r.Seq)
}

// BaseAt returns the letter at query offset i. Offsets past the stored
// sequence (SEQ '*' or a CIGAR longer than SEQ) decode as 'N'.
func BaseAt(s sam.Seq, i int) byte {
	if i < 0 || i >= s.Length || i/2 >= len(s.Seq) {
		return 'N'
	}
	d := s.Seq[i/2]
	if i&1 == 0 {
		return nt16[d>>4]
	}
	return nt16[d&0xf]
}
