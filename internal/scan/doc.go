// Package scan drives one block scan over a genomic interval.
//
// A scan moves through Init → Streaming → Finalizing → Done:
//
//   - Init opens the input store and its index, resolves the interval,
//     opens the row sink (writing its header) and, when requested, the
//     secondary alignment output. Failures here are fatal and nothing is
//     streamed.
//   - Streaming pulls records in file order and runs filter → decompose →
//     format for each; passing records are written as rows and copied,
//     unmodified, to the secondary output.
//   - Finalizing closes the row sink and the secondary output, then builds
//     a BAI index for BAM secondary outputs.
//   - Done reports a Summary whose Passed field is the row count.
//
// A secondary write failure abandons the secondary output for the rest of
// the scan without affecting rows. Everything is single-threaded; each
// scan owns its handles and buffers.
package scan
