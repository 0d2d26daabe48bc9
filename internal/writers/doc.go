// Package writers owns the destinations a block scan writes rows to.
//
// Design:
//   • Writers own all byte-level concerns (buffering, compression, stdout).
//   • Row rendering lives in internal/output; the scan driver only hands
//     finished rows to a RowSink.
package writers
