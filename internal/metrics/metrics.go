// Package metrics exposes block scan counters as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"exonblocks/internal/filter"
)

// Metrics holds all Prometheus metrics for a scan.
type Metrics struct {
	Scanned          prometheus.Counter
	Rejected         *prometheus.CounterVec
	NoBlocks         prometheus.Counter
	Rows             prometheus.Counter
	Blocks           prometheus.Counter
	SecondaryRecords prometheus.Counter
	SecondaryErrors  prometheus.Counter
	IndexErrors      prometheus.Counter
}

// New creates and registers all metrics with the provided registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exonblocks_records_scanned_total",
			Help: "Alignment records read from the region iterator",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exonblocks_records_rejected_total",
			Help: "Records dropped by the record filter",
		}, []string{"reason"}),
		NoBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exonblocks_records_without_blocks_total",
			Help: "Passing records whose CIGAR has no match operations",
		}),
		Rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exonblocks_rows_written_total",
			Help: "Rows written to the block table",
		}),
		Blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exonblocks_blocks_written_total",
			Help: "Reference blocks written across all rows",
		}),
		SecondaryRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exonblocks_secondary_records_written_total",
			Help: "Records copied to the filtered alignment output",
		}),
		SecondaryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exonblocks_secondary_write_failures_total",
			Help: "Filtered alignment outputs abandoned after a write failure",
		}),
		IndexErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exonblocks_index_build_failures_total",
			Help: "Failed index builds for the filtered alignment output",
		}),
	}
	reg.MustRegister(m.Scanned, m.Rejected, m.NoBlocks, m.Rows, m.Blocks,
		m.SecondaryRecords, m.SecondaryErrors, m.IndexErrors)
	// Materialize every reason so a clean scan still reports zeros.
	for _, r := range filter.Reasons {
		m.Rejected.WithLabelValues(r.String())
	}
	return m
}

// Reject counts one record dropped for reason.
func (m *Metrics) Reject(reason filter.Reason) {
	m.Rejected.WithLabelValues(reason.String()).Inc()
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
