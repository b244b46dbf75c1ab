package sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsDesc = prometheus.NewDesc(
		"gardens_sqlite_records",
		"Number of records held by the SQLite backend.",
		nil, nil)
	readsDesc = prometheus.NewDesc(
		"gardens_sqlite_reads_total",
		"Number of read operations served by the SQLite backend.",
		nil, nil)
	writesDesc = prometheus.NewDesc(
		"gardens_sqlite_writes_total",
		"Number of committed write operations on the SQLite backend.",
		nil, nil)
	pendingDesc = prometheus.NewDesc(
		"gardens_sqlite_pending_writes",
		"Number of writes not yet persisted to the JSONL file.",
		nil, nil)
)

var _ prometheus.Collector = (*Backend)(nil)

// Describe is part of the prometheus.Collector interface.
func (b *Backend) Describe(ch chan<- *prometheus.Desc) {
	ch <- recordsDesc
	ch <- readsDesc
	ch <- writesDesc
	ch <- pendingDesc
}

// Collect is part of the prometheus.Collector interface.
func (b *Backend) Collect(ch chan<- prometheus.Metric) {
	b.mu.RLock()
	var records int
	if b.attached {
		if err := b.db.QueryRow(countRecords).Scan(&records); err != nil {
			records = 0
		}
	}
	b.mu.RUnlock()

	b.batchMu.Lock()
	pending := len(b.pendingWrites)
	b.batchMu.Unlock()

	ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(records))
	ch <- prometheus.MustNewConstMetric(readsDesc, prometheus.CounterValue, float64(b.reads.Load()))
	ch <- prometheus.MustNewConstMetric(writesDesc, prometheus.CounterValue, float64(b.writes.Load()))
	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(pending))
}
