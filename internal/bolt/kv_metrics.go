package bolt

import (
	"github.com/prometheus/client_golang/prometheus"
	bolt "go.etcd.io/bbolt"
)

var _ prometheus.Collector = (*KVStore)(nil)

var (
	kvWritesDesc = prometheus.NewDesc(
		"gardens_boltdb_writes_total",
		"Total number of boltdb writes",
		nil, nil)

	kvReadsDesc = prometheus.NewDesc(
		"gardens_boltdb_reads_total",
		"Total number of boltdb reads",
		nil, nil)

	kvRecordsDesc = prometheus.NewDesc(
		"gardens_boltdb_records",
		"Number of gardens stored in boltdb",
		nil, nil)
)

// Describe returns all descriptions of the collector.
func (s *KVStore) Describe(ch chan<- *prometheus.Desc) {
	ch <- kvWritesDesc
	ch <- kvReadsDesc
	ch <- kvRecordsDesc
}

// Collect returns the current state of all metrics of the collector.
func (s *KVStore) Collect(ch chan<- prometheus.Metric) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reads, writes, records int
	if s.db != nil {
		stats := s.db.Stats()
		writes = stats.TxStats.Write
		reads = stats.TxN

		_ = s.db.View(func(tx *bolt.Tx) error {
			records = tx.Bucket(gardensBucket).Stats().KeyN
			return nil
		})
	}

	ch <- prometheus.MustNewConstMetric(
		kvReadsDesc,
		prometheus.CounterValue,
		float64(reads),
	)

	ch <- prometheus.MustNewConstMetric(
		kvWritesDesc,
		prometheus.CounterValue,
		float64(writes),
	)

	ch <- prometheus.MustNewConstMetric(
		kvRecordsDesc,
		prometheus.GaugeValue,
		float64(records),
	)
}
