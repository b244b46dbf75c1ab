// Package memory provides an in-memory implementation of types.Store used for
// tests and ephemeral runs. Nothing survives Close.
package memory

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

var (
	_ types.Store          = (*Store)(nil)
	_ prometheus.Collector = (*Store)(nil)
)

// Store keeps values in a map and remembers insertion order so that Values
// enumerates deterministically.
type Store struct {
	mu     sync.RWMutex
	closed bool
	values map[string][]byte
	order  []string

	reads  atomic.Uint64
	writes atomic.Uint64
}

// NewStore returns an empty, open store.
func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Get returns a copy of the value under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, types.ErrStoreClosed
	}
	s.reads.Add(1)
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Insert stores a copy of value under key. value must be valid JSON.
func (s *Store) Insert(_ context.Context, key string, value []byte) error {
	if key == "" {
		return types.ErrEmptyKey
	}
	if !json.Valid(value) {
		return types.ErrInvalidValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	s.writes.Add(1)
	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
	}
	s.values[key] = slices.Clone(value)
	return nil
}

// Remove deletes key and returns what it held.
func (s *Store) Remove(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, types.ErrStoreClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	s.writes.Add(1)
	delete(s.values, key)
	if i := slices.Index(s.order, key); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return v, true, nil
}

// Values returns copies of all values in insertion order.
func (s *Store) Values(_ context.Context) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}
	s.reads.Add(1)
	out := make([][]byte, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, slices.Clone(s.values[k]))
	}
	return out, nil
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Close drops all values. Later calls fail with types.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.values = nil
	s.order = nil
	return nil
}

var (
	recordsDesc = prometheus.NewDesc(
		"gardens_memory_records",
		"Number of records held by the memory store",
		nil, nil)

	readsDesc = prometheus.NewDesc(
		"gardens_memory_reads_total",
		"Total number of memory store reads",
		nil, nil)

	writesDesc = prometheus.NewDesc(
		"gardens_memory_writes_total",
		"Total number of memory store writes",
		nil, nil)
)

// Describe returns all descriptions of the collector.
func (s *Store) Describe(ch chan<- *prometheus.Desc) {
	ch <- recordsDesc
	ch <- readsDesc
	ch <- writesDesc
}

// Collect returns the current state of all metrics of the collector.
func (s *Store) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(s.Len()))
	ch <- prometheus.MustNewConstMetric(readsDesc, prometheus.CounterValue, float64(s.reads.Load()))
	ch <- prometheus.MustNewConstMetric(writesDesc, prometheus.CounterValue, float64(s.writes.Load()))
}
