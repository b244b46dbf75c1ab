package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/gardens/internal/bolt"
	"github.com/mesh-intelligence/gardens/pkg/types"
)

func NewTestKVStore(t *testing.T) (*bolt.KVStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", bolt.DefaultFileName)
	s := bolt.NewKVStore(path)
	s.WithLogger(zaptest.NewLogger(t))
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestKVStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := NewTestKVStore(t)

	_, ok, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Insert(ctx, "g1", []byte(`{"name":"Rose Bed"}`)))
	require.NoError(t, s.Insert(ctx, "g2", []byte(`{"name":"Herbs"}`)))

	got, ok, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"name":"Rose Bed"}`, string(got))

	require.NoError(t, s.Insert(ctx, "g1", []byte(`{"name":"Roses"}`)))
	values, err := s.Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte(`{"name":"Roses"}`), []byte(`{"name":"Herbs"}`)}, values)

	old, ok, err := s.Remove(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"name":"Roses"}`, string(old))

	_, ok, err = s.Remove(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStore_InsertRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s, _ := NewTestKVStore(t)

	assert.ErrorIs(t, s.Insert(ctx, "", []byte(`{}`)), types.ErrEmptyKey)
	assert.ErrorIs(t, s.Insert(ctx, "g1", []byte(`nope`)), types.ErrInvalidValue)
}

func TestKVStore_ValuesEmpty(t *testing.T) {
	s, _ := NewTestKVStore(t)

	values, err := s.Values(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, values)
	assert.Empty(t, values)
}

func TestKVStore_Reopen(t *testing.T) {
	ctx := context.Background()
	s, path := NewTestKVStore(t)

	require.NoError(t, s.Insert(ctx, "g1", []byte(`{"created_at":1711963800000000001}`)))
	require.NoError(t, s.Close())

	_, _, err := s.Get(ctx, "g1")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.Insert(ctx, "g2", []byte(`{}`)), types.ErrStoreClosed)
	_, _, err = s.Remove(ctx, "g1")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = s.Values(ctx)
	assert.ErrorIs(t, err, types.ErrStoreClosed)

	reopened := bolt.NewKVStore(path)
	require.NoError(t, reopened.Open(ctx))
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"created_at":1711963800000000001}`, string(got))
}

func TestKVStore_OpenTwice(t *testing.T) {
	s, _ := NewTestKVStore(t)
	assert.ErrorIs(t, s.Open(context.Background()), types.ErrAlreadyAttached)
}

func TestKVStore_CloseIdempotent(t *testing.T) {
	s, _ := NewTestKVStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestKVStore_Metrics(t *testing.T) {
	ctx := context.Background()
	s, _ := NewTestKVStore(t)

	require.NoError(t, s.Insert(ctx, "g1", []byte(`{}`)))
	require.NoError(t, s.Insert(ctx, "g2", []byte(`{}`)))

	reg := prometheus.NewRegistry()
	reg.MustRegister(s)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]float64{}
	for _, mf := range mfs {
		m := mf.GetMetric()[0]
		found[mf.GetName()] = m.GetCounter().GetValue() + m.GetGauge().GetValue()
	}

	assert.Equal(t, float64(2), found["gardens_boltdb_records"])
	assert.GreaterOrEqual(t, found["gardens_boltdb_writes_total"], float64(2))
	assert.Contains(t, found, "gardens_boltdb_reads_total")
}
