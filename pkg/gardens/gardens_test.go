package gardens_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/gardens/pkg/gardens"
	"github.com/mesh-intelligence/gardens/pkg/types"
)

func TestOpen(t *testing.T) {
	ctx := types.WithCaller(context.Background(), types.NewIdentity("alice"))
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}
	reg := prometheus.NewRegistry()

	r, err := gardens.Open(ctx, cfg, gardens.Options{
		Logger:     zaptest.NewLogger(t),
		Registerer: reg,
	})
	require.NoError(t, err)

	g, err := r.CreateGarden(ctx, types.GardenPayload{
		Name:     "Rose Bed",
		Location: "Back yard",
		Image:    "rose.png",
		Plants:   []string{"rose"},
	})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	// Reopen and read back.
	r, err = gardens.Open(ctx, cfg, gardens.Options{})
	require.NoError(t, err)
	defer r.Close()

	got, err := r.GetGarden(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rose Bed", got.Name)
	assert.Equal(t, []string{"rose"}, got.Plants)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestOpenInvalidConfig(t *testing.T) {
	_, err := gardens.Open(context.Background(), types.Config{}, gardens.Options{})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}

func TestOpenSharedRegisterer(t *testing.T) {
	ctx := types.WithCaller(context.Background(), types.NewIdentity("alice"))
	reg := prometheus.NewRegistry()

	first, err := gardens.Open(ctx, types.Config{Backend: types.BackendMemory}, gardens.Options{Registerer: reg})
	require.NoError(t, err)
	defer first.Close()

	// The bolt collector registers cleanly but the registry metrics collide.
	boltCfg := types.Config{Backend: types.BackendBolt, DataDir: t.TempDir()}
	var second *gardens.Registry
	require.NotPanics(t, func() {
		second, err = gardens.Open(ctx, boltCfg, gardens.Options{Registerer: reg})
	})
	var are prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &are)
	assert.Nil(t, second)

	// The failed Open released the bolt file and left no bolt metrics behind.
	r, err := gardens.Open(ctx, boltCfg, gardens.Options{})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		assert.NotContains(t, mf.GetName(), "gardens_boltdb")
	}
}
