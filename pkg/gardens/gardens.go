package gardens

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/gardens/internal/backend"
	"github.com/mesh-intelligence/gardens/internal/registry"
	"github.com/mesh-intelligence/gardens/pkg/types"
)

// Registry is a GardenService over an opened backend. Close releases the
// backend; calls after Close fail with a storage error.
type Registry struct {
	types.GardenService
	store backend.Store
}

// Options tune Open. The zero value logs nothing and registers no metrics.
type Options struct {
	Logger     *zap.Logger
	Registerer prometheus.Registerer
}

// Open opens the backend named by cfg and returns a registry over it.
//
// Example:
//
//	r, err := gardens.Open(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".gardens-db",
//	}, gardens.Options{})
//	defer r.Close()
//	g, err := r.CreateGarden(types.WithCaller(ctx, types.NewIdentity("alice")), payload)
func Open(ctx context.Context, cfg types.Config, opts Options) (*Registry, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var svc types.GardenService = registry.NewService(store)
	if opts.Registerer != nil {
		if err := opts.Registerer.Register(store); err != nil {
			return nil, multierr.Append(fmt.Errorf("register store metrics: %w", err), store.Close())
		}
		m, err := registry.NewMetrics(opts.Registerer, svc)
		if err != nil {
			opts.Registerer.Unregister(store)
			return nil, multierr.Append(err, store.Close())
		}
		svc = m
	}
	svc = registry.NewLogger(log, svc)

	return &Registry{GardenService: svc, store: store}, nil
}

// Close releases the underlying backend.
func (r *Registry) Close() error {
	return r.store.Close()
}
