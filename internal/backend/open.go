// Package backend selects and opens the storage backend named by a Config.
package backend

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/gardens/internal/bolt"
	"github.com/mesh-intelligence/gardens/internal/memory"
	"github.com/mesh-intelligence/gardens/internal/sqlite"
	"github.com/mesh-intelligence/gardens/pkg/types"
)

// Store is an opened backend: a types.Store that can be closed and
// reports its own metrics.
type Store interface {
	types.Store
	io.Closer
	prometheus.Collector
}

// Open validates cfg and returns the opened backend it names.
func Open(ctx context.Context, cfg types.Config, log *zap.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case types.BackendSQLite:
		b := sqlite.NewBackend()
		b.WithLogger(log)
		if err := b.Attach(cfg); err != nil {
			return nil, fmt.Errorf("attach sqlite backend: %w", err)
		}
		return b, nil

	case types.BackendBolt:
		s := bolt.NewKVStore(filepath.Join(dataDir(cfg), bolt.DefaultFileName))
		s.WithLogger(log)
		if err := s.Open(ctx); err != nil {
			return nil, fmt.Errorf("open bolt backend: %w", err)
		}
		return s, nil

	case types.BackendMemory:
		log.Debug("using ephemeral store")
		return memory.NewStore(), nil
	}

	return nil, types.ErrBackendUnknown
}

func dataDir(cfg types.Config) string {
	if cfg.DataDir == "" {
		return "."
	}
	return cfg.DataDir
}
