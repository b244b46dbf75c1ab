// Package bolt implements the bbolt storage backend for gardens.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

// DefaultFileName is the bolt file created inside the data directory.
const DefaultFileName = "gardens.bolt"

var gardensBucket = []byte("gardensv1")

var _ types.Store = (*KVStore)(nil)

// KVStore is a types.Store backed by boltdb. Values enumerate in key order.
type KVStore struct {
	mu     sync.RWMutex
	path   string
	db     *bolt.DB
	logger *zap.Logger
}

// NewKVStore returns an instance of KVStore with the file at
// the provided path.
func NewKVStore(path string) *KVStore {
	return &KVStore{
		path:   path,
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger on the store.
func (s *KVStore) WithLogger(l *zap.Logger) {
	s.logger = l
}

// Open creates the boltDB file if it doesn't exist and opens it otherwise.
func (s *KVStore) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return types.ErrAlreadyAttached
	}

	// Ensure the required directory structure exists.
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("unable to create directory %s: %v", s.path, err)
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("unable to open boltdb file %v", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(gardensBucket)
		return err
	}); err != nil {
		db.Close()
		return fmt.Errorf("unable to create bucket %s: %v", gardensBucket, err)
	}
	s.db = db

	s.logger.Info("Resources opened", zap.String("path", s.path))
	return nil
}

// Close the connection to the bolt database.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.logger.Info("Resources closed", zap.String("path", s.path))
	return err
}

// Get returns a copy of the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.view(ctx, func(b *bolt.Bucket) error {
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

// Insert stores value under key, replacing any existing value.
func (s *KVStore) Insert(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return types.ErrEmptyKey
	}
	if !json.Valid(value) {
		return types.ErrInvalidValue
	}
	return s.update(ctx, func(b *bolt.Bucket) error {
		return b.Put([]byte(key), value)
	})
}

// Remove deletes key and returns the value it held.
func (s *KVStore) Remove(ctx context.Context, key string) ([]byte, bool, error) {
	var old []byte
	err := s.update(ctx, func(b *bolt.Bucket) error {
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		old = append([]byte{}, v...)
		return b.Delete([]byte(key))
	})
	if err != nil {
		return nil, false, err
	}
	return old, old != nil, nil
}

// Values returns a copy of every stored value.
func (s *KVStore) Values(ctx context.Context) ([][]byte, error) {
	values := [][]byte{}
	err := s.view(ctx, func(b *bolt.Bucket) error {
		return b.ForEach(func(_, v []byte) error {
			values = append(values, append([]byte{}, v...))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (s *KVStore) view(ctx context.Context, fn func(b *bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(gardensBucket))
	})
}

func (s *KVStore) update(ctx context.Context, fn func(b *bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(gardensBucket))
	})
}
