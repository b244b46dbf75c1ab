package types

import "errors"

// Config holds backend selection and parameters for opening a store.
type Config struct {
	Backend string        `json:"backend" yaml:"backend"`
	DataDir string        `json:"data_dir" yaml:"data_dir"`
	SQLite  *SQLiteConfig `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// SQLite sync strategies control when gardens.jsonl is rewritten.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
	SyncBatch     = "batch"
)

// Defaults for the batch sync strategy.
const (
	DefaultBatchSize     = 10
	DefaultBatchInterval = 5 // seconds
)

// SQLiteConfig tunes JSONL persistence for the SQLite backend.
type SQLiteConfig struct {
	SyncStrategy  string `json:"sync_strategy" yaml:"sync_strategy"`
	BatchSize     int    `json:"batch_size" yaml:"batch_size"`
	BatchInterval int    `json:"batch_interval" yaml:"batch_interval"` // seconds
}

// GetSyncStrategy returns the configured strategy, defaulting to immediate.
// Safe on a nil receiver.
func (c *SQLiteConfig) GetSyncStrategy() string {
	if c == nil || c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}

// GetBatchSize returns the batch size, defaulting when unset.
func (c *SQLiteConfig) GetBatchSize() int {
	if c == nil || c.BatchSize == 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// GetBatchInterval returns the batch interval in seconds, defaulting when unset.
func (c *SQLiteConfig) GetBatchInterval() int {
	if c == nil || c.BatchInterval == 0 {
		return DefaultBatchInterval
	}
	return c.BatchInterval
}

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid     = errors.New("batch size must be positive")
	ErrBatchIntervalInvalid = errors.New("batch interval must be positive")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendBolt:   true,
	BackendMemory: true,
}

var knownSyncStrategies = map[string]bool{
	SyncImmediate: true,
	SyncOnClose:   true,
	SyncBatch:     true,
}

// Validate checks that the Config is well-formed and returns one of the
// sentinel errors above on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.SQLite == nil {
		return nil
	}
	if c.SQLite.SyncStrategy != "" && !knownSyncStrategies[c.SQLite.SyncStrategy] {
		return ErrSyncStrategyUnknown
	}
	if c.SQLite.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	if c.SQLite.BatchInterval < 0 {
		return ErrBatchIntervalInvalid
	}
	return nil
}
