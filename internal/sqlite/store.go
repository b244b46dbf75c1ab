package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

var _ types.Store = (*Backend)(nil)

// Get returns the value stored under key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, false, types.ErrStoreClosed
	}
	b.reads.Add(1)

	var value string
	err := b.db.QueryRowContext(ctx, selectRecord, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// commitTx commits tx; tests replace it to simulate a failed commit.
var commitTx = (*sql.Tx).Commit

// Insert stores value under key, replacing any existing value. With the
// immediate strategy the JSONL file is rewritten before the transaction
// commits, so a failed persist leaves the database unchanged.
func (b *Backend) Insert(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return types.ErrEmptyKey
	}
	if !json.Valid(value) {
		return types.ErrInvalidValue
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreClosed
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, upsertRecord, key, string(value), updatedAt); err != nil {
		return err
	}

	if err := b.persistLocked(ctx, tx); err != nil {
		return err
	}
	if err := b.commitLocked(tx); err != nil {
		return err
	}

	b.writes.Add(1)
	if !b.shouldPersistImmediately() {
		b.queueWrite(key, "insert")
	}
	return nil
}

// Remove deletes key and returns the value it held.
func (b *Backend) Remove(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, false, types.ErrStoreClosed
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var value string
	err = tx.QueryRowContext(ctx, selectRecord, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if _, err := tx.ExecContext(ctx, deleteRecord, key); err != nil {
		return nil, false, err
	}
	if err := b.persistLocked(ctx, tx); err != nil {
		return nil, false, err
	}
	if err := b.commitLocked(tx); err != nil {
		return nil, false, err
	}

	b.writes.Add(1)
	if !b.shouldPersistImmediately() {
		b.queueWrite(key, "remove")
	}
	return []byte(value), true, nil
}

// Values returns every stored value in first-insertion order.
func (b *Backend) Values(ctx context.Context) ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	b.reads.Add(1)

	rows, err := b.db.QueryContext(ctx, selectValues)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := [][]byte{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, []byte(value))
	}
	return values, rows.Err()
}

// persistLocked rewrites the JSONL file from inside tx when the sync
// strategy is immediate. The caller must hold b.mu write lock.
func (b *Backend) persistLocked(ctx context.Context, tx *sql.Tx) error {
	if !b.shouldPersistImmediately() {
		return nil
	}
	return persistJSONL(ctx, tx, b.dataDir)
}

// commitLocked commits tx. With the immediate strategy the JSONL file already
// holds the transaction's write, so a failed commit rewrites it from the
// committed rows. The caller must hold b.mu write lock.
func (b *Backend) commitLocked(tx *sql.Tx) error {
	err := commitTx(tx)
	if err == nil || !b.shouldPersistImmediately() {
		return err
	}
	_ = tx.Rollback()
	if rerr := persistJSONL(context.Background(), b.db, b.dataDir); rerr != nil {
		return multierr.Append(err, fmt.Errorf("restore %s: %w", gardensJSONL, rerr))
	}
	return err
}
