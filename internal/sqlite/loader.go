package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// loadJSONL reads gardens.jsonl from dataDir into the records table and
// returns the number of rows loaded. Loading is transactional: all succeed
// or the table remains empty. Malformed lines, lines without a key or value,
// and unknown fields are tolerated; a later line for the same key wins.
func loadJSONL(db *sql.DB, dataDir string) (int, error) {
	lines, err := readJSONL(filepath.Join(dataDir, gardensJSONL))
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertRecord)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		var rec recordJSON
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Key == "" || len(rec.Value) == 0 {
			continue
		}
		if _, err := stmt.Exec(rec.Key, string(rec.Value), rec.UpdatedAt); err != nil {
			continue
		}
	}

	var n int
	if err := tx.QueryRow(countRecords).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting loaded records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return n, nil
}
