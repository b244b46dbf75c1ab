package sqlite

// Schema DDL. records is a cache of gardens.jsonl; rowid preserves the
// order in which keys were first inserted.
const (
	createRecords = `CREATE TABLE records (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxRecordsUpdated = `CREATE INDEX idx_records_updated ON records(updated_at);`
)

// schemaDDL lists all statements run against a fresh database on Attach.
var schemaDDL = []string{
	createRecords,
	idxRecordsUpdated,
}

// Queries used by the store operations.
const (
	selectRecord = `SELECT value FROM records WHERE key = ?`
	selectValues = `SELECT value FROM records ORDER BY rowid`
	selectAll    = `SELECT key, value, updated_at FROM records ORDER BY rowid`
	countRecords = `SELECT COUNT(*) FROM records`
	deleteRecord = `DELETE FROM records WHERE key = ?`
	upsertRecord = `INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)
