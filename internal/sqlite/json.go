package sqlite

import "encoding/json"

// recordJSON is one line of gardens.jsonl. Value is embedded verbatim so
// that stored records round-trip byte-for-byte through the file.
type recordJSON struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}
