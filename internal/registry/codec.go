package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

// recordVersion is the schema version written by encodeGarden. Bump it and
// add a decode case when the stored layout changes.
const recordVersion = 1

// gardenRecord is the stored form of a garden. Timestamps are Unix
// nanoseconds so the full clock resolution survives a round trip.
type gardenRecord struct {
	SchemaVersion int      `json:"schema_version"`
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Owner         string   `json:"owner"`
	Plants        []string `json:"plants"`
	Image         string   `json:"image"`
	CreatedAt     int64    `json:"created_at"`
	UpdatedAt     *int64   `json:"updated_at"`
}

func encodeGarden(g *types.Garden) ([]byte, error) {
	rec := gardenRecord{
		SchemaVersion: recordVersion,
		ID:            g.ID,
		Name:          g.Name,
		Location:      g.Location,
		Owner:         g.Owner.String(),
		Plants:        g.Plants,
		Image:         g.Image,
		CreatedAt:     g.CreatedAt.UnixNano(),
	}
	if rec.Plants == nil {
		rec.Plants = []string{}
	}
	if g.UpdatedAt != nil {
		u := g.UpdatedAt.UnixNano()
		rec.UpdatedAt = &u
	}
	return json.Marshal(rec)
}

func decodeGarden(b []byte) (*types.Garden, error) {
	var rec gardenRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("corrupt garden record: %w", err)
	}
	switch rec.SchemaVersion {
	case recordVersion:
	default:
		return nil, fmt.Errorf("corrupt garden record %s: unsupported schema version %d", rec.ID, rec.SchemaVersion)
	}

	g := &types.Garden{
		ID:        rec.ID,
		Name:      rec.Name,
		Location:  rec.Location,
		Owner:     types.NewIdentity(rec.Owner),
		Plants:    rec.Plants,
		Image:     rec.Image,
		CreatedAt: time.Unix(0, rec.CreatedAt).UTC(),
	}
	if g.Plants == nil {
		g.Plants = []string{}
	}
	if rec.UpdatedAt != nil {
		u := time.Unix(0, *rec.UpdatedAt).UTC()
		g.UpdatedAt = &u
	}
	return g, nil
}
