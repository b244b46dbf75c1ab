package types

import (
	"slices"
	"strings"
	"time"
)

// Garden is the sole entity kept by the registry.
type Garden struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Location  string     `json:"location"`
	Owner     Identity   `json:"owner"`
	Plants    []string   `json:"plants"`
	Image     string     `json:"image"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"` // nil until the first mutation.
}

// GardenPayload carries the mutable content fields for create and update.
type GardenPayload struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Plants   []string `json:"plants"`
	Image    string   `json:"image"`
}

// Validate checks that name, location and image are present and that plants
// is a well-formed set. A nil Plants slice is an empty set.
func (p GardenPayload) Validate() error {
	switch {
	case isBlank(p.Name):
		return invalidf("garden name must not be empty")
	case isBlank(p.Location):
		return invalidf("garden location must not be empty")
	case isBlank(p.Image):
		return invalidf("garden image must not be empty")
	}
	return ValidatePlants(p.Plants)
}

// ValidatePlants reports EInvalid for an empty entry or a repeated entry.
func ValidatePlants(plants []string) error {
	seen := make(map[string]struct{}, len(plants))
	for i, p := range plants {
		if isBlank(p) {
			return invalidf("plant at position %d must not be empty", i)
		}
		if _, dup := seen[p]; dup {
			return invalidf("plant %q listed more than once", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// HasPlant reports whether plant is in the list (case-sensitive).
func (g *Garden) HasPlant(plant string) bool {
	return slices.Contains(g.Plants, plant)
}

// AddPlant appends plant, keeping existing order.
// Returns EConflict if the plant is already present.
func (g *Garden) AddPlant(plant string) error {
	if g.HasPlant(plant) {
		return ErrDuplicatePlant(g.ID, plant)
	}
	g.Plants = append(g.Plants, plant)
	return nil
}

// RemovePlant drops the matching entry.
// Returns ENotFound if the plant is absent.
func (g *Garden) RemovePlant(plant string) error {
	i := slices.Index(g.Plants, plant)
	if i < 0 {
		return ErrPlantNotFound(g.ID, plant)
	}
	g.Plants = slices.Delete(g.Plants, i, i+1)
	return nil
}

// Touch sets UpdatedAt to now, clamped so that it never precedes CreatedAt
// or an earlier UpdatedAt.
func (g *Garden) Touch(now time.Time) {
	if now.Before(g.CreatedAt) {
		now = g.CreatedAt
	}
	if g.UpdatedAt != nil && now.Before(*g.UpdatedAt) {
		now = *g.UpdatedAt
	}
	g.UpdatedAt = &now
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
