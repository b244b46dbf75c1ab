package types

import "context"

// GardenService is the registry surface. Mutating methods read the caller
// from ctx (see WithCaller). Every failure is an *Error.
type GardenService interface {
	// CreateGarden validates p and stores a new garden owned by the caller.
	CreateGarden(ctx context.Context, p GardenPayload) (*Garden, error)

	// GetGarden returns the garden with the given id.
	GetGarden(ctx context.Context, id string) (*Garden, error)

	// ListGardens returns every garden in store order.
	ListGardens(ctx context.Context) ([]*Garden, error)

	// UpdateGarden replaces the content fields of an owned garden.
	UpdateGarden(ctx context.Context, id string, p GardenPayload) (*Garden, error)

	// DeleteGarden removes an owned garden and returns it.
	DeleteGarden(ctx context.Context, id string) (*Garden, error)

	// AddPlant appends a plant to an owned garden. Adding a present plant
	// is an EConflict error, not a no-op.
	AddPlant(ctx context.Context, gardenID, plant string) (*Garden, error)

	// RemovePlant drops a plant from an owned garden.
	RemovePlant(ctx context.Context, gardenID, plant string) (*Garden, error)

	// ListPlants returns a copy of the garden's plant list.
	ListPlants(ctx context.Context, gardenID string) ([]string, error)

	// UpdateImage replaces the image of an owned garden. "" clears it.
	UpdateImage(ctx context.Context, gardenID, image string) (*Garden, error)
}
