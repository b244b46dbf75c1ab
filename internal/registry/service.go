// Package registry implements the garden registry on top of a types.Store.
//
// Every operation validates its arguments, performs at most one read and one
// write against the store under a per-garden lock, and reports failures as
// *types.Error values. Mutations are owner-only and rewrite the full record.
package registry

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

var _ types.GardenService = (*Service)(nil)

// errIDCollision means the id generator produced an id already in the store.
var errIDCollision = errors.New("generated garden id already exists")

// Service implements types.GardenService.
type Service struct {
	store types.Store
	clock clock.Clock
	newID func() string
	locks *keyLocks
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source. The default is the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator sets the garden id source. The default is UUID v7.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// NewService returns a registry backed by store.
func NewService(store types.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: clock.New(),
		newID: generateUUID,
		locks: newKeyLocks(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// generateUUID generates a new UUID v7 for garden IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// CreateGarden stores a new garden owned by the caller in ctx.
func (s *Service) CreateGarden(ctx context.Context, p types.GardenPayload) (*types.Garden, error) {
	const op = "registry/CreateGarden"

	if err := p.Validate(); err != nil {
		return nil, err
	}
	caller, ok := types.CallerFromContext(ctx)
	if !ok {
		return nil, types.ErrNoCaller
	}

	g := &types.Garden{
		ID:        s.newID(),
		Name:      p.Name,
		Location:  p.Location,
		Owner:     caller,
		Plants:    clonePlants(p.Plants),
		Image:     p.Image,
		CreatedAt: s.now(),
	}

	unlock := s.locks.lock(g.ID)
	defer unlock()

	_, exists, err := s.store.Get(ctx, g.ID)
	if err != nil {
		return nil, types.ErrStorage(op, err)
	}
	if exists {
		return nil, types.ErrStorage(op, errIDCollision)
	}
	if err := s.put(ctx, op, g); err != nil {
		return nil, err
	}
	return g, nil
}

// GetGarden returns the garden stored under id.
func (s *Service) GetGarden(ctx context.Context, id string) (*types.Garden, error) {
	const op = "registry/GetGarden"

	if err := requireID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(id)
	defer unlock()

	return s.load(ctx, op, id)
}

// ListGardens returns every garden in store enumeration order.
func (s *Service) ListGardens(ctx context.Context) ([]*types.Garden, error) {
	const op = "registry/ListGardens"

	values, err := s.store.Values(ctx)
	if err != nil {
		return nil, types.ErrStorage(op, err)
	}
	gardens := make([]*types.Garden, 0, len(values))
	for _, v := range values {
		g, err := decodeGarden(v)
		if err != nil {
			return nil, types.ErrStorage(op, err)
		}
		gardens = append(gardens, g)
	}
	return gardens, nil
}

// UpdateGarden replaces name, location, plants and image of an owned garden.
func (s *Service) UpdateGarden(ctx context.Context, id string, p types.GardenPayload) (*types.Garden, error) {
	const op = "registry/UpdateGarden"

	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, id, func(g *types.Garden) error {
		g.Name = p.Name
		g.Location = p.Location
		g.Plants = clonePlants(p.Plants)
		g.Image = p.Image
		return nil
	})
}

// DeleteGarden removes an owned garden and returns the removed record.
func (s *Service) DeleteGarden(ctx context.Context, id string) (*types.Garden, error) {
	const op = "registry/DeleteGarden"

	if err := requireID(id); err != nil {
		return nil, err
	}
	caller, ok := types.CallerFromContext(ctx)
	if !ok {
		return nil, types.ErrNoCaller
	}

	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if g.Owner != caller {
		return nil, types.ErrNotOwner(id)
	}

	removed, ok, err := s.store.Remove(ctx, id)
	if err != nil {
		return nil, types.ErrStorage(op, err)
	}
	if !ok {
		return nil, types.ErrGardenNotFound(id)
	}
	if g, err = decodeGarden(removed); err != nil {
		return nil, types.ErrStorage(op, err)
	}
	return g, nil
}

// AddPlant appends plant to an owned garden. A plant already present is an
// EConflict error and the record is left unchanged.
func (s *Service) AddPlant(ctx context.Context, gardenID, plant string) (*types.Garden, error) {
	const op = "registry/AddPlant"

	if err := requirePlantArgs(gardenID, plant); err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, gardenID, func(g *types.Garden) error {
		return g.AddPlant(plant)
	})
}

// RemovePlant drops plant from an owned garden.
func (s *Service) RemovePlant(ctx context.Context, gardenID, plant string) (*types.Garden, error) {
	const op = "registry/RemovePlant"

	if err := requirePlantArgs(gardenID, plant); err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, gardenID, func(g *types.Garden) error {
		return g.RemovePlant(plant)
	})
}

// ListPlants returns a copy of the plant list of the garden.
func (s *Service) ListPlants(ctx context.Context, gardenID string) ([]string, error) {
	const op = "registry/ListPlants"

	if err := requireID(gardenID); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(gardenID)
	defer unlock()

	g, err := s.load(ctx, op, gardenID)
	if err != nil {
		return nil, err
	}
	return clonePlants(g.Plants), nil
}

// UpdateImage replaces the image of an owned garden. An empty image clears it.
func (s *Service) UpdateImage(ctx context.Context, gardenID, image string) (*types.Garden, error) {
	const op = "registry/UpdateImage"

	if err := requireID(gardenID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, gardenID, func(g *types.Garden) error {
		g.Image = image
		return nil
	})
}

// mutate runs the owner-gated read-modify-write shared by every update. fn
// changes a freshly decoded copy; nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, op, id string, fn func(g *types.Garden) error) (*types.Garden, error) {
	caller, ok := types.CallerFromContext(ctx)
	if !ok {
		return nil, types.ErrNoCaller
	}

	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if g.Owner != caller {
		return nil, types.ErrNotOwner(id)
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	g.Touch(s.now())

	if err := s.put(ctx, op, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) load(ctx context.Context, op, id string) (*types.Garden, error) {
	b, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, types.ErrStorage(op, err)
	}
	if !ok {
		return nil, types.ErrGardenNotFound(id)
	}
	g, err := decodeGarden(b)
	if err != nil {
		return nil, types.ErrStorage(op, err)
	}
	return g, nil
}

func (s *Service) put(ctx context.Context, op string, g *types.Garden) error {
	b, err := encodeGarden(g)
	if err != nil {
		return types.ErrStorage(op, err)
	}
	if err := s.store.Insert(ctx, g.ID, b); err != nil {
		return types.ErrStorage(op, err)
	}
	return nil
}

// now reads the clock without its monotonic component, which does not
// survive encoding.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Round(0)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return types.ErrInvalid("garden id must not be empty")
	}
	return nil
}

func requirePlantArgs(gardenID, plant string) error {
	if err := requireID(gardenID); err != nil {
		return err
	}
	if strings.TrimSpace(plant) == "" {
		return types.ErrInvalid("plant name must not be empty for garden %s", gardenID)
	}
	return nil
}

func clonePlants(plants []string) []string {
	if plants == nil {
		return []string{}
	}
	return slices.Clone(plants)
}
