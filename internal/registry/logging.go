package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

var _ types.GardenService = (*Logger)(nil)

// Logger is a logging middleware for a GardenService.
type Logger struct {
	logger  *zap.Logger
	gardens types.GardenService
}

// NewLogger returns a logging middleware for the garden service.
func NewLogger(log *zap.Logger, s types.GardenService) *Logger {
	return &Logger{
		logger:  log,
		gardens: s,
	}
}

func (l *Logger) done(msg string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.Duration("took", time.Since(start)))
	if err != nil {
		fields = append(fields, zap.Error(err), zap.String("code", types.ErrorCode(err)))
		l.logger.Debug("failed to "+msg, fields...)
		return
	}
	l.logger.Debug(msg, fields...)
}

func (l *Logger) CreateGarden(ctx context.Context, p types.GardenPayload) (g *types.Garden, err error) {
	defer func(start time.Time) {
		var fields []zap.Field
		if g != nil {
			fields = append(fields, zap.String("garden_id", g.ID))
		}
		l.done("create garden", start, err, fields...)
	}(time.Now())
	return l.gardens.CreateGarden(ctx, p)
}

func (l *Logger) GetGarden(ctx context.Context, id string) (g *types.Garden, err error) {
	defer func(start time.Time) {
		l.done("find garden by ID", start, err, zap.String("garden_id", id))
	}(time.Now())
	return l.gardens.GetGarden(ctx, id)
}

func (l *Logger) ListGardens(ctx context.Context) (gs []*types.Garden, err error) {
	defer func(start time.Time) {
		l.done("list gardens", start, err, zap.Int("count", len(gs)))
	}(time.Now())
	return l.gardens.ListGardens(ctx)
}

func (l *Logger) UpdateGarden(ctx context.Context, id string, p types.GardenPayload) (g *types.Garden, err error) {
	defer func(start time.Time) {
		l.done("update garden", start, err, zap.String("garden_id", id))
	}(time.Now())
	return l.gardens.UpdateGarden(ctx, id, p)
}

func (l *Logger) DeleteGarden(ctx context.Context, id string) (g *types.Garden, err error) {
	defer func(start time.Time) {
		l.done("delete garden", start, err, zap.String("garden_id", id))
	}(time.Now())
	return l.gardens.DeleteGarden(ctx, id)
}

func (l *Logger) AddPlant(ctx context.Context, gardenID, plant string) (g *types.Garden, err error) {
	defer func(start time.Time) {
		l.done("add plant", start, err, zap.String("garden_id", gardenID), zap.String("plant", plant))
	}(time.Now())
	return l.gardens.AddPlant(ctx, gardenID, plant)
}

func (l *Logger) RemovePlant(ctx context.Context, gardenID, plant string) (g *types.Garden, err error) {
	defer func(start time.Time) {
		l.done("remove plant", start, err, zap.String("garden_id", gardenID), zap.String("plant", plant))
	}(time.Now())
	return l.gardens.RemovePlant(ctx, gardenID, plant)
}

func (l *Logger) ListPlants(ctx context.Context, gardenID string) (plants []string, err error) {
	defer func(start time.Time) {
		l.done("list plants", start, err, zap.String("garden_id", gardenID))
	}(time.Now())
	return l.gardens.ListPlants(ctx, gardenID)
}

func (l *Logger) UpdateImage(ctx context.Context, gardenID, image string) (g *types.Garden, err error) {
	defer func(start time.Time) {
		l.done("update garden image", start, err, zap.String("garden_id", gardenID))
	}(time.Now())
	return l.gardens.UpdateImage(ctx, gardenID, image)
}
