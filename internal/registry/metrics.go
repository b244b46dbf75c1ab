package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

var _ types.GardenService = (*Metrics)(nil)

// Metrics records request count, error count by code, and duration for
// every GardenService call.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	gardens types.GardenService
}

// NewMetrics returns a metrics middleware registered with reg. Nothing stays
// registered when an error is returned.
func NewMetrics(reg prometheus.Registerer, s types.GardenService) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gardens",
			Subsystem: "registry",
			Name:      "requests_total",
			Help:      "Number of registry calls by method and outcome code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gardens",
			Subsystem: "registry",
			Name:      "request_duration_seconds",
			Help:      "Duration of registry calls by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		gardens: s,
	}
	if err := reg.Register(m.requests); err != nil {
		return nil, fmt.Errorf("register registry request metrics: %w", err)
	}
	if err := reg.Register(m.duration); err != nil {
		reg.Unregister(m.requests)
		return nil, fmt.Errorf("register registry duration metrics: %w", err)
	}
	return m, nil
}

// record starts timing method and returns the func that observes the result.
func (m *Metrics) record(method string) func(error) error {
	start := time.Now()
	return func(err error) error {
		code := "ok"
		if err != nil {
			code = types.ErrorCode(err)
		}
		m.requests.WithLabelValues(method, code).Inc()
		m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) CreateGarden(ctx context.Context, p types.GardenPayload) (*types.Garden, error) {
	rec := m.record("create_garden")
	g, err := m.gardens.CreateGarden(ctx, p)
	return g, rec(err)
}

func (m *Metrics) GetGarden(ctx context.Context, id string) (*types.Garden, error) {
	rec := m.record("get_garden")
	g, err := m.gardens.GetGarden(ctx, id)
	return g, rec(err)
}

func (m *Metrics) ListGardens(ctx context.Context) ([]*types.Garden, error) {
	rec := m.record("list_gardens")
	gs, err := m.gardens.ListGardens(ctx)
	return gs, rec(err)
}

func (m *Metrics) UpdateGarden(ctx context.Context, id string, p types.GardenPayload) (*types.Garden, error) {
	rec := m.record("update_garden")
	g, err := m.gardens.UpdateGarden(ctx, id, p)
	return g, rec(err)
}

func (m *Metrics) DeleteGarden(ctx context.Context, id string) (*types.Garden, error) {
	rec := m.record("delete_garden")
	g, err := m.gardens.DeleteGarden(ctx, id)
	return g, rec(err)
}

func (m *Metrics) AddPlant(ctx context.Context, gardenID, plant string) (*types.Garden, error) {
	rec := m.record("add_plant")
	g, err := m.gardens.AddPlant(ctx, gardenID, plant)
	return g, rec(err)
}

func (m *Metrics) RemovePlant(ctx context.Context, gardenID, plant string) (*types.Garden, error) {
	rec := m.record("remove_plant")
	g, err := m.gardens.RemovePlant(ctx, gardenID, plant)
	return g, rec(err)
}

func (m *Metrics) ListPlants(ctx context.Context, gardenID string) ([]string, error) {
	rec := m.record("list_plants")
	plants, err := m.gardens.ListPlants(ctx, gardenID)
	return plants, rec(err)
}

func (m *Metrics) UpdateImage(ctx context.Context, gardenID, image string) (*types.Garden, error) {
	rec := m.record("update_image")
	g, err := m.gardens.UpdateImage(ctx, gardenID, image)
	return g, rec(err)
}
