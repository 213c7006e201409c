package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
	"github.com/laraibshahid/carrental/pkg/domain"
)

// stubVehicleRepo counts calls so tests can observe fall-through behavior.
type stubVehicleRepo struct {
	vehicle *vehicleDomain.Vehicle
	finds   atomic.Int64
}

func (s *stubVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	s.finds.Add(1)
	if s.vehicle == nil || s.vehicle.ID() != id {
		return nil, domain.NewNotFoundError("vehicle", id.String())
	}
	return s.vehicle, nil
}

func (s *stubVehicleRepo) List(_ context.Context, _ vehicleDomain.ListFilter, _, _ int) ([]*vehicleDomain.Vehicle, int64, error) {
	return []*vehicleDomain.Vehicle{s.vehicle}, 1, nil
}

func (s *stubVehicleRepo) Save(_ context.Context, v *vehicleDomain.Vehicle) error {
	s.vehicle = v
	return nil
}

func (s *stubVehicleRepo) Update(_ context.Context, v *vehicleDomain.Vehicle) error {
	s.vehicle = v
	return nil
}

// unreachableClient returns a client pointed at a port nothing listens on.
// Every cache operation fails fast, which must degrade to the inner repo.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func newStubVehicle(t *testing.T) *vehicleDomain.Vehicle {
	t.Helper()
	v, err := vehicleDomain.NewVehicle(uuid.New(), vehicleDomain.Attributes{
		Make:         "Ford",
		Model:        "Focus",
		Year:         2020,
		LicensePlate: "CCH-0001",
	}, 4000, "USD")
	require.NoError(t, err)
	return v
}

func TestVehicleCache_DegradesWhenRedisIsDown(t *testing.T) {
	veh := newStubVehicle(t)
	inner := &stubVehicleRepo{vehicle: veh}
	cache := NewVehicleCache(inner, unreachableClient(), time.Minute, zap.NewNop())

	got, err := cache.FindByID(context.Background(), veh.ID())
	require.NoError(t, err)
	assert.Equal(t, veh.ID(), got.ID())
	assert.Equal(t, int64(1), inner.finds.Load(), "a cache miss must hit the inner repository")

	// Unknown IDs propagate the inner repository's not-found.
	_, err = cache.FindByID(context.Background(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestVehicleCache_WritesGoThroughEvenWhenRedisIsDown(t *testing.T) {
	veh := newStubVehicle(t)
	inner := &stubVehicleRepo{}
	cache := NewVehicleCache(inner, unreachableClient(), time.Minute, zap.NewNop())

	require.NoError(t, cache.Save(context.Background(), veh))
	assert.Equal(t, veh, inner.vehicle, "save must reach the inner repository")

	veh.IncrementVersion()
	require.NoError(t, cache.Update(context.Background(), veh))
	assert.Equal(t, int64(2), inner.vehicle.Version())
}

func TestVehicleCache_ListPassesThrough(t *testing.T) {
	veh := newStubVehicle(t)
	inner := &stubVehicleRepo{vehicle: veh}
	cache := NewVehicleCache(inner, unreachableClient(), time.Minute, zap.NewNop())

	items, total, err := cache.List(context.Background(), vehicleDomain.ListFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, veh.ID(), items[0].ID())
}
