package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	vehicleDomain "github.com/laraibshahid/carrental/internal/domain/vehicle"
)

const vehicleKeyPrefix = "vehicle:"

// cachedVehicle is the JSON snapshot stored in Redis. The aggregate keeps its
// fields private, so the cache round-trips through this flat form and
// rehydrates with ReconstructVehicle.
type cachedVehicle struct {
	ID             uuid.UUID                `json:"id"`
	OwnerID        uuid.UUID                `json:"owner_id"`
	Attrs          vehicleDomain.Attributes `json:"attrs"`
	DailyRateCents int64                    `json:"daily_rate_cents"`
	Currency       string                   `json:"currency"`
	Status         string                   `json:"status"`
	Version        int64                    `json:"version"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// VehicleCache is a read-through cache in front of a VehicleRepository.
// FindByID serves from Redis when possible; writes invalidate the cached
// entry after the underlying repository succeeds. Cache failures degrade to
// the underlying repository and are logged, never surfaced.
type VehicleCache struct {
	inner  vehicleDomain.VehicleRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewVehicleCache wraps repo with a Redis read-through cache.
func NewVehicleCache(inner vehicleDomain.VehicleRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *VehicleCache {
	return &VehicleCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// FindByID retrieves a vehicle, serving from the cache when the entry is warm.
func (c *VehicleCache) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	key := vehicleKeyPrefix + id.String()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snap cachedVehicle
		if uerr := json.Unmarshal(raw, &snap); uerr == nil {
			return fromSnapshot(&snap), nil
		}
		c.logger.Warn("failed to decode cached vehicle, falling through", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("vehicle cache read failed", zap.String("key", key), zap.Error(err))
	}

	veh, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, veh)
	return veh, nil
}

// List passes through to the underlying repository; list results are not
// cached because filters and pagination fan out too many keys.
func (c *VehicleCache) List(ctx context.Context, filter vehicleDomain.ListFilter, page, limit int) ([]*vehicleDomain.Vehicle, int64, error) {
	return c.inner.List(ctx, filter, page, limit)
}

// Save persists a new vehicle and invalidates any stale cache entry.
func (c *VehicleCache) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	if err := c.inner.Save(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID())
	return nil
}

// Update persists changes and invalidates the cached entry.
func (c *VehicleCache) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	if err := c.inner.Update(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID())
	return nil
}

func (c *VehicleCache) store(ctx context.Context, key string, v *vehicleDomain.Vehicle) {
	snap := cachedVehicle{
		ID:             v.ID(),
		OwnerID:        v.OwnerID(),
		Attrs:          v.Attrs(),
		DailyRateCents: v.DailyRateCents(),
		Currency:       v.Currency(),
		Status:         string(v.Status()),
		Version:        v.Version(),
		CreatedAt:      v.CreatedAt(),
		UpdatedAt:      v.UpdatedAt(),
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("failed to encode vehicle for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("vehicle cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *VehicleCache) invalidate(ctx context.Context, id uuid.UUID) {
	key := vehicleKeyPrefix + id.String()
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("vehicle cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func fromSnapshot(s *cachedVehicle) *vehicleDomain.Vehicle {
	return vehicleDomain.ReconstructVehicle(
		s.ID,
		s.OwnerID,
		s.Attrs,
		s.DailyRateCents,
		s.Currency,
		vehicleDomain.VehicleStatus(s.Status),
		s.Version,
		s.CreatedAt,
		s.UpdatedAt,
	)
}
