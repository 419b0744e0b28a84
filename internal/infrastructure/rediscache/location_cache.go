package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tu-usuario/pedidos-api/internal/application/delivery"
)

var _ delivery.LocationCache = (*LocationCache)(nil)

// TTL del snapshot de posición. Pasado este tiempo sin pings, la posición se
// considera desconocida.
const locationTTL = 5 * time.Minute

// LocationCache última posición conocida por domicilio en Redis. Es una capa de
// lectura rápida sobre el snapshot que ya vive en la fila del domicilio.
type LocationCache struct {
	rdb *redis.Client
}

// NewLocationCache construye la cache.
func NewLocationCache(rdb *redis.Client) *LocationCache {
	return &LocationCache{rdb: rdb}
}

func key(deliveryID string) string {
	return "delivery:location:" + deliveryID
}

// Set guarda lat/lng del domicilio con TTL.
func (c *LocationCache) Set(ctx context.Context, deliveryID string, lat, lng float64) error {
	err := c.rdb.HSet(ctx, key(deliveryID), "lat", lat, "lng", lng).Err()
	if err != nil {
		return fmt.Errorf("set location cache: %w", err)
	}
	if err := c.rdb.Expire(ctx, key(deliveryID), locationTTL).Err(); err != nil {
		return fmt.Errorf("expire location cache: %w", err)
	}
	return nil
}

// Get devuelve la última posición; ok=false si no hay snapshot vigente.
func (c *LocationCache) Get(ctx context.Context, deliveryID string) (float64, float64, bool, error) {
	vals, err := c.rdb.HMGet(ctx, key(deliveryID), "lat", "lng").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("get location cache: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return 0, 0, false, nil
	}
	var lat, lng float64
	if _, err := fmt.Sscanf(vals[0].(string), "%f", &lat); err != nil {
		return 0, 0, false, nil
	}
	if _, err := fmt.Sscanf(vals[1].(string), "%f", &lng); err != nil {
		return 0, 0, false, nil
	}
	return lat, lng, true, nil
}
