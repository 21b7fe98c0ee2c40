package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/movietix/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func seatMapKey(showID uuid.UUID) string {
	return "seatmap:" + showID.String()
}

// GetSeatMap returns the cached seat map for a show, or nil on miss.
func (c *Cache) GetSeatMap(ctx context.Context, showID uuid.UUID) (*domain.SeatMap, error) {
	val, err := c.client.Get(ctx, seatMapKey(showID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m domain.SeatMap
	if err := json.Unmarshal(val, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Cache) SetSeatMap(ctx context.Context, showID uuid.UUID, m *domain.SeatMap, ttl time.Duration) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, seatMapKey(showID), data, ttl).Err()
}

// InvalidateSeatMap drops the cached seat map after a successful booking.
func (c *Cache) InvalidateSeatMap(ctx context.Context, showID uuid.UUID) error {
	return c.client.Del(ctx, seatMapKey(showID)).Err()
}
