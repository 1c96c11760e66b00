package weather

import (
	"context"
	"dynamic-route-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "weather:"

type cachedWeather struct {
	Condition  string  `json:"condition"`
	Multiplier float64 `json:"multiplier"`
}

// RedisCache stores the latest weather per region with a TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func cacheKey(region string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(region), " "))
}

// Get returns the cached weather for region. ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, region string) (_ domain.Weather, ok bool, err error) {
	raw, err := c.rdb.Get(ctx, cacheKey(region)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Weather{}, false, nil
	}
	if err != nil {
		return domain.Weather{}, false, fmt.Errorf("weather cache get %q: %w", region, err)
	}

	var cw cachedWeather
	if err := json.Unmarshal(raw, &cw); err != nil {
		return domain.Weather{}, false, fmt.Errorf("weather cache decode %q: %w", region, err)
	}
	w, known := domain.ParseWeather(cw.Condition)
	if !known {
		return domain.Weather{}, false, nil
	}
	return w, true, nil
}

func (c *RedisCache) Set(ctx context.Context, region string, w domain.Weather) error {
	raw, err := json.Marshal(cachedWeather{Condition: string(w.Condition), Multiplier: w.Multiplier})
	if err != nil {
		return fmt.Errorf("weather cache encode %q: %w", region, err)
	}
	if err := c.rdb.Set(ctx, cacheKey(region), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("weather cache set %q: %w", region, err)
	}
	return nil
}
