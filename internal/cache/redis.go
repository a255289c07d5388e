package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheFromClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL,
	)
}

func NewRedisCacheFromClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetSegments returns nil, nil on a miss.
func (c *RedisCache) GetSegments(ctx context.Context) ([]domain.FlightSegment, error) {
	var segments []domain.FlightSegment
	ok, err := c.get(ctx, segmentsKey(), &segments)
	if err != nil || !ok {
		return nil, err
	}
	return segments, nil
}

func (c *RedisCache) SetSegments(ctx context.Context, segments []domain.FlightSegment) error {
	return c.set(ctx, segmentsKey(), segments)
}

// GetSearch returns nil, nil on a miss.
func (c *RedisCache) GetSearch(ctx context.Context, q domain.SearchQuery) ([]domain.ScheduledFlight, error) {
	var flights []domain.ScheduledFlight
	ok, err := c.get(ctx, searchKey(q), &flights)
	if err != nil || !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, q domain.SearchQuery, flights []domain.ScheduledFlight) error {
	return c.set(ctx, searchKey(q), flights)
}

// InvalidateDate drops every cached search result for the given flight date.
func (c *RedisCache) InvalidateDate(ctx context.Context, date time.Time) error {
	iter := c.client.Scan(ctx, 0, datePattern(date), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.flightsTTL).Err()
}

func segmentsKey() string {
	return "cache:flights"
}

func searchKey(q domain.SearchQuery) string {
	return fmt.Sprintf("cache:flights:%s:%s:%s",
		q.Date.Format(domain.DateLayout), strings.ToUpper(q.From), strings.ToUpper(q.To))
}

func datePattern(date time.Time) string {
	return fmt.Sprintf("cache:flights:%s:*", date.Format(domain.DateLayout))
}
