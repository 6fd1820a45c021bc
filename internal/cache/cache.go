package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"outage-checker/internal/models"
)

const schedulePrefix = "schedule:"

// Cache keeps built schedules in Redis for a fixed TTL.
type Cache struct {
	Client *redis.Client
	ttl    time.Duration
}

func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: client, ttl: ttl}
}

func (c *Cache) Close() error {
	return c.Client.Close()
}

// scheduleKey hashes the trimmed address so keys stay ASCII. Case is kept:
// the provider matches house numbers exactly ("12А" and "12а" differ).
func scheduleKey(addr models.Address) string {
	parts := []string{strings.TrimSpace(addr.City), strings.TrimSpace(addr.Street), strings.TrimSpace(addr.House)}
	norm := strings.Join(parts, "\x00")
	sum := sha256.Sum256([]byte(norm))
	return schedulePrefix + hex.EncodeToString(sum[:16])
}

// GetSchedule returns the cached schedule for addr, if present.
func (c *Cache) GetSchedule(ctx context.Context, addr models.Address) ([]models.DaySchedule, bool, error) {
	val, err := c.Client.Get(ctx, scheduleKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var days []models.DaySchedule
	if err := json.Unmarshal(val, &days); err != nil {
		return nil, false, fmt.Errorf("decode cached schedule: %w", err)
	}
	return days, true, nil
}

// SetSchedule stores days for addr until the TTL expires.
func (c *Cache) SetSchedule(ctx context.Context, addr models.Address, days []models.DaySchedule) error {
	data, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	return c.Client.Set(ctx, scheduleKey(addr), data, c.ttl).Err()
}
