package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ckd:risk_levels:"

type hashClient interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Tally keeps per-day counts of risk levels in a Redis hash.
type Tally struct {
	client hashClient
	ttl    time.Duration
	now    func() time.Time
}

func NewTally(client hashClient, ttl time.Duration) *Tally {
	return &Tally{client: client, ttl: ttl, now: time.Now}
}

func (t *Tally) key(day time.Time) string {
	return keyPrefix + day.UTC().Format("2006-01-02")
}

func (t *Tally) Increment(ctx context.Context, level string) error {
	key := t.key(t.now())
	if err := t.client.HIncrBy(ctx, key, level, 1).Err(); err != nil {
		return fmt.Errorf("incrementing %s tally: %w", level, err)
	}
	if t.ttl > 0 {
		if err := t.client.Expire(ctx, key, t.ttl).Err(); err != nil {
			return fmt.Errorf("setting tally expiry: %w", err)
		}
	}
	return nil
}

// Today returns the counts recorded for the current UTC day.
func (t *Tally) Today(ctx context.Context) (map[string]int64, error) {
	raw, err := t.client.HGetAll(ctx, t.key(t.now())).Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(raw))
	for level, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tally %s: %w", level, err)
		}
		counts[level] = n
	}
	return counts, nil
}
