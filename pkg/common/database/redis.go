package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/ckd-screening/pkg/common/config"
	"github.com/synaptica-ai/ckd-screening/pkg/common/logger"
)

// NewRedis returns nil when no address is configured.
func NewRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Error("Failed to connect to Redis")
	} else {
		logger.Log.Info("Connected to Redis")
	}

	return client
}
