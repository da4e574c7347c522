package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis using REDIS_URL, or REDIS_ADDR,
// REDIS_PASSWORD and REDIS_DB when no URL is given.  It returns nil when
// Redis is not configured or does not answer a ping; callers then run
// without caching and rate limiting.
func NewRedisClient() *redis.Client {
	var opts *redis.Options
	if url := envStr("REDIS_URL", ""); url != "" {
		o, err := redis.ParseURL(url)
		if err != nil {
			log.Printf("redis: invalid REDIS_URL: %v", err)
			return nil
		}
		opts = o
	} else {
		addr := envStr("REDIS_ADDR", "")
		if addr == "" {
			return nil
		}
		opts = &redis.Options{
			Addr:     addr,
			Password: envStr("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		}
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s failed, continuing without it: %v", opts.Addr, err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
