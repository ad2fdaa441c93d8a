// Package vendorcache puts a Redis read-through cache in front of the
// reputation vendors. Vendor verdicts for a mint barely change within a scan
// window and both vendors rate limit aggressively, so answers are reused for
// a configured TTL. The cache is strictly an optimization: any Redis trouble
// degrades to a direct vendor call.
package vendorcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/models"
)

// Connect opens a Redis connection and verifies it with a ping.
func Connect(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// ReputationCache caches successful reputation answers. Vendor failures are
// never cached; the next cycle should ask again.
type ReputationCache struct {
	inner  models.ReputationClient
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// WrapReputation decorates inner with a read-through cache.
func WrapReputation(inner models.ReputationClient, client *redis.Client, ttl time.Duration) *ReputationCache {
	return &ReputationCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.With().Str("component", "vendorcache").Str("vendor", "reputation").Logger(),
	}
}

// ReputationStatus implements models.ReputationClient.
func (c *ReputationCache) ReputationStatus(ctx context.Context, address string) (models.ReputationStatus, error) {
	key := "rep:" + address

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return models.ReputationStatus(val), nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Debug().Err(err).Str("address", address).Msg("cache read failed")
	}

	status, err := c.inner.ReputationStatus(ctx, address)
	if err != nil {
		return status, err
	}

	if err := c.client.Set(ctx, key, string(status), c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("address", address).Msg("cache write failed")
	}
	return status, nil
}

// FakeVolumeCache caches successful fake-volume answers.
type FakeVolumeCache struct {
	inner  models.FakeVolumeClient
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// WrapFakeVolume decorates inner with a read-through cache.
func WrapFakeVolume(inner models.FakeVolumeClient, client *redis.Client, ttl time.Duration) *FakeVolumeCache {
	return &FakeVolumeCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.With().Str("component", "vendorcache").Str("vendor", "fake_volume").Logger(),
	}
}

// FakeVolume implements models.FakeVolumeClient.
func (c *FakeVolumeCache) FakeVolume(ctx context.Context, address string) (bool, error) {
	key := "fv:" + address

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		fake, parseErr := strconv.ParseBool(val)
		if parseErr == nil {
			return fake, nil
		}
		c.logger.Debug().Str("address", address).Str("value", val).Msg("unparseable cache entry, asking vendor")
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Debug().Err(err).Str("address", address).Msg("cache read failed")
	}

	fake, err := c.inner.FakeVolume(ctx, address)
	if err != nil {
		return fake, err
	}

	if err := c.client.Set(ctx, key, strconv.FormatBool(fake), c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("address", address).Msg("cache write failed")
	}
	return fake, nil
}
