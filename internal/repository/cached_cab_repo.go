package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cab_booking/internal/config"
	"cab_booking/internal/metrics"
	"cab_booking/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	cabsAllKey        = "cabs:all"
	cabsAvailableKey  = "cabs:available"
	cabsGenerationKey = "cabs:gen"
)

// errStaleLoad aborts a cache fill that raced an invalidation
var errStaleLoad = errors.New("cab listing changed during load")

// NewRedisClient creates a redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// PingRedis checks the redis connection
func PingRedis(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// CachedCabRepository serves the two cab listings from redis and drops both
// keys on every write. Every invalidation bumps a generation counter; a fill
// is only stored when the generation it started under is still current.
// Redis failures fall back to the wrapped repository.
type CachedCabRepository struct {
	CabRepository
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedCabRepository wraps next with a redis read-through cache
func NewCachedCabRepository(next CabRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedCabRepository {
	return &CachedCabRepository{
		CabRepository: next,
		client:        client,
		ttl:           ttl,
		logger:        logger,
	}
}

func (r *CachedCabRepository) FindAll(ctx context.Context) ([]model.Cab, error) {
	return r.cached(ctx, cabsAllKey, r.CabRepository.FindAll)
}

func (r *CachedCabRepository) FindAvailable(ctx context.Context) ([]model.Cab, error) {
	return r.cached(ctx, cabsAvailableKey, r.CabRepository.FindAvailable)
}

func (r *CachedCabRepository) cached(ctx context.Context, key string, load func(context.Context) ([]model.Cab, error)) ([]model.Cab, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cabs []model.Cab
		if err := json.Unmarshal(val, &cabs); err == nil {
			metrics.IncCache("hit")
			return cabs, nil
		}
		r.logger.Warn().Str("key", key).Msg("Dropping undecodable cab cache entry")
	case errors.Is(err, redis.Nil):
		metrics.IncCache("miss")
	default:
		metrics.IncCache("error")
		r.logger.Warn().Err(err).Str("key", key).Msg("Cab cache read failed")
	}

	gen, err := r.client.Get(ctx, cabsGenerationKey).Int64()
	canFill := err == nil || errors.Is(err, redis.Nil)

	cabs, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if !canFill {
		return cabs, nil
	}

	data, err := json.Marshal(cabs)
	if err != nil {
		return cabs, nil
	}
	if err := r.fill(ctx, key, gen, data); err != nil {
		if errors.Is(err, errStaleLoad) || errors.Is(err, redis.TxFailedErr) {
			metrics.IncCache("stale")
		} else {
			r.logger.Warn().Err(err).Str("key", key).Msg("Cab cache write failed")
		}
	}
	return cabs, nil
}

// fill stores data under key unless an invalidation happened since gen was read
func (r *CachedCabRepository) fill(ctx context.Context, key string, gen int64, data []byte) error {
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, cabsGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, cabsGenerationKey)
}

// Invalidate drops the cached listings
func (r *CachedCabRepository) Invalidate(ctx context.Context) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, cabsGenerationKey)
		pipe.Del(ctx, cabsAllKey, cabsAvailableKey)
		return nil
	})
	if err != nil {
		r.logger.Warn().Err(err).Msg("Cab cache invalidation failed")
	}
}

func (r *CachedCabRepository) Create(ctx context.Context, c *model.Cab) error {
	if err := r.CabRepository.Create(ctx, c); err != nil {
		return err
	}
	r.Invalidate(ctx)
	return nil
}

func (r *CachedCabRepository) Update(ctx context.Context, c *model.Cab) error {
	if err := r.CabRepository.Update(ctx, c); err != nil {
		return err
	}
	r.Invalidate(ctx)
	return nil
}

func (r *CachedCabRepository) Delete(ctx context.Context, id string) error {
	if err := r.CabRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.Invalidate(ctx)
	return nil
}

func (r *CachedCabRepository) Claim(ctx context.Context, id string) (*model.Cab, error) {
	c, err := r.CabRepository.Claim(ctx, id)
	if err != nil || c == nil {
		return c, err
	}
	r.Invalidate(ctx)
	return c, nil
}

func (r *CachedCabRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	if err := r.CabRepository.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	r.Invalidate(ctx)
	return nil
}
