package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, cfg config.Redis, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Err(err).Str("func", "NewRedisClient").Str("address", cfg.Address).Msg("error connecting redis (ping)")
		_ = client.Close()
		return nil, fmt.Errorf("error connecting redis: %w", err)
	}
	log.Info().Str("func", "NewRedisClient").Msg("connected to redis successfully")

	return client, nil
}

type redisIdempotencyStore struct {
	client redis.Cmdable
}

func NewRedisIdempotencyStore(client redis.Cmdable) IdempotencyStore {
	return &redisIdempotencyStore{client: client}
}

// reserveAttempts bounds the SETNX/GET loop of Reserve. A second attempt is
// only needed when the entry expires between the two commands.
const reserveAttempts = 2

func (s *redisIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (models.StoredResponse, bool, error) {
	raw, err := json.Marshal(models.StoredResponse{Pending: true, Fingerprint: fingerprint})
	if err != nil {
		return models.StoredResponse{}, false, fmt.Errorf("%w: encode reservation: %w", ErrIdempotencyStore, err)
	}

	for range reserveAttempts {
		reserved, err := s.client.SetNX(ctx, key, string(raw), ttl).Result()
		if err != nil {
			return models.StoredResponse{}, false, fmt.Errorf("%w: %w", ErrIdempotencyStore, err)
		}
		if reserved {
			return models.StoredResponse{}, true, nil
		}

		current, found, err := s.get(ctx, key)
		if err != nil {
			return models.StoredResponse{}, false, err
		}
		if found {
			return current, false, nil
		}
	}

	return models.StoredResponse{}, false, fmt.Errorf("%w: key %q keeps expiring", ErrIdempotencyStore, key)
}

func (s *redisIdempotencyStore) get(ctx context.Context, key string) (models.StoredResponse, bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.StoredResponse{}, false, nil
	}
	if err != nil {
		return models.StoredResponse{}, false, fmt.Errorf("%w: %w", ErrIdempotencyStore, err)
	}

	var resp models.StoredResponse
	if err = json.Unmarshal(raw, &resp); err != nil {
		return models.StoredResponse{}, false, fmt.Errorf("%w: decode stored response: %w", ErrIdempotencyStore, err)
	}

	return resp, true, nil
}

func (s *redisIdempotencyStore) SaveResponse(ctx context.Context, key string, resp models.StoredResponse, ttl time.Duration) error {
	resp.Pending = false
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("%w: encode response: %w", ErrIdempotencyStore, err)
	}

	if err = s.client.Set(ctx, key, string(raw), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIdempotencyStore, err)
	}

	return nil
}

func (s *redisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIdempotencyStore, err)
	}
	return nil
}
