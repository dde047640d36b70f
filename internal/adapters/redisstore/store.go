// Package redisstore implements the state store on redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backoffice-events/internal/domain/state"

	"github.com/go-redis/redis/v8"
	"github.com/walletera/werrors"
)

type Store struct {
	client *redis.Client
}

var _ state.Store = (*Store)(nil)

func NewStore(addr string) *Store {
	return &Store{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Save(ctx context.Context, key string, value any) werrors.WError {
	raw, err := json.Marshal(value)
	if err != nil {
		return werrors.NewNonRetryableInternalError("failed marshalling state entry %s: %s", key, err.Error())
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return werrors.NewRetryableInternalError("failed saving state entry %s: %s", key, err.Error())
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, werrors.WError) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, werrors.NewRetryableInternalError("failed reading state entry %s: %s", key, err.Error())
	}
	return raw, true, nil
}

func (s *Store) Delete(ctx context.Context, key string) werrors.WError {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return werrors.NewRetryableInternalError("failed deleting state entry %s: %s", key, err.Error())
	}
	return nil
}

func (s *Store) SetOnce(ctx context.Context, key string, ttl time.Duration) (bool, werrors.WError) {
	created, err := s.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, werrors.NewRetryableInternalError("failed marking state entry %s: %s", key, err.Error())
	}
	return created, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
