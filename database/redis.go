package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ssau-fiit/waveot/operations"
	"github.com/ssau-fiit/waveot/wire"
)

type RedisStore struct {
	db *redis.Client
}

func NewRedisStore(db *redis.Client) *RedisStore {
	return &RedisStore{db: db}
}

func (s *RedisStore) Save(ctx context.Context, m *operations.OpManager) error {
	key := pendingKey(m.WaveID(), m.WaveletID())
	if m.IsEmpty() {
		return s.db.Del(ctx, key).Err()
	}
	b, err := wire.EncodeOperations(m.Operations())
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.db.Set(ctx, key, b, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context, m *operations.OpManager) error {
	key := pendingKey(m.WaveID(), m.WaveletID())
	b, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	ops, err := wire.DecodeOperations(b)
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	m.Put(ops)
	return nil
}

func (s *RedisStore) Close() error {
	return s.db.Close()
}
