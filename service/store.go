package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"wizard-game/engine"
)

// Store keeps session records so tables survive a restart.
type Store interface {
	Save(ctx context.Context, rec engine.Record) error
	Load(ctx context.Context, roomID string) (engine.Record, error)
	Delete(ctx context.Context, roomID string) error
	List(ctx context.Context) ([]string, error)
}

const roomsKey = "rooms"

func recordKey(roomID string) string {
	return fmt.Sprintf("room:%s:record", roomID)
}

// RedisStore writes each record as JSON under room:<id>:record and tracks the
// ids in the "rooms" set.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, rec engine.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("record %s encode: %w", rec.ID, err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(rec.ID), data, 0)
		pipe.SAdd(ctx, roomsKey, rec.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record %s save: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, roomID string) (engine.Record, error) {
	var rec engine.Record
	data, err := s.rdb.Get(ctx, recordKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if err != nil {
		return rec, fmt.Errorf("record %s load: %w", roomID, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("record %s decode: %w", roomID, err)
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, roomID string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, recordKey(roomID))
		pipe.SRem(ctx, roomsKey, roomID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record %s delete: %w", roomID, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, roomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return ids, nil
}
