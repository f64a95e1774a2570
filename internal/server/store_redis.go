package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/ratingquiz/internal/ratingquiz"
)

const redisKeyPrefix = "ratingquiz:"

// RedisStore keeps sessions in Redis with a sliding TTL. Each access to a
// session renews its expiry and that of its history.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return redisKeyPrefix + "session:" + id }
func resultsKey(id string) string { return redisKeyPrefix + "results:" + id }

func (s *RedisStore) SaveSession(ctx context.Context, snap ratingquiz.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(snap.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving session %s: %w", snap.ID, err)
	}
	return nil
}

func (s *RedisStore) LoadSession(ctx context.Context, id string) (ratingquiz.SessionSnapshot, error) {
	data, err := s.rdb.GetEx(ctx, sessionKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return ratingquiz.SessionSnapshot{}, ErrNotFound
	}
	if err != nil {
		return ratingquiz.SessionSnapshot{}, fmt.Errorf("loading session %s: %w", id, err)
	}

	var snap ratingquiz.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ratingquiz.SessionSnapshot{}, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return snap, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, sessionKey(id), resultsKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) RecordResult(ctx context.Context, sessionID string, res GameResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	key := resultsKey(sessionID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, historyLimit-1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording result for %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) ListResults(ctx context.Context, sessionID string, limit int) ([]GameResult, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	items, err := s.rdb.LRange(ctx, resultsKey(sessionID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	results := make([]GameResult, 0, len(items))
	for _, item := range items {
		var res GameResult
		if err := json.Unmarshal([]byte(item), &res); err != nil {
			return nil, fmt.Errorf("decoding result: %w", err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Check pings Redis for the health endpoint.
func (s *RedisStore) Check(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
