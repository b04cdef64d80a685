package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

const redisKeyPrefix = "match:"

// RedisStore keeps match state in Redis so several pipeline instances share one view.
// Flags live in a hash written with HSETNX; the score is a "home:away" string swapped under WATCH.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. A positive ttl expires records after the last write.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

var _ MatchStateStore = (*RedisStore)(nil)

// ConnectRedis dials addr and verifies the connection.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func flagsKey(matchID string) string { return redisKeyPrefix + matchID + ":flags" }
func scoreKey(matchID string) string { return redisKeyPrefix + matchID + ":score" }

func (s *RedisStore) LoadFlags(ctx context.Context, matchID string) (match.Flags, error) {
	fields, err := s.client.HGetAll(ctx, flagsKey(matchID)).Result()
	if err != nil {
		return match.Flags{}, err
	}
	var flags match.Flags
	for name := range fields {
		flags = flags.Set(match.Phase(name))
	}
	return flags, nil
}

func (s *RedisStore) MarkPhase(ctx context.Context, matchID string, phase match.Phase) (bool, error) {
	if !validPhase(phase) {
		return false, ErrUnknownPhase
	}
	key := flagsKey(matchID)
	set, err := s.client.HSetNX(ctx, key, string(phase), "1").Result()
	if err != nil {
		return false, err
	}
	if set && s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return true, err
		}
	}
	return set, nil
}

func (s *RedisStore) LoadScore(ctx context.Context, matchID string) (match.Score, bool, error) {
	return loadScore(ctx, s.client, scoreKey(matchID))
}

func (s *RedisStore) CompareAndSwapScore(ctx context.Context, matchID string, prev *match.Score, next match.Score) (bool, error) {
	key := scoreKey(matchID)
	swapped := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, ok, err := loadScore(ctx, tx, key)
		if err != nil {
			return err
		}
		if (prev == nil) == ok {
			return nil
		}
		if prev != nil && current != *prev {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encodeScore(next), s.ttl)
			return nil
		})
		if err == nil {
			swapped = true
		}
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return swapped, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func loadScore(ctx context.Context, c stringGetter, key string) (match.Score, bool, error) {
	raw, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return match.Score{}, false, nil
	}
	if err != nil {
		return match.Score{}, false, err
	}
	score, err := decodeScore(raw)
	if err != nil {
		return match.Score{}, false, fmt.Errorf("redis score %s: %w", key, err)
	}
	return score, true, nil
}

func encodeScore(s match.Score) string {
	return strconv.Itoa(s.Home) + ":" + strconv.Itoa(s.Away)
}

func decodeScore(raw string) (match.Score, error) {
	home, away, ok := strings.Cut(raw, ":")
	if !ok {
		return match.Score{}, fmt.Errorf("malformed score %q", raw)
	}
	h, err := strconv.Atoi(home)
	if err != nil {
		return match.Score{}, err
	}
	a, err := strconv.Atoi(away)
	if err != nil {
		return match.Score{}, err
	}
	return match.Score{Home: h, Away: a}, nil
}
