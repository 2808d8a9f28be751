// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/zintix-labs/autobet/errs"
)

const (
	// DefaultTTL 歷史紀錄保留時間
	DefaultTTL = 24 * time.Hour
	// KeyPrefix 所有 key 的前綴
	KeyPrefix = "autobet:"
)

// RedisStore 以 Redis 保存局歷史。
//
// key 配置：
//   - autobet:rounds:<sid>  list，每個元素為一局 JSON，保留最近 maxRounds 局
//   - autobet:session:<sid> string，會話摘要 JSON
//
// 每次寫入都會刷新 TTL。
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	maxRounds int
}

func NewRedisStore(client *redis.Client, ttl time.Duration, maxRounds int) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &RedisStore{client: client, ttl: ttl, maxRounds: maxRounds}
}

// Connect 建立 client 並以 exponential backoff 重試 ping
func Connect(ctx context.Context, addr, password string, db int, retries uint64, log *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	err := backoff.Retry(func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			if log != nil {
				log.Warn("redis ping failed, retrying", slog.String("addr", addr), slog.Any("err", err))
			}
			return err
		}
		return nil
	}, b)
	if err != nil {
		client.Close()
		return nil, errs.Wrap(err, "connect redis "+addr)
	}
	return client, nil
}

func roundsKey(sid string) string  { return KeyPrefix + "rounds:" + sid }
func summaryKey(sid string) string { return KeyPrefix + "session:" + sid }

func (r *RedisStore) AppendRound(ctx context.Context, sid string, rec RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errs.Wrap(err, "marshal round")
	}
	key := roundsKey(sid)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-r.maxRounds), -1)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.Wrap(err, "append round")
	}
	return nil
}

func (r *RedisStore) Rounds(ctx context.Context, sid string, limit int) ([]RoundRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := r.client.LRange(ctx, roundsKey(sid), start, -1).Result()
	if err != nil {
		return nil, errs.Wrap(err, "read rounds")
	}
	out := make([]RoundRecord, 0, len(raw))
	for _, s := range raw {
		var rec RoundRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, errs.Wrap(err, "unmarshal round")
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisStore) SaveSummary(ctx context.Context, s Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errs.Wrap(err, "marshal summary")
	}
	if err := r.client.Set(ctx, summaryKey(s.Session), data, r.ttl).Err(); err != nil {
		return errs.Wrap(err, "save summary")
	}
	return nil
}

func (r *RedisStore) Summary(ctx context.Context, sid string) (Summary, error) {
	data, err := r.client.Get(ctx, summaryKey(sid)).Bytes()
	if err == redis.Nil {
		return Summary{}, errs.NotFoundf("session summary not found: %s", sid)
	}
	if err != nil {
		return Summary{}, errs.Wrap(err, "read summary")
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, errs.Wrap(err, "unmarshal summary")
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, roundsKey(sid), summaryKey(sid)).Err(); err != nil {
		return errs.Wrap(err, "delete session history")
	}
	return nil
}
