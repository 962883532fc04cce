package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ByLCY/bytecv/resume"
)

// RedisStore 以字符串键保存记录，不设置过期时间。
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore 创建 Redis 存储。prefix 可为空。
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, key: prefix + StorageKey}
}

func (s *RedisStore) Load(ctx context.Context) (resume.Record, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return resume.Record{}, ErrNotFound
		}
		return resume.Record{}, err
	}
	return decode(b)
}

func (s *RedisStore) Save(ctx context.Context, doc *resume.Document, at time.Time) error {
	b, err := resume.Encode(doc, at)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, b, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
