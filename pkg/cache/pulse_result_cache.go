package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"pulse_server/core/domain"
)

const resultKeyPrefix = "sentiment:result:"

// RedisResultCache Redis 기반 분류 결과 캐시
type RedisResultCache struct {
	client *redis.Client
}

// NewRedisResultCache 새 결과 캐시 생성
func NewRedisResultCache(client *redis.Client) *RedisResultCache {
	return &RedisResultCache{client: client}
}

// GetResult 캐시된 분류 결과 조회. miss 는 (nil, nil)
func (c *RedisResultCache) GetResult(ctx context.Context, key string) (*domain.SentimentResult, error) {
	data, err := c.client.Get(ctx, resultKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result domain.SentimentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetResult 분류 결과 저장
func (c *RedisResultCache) SetResult(ctx context.Context, key string, result *domain.SentimentResult, ttl time.Duration) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultKeyPrefix+key, data, ttl).Err()
}

// ContentKey 제공자+모델+제목+본문 해시 키
func ContentKey(provider, model, subject, content string) string {
	h := sha256.New()
	for i, part := range []string{provider, model, subject, content} {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
