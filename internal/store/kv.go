package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss 表示缓存不存在
var ErrMiss = errors.New("cache miss")

// KVStats 缓存统计信息
type KVStats struct {
	TotalKeys   int64  `json:"total_keys"`
	MemoryUsage string `json:"memory_usage"`
}

// KV 抽象的 KV 存储（用于在单元测试中替换 Redis）
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	// DeleteByPattern 按通配符删除，返回删除的 key 数量
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
	Exists(ctx context.Context, key string) (bool, error)
	Stats(ctx context.Context) (KVStats, error)
}

// RedisKV 基于 go-redis 的 KV 实现
// 每个操作带独立的短超时：慢 Redis 不能阻塞主路径（调用方把超时当作 miss 处理）
type RedisKV struct {
	c       *redis.Client
	timeout time.Duration
}

func NewRedisKV(c *redis.Client, opTimeout time.Duration) *RedisKV {
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	return &RedisKV{c: c, timeout: opTimeout}
}

var _ KV = (*RedisKV)(nil)

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.c.Del(ctx, key).Err()
}

func (r *RedisKV) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.c.Del(ctx, keys...).Err()
}

func (r *RedisKV) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	keys, err := r.scanKeys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.c.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.c.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisKV) Stats(ctx context.Context) (KVStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	total, err := r.c.DBSize(ctx).Result()
	if err != nil {
		return KVStats{}, err
	}

	stats := KVStats{TotalKeys: total, MemoryUsage: "unknown"}
	if info, err := r.c.Info(ctx, "memory").Result(); err == nil {
		stats.MemoryUsage = parseUsedMemoryHuman(info)
	}
	return stats, nil
}

func (r *RedisKV) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.c.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// parseUsedMemoryHuman 从 INFO memory 输出中提取 used_memory_human
func parseUsedMemoryHuman(info string) string {
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, "used_memory_human:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "used_memory_human:"))
		}
	}
	return "unknown"
}
