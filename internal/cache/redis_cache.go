package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Clear时每次SCAN的数量
const scanBatch = 100

// RedisCache 基于Redis实现的缓存
type RedisCache struct {
	client     *redis.Client
	ctx        context.Context
	namespace  string
	defaultTTL time.Duration
}

// NewRedisCache 创建一个新的Redis缓存
func NewRedisCache(config Config) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client:     client,
		ctx:        ctx,
		namespace:  config.Namespace,
		defaultTTL: config.DefaultTTL,
	}, nil
}

func (r *RedisCache) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return GenerateCacheKey(r.namespace, key)
}

// Get 获取缓存内容
func (r *RedisCache) Get(key string) (string, bool, error) {
	value, err := r.client.Get(r.ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set 设置缓存内容，ttl为0时使用默认过期时间
func (r *RedisCache) Set(key string, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.defaultTTL
	}
	return r.client.Set(r.ctx, r.key(key), value, ttl).Err()
}

// Delete 删除缓存项
func (r *RedisCache) Delete(key string) error {
	return r.client.Del(r.ctx, r.key(key)).Err()
}

// Clear 清空缓存
// 设置了命名空间时只删除该前缀下的键，否则清空整个数据库
func (r *RedisCache) Clear() error {
	if r.namespace == "" {
		return r.client.FlushDB(r.ctx).Err()
	}

	iter := r.client.Scan(r.ctx, 0, r.namespace+":*", scanBatch).Iterator()
	var keys []string
	for iter.Next(r.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(r.ctx, keys...).Err()
}

// Close 关闭Redis连接
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func init() {
	RegisterCache("redis", NewRedisCache)
}
