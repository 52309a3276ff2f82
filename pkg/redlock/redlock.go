package redlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// unlockScript 原子性地检查值并删除键
// 只有当键的值与传入的 value 匹配时才删除，避免释放别人的锁
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

// RedLock Redis 分布式锁管理器
// 房间的创建/关闭用它保证跨实例只有一个持有者在改同一个房间
type RedLock struct {
	client         redis.Cmdable
	defaultOptions *LockOptions
}

// Locker 分布式锁的接口
type Locker interface {
	TryLock(ctx context.Context) (bool, error) // 尝试获取锁，不重试
	Lock(ctx context.Context) error            // 获取锁，带重试
	Unlock(ctx context.Context) (bool, error)  // 释放锁
	Key() string                               // 锁的键
	Value() string                             // 锁的值，区分持有者
}

// lock Locker 的具体实现
type lock struct {
	key     string
	value   string
	client  redis.Cmdable
	options *LockOptions
}

// New 创建分布式锁管理器
// client 需要传入 redis.NewClient 或 redis.NewClusterClient 的返回值
func New(client redis.Cmdable, opts ...Option) *RedLock {
	if client == nil {
		log.Fatal().Msg("redis client cannot be nil")
	}

	defaultOpts := defaultLockOptions()
	for _, opt := range opts {
		opt(defaultOpts)
	}

	return &RedLock{
		client:         client,
		defaultOptions: defaultOpts,
	}
}

// Locker 返回操作特定 key 的锁实例
func (rl *RedLock) Locker(key string, opts ...Option) Locker {
	if key == "" {
		log.Error().Err(ErrInvalidArguments).Msg("lock key cannot be empty")
		return nil
	}

	lockOpts := &LockOptions{
		TTL:        rl.defaultOptions.TTL,
		MaxRetries: rl.defaultOptions.MaxRetries,
		RetryDelay: rl.defaultOptions.RetryDelay,
	}
	for _, opt := range opts {
		opt(lockOpts)
	}

	return &lock{
		key:     key,
		value:   uuid.NewString(),
		client:  rl.client,
		options: lockOpts,
	}
}

// TryLock 尝试获取锁，不重试
func (l *lock) TryLock(ctx context.Context) (bool, error) {
	// SET NX PX：key 不存在时才设置并带上过期时间
	acquired, err := l.client.SetNX(ctx, l.key, l.value, l.options.TTL).Result()
	if err != nil && err != redis.Nil {
		log.Ctx(ctx).Error().Err(err).Str("key", l.key).Msg("failed to setnx for lock")
		return false, err
	}

	if acquired {
		log.Ctx(ctx).Debug().Str("key", l.key).Dur("ttl", l.options.TTL).Msg("lock acquired")
		return true, nil
	}
	return false, nil
}

// Lock 获取锁，失败时按配置重试，直到成功、超过次数或上下文取消
func (l *lock) Lock(ctx context.Context) error {
	for i := 0; i <= l.options.MaxRetries; i++ {
		acquired, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		if i < l.options.MaxRetries {
			select {
			case <-ctx.Done():
				log.Ctx(ctx).Warn().Str("key", l.key).Err(ctx.Err()).Msg("context cancelled while waiting for lock")
				return ctx.Err()
			case <-time.After(l.options.RetryDelay):
			}
		}
	}

	log.Ctx(ctx).Warn().Str("key", l.key).Msg("failed to acquire lock after all retries")
	return ErrFailedToAcquireLock
}

// Unlock 释放锁，只有值匹配时才会真正删除
func (l *lock) Unlock(ctx context.Context) (bool, error) {
	result, err := l.client.Eval(ctx, unlockScript, []string{l.key}, l.value).Result()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("key", l.key).Msg("failed to execute unlock script")
		return false, err
	}

	if i, ok := result.(int64); ok && i == 1 {
		return true, nil
	}

	log.Ctx(ctx).Warn().Str("key", l.key).Msg("lock not released, value mismatched or already expired")
	return false, ErrLockNotHeld
}

// Key 返回锁的键名
func (l *lock) Key() string {
	return l.key
}

// Value 返回锁实例的随机值
func (l *lock) Value() string {
	return l.value
}
