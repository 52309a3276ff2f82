package redlock

import (
	"time"
)

// LockOptions 获取锁时的选项
type LockOptions struct {
	TTL        time.Duration // 锁的过期时间
	MaxRetries int           // 最大重试次数
	RetryDelay time.Duration // 重试间隔
}

// Option 设置 LockOptions 的函数
type Option func(*LockOptions)

// WithTtl 设置锁的过期时间
func WithTtl(ttl time.Duration) Option {
	return func(o *LockOptions) {
		o.TTL = ttl
	}
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(retries int) Option {
	return func(o *LockOptions) {
		o.MaxRetries = retries
	}
}

// WithRetryDelay 设置重试间隔
func WithRetryDelay(delay time.Duration) Option {
	return func(o *LockOptions) {
		o.RetryDelay = delay
	}
}

// defaultLockOptions 默认的锁选项
func defaultLockOptions() *LockOptions {
	return &LockOptions{
		TTL:        3 * time.Second,
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
	}
}
