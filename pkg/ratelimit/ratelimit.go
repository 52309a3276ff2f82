/*
简单、线程安全的限流器，用于压制客户端重复/过期的提交洪峰。
受 Antti Huima 在 http://stackoverflow.com/a/668327 上的算法启发

示例：

	// 每个玩家每秒最多 5 次出牌提交
	rl := ratelimit.NewMemory(5, time.Second)

	if rl.Limit(ctx) {
	    // 超限，丢弃这次提交
	}
*/
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Limit(ctx context.Context) bool
}

// MemoryRateLimit 基于内存的限流器，实例是线程安全的
type MemoryRateLimit struct {
	mu sync.Mutex

	rate, allowance, max, unit uint64
	lastCheck                  int64
}

// NewMemory 创建一个新的基于内存的限流器实例
// rate 为每个 per 周期内允许的次数
func NewMemory(rate int, per time.Duration) *MemoryRateLimit {
	nano := uint64(per)
	if nano < 1 {
		nano = uint64(time.Second)
	}
	if rate < 1 {
		rate = 1
	}

	return &MemoryRateLimit{
		rate:      uint64(rate),
		allowance: uint64(rate) * nano, // 开始时配额为最大值
		max:       uint64(rate) * nano,
		unit:      nano,
		lastCheck: nowNano(),
	}
}

// UpdateRate 更新限流频率
func (rl *MemoryRateLimit) UpdateRate(rate int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.rate = uint64(rate)
	rl.max = uint64(rate) * rl.unit
}

// Limit 超过限流时返回 true
func (rl *MemoryRateLimit) Limit(_ context.Context) bool {
	now := nowNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// 按经过的时间补充配额，封顶为最大值
	passed := now - rl.lastCheck
	rl.lastCheck = now

	rl.allowance += uint64(passed) * rl.rate
	if rl.allowance > rl.max {
		rl.allowance = rl.max
	}

	// 配额不足一个单位就限流
	if rl.allowance < rl.unit {
		return true
	}

	rl.allowance -= rl.unit
	return false
}

// Undo 撤销上一次 Limit() 调用，返还消耗的配额
func (rl *MemoryRateLimit) Undo() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.allowance += rl.unit
	if rl.allowance > rl.max {
		rl.allowance = rl.max
	}
}

func nowNano() int64 {
	return time.Now().UnixNano()
}
