package redlock

import "errors"

var (
	// ErrFailedToAcquireLock 多次重试后仍未获取到锁
	ErrFailedToAcquireLock = errors.New("failed to acquire lock after multiple retries")
	// ErrLockNotHeld 当前实例并未持有该锁，或者锁已过期
	ErrLockNotHeld = errors.New("lock not held by this instance or already expired")
	// ErrInvalidArguments 提供了无效的参数
	ErrInvalidArguments = errors.New("invalid arguments provided")
)
