package worker

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	ErrPoolClosed = errors.New("pool is closed")
)

// Pool 限制并发任务数量的工作池
// 房间用它调度托管/AI 的决策任务，避免慢策略占满 goroutine
type Pool struct {
	limit   int
	tickers chan int
	num     atomic.Int32
}

// NewPool creates a new worker pool with the given limit
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = 10
	}

	p := &Pool{
		limit:   limit,
		tickers: make(chan int, limit),
	}

	for i := 0; i < limit; i++ {
		p.tickers <- i
	}

	return p
}

// Do 提交一个任务，没有空闲票据时阻塞等待
func (p *Pool) Do(job func()) (ticket int, err error) {
	ticket, ok := <-p.tickers
	if !ok {
		return -1, ErrPoolClosed
	}

	p.run(ticket, job)
	return ticket, nil
}

// DoContext 提交一个任务，等待票据时尊重 ctx 取消
func (p *Pool) DoContext(ctx context.Context, job func()) (ticket int, err error) {
	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	case ticket, ok := <-p.tickers:
		if !ok {
			return -1, ErrPoolClosed
		}
		p.run(ticket, job)
		return ticket, nil
	}
}

func (p *Pool) run(ticket int, job func()) {
	p.num.Add(1)

	go func() {
		if job != nil {
			job()
		}
		p.tickers <- ticket
		p.num.Add(-1)
	}()
}

// Wait waits for all workers to finish
func (p *Pool) Wait() {
	for i := 0; i < p.limit; i++ {
		<-p.tickers
	}
	close(p.tickers)
}

// Num returns the number in progress of workers in the pool
func (p *Pool) Num() int {
	return int(p.num.Load())
}
