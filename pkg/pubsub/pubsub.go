package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// 全局错误码
var (
	ErrQueueFull          = errors.New("queue is full")
	ErrSubscriptionClosed = errors.New("subscription is closed")
	ErrPubSubClosed       = errors.New("pubsub is closed")
)

const (
	redisKeyPrefix      = "daifugo:topic:"
	blpopTimeout        = 1 * time.Second // BLPOP 的阻塞超时时间
	defaultQueueSize    = 1000            // 默认队列大小限制
	defaultDataChanSize = 100             // 默认内部数据通道大小
)

// Handler 订阅的处理函数，payload 为发布时序列化后的 JSON
type Handler func(ctx context.Context, payload []byte)

// Option 是用于 PubSub 或 Subscription 的配置选项函数
type Option func(any)

// PubSub 基于 Redis List 的轻量发布订阅
// 房间状态快照的广播走这里，消费方自己反序列化
type PubSub struct {
	redisClient   redis.Cmdable
	queueSize     int
	subscriptions map[string][]*Subscription // key: topic
	mu            sync.RWMutex
	closed        chan struct{}
	wg            sync.WaitGroup // 等待所有 Subscription 关闭
	useRecovery   bool           // 是否开启 panic recovery（全局）
}

// Subscription 一个 topic 上的订阅
type Subscription struct {
	pubSub      *PubSub
	topic       string
	redisKey    string
	handler     Handler
	concurrency int           // 并发 worker 数量
	useRecovery bool          // 是否开启 panic recovery
	dataChan    chan []byte   // BLPOP 将数据放入此通道
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	stopOnce    sync.Once
}

// WithQueueSize 设置 Publish 时检查的 Redis List 最大长度
func WithQueueSize(qs int) Option {
	return func(o any) {
		if ps, ok := o.(*PubSub); ok && qs >= 0 {
			ps.queueSize = qs
		}
	}
}

// WithRecovery 使订阅的处理函数在发生 panic 时被 recovery
func WithRecovery() Option {
	return func(o any) {
		switch v := o.(type) {
		case *Subscription:
			v.useRecovery = true
		case *PubSub:
			v.useRecovery = true
		}
	}
}

// WithConcurrency 设置消费函数的并发数量，c <= 0 时为 1
func WithConcurrency(c int) Option {
	return func(o any) {
		if s, ok := o.(*Subscription); ok {
			if c <= 0 {
				s.concurrency = 1
			} else {
				s.concurrency = c
			}
		}
	}
}

// New 创建一个新的 PubSub 实例
func New(redisClient redis.Cmdable, opts ...Option) *PubSub {
	ps := &PubSub{
		redisClient:   redisClient,
		queueSize:     defaultQueueSize,
		subscriptions: make(map[string][]*Subscription),
		closed:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}

func formatTopicKey(topic string) string {
	return redisKeyPrefix + topic
}

// Publish 发布一条消息到指定的 topic
// message 会被序列化为 JSON 后 RPush 进 Redis List
func (p *PubSub) Publish(ctx context.Context, topic string, message any) error {
	select {
	case <-p.closed:
		log.Error().Str("topic", topic).Msg("cannot publish on closed pubsub")
		return ErrPubSubClosed
	default:
	}

	redisKey := formatTopicKey(topic)

	if p.queueSize > 0 {
		length, err := p.redisClient.LLen(ctx, redisKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Str("topic", topic).Msg("failed to get list length for queue size check")
			return fmt.Errorf("redis LLen failed: %w", err)
		}
		if length >= int64(p.queueSize) {
			log.Warn().Str("topic", topic).Int64("length", length).Int("queue_size_limit", p.queueSize).Msg("publish would exceed queue size limit")
			return ErrQueueFull
		}
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to marshal publish message")
		return fmt.Errorf("json marshal failed: %w", err)
	}

	if err := p.redisClient.RPush(ctx, redisKey, payload).Err(); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to publish message to redis")
		return fmt.Errorf("redis RPush failed: %w", err)
	}

	log.Trace().Str("topic", topic).Int("bytes", len(payload)).Msg("message published")
	return nil
}

// Subscribe 订阅指定的 topic
// handler 在独立的 worker goroutine 中被调用
func (p *PubSub) Subscribe(topic string, handler Handler, opts ...Option) (*Subscription, error) {
	select {
	case <-p.closed:
		return nil, ErrPubSubClosed
	default:
	}
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		pubSub:      p,
		topic:       topic,
		redisKey:    formatTopicKey(topic),
		handler:     handler,
		concurrency: 1,
		useRecovery: p.useRecovery,
		dataChan:    make(chan []byte, defaultDataChanSize),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(sub)
	}

	p.mu.Lock()
	p.subscriptions[topic] = append(p.subscriptions[topic], sub)
	p.mu.Unlock()

	p.wg.Add(1)
	sub.wg.Add(1)
	go sub.pollLoop()
	for i := 0; i < sub.concurrency; i++ {
		sub.wg.Add(1)
		go sub.workLoop()
	}

	log.Debug().Str("topic", topic).Int("concurrency", sub.concurrency).Msg("subscribed")
	return sub, nil
}

// pollLoop BLPOP 拉取消息放进内部通道
func (s *Subscription) pollLoop() {
	defer s.wg.Done()
	defer close(s.dataChan)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		result, err := s.pubSub.redisClient.BLPop(s.ctx, blpopTimeout, s.redisKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error().Err(err).Str("topic", s.topic).Msg("blpop failed")
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(blpopTimeout):
			}
			continue
		}
		// BLPOP 返回 [key, value]
		if len(result) == 2 {
			select {
			case <-s.ctx.Done():
				return
			case s.dataChan <- []byte(result[1]):
			}
		}
	}
}

// workLoop 消费内部通道并调用处理函数
func (s *Subscription) workLoop() {
	defer s.wg.Done()

	for payload := range s.dataChan {
		s.invoke(payload)
	}
}

func (s *Subscription) invoke(payload []byte) {
	if s.useRecovery {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("topic", s.topic).Any("panic", r).Msg("handler panicked")
			}
		}()
	}
	s.handler(s.ctx, payload)
}

// Stop 停止订阅并等待 worker 退出
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.pubSub.wg.Done()
		log.Debug().Str("topic", s.topic).Msg("subscription stopped")
	})
}

// Close 关闭 PubSub，停止所有订阅
func (p *PubSub) Close() {
	select {
	case <-p.closed:
		return
	default:
		close(p.closed)
	}

	p.mu.Lock()
	subs := make([]*Subscription, 0)
	for _, list := range p.subscriptions {
		subs = append(subs, list...)
	}
	p.subscriptions = make(map[string][]*Subscription)
	p.mu.Unlock()

	for _, sub := range subs {
		sub.Stop()
	}
	p.wg.Wait()
}
