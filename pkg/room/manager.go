package room

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/play/daifugo/pkg/daifugo"
	"github.com/play/daifugo/pkg/pubsub"
	"github.com/play/daifugo/pkg/redlock"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// Manager 房间管理器
// 房间的创建和关闭通过分布式锁保护，多实例部署时
// 同一个房间ID的管理操作不会并发执行
type Manager struct {
	ps      *pubsub.PubSub
	redLock *redlock.RedLock

	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room
}

// NewManager 创建房间管理器
func NewManager(redisClient redis.Cmdable) *Manager {
	return &Manager{
		ps:      pubsub.New(redisClient),
		redLock: redlock.New(redisClient),
		rooms:   make(map[uuid.UUID]*Room),
	}
}

// CreateRoom 创建房间
func (m *Manager) CreateRoom(ctx context.Context, rules daifugo.Rules, userIds ...int64) (*Room, error) {
	r := NewRoom(m.ps, rules, userIds...)

	locker := m.redLock.Locker(roomLockKey(r.Id()))
	if err := locker.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if _, err := locker.Unlock(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("room_id", r.Id().String()).Msg("failed to release room lock")
		}
	}()

	m.mu.Lock()
	m.rooms[r.Id()] = r
	m.mu.Unlock()

	log.Ctx(ctx).Info().Str("room_id", r.Id().String()).Int("players", len(userIds)).Msg("room created")
	return r, nil
}

// GetRoom 查找房间
func (m *Manager) GetRoom(id uuid.UUID) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// CloseRoom 关闭房间，对局内的玩家全部按掉线处理
func (m *Manager) CloseRoom(ctx context.Context, id uuid.UUID) error {
	locker := m.redLock.Locker(roomLockKey(id))
	if err := locker.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if _, err := locker.Unlock(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("room_id", id.String()).Msg("failed to release room lock")
		}
	}()

	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()

	if !ok {
		return ErrRoomNotFound
	}

	for _, seat := range snapshotSeats(r) {
		if !seat.Finished {
			r.DropPlayer(ctx, seat.UserId)
		}
	}

	log.Ctx(ctx).Info().Str("room_id", id.String()).Msg("room closed")
	return nil
}

// Subscribe 订阅某个房间的广播事件
func (m *Manager) Subscribe(id uuid.UUID, handler pubsub.Handler, opts ...pubsub.Option) (*pubsub.Subscription, error) {
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return m.ps.Subscribe(r.Topic(), handler, opts...)
}

// Close 关闭管理器，停止所有订阅
func (m *Manager) Close() {
	m.ps.Close()
}

func roomLockKey(id uuid.UUID) string {
	return "daifugo:lock:room:" + id.String()
}

func snapshotSeats(r *Room) []daifugo.SeatState {
	state, _ := r.Snapshot()
	return state.Seats
}
