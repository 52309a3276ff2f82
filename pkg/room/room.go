package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/play/daifugo/pkg/daifugo"
	"github.com/play/daifugo/pkg/pubsub"
	"github.com/play/daifugo/pkg/ratelimit"
)

// 错误定义
var (
	ErrStaleVersion = errors.New("submission based on stale state")
	ErrRateLimited  = errors.New("submission rate limited")
	ErrNotInRoom    = errors.New("user not in room")
)

// 广播事件类型
const (
	EventStarted  = "started"
	EventPlayed   = "played"
	EventPassed   = "passed"
	EventDropped  = "dropped"
	EventFinished = "finished"
)

// Event 广播给房间订阅者的事件
// Version 是事件发生后的房间版本，客户端提交时带回来
type Event struct {
	Type    string             `json:"type"`
	RoomId  string             `json:"room_id"`
	UserId  int64              `json:"user_id,omitempty"`
	Version uint64             `json:"version"`
	State   daifugo.TableState `json:"state"`
}

// Room 一个对局房间，是 Round 的唯一持有者
// 所有状态变更都在 mu 之内串行执行，版本号在每次成功变更后递增，
// 带旧版本号的提交直接拒绝，不会触碰状态
type Room struct {
	id    uuid.UUID
	topic string

	mu      sync.Mutex
	round   *daifugo.Round
	version uint64

	ps     *pubsub.PubSub
	limits map[int64]*ratelimit.MemoryRateLimit
}

// NewRoom 创建房间
func NewRoom(ps *pubsub.PubSub, rules daifugo.Rules, userIds ...int64) *Room {
	id := uuid.New()
	r := &Room{
		id:     id,
		topic:  "room:" + id.String(),
		round:  daifugo.NewRound(rules, userIds...),
		ps:     ps,
		limits: make(map[int64]*ratelimit.MemoryRateLimit, len(userIds)),
	}
	for _, uid := range userIds {
		r.limits[uid] = ratelimit.NewMemory(submitRate(), time.Second)
	}
	return r
}

// Id 返回房间ID
func (r *Room) Id() uuid.UUID {
	return r.id
}

// Topic 返回房间广播的 topic
func (r *Room) Topic() string {
	return r.topic
}

// Version 返回当前房间版本
func (r *Room) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// Ready 玩家准备，全员准备后自动发牌开局
func (r *Room) Ready(ctx context.Context, userId int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.round.Ready(userId)
	if !r.round.IsReady() {
		return nil
	}

	r.round.Deal(jokerCount())
	if err := r.round.Start(); err != nil {
		return err
	}
	r.version++

	log.Ctx(ctx).Info().Str("room_id", r.id.String()).Msg("round started")
	r.broadcast(ctx, EventStarted, 0)
	return nil
}

// SubmitMove 提交出牌
// version 必须是提交者看到的最新版本，不匹配说明状态已被别人改过，
// 提交按过期拒绝；限流超限同样拒绝，两种情况都不触碰对局状态
func (r *Room) SubmitMove(ctx context.Context, userId int64, cards daifugo.Cards, version uint64) (*daifugo.MoveResult, error) {
	if err := r.allow(ctx, userId); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if version != r.version {
		log.Ctx(ctx).Debug().
			Str("room_id", r.id.String()).
			Int64("user_id", userId).
			Uint64("submitted", version).
			Uint64("current", r.version).
			Msg("stale move rejected")
		return nil, ErrStaleVersion
	}

	res, err := r.round.Play(userId, cards)
	if err != nil {
		return nil, err
	}
	if res == nil {
		// 非当前回合的提交被静默忽略，状态没变
		return nil, nil
	}

	r.version++
	r.broadcast(ctx, EventPlayed, userId)
	if r.round.IsFinished() {
		r.broadcast(ctx, EventFinished, 0)
	}
	return res, nil
}

// SubmitPass 提交过牌，版本检查与 SubmitMove 相同
func (r *Room) SubmitPass(ctx context.Context, userId int64, version uint64) error {
	if err := r.allow(ctx, userId); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if version != r.version {
		return ErrStaleVersion
	}

	turn := r.round.TurnUserId()
	if err := r.round.Pass(userId); err != nil {
		return err
	}
	if turn != userId {
		return nil
	}

	r.version++
	r.broadcast(ctx, EventPassed, userId)
	if r.round.IsFinished() {
		r.broadcast(ctx, EventFinished, 0)
	}
	return nil
}

// DropPlayer 玩家掉线/退出，视为强制完成
// 与出牌走同一把锁，保证与普通回合推进原子地交错
func (r *Room) DropPlayer(ctx context.Context, userId int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isActive(userId) {
		return
	}

	r.round.Drop(userId)
	r.version++

	log.Ctx(ctx).Info().Str("room_id", r.id.String()).Int64("user_id", userId).Msg("player dropped")
	r.broadcast(ctx, EventDropped, userId)
	if r.round.IsFinished() {
		r.broadcast(ctx, EventFinished, 0)
	}
}

// Hints 返回玩家手牌中每张牌是否可出的提示，与手牌顺序一一对应
// 仅作展示参考，提交时仍以完整校验为准
func (r *Room) Hints(userId int64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	hand := r.round.PlayerHand(userId)
	if hand == nil {
		return nil
	}

	hints := make([]bool, len(hand))
	rd := r.round
	mode := rd.OrderMode()
	for i, c := range hand {
		hints[i] = daifugo.IsPlayable(
			c, hand, rd.Revolution, mode.ElevenBack, rd.Field, rd.Rules, rd.Shibari,
		)
	}
	return hints
}

// Hand 返回按当前强度排序后的手牌副本
func (r *Room) Hand(userId int64) daifugo.Cards {
	r.mu.Lock()
	defer r.mu.Unlock()

	hand := r.round.PlayerHand(userId)
	if hand == nil {
		return nil
	}
	sorted := hand.Clone()
	sorted.Sort(r.round.OrderMode())
	return sorted
}

// Snapshot 返回当前桌面快照和版本
func (r *Room) Snapshot() (daifugo.TableState, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round.Snapshot(), r.version
}

// IsFinished 本局是否结束
func (r *Room) IsFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round.IsFinished()
}

// isActive 玩家是否还在对局中，调用方需持有锁
func (r *Room) isActive(userId int64) bool {
	for _, seat := range r.round.Snapshot().Seats {
		if seat.UserId == userId {
			return !seat.Finished && r.round.Status == daifugo.RoundPlaying
		}
	}
	return false
}

// allow 提交限流，房间外的用户直接拒绝
func (r *Room) allow(ctx context.Context, userId int64) error {
	rl, ok := r.limits[userId]
	if !ok {
		return ErrNotInRoom
	}
	if rl.Limit(ctx) {
		log.Ctx(ctx).Warn().
			Str("room_id", r.id.String()).
			Int64("user_id", userId).
			Msg("submission rate limited")
		return ErrRateLimited
	}
	return nil
}

// broadcast 在持有锁的情况下调用，发布失败只记录日志不回滚状态
func (r *Room) broadcast(ctx context.Context, eventType string, userId int64) {
	if r.ps == nil {
		return
	}
	event := Event{
		Type:    eventType,
		RoomId:  r.id.String(),
		UserId:  userId,
		Version: r.version,
		State:   r.round.Snapshot(),
	}
	if err := r.ps.Publish(ctx, r.topic, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("room_id", r.id.String()).Str("type", eventType).Msg("failed to broadcast event")
	}
}
