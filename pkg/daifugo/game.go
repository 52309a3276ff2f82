package daifugo

import (
	"errors"
	"time"
)

// 错误定义
var (
	ErrRoundNotPlaying = errors.New("round not playing")
	ErrRoundNotReady   = errors.New("round not ready")
	ErrPlayFailed      = errors.New("play failed")
)

// RoundStatus 一局的状态
type RoundStatus int8

const (
	RoundWaiting  RoundStatus = iota // 等待中
	RoundPlaying                     // 游戏中
	RoundFinished                    // 已结束
)

// Round 一局游戏的权威状态机
// 持有轮到谁、场上的牌、过牌计数、持续的革命/11バック/缚り状态
// 和完成名次。每次变更必须在单一持有者内原子地执行
type Round struct {
	Status      RoundStatus
	Rules       Rules
	Players     []Player
	Index       int     // 当前出牌玩家索引
	Field       Cards   // 场上的牌，空表示新场
	LastIndex   int     // 场上牌的出牌者索引，-1 表示场空
	PassCount   int     // 场上牌之后连续过牌数，清场时归零
	Revolution  bool    // 革命中
	ElevenBack  bool    // 11バック中，清场时解除
	Shibari     bool    // 缚り生效中，清场时解除
	FinishOrder []int64 // 出完牌的玩家ID，先出完的名次高
	StartedAt   int64   // 开始时间（Unix毫秒）
	FinishedAt  int64   // 结束时间（Unix毫秒）
}

// NewRound 创建一局游戏
func NewRound(rules Rules, userIds ...int64) *Round {
	r := &Round{
		Status:    RoundWaiting,
		Rules:     rules,
		Players:   make([]Player, 0, len(userIds)),
		LastIndex: -1,
	}
	for _, id := range userIds {
		r.Players = append(r.Players, NewPlayer(id))
	}
	return r
}

// Ready 玩家准备
func (r *Round) Ready(userId int64) {
	if r.Status != RoundWaiting {
		return
	}
	if i := r.indexOf(userId); i >= 0 && r.Players[i].Status == StatusWaiting {
		r.Players[i].Status = StatusReady
	}
}

// IsReady 所有玩家是否都已准备
func (r *Round) IsReady() bool {
	if r.Status != RoundWaiting || len(r.Players) < 2 {
		return false
	}
	for _, p := range r.Players {
		if p.UserId == 0 || p.Status != StatusReady {
			return false
		}
	}
	return true
}

// Deal 发牌
// jokers 为加入的王的数量，牌发完为止，后面的玩家可能少一张
func (r *Round) Deal(jokers int) {
	deck := NewDeck(jokers)
	deck.Shuffle()
	hands := deck.Deal(len(r.Players))
	for i := range r.Players {
		r.Players[i].SetHand(hands[i])
	}
}

// Start 开始本局，首家为第一个发到牌的玩家
func (r *Round) Start() error {
	if !r.IsReady() {
		return ErrRoundNotReady
	}
	r.Status = RoundPlaying
	r.StartedAt = time.Now().UnixMilli()
	r.Index = 0
	for i := range r.Players {
		r.Players[i].Status = StatusPlaying
	}
	return nil
}

// Play 玩家出牌
// 非当前回合玩家或已完成玩家的提交静默忽略（视为过期消息），
// 返回 (nil, nil)；校验失败返回具体原因且状态不变；
// 成功时应用所有副作用并推进回合
func (r *Round) Play(userId int64, cards Cards) (*MoveResult, error) {
	if r.Status != RoundPlaying {
		return nil, ErrRoundNotPlaying
	}

	i := r.indexOf(userId)
	if i < 0 || i != r.Index || r.Players[i].Status != StatusPlaying {
		// 过期或越权的提交，客户端重新同步后自行解决
		return nil, nil
	}

	res, err := Validate(cards, r.Revolution, r.ElevenBack, r.Field, r.Rules, r.Shibari)
	if err != nil {
		return nil, err
	}

	p := &r.Players[i]
	if !p.Remove(cards) {
		return nil, ErrPlayFailed
	}

	// 复制一份，出牌后调用方改动自己的切片不影响场上状态
	r.Field = cards.Clone()
	r.LastIndex = i
	r.PassCount = 0

	if res.Shibari && r.Rules.Shibari {
		r.Shibari = true
	}
	if res.Revolution && r.Rules.Revolution {
		r.Revolution = !r.Revolution
	}
	if res.ElevenBack && r.Rules.ElevenBack {
		r.ElevenBack = true
	}

	if p.HandCount() == 0 {
		r.finish(i)
	}

	if res.EightCut {
		// 8切り：清场，出牌者还在就继续由他先出
		r.clearField()
		if p.Status != StatusPlaying {
			r.advance()
		}
	} else {
		r.advance()
	}

	r.checkEnd()
	return res, nil
}

// Pass 玩家过牌
// 下一个活跃玩家是场上牌的出牌者（其他人都过了），或者出牌者已
// 出完且过牌数达到剩余活跃人数时清场，由下一个玩家重新先出
// 场空时只是让过回合，过牌数不累积，计数始终不超过活跃人数
func (r *Round) Pass(userId int64) error {
	if r.Status != RoundPlaying {
		return ErrRoundNotPlaying
	}

	i := r.indexOf(userId)
	if i < 0 || i != r.Index || r.Players[i].Status != StatusPlaying {
		return nil
	}

	next := r.nextActive(r.Index)
	if next < 0 {
		r.checkEnd()
		return nil
	}

	if r.LastIndex >= 0 {
		r.PassCount++
		author := &r.Players[r.LastIndex]
		if next == r.LastIndex ||
			(author.Status != StatusPlaying && r.PassCount >= r.activeCount()) {
			r.clearField()
		}
	}

	r.Index = next
	return nil
}

// Drop 外部掉线/退出处理，在与普通出牌相同的同步点调用
// 当作强制完成：补到名次末尾，轮到他时按过牌推进
func (r *Round) Drop(userId int64) {
	if r.Status != RoundPlaying {
		return
	}
	i := r.indexOf(userId)
	if i < 0 || r.Players[i].Status != StatusPlaying {
		return
	}

	wasTurn := i == r.Index
	r.finish(i)

	if wasTurn {
		next := r.nextActive(r.Index)
		if next >= 0 {
			if r.LastIndex >= 0 {
				author := &r.Players[r.LastIndex]
				if next == r.LastIndex ||
					(author.Status != StatusPlaying && r.PassCount >= r.activeCount()) {
					r.clearField()
				}
			}
			r.Index = next
		}
	}

	r.checkEnd()
}

// IsFinished 本局是否结束
func (r *Round) IsFinished() bool {
	return r.Status == RoundFinished
}

// TurnUserId 返回当前出牌玩家的ID
func (r *Round) TurnUserId() int64 {
	if r.Index < 0 || r.Index >= len(r.Players) {
		return 0
	}
	return r.Players[r.Index].UserId
}

// PlayerHand 返回指定玩家的手牌
func (r *Round) PlayerHand(userId int64) Cards {
	if i := r.indexOf(userId); i >= 0 {
		return r.Players[i].Hand
	}
	return nil
}

// OrderMode 返回当前生效的排序模式（用于手牌展示排序）
func (r *Round) OrderMode() OrderMode {
	return OrderMode{
		Revolution: r.Revolution,
		ElevenBack: r.Rules.ElevenBack && r.ElevenBack,
	}
}

// clearField 清场：场上牌清空、过牌数归零、11バック和缚り解除
func (r *Round) clearField() {
	r.Field = nil
	r.LastIndex = -1
	r.PassCount = 0
	r.ElevenBack = false
	r.Shibari = false
}

// advance 轮到下一个还在游戏中的玩家
func (r *Round) advance() {
	if next := r.nextActive(r.Index); next >= 0 {
		r.Index = next
	}
}

// nextActive 返回 from 之后第一个活跃玩家的索引，没有返回 -1
func (r *Round) nextActive(from int) int {
	n := len(r.Players)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if r.Players[i].Status == StatusPlaying {
			return i
		}
	}
	return -1
}

// activeCount 还在游戏中的玩家数量
func (r *Round) activeCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Status == StatusPlaying {
			count++
		}
	}
	return count
}

// finish 玩家出完牌，按出完顺序追加名次
func (r *Round) finish(i int) {
	p := &r.Players[i]
	p.Status = StatusFinished
	p.Rank = int8(len(r.FinishOrder) + 1)
	r.FinishOrder = append(r.FinishOrder, p.UserId)
}

// checkEnd 活跃玩家只剩一人或没有时结束本局
// 剩下的那个人补到名次末尾
func (r *Round) checkEnd() {
	if r.Status != RoundPlaying || r.activeCount() > 1 {
		return
	}
	for i := range r.Players {
		if r.Players[i].Status == StatusPlaying {
			r.finish(i)
		}
	}
	r.Status = RoundFinished
	r.FinishedAt = time.Now().UnixMilli()
}

// indexOf 返回玩家索引，找不到返回 -1
func (r *Round) indexOf(userId int64) int {
	for i, p := range r.Players {
		if p.UserId == userId {
			return i
		}
	}
	return -1
}
