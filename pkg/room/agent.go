package room

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/play/daifugo/pkg/daifugo"
	"github.com/play/daifugo/pkg/worker"
)

// Agent 托管决策接口
// ok 为 false 表示过牌，否则出 cards
type Agent interface {
	Decide(ctx context.Context, state daifugo.TableState, hand daifugo.Cards) (cards daifugo.Cards, ok bool)
}

// Scheduler 把托管玩家的决策调度到工作池上执行
// 决策前先记下房间版本，提交时带回去：期间房间被别人推进过，
// 这次决策就按过期丢弃，等下次轮到时重新决策
type Scheduler struct {
	pool *worker.Pool
}

// NewScheduler 创建决策调度器
func NewScheduler() *Scheduler {
	return &Scheduler{
		pool: worker.NewPool(agentPoolSize()),
	}
}

// Schedule 为托管玩家调度一次决策
// 阻塞到拿到工作池票据为止，决策本身在池内异步执行
func (s *Scheduler) Schedule(ctx context.Context, r *Room, userId int64, agent Agent) error {
	if agent == nil {
		return errors.New("agent cannot be nil")
	}

	state, version := r.Snapshot()
	if state.TurnUserId != userId {
		return nil
	}
	hand := r.Hand(userId)

	_, err := s.pool.DoContext(ctx, func() {
		decideCtx, cancel := context.WithTimeout(context.Background(), agentTimeout())
		defer cancel()

		cards, ok := agent.Decide(decideCtx, state, hand)

		var err error
		if ok {
			_, err = r.SubmitMove(decideCtx, userId, cards, version)
		} else {
			err = r.SubmitPass(decideCtx, userId, version)
		}
		if errors.Is(err, ErrStaleVersion) {
			log.Ctx(decideCtx).Debug().
				Str("room_id", r.Id().String()).
				Int64("user_id", userId).
				Msg("agent decision outdated, discarded")
			return
		}
		if err != nil {
			log.Ctx(decideCtx).Warn().Err(err).
				Str("room_id", r.Id().String()).
				Int64("user_id", userId).
				Msg("agent submission failed, falling back to pass")
			_ = r.SubmitPass(decideCtx, userId, version)
		}
	})
	return err
}

// Wait 等待所有在途决策结束，之后不能再调度
func (s *Scheduler) Wait() {
	s.pool.Wait()
}

// GreedyAgent 最简单的托管策略：出手牌中能出的最弱单张，出不了就过
type GreedyAgent struct{}

// Decide 按当前强度从弱到强找第一张可出的单张
func (GreedyAgent) Decide(_ context.Context, state daifugo.TableState, hand daifugo.Cards) (daifugo.Cards, bool) {
	rules := state.Rules
	mode := daifugo.OrderMode{Revolution: state.Revolution, ElevenBack: state.ElevenBack}

	sorted := hand.Clone()
	sorted.Sort(mode)

	for _, c := range sorted {
		if _, err := daifugo.Validate(
			daifugo.Cards{c}, state.Revolution, state.ElevenBack,
			state.FieldCards, rules, state.Shibari,
		); err == nil {
			return daifugo.Cards{c}, true
		}
	}
	return nil, false
}
