package room

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/play/daifugo/pkg/daifugo"
	"github.com/play/daifugo/pkg/pubsub"
)

// newTestRoom 创建一个已开局的房间并替换手牌
// ps 可以为 nil，此时不广播
func newTestRoom(t *testing.T, ps *pubsub.PubSub, hands ...daifugo.Cards) *Room {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)

	ids := make([]int64, len(hands))
	for i := range hands {
		ids[i] = int64(i + 1)
	}
	r := NewRoom(ps, daifugo.DefaultRules(), ids...)
	ctx := context.Background()
	for _, id := range ids {
		require.NoError(t, r.Ready(ctx, id))
	}
	for i := range hands {
		r.round.Players[i].SetHand(hands[i])
	}
	return r
}

func TestRoom_ReadyStartsRound(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	r := NewRoom(nil, daifugo.DefaultRules(), 1, 2, 3)
	ctx := context.Background()

	require.NoError(t, r.Ready(ctx, 1))
	state, version := r.Snapshot()
	assert.Equal(t, daifugo.RoundWaiting, state.Status)
	assert.Equal(t, uint64(0), version)

	require.NoError(t, r.Ready(ctx, 2))
	require.NoError(t, r.Ready(ctx, 3))

	state, version = r.Snapshot()
	assert.Equal(t, daifugo.RoundPlaying, state.Status)
	assert.Equal(t, uint64(1), version)
	for _, seat := range state.Seats {
		assert.Positive(t, seat.HandCount)
	}
}

func TestRoom_SubmitMove(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade), daifugo.NewCard(daifugo.RankK, daifugo.SuitHeart)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub), daifugo.NewCard(daifugo.Rank9, daifugo.SuitClub)},
	)
	ctx := context.Background()
	version := r.Version()

	res, err := r.SubmitMove(ctx, 1, daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)}, version)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, version+1, r.Version())
	state, _ := r.Snapshot()
	assert.Equal(t, int64(2), state.TurnUserId)
	assert.Len(t, state.FieldCards, 1)
}

func TestRoom_StaleVersionRejected(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade), daifugo.NewCard(daifugo.RankK, daifugo.SuitHeart)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub), daifugo.NewCard(daifugo.Rank9, daifugo.SuitClub)},
	)
	ctx := context.Background()
	version := r.Version()

	_, err := r.SubmitMove(ctx, 1, daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)}, version)
	require.NoError(t, err)

	// 用推进前的版本再次提交，必须被拒绝且状态不变
	before, _ := r.Snapshot()
	_, err = r.SubmitMove(ctx, 2, daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)}, version)
	assert.ErrorIs(t, err, ErrStaleVersion)

	after, _ := r.Snapshot()
	assert.Equal(t, before, after)

	err = r.SubmitPass(ctx, 2, version)
	assert.ErrorIs(t, err, ErrStaleVersion)
}

func TestRoom_OutOfTurnIgnored(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank6, daifugo.SuitHeart)},
	)
	ctx := context.Background()
	version := r.Version()

	// 版本对但没轮到他，静默忽略，版本不变
	res, err := r.SubmitMove(ctx, 2, daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)}, version)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, version, r.Version())
}

func TestRoom_RejectedMoveKeepsState(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade), daifugo.NewCard(daifugo.Rank6, daifugo.SuitSpade)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)},
	)
	ctx := context.Background()
	version := r.Version()

	// 出手牌里没有的牌
	_, err := r.SubmitMove(ctx, 1, daifugo.Cards{daifugo.NewCard(daifugo.RankA, daifugo.SuitHeart)}, version)
	require.Error(t, err)
	assert.Equal(t, version, r.Version())

	state, _ := r.Snapshot()
	assert.Equal(t, int64(1), state.TurnUserId)
}

func TestRoom_NotInRoom(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)},
	)
	ctx := context.Background()

	_, err := r.SubmitMove(ctx, 99, daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)}, r.Version())
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestRoom_RateLimited(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)},
	)
	ctx := context.Background()

	// 用过期版本刷提交，配额耗尽后转为限流错误
	var limited bool
	for i := 0; i < submitRate()+1; i++ {
		err := r.SubmitPass(ctx, 2, 9999)
		if i < submitRate() {
			assert.ErrorIs(t, err, ErrStaleVersion)
		} else {
			limited = assert.ErrorIs(t, err, ErrRateLimited)
		}
	}
	assert.True(t, limited)
}

func TestRoom_Hints(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade), daifugo.NewCard(daifugo.RankK, daifugo.SuitHeart)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank3, daifugo.SuitClub), daifugo.NewCard(daifugo.RankA, daifugo.SuitClub)},
	)
	ctx := context.Background()

	// 场空时全部可出
	hints := r.Hints(2)
	assert.Equal(t, []bool{true, true}, hints)

	_, err := r.SubmitMove(ctx, 1, daifugo.Cards{daifugo.NewCard(daifugo.RankK, daifugo.SuitHeart)}, r.Version())
	require.NoError(t, err)

	// K 压场后 3 出不了，A 可以
	hints = r.Hints(2)
	assert.Equal(t, []bool{false, true}, hints)

	assert.Nil(t, r.Hints(99))
}

func TestRoom_HandSorted(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{
			daifugo.NewCard(daifugo.Rank2, daifugo.SuitHeart),
			daifugo.NewCard(daifugo.Rank3, daifugo.SuitClub),
			daifugo.NewCard(daifugo.RankJ, daifugo.SuitSpade),
		},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)},
	)

	hand := r.Hand(1)
	require.Len(t, hand, 3)
	assert.Equal(t, daifugo.Rank3, hand[0].Rank)
	assert.Equal(t, daifugo.RankJ, hand[1].Rank)
	assert.Equal(t, daifugo.Rank2, hand[2].Rank)

	// 返回的是副本，改动不影响房间内手牌
	hand[0] = daifugo.NewJoker()
	assert.Equal(t, daifugo.Rank3, r.Hand(1)[0].Rank)
}

func TestRoom_DropPlayer(t *testing.T) {
	r := newTestRoom(t, nil,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank6, daifugo.SuitHeart)},
	)
	ctx := context.Background()
	version := r.Version()

	r.DropPlayer(ctx, 2)
	assert.Equal(t, version+1, r.Version())

	state, _ := r.Snapshot()
	assert.True(t, state.Seats[1].Finished)

	// 重复掉线是幂等的
	r.DropPlayer(ctx, 2)
	assert.Equal(t, version+1, r.Version())
}

func TestRoom_BroadcastEvents(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ps := pubsub.New(rdb)
	defer ps.Close()

	r := newTestRoom(t, ps,
		daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade), daifugo.NewCard(daifugo.RankK, daifugo.SuitHeart)},
		daifugo.Cards{daifugo.NewCard(daifugo.Rank5, daifugo.SuitClub), daifugo.NewCard(daifugo.Rank9, daifugo.SuitClub)},
	)

	var received atomic.Value
	var count atomic.Int64
	sub, err := ps.Subscribe(r.Topic(), func(ctx context.Context, payload []byte) {
		var event Event
		if json.Unmarshal(payload, &event) == nil && event.Type == EventPlayed {
			received.Store(event)
			count.Add(1)
		}
	})
	require.NoError(t, err)
	defer sub.Stop()

	ctx := context.Background()
	_, err = r.SubmitMove(ctx, 1, daifugo.Cards{daifugo.NewCard(daifugo.Rank4, daifugo.SuitSpade)}, r.Version())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return count.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)

	event := received.Load().(Event)
	assert.Equal(t, r.Id().String(), event.RoomId)
	assert.Equal(t, int64(1), event.UserId)
	assert.Equal(t, r.Version(), event.Version)
	assert.Equal(t, int64(2), event.State.TurnUserId)
}
