package room

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/play/daifugo/pkg/daifugo"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m := NewManager(rdb)
	t.Cleanup(m.Close)
	return m
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	r, err := m.CreateRoom(ctx, daifugo.DefaultRules(), 1, 2, 3)
	require.NoError(t, err)

	got, err := m.GetRoom(r.Id())
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = m.GetRoom(uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestManager_CloseRoom(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	r, err := m.CreateRoom(ctx, daifugo.DefaultRules(), 1, 2)
	require.NoError(t, err)
	require.NoError(t, r.Ready(ctx, 1))
	require.NoError(t, r.Ready(ctx, 2))

	require.NoError(t, m.CloseRoom(ctx, r.Id()))

	// 房间内的玩家全部按掉线处理，本局直接结束
	assert.True(t, r.IsFinished())

	_, err = m.GetRoom(r.Id())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	assert.ErrorIs(t, m.CloseRoom(ctx, r.Id()), ErrRoomNotFound)
}

func TestManager_SubscribeUnknownRoom(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Subscribe(uuid.New(), func(ctx context.Context, payload []byte) {})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
