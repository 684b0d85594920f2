package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/flowdeck/collab/internal/store/redis"
)

func newPubSub(t *testing.T) *redisstore.PubSub {
	t.Helper()

	mr := miniredis.RunT(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps, err := redisstore.New(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })
	return ps
}

func TestBoardChannel(t *testing.T) {
	t.Parallel()

	boardID := uuid.New()
	assert.Equal(t, "board:"+boardID.String(), redisstore.BoardChannel(boardID))
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := redisstore.New(ctx, "127.0.0.1:1", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping")
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	t.Parallel()

	ps := newPubSub(t)
	boardID := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, cleanup, err := ps.Subscribe(ctx, boardID)
	require.NoError(t, err)
	defer cleanup()

	payload := []byte(`{"type":"task-moved"}`)
	require.NoError(t, ps.Publish(ctx, boardID, payload))

	select {
	case got := <-messages:
		assert.Equal(t, payload, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published frame")
	}
}

func TestSubscribeIsScopedToBoard(t *testing.T) {
	t.Parallel()

	ps := newPubSub(t)
	boardA := uuid.New()
	boardB := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, cleanup, err := ps.Subscribe(ctx, boardA)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, ps.Publish(ctx, boardB, []byte("other board")))
	require.NoError(t, ps.Publish(ctx, boardA, []byte("this board")))

	select {
	case got := <-messages:
		assert.Equal(t, []byte("this board"), got, "frames for other boards must not arrive")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published frame")
	}
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ps := newPubSub(t)
	boardID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	messages, cleanup, err := ps.Subscribe(ctx, boardID)
	require.NoError(t, err)
	defer cleanup()

	cancel()

	select {
	case _, open := <-messages:
		assert.False(t, open, "channel closes once the context is canceled")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
