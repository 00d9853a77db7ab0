package handoff

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
)

func newTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, 30*time.Minute), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get round-trip", func(t *testing.T) {
		store, _ := newTestStore(t)

		rec := Record{UserID: "user-1", Integration: model.IntegrationCalendar, Pending: true}
		require.NoError(t, store.Set(ctx, "state-1", rec))

		got, err := store.Get(ctx, "state-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec, *got)
	})

	t.Run("unknown state is a nil record", func(t *testing.T) {
		store, _ := newTestStore(t)

		got, err := store.Get(ctx, "never-set")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("records expire after the TTL", func(t *testing.T) {
		store, mr := newTestStore(t)

		require.NoError(t, store.Set(ctx, "state-1", Record{UserID: "user-1", Integration: model.IntegrationCalendar}))
		mr.FastForward(31 * time.Minute)

		got, err := store.Get(ctx, "state-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("clear removes the record", func(t *testing.T) {
		store, _ := newTestStore(t)

		require.NoError(t, store.Set(ctx, "state-1", Record{UserID: "user-1", Integration: model.IntegrationCalendar}))
		require.NoError(t, store.Clear(ctx, "state-1"))

		got, err := store.Get(ctx, "state-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("states are independent", func(t *testing.T) {
		store, _ := newTestStore(t)

		require.NoError(t, store.Set(ctx, "state-a", Record{UserID: "user-a", Integration: model.IntegrationCalendar}))
		require.NoError(t, store.Set(ctx, "state-b", Record{UserID: "user-b", Integration: model.IntegrationBusinessProfile}))
		require.NoError(t, store.Clear(ctx, "state-a"))

		got, err := store.Get(ctx, "state-b")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "user-b", got.UserID)
	})
}
