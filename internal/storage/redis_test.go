package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanJbk/tilequest/pkg/entity"
	"github.com/DanJbk/tilequest/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testSnapshot() *world.Snapshot {
	return &world.Snapshot{
		Player: world.EntityState{
			Name:   "John Skiss",
			Pos:    entity.Vec2{X: 6, Y: 7},
			Active: true,
			Inventory: []world.ItemState{
				{Name: "lockpick"},
			},
		},
		Objects: []world.EntityState{
			{
				Name:   "apple",
				Pos:    entity.Vec2{X: 3, Y: 2},
				Active: false,
				Properties: []world.PropertyState{
					{Key: "color", Value: entity.String("red")},
					{Key: "bites", Value: entity.Int(2)},
				},
			},
		},
	}
}

func setupStorage(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := NewRedisStorage(mr.Addr(), ttl, testLogger())
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func TestRedisStorage_SessionRoundTrip(t *testing.T) {
	rs, _ := setupStorage(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rs.Ping(ctx))
	require.NoError(t, rs.SaveSession(ctx, id, testSnapshot()))

	got, err := rs.LoadSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "John Skiss", got.Player.Name)
	assert.Equal(t, entity.Vec2{X: 6, Y: 7}, got.Player.Pos)
	require.Len(t, got.Objects, 1)
	assert.False(t, got.Objects[0].Active)
	require.Len(t, got.Objects[0].Properties, 2)
	assert.Equal(t, entity.KindInt, got.Objects[0].Properties[1].Value.Kind())
	assert.Equal(t, 2, got.Objects[0].Properties[1].Value.AsInt())
}

func TestRedisStorage_LoadMissingSession(t *testing.T) {
	rs, _ := setupStorage(t, time.Hour)

	got, err := rs.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got, "missing session should load as nil without error")
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	rs, _ := setupStorage(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rs.SaveSession(ctx, id, testSnapshot()))
	require.NoError(t, rs.DeleteSession(ctx, id))

	got, err := rs.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error.
	assert.NoError(t, rs.DeleteSession(ctx, id))
}

func TestRedisStorage_SessionTTL(t *testing.T) {
	rs, mr := setupStorage(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rs.SaveSession(ctx, id, testSnapshot()))

	mr.FastForward(2 * time.Minute)

	got, err := rs.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got, "expired session should be gone")
}
