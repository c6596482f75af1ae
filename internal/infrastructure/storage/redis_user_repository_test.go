package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"face-shape-bot/internal/domain/entity"
)

func TestUserKey(t *testing.T) {
	require.Equal(t, "faceshape:user:42", userKey(42))
	require.Equal(t, "faceshape:user:-7", userKey(-7))
}

func TestEncodeDecodeUser(t *testing.T) {
	user := entity.NewUser(5, 50)
	user.SetMode(entity.ModePrecise)
	user.SetState(entity.StateAwaitingPhoto)

	data, err := encodeUser(user)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":5,"chat_id":50,"state":"awaiting_photo","mode":"precise"}`, string(data))

	decoded, err := decodeUser(data)
	require.NoError(t, err)
	require.Equal(t, user, decoded)
}

func TestDecodeUser_LegacyWithoutMode(t *testing.T) {
	user, err := decodeUser([]byte(`{"id":1,"chat_id":2,"state":"main_menu"}`))
	require.NoError(t, err)
	require.Equal(t, entity.ModeAuto, user.Mode)

	_, err = decodeUser([]byte(`{`))
	require.Error(t, err)
}

// Требует живой Redis: REDIS_TEST_ADDRESS=localhost:6379
func TestRedisUserRepository_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS is not set")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, RedisConfig{Address: addr, DB: 15})
	require.NoError(t, err)
	defer client.Close()

	repo := NewRedisUserRepository(client, time.Minute, nil)
	id := time.Now().UnixNano()
	defer client.Del(ctx, userKey(id))

	user, err := repo.Get(ctx, id, 1)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	require.NoError(t, repo.UpdateState(ctx, id, entity.StateAwaitingPhoto))
	user, err = repo.Get(ctx, id, 1)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	ttl, err := client.TTL(ctx, userKey(id)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}
