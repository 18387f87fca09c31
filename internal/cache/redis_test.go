package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"disputeshield_back_end/internal/config"
	"disputeshield_back_end/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ces tests nécessitent un Redis réel : REDIS_TEST_ADDR=localhost:6379
func setupStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR non défini")
	}
	client, err := Connect(context.Background(), config.RedisConfig{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return New(client)
}

func TestDisputeChannel(t *testing.T) {
	assert.Equal(t, "disputes:user-1", DisputeChannel("user-1"))
}

func TestConnect_RequiresAddr(t *testing.T) {
	_, err := Connect(context.Background(), config.RedisConfig{})
	assert.Error(t, err)
}

func TestClaimRelease(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	id := "evt_" + uuid.NewString()

	first, err := s.Claim(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.Claim(ctx, id)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, s.Release(ctx, id))
	afterRelease, err := s.Claim(ctx, id)
	require.NoError(t, err)
	assert.True(t, afterRelease)
}

func TestIncrementRateLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	key := "ratelimit:test:" + uuid.NewString()

	for i := int64(1); i <= 3; i++ {
		n, err := s.IncrementRateLimit(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
}

func TestPublishSubscribe(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := "user-" + uuid.NewString()
	messages, closeSub, err := s.SubscribeDisputes(ctx, userID)
	require.NoError(t, err)
	defer closeSub()

	require.NoError(t, s.PublishDispute(ctx, &models.Dispute{UserID: userID, StripeDisputeID: "dp_1"}))

	var msg *redis.Message
	select {
	case msg = <-messages:
	case <-ctx.Done():
		t.Fatal("no message received")
	}
	var got DisputeMessage
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, MessageDisputeChanged, got.Type)
	assert.Equal(t, "dp_1", got.Dispute.StripeDisputeID)
}
