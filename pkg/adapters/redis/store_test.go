package redis_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/intake/internal/testutils"
	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/persistence"
	"github.com/aretw0/intake/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	return testutils.StartRedis(t)
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_EncryptedContract(t *testing.T) {
	mr, client := setup(t)

	key := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, key)
	require.NoError(t, err)
	codec, err := persistence.NewEncryptedCodec(persistence.EncryptionConfig{ActiveKey: key}, nil)
	require.NoError(t, err)

	store := redis.NewFromClient(client, redis.WithCodec(codec))
	ports.RunSessionStoreContract(t, store)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "+15551230000", &domain.Session{State: domain.StateAwaitingHonoree, FirstName: "Ana"}))

	raw, err := mr.Get(redis.DefaultPrefix + "+15551230000")
	require.NoError(t, err)
	assert.False(t, strings.Contains(raw, "Ana"), "plaintext leaked: %s", raw)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sender := "+15551234567"

	err := store.Save(ctx, sender, &domain.Session{State: domain.StateAwaitingName})
	require.NoError(t, err)

	_, err = store.Load(ctx, sender)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sender)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:"))
	err := store.Save(context.Background(), "+15550001111", &domain.Session{State: domain.StateNew})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:+15550001111"))
	assert.False(t, mr.Exists(redis.DefaultPrefix+"+15550001111"))
}

func TestRedisStore_Ping(t *testing.T) {
	_, client := setup(t)
	store := redis.NewFromClient(client)

	assert.NoError(t, store.Ping(context.Background()))
}
