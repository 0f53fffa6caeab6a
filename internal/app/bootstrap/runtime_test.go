package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadflow/internal/booking"
	appconfig "github.com/wolfman30/leadflow/internal/config"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/notify"
	"github.com/wolfman30/leadflow/pkg/logging"
)

func TestBuildRedisClient(t *testing.T) {
	logger := logging.New("error")

	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logger, true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logger, true))
}

func TestBuildSessionStore(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{BookingSessionTTL: time.Minute}

	_, isMemory := BuildSessionStore(nil, cfg, logger).(*booking.MemoryStore)
	assert.True(t, isMemory)

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, false)
	t.Cleanup(func() { _ = client.Close() })

	store := BuildSessionStore(client, cfg, logger)
	_, isRedis := store.(*booking.RedisStore)
	require.True(t, isRedis)

	sess := &booking.Session{ID: "abc", SiteID: "swim", State: booking.StateOpen}
	require.NoError(t, store.Create(context.Background(), sess))
	assert.True(t, mr.Exists("booking:session:abc"))
	assert.Equal(t, time.Minute, mr.TTL("booking:session:abc"))
}

func TestBuildLeadRepositoryWithoutDatabase(t *testing.T) {
	repo, pool, err := BuildLeadRepository(context.Background(), &appconfig.Config{}, logging.New("error"))
	require.NoError(t, err)
	assert.Nil(t, pool)
	_, ok := repo.(*leads.InMemoryRepository)
	assert.True(t, ok)
}

func TestBuildLeadRepositoryRejectsBadURL(t *testing.T) {
	_, _, err := BuildLeadRepository(context.Background(), &appconfig.Config{DatabaseURL: "://nope"}, logging.New("error"))
	assert.Error(t, err)
}

func TestBuildNotifier(t *testing.T) {
	logger := logging.New("error")

	assert.Nil(t, BuildNotifier(&appconfig.Config{SendGridAPIKey: "key"}, logger))

	_, isStub := BuildNotifier(&appconfig.Config{LeadNotifyEmail: "desk@example.com"}, logger).(*notify.StubEmailSender)
	assert.True(t, isStub)

	_, isSendGrid := BuildNotifier(&appconfig.Config{
		LeadNotifyEmail:   "desk@example.com",
		SendGridAPIKey:    "key",
		SendGridFromEmail: "noreply@example.com",
	}, logger).(*notify.SendGridSender)
	assert.True(t, isSendGrid)
}
