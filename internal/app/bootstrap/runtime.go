package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/leadflow/internal/booking"
	appconfig "github.com/wolfman30/leadflow/internal/config"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/notify"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-memory sessions", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks Redis when a client is available, otherwise an
// in-process store that only suits a single replica.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) booking.SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.BookingSessionTTL
	if redisClient != nil {
		logger.Info("booking sessions stored in redis", "ttl", ttl)
		return booking.NewRedisStore(redisClient, ttl)
	}
	logger.Warn("booking sessions stored in memory", "ttl", ttl)
	return booking.NewMemoryStore(ttl)
}

// BuildLeadRepository connects to Postgres when DATABASE_URL is set. The
// returned pool is nil for the in-memory repository.
func BuildLeadRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (leads.Repository, *pgxpool.Pool, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Warn("DATABASE_URL not set, leads kept in memory")
		return leads.NewInMemoryRepository(), nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return leads.NewPostgresRepository(pool), pool, nil
}

// BuildNotifier returns the staff email sender. It is nil when no notify
// address is configured; without a SendGrid key emails are only logged.
func BuildNotifier(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg == nil || strings.TrimSpace(cfg.LeadNotifyEmail) == "" {
		return nil
	}
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if sender == nil {
		return notify.NewStubEmailSender(logger)
	}
	return sender
}
