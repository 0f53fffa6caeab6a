package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPattern = "booking:session:%s"

// RedisStore keeps sessions as JSON values with a TTL refreshed on every update.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a store backed by client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPattern, id)
}

// Create stores a new session. It fails with ErrSessionExists rather than
// overwriting a live one.
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("booking: session id required")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("booking: marshal session: %w", err)
	}
	created, err := r.client.SetNX(ctx, sessionKey(s.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("booking: create session: %w", err)
	}
	if !created {
		return ErrSessionExists
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("booking: get session: %w", err)
	}
	return decodeSession(data)
}

// Update applies fn with optimistic locking: the key is WATCHed while fn
// runs and the write is discarded and retried when another writer got there
// first.
func (r *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	key := sessionKey(id)
	var out *Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("booking: get session: %w", err)
		}
		s, err := decodeSession(data)
		if err != nil {
			return err
		}
		current := *s
		if err := fn(s); err != nil {
			if errors.Is(err, errSkipSave) {
				out = &current
				return nil
			}
			return err
		}
		s.Version = current.Version + 1
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("booking: marshal session: %w", err)
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		}); err != nil {
			return err
		}
		out = s
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrSessionConflict
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("booking: unmarshal session: %w", err)
	}
	return &s, nil
}
