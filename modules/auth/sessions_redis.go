package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix   = "session:"
	userIndexKeyPrefix = "session:user:"
)

// RedisSessionStore is a Redis-backed SessionStore, selected with REDIS_ADDR.
// Key TTL handles eviction; the stored expiry is still checked on use so a
// session never outlives its 30-day lifetime even under clock skew.
// A per-user token set supports RefreshUser without scanning the keyspace.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

// Create generates a token and stores the session with the configured TTL.
func (s *RedisSessionStore) Create(ctx context.Context, user domain.User) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}

	sess := domain.Session{
		Token:     token,
		User:      user.Snapshot(),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	data, err := json.Marshal(&sess)
	if err != nil {
		return "", fmt.Errorf("session marshal error: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+token, data, s.ttl)
	pipe.SAdd(ctx, userIndexKey(user.ID), token)
	pipe.Expire(ctx, userIndexKey(user.ID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("session set error: %w", err)
	}
	return token, nil
}

// Validate looks up a token. Keys evicted by Redis report ErrSessionNotFound,
// which callers treat identically to ErrSessionExpired.
func (s *RedisSessionStore) Validate(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session get error: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session unmarshal error: %w", err)
	}
	if sess.Expired(time.Now()) {
		_ = s.client.Del(ctx, sessionKeyPrefix+token).Err()
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

// RefreshUser rewrites the user snapshot in every live session of the user,
// preserving each session's original expiry.
func (s *RedisSessionStore) RefreshUser(ctx context.Context, user domain.User) error {
	tokens, err := s.client.SMembers(ctx, userIndexKey(user.ID)).Result()
	if err != nil {
		return fmt.Errorf("session index read error: %w", err)
	}

	snapshot := user.Snapshot()
	for _, token := range tokens {
		key := sessionKeyPrefix + token
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				_ = s.client.SRem(ctx, userIndexKey(user.ID), token).Err()
				continue
			}
			return fmt.Errorf("session get error: %w", err)
		}

		var sess domain.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return fmt.Errorf("session unmarshal error: %w", err)
		}
		sess.User = snapshot

		updated, err := json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("session marshal error: %w", err)
		}
		// KeepTTL preserves the remaining lifetime of the session key.
		if err := s.client.Set(ctx, key, updated, redis.KeepTTL).Err(); err != nil {
			return fmt.Errorf("session set error: %w", err)
		}
	}
	return nil
}

// Revoke deletes the session for a token.
func (s *RedisSessionStore) Revoke(ctx context.Context, token string) error {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("session get error: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err == nil {
		_ = s.client.SRem(ctx, userIndexKey(sess.User.ID), token).Err()
	}
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session del error: %w", err)
	}
	return nil
}

func userIndexKey(userID int64) string {
	return userIndexKeyPrefix + strconv.FormatInt(userID, 10)
}
