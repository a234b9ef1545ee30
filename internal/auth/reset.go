package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/digsafe/locate-ticket-service/internal/persistence"
)

// ErrResetTokenInvalid is returned when a reset token is unknown or expired.
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// PasswordResetStore keeps single-use password reset tokens in Redis with a
// TTL. Consuming a token deletes it, so each issued token works once.
type PasswordResetStore struct {
	redis *persistence.Redis
	ttl   time.Duration
}

// NewPasswordResetStore constructs the store.
func NewPasswordResetStore(r *persistence.Redis, ttlMinutes int) *PasswordResetStore {
	if ttlMinutes <= 0 {
		ttlMinutes = 30
	}
	return &PasswordResetStore{redis: r, ttl: time.Duration(ttlMinutes) * time.Minute}
}

func resetKey(token string) string {
	return "pwreset:" + token
}

// Issue creates and stores a fresh token for the user.
func (s *PasswordResetStore) Issue(ctx context.Context, userID string) (string, error) {
	if s.redis == nil || s.redis.Client == nil {
		return "", errors.New("redis client not configured")
	}
	token := uuid.NewString()
	if err := s.redis.Client.Set(ctx, resetKey(token), userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume resolves a token to its user and deletes it.
func (s *PasswordResetStore) Consume(ctx context.Context, token string) (string, error) {
	if s.redis == nil || s.redis.Client == nil {
		return "", errors.New("redis client not configured")
	}
	userID, err := s.redis.Client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrResetTokenInvalid
		}
		return "", err
	}
	return userID, nil
}
