package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetTokenNotFound indicates the token is unknown, expired or already
// consumed; callers treat all three identically.
var ErrResetTokenNotFound = errors.New("reset token not found")

const resetKeyPrefix = "pwreset:"

// ResetTokenRepository stores single-use password reset tokens. Expiry is
// delegated to the backing store's TTL.
type ResetTokenRepository interface {
	Create(ctx context.Context, token, userID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

type resetTokenRepository struct {
	client *redis.Client
}

// NewResetTokenRepository returns a Redis-backed implementation.
func NewResetTokenRepository(client *redis.Client) ResetTokenRepository {
	return &resetTokenRepository{client: client}
}

func (r *resetTokenRepository) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, resetKeyPrefix+token, userID, ttl).Err()
}

// Consume atomically fetches and deletes the token, returning the user it
// was issued for. A token can be consumed at most once.
func (r *resetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrResetTokenNotFound
		}
		return "", err
	}
	return userID, nil
}
