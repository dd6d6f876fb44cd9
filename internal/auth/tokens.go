package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore keeps issued bearer tokens in Redis with a sliding expiry.
// Entries are keyed by an HMAC of the token value, so the plaintext token
// never lands in Redis.
type TokenStore struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore. ttl bounds how long an issued
// token stays valid without use.
func NewTokenStore(client *redis.Client, secret string, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenStore{client: client, secret: []byte(secret), ttl: ttl}
}

// Issue creates a fresh token for the user and stores it with the configured TTL.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (*Token, error) {
	value := uuid.NewString()
	expiresAt := time.Now().Add(s.ttl)
	if err := s.client.Set(ctx, s.key(value), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("auth: store token: %w", err)
	}
	return &Token{Value: value, UserID: userID, ExpiresAt: expiresAt}, nil
}

// Resolve returns the user ID bound to the token and refreshes its expiry.
func (s *TokenStore) Resolve(ctx context.Context, value string) (int64, error) {
	raw, err := s.client.Get(ctx, s.key(value)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenInvalid
		}
		return 0, fmt.Errorf("auth: resolve token: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	// Sliding expiry: active clients stay logged in.
	_ = s.client.Expire(ctx, s.key(value), s.ttl).Err()
	return userID, nil
}

// Revoke deletes the token. Revoking an unknown token is not an error.
func (s *TokenStore) Revoke(ctx context.Context, value string) error {
	if err := s.client.Del(ctx, s.key(value)).Err(); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) key(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return "token:" + hex.EncodeToString(mac.Sum(nil))
}
