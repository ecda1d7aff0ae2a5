package redisx

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out token IDs until the token would expire anyway.
type RevocationStore struct{ client *redis.Client }

func NewRevocationStore(c *redis.Client) *RevocationStore {
	return &RevocationStore{client: c}
}

func (s *RevocationStore) key(jti string) string { return fmt.Sprintf("revoked_jwt:%s", jti) }

// Revoke marks jti as revoked for ttl. Non-positive ttls are ignored since the
// token is already expired.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(jti), 1, ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
