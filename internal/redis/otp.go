package redisx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// OTPStore keeps one-time passwords for admin password resets.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOTPStore(c *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: c, ttl: ttl}
}

func (s *OTPStore) key(email string) string {
	return fmt.Sprintf("password_change_otp:%s", strings.ToLower(email))
}

func (s *OTPStore) Save(ctx context.Context, email, otp string) error {
	return s.client.Set(ctx, s.key(email), otp, s.ttl).Err()
}

// Get returns "" when no OTP is pending for email.
func (s *OTPStore) Get(ctx context.Context, email string) (string, error) {
	v, err := s.client.Get(ctx, s.key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.key(email)).Err()
}
