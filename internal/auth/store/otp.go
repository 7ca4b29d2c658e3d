package store

import (
	"context"
	"errors"
	"fmt"

	autherrors "cloudbase/internal/auth/errors"
	"cloudbase/pkg/config"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps one-time password codes with a bounded lifetime. A
// code disappears on expiry or on successful consumption, whichever
// comes first.
type OTPStore interface {
	Save(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) error
	Consume(ctx context.Context, email, code string) error
}

type redisOTPStore struct {
	client redis.Cmdable
	cfg    *config.Config
}

func NewRedisOTPStore(client redis.Cmdable, cfg *config.Config) OTPStore {
	return &redisOTPStore{
		client: client,
		cfg:    cfg,
	}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

func (s *redisOTPStore) Save(ctx context.Context, email, code string) error {
	if err := s.client.Set(ctx, otpKey(email), code, s.cfg.OTPTTL).Err(); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

func (s *redisOTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return autherrors.ErrOTPExpired
		}
		return fmt.Errorf("failed to read OTP: %w", err)
	}

	if stored != code {
		return autherrors.ErrOTPMismatch
	}
	return nil
}

func (s *redisOTPStore) Consume(ctx context.Context, email, code string) error {
	if err := s.Verify(ctx, email, code); err != nil {
		return err
	}

	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate OTP: %w", err)
	}
	return nil
}
