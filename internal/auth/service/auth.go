package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	autherrors "cloudbase/internal/auth/errors"
	"cloudbase/internal/auth/repository"
	"cloudbase/internal/auth/store"
	"cloudbase/internal/notifier"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/model"
	"cloudbase/pkg/sanitizer"
	"cloudbase/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	RequestReset(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type authService struct {
	users    repository.UserRepository
	otp      store.OTPStore
	sealer   *token.Sealer
	notifier notifier.Publisher
	cfg      *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	otp store.OTPStore,
	sealer *token.Sealer,
	notifierPub notifier.Publisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:    users,
		otp:      otp,
		sealer:   sealer,
		notifier: notifierPub,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = sanitizer.TrimAndNormalize(name)
	email = normalizeEmail(email)

	if name == "" {
		return nil, apperrors.InvalidInput("Name cannot be empty")
	}
	if email == "" {
		return nil, apperrors.InvalidInput("Email cannot be empty")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Error("Failed to create user", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered successfully", "id", user.ID, "email", email)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", apperrors.InvalidInput("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return "", apperrors.Unauthorized("Invalid email or password")
		}
		s.cfg.Log.Error("Failed to look up user", "email", email, "error", err)
		return "", apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.Unauthorized("Invalid email or password")
	}

	sealed, err := s.sealer.Seal(email)
	if err != nil {
		return "", apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "email", email)
	return sealed, nil
}

func (s *authService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.InvalidInput("Email cannot be empty")
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return apperrors.NotFoundWithID("User", email)
		}
		s.cfg.Log.Error("Failed to look up user", "email", email, "error", err)
		return apperrors.Internal("Failed to look up user", err)
	}

	code, err := generateOTP()
	if err != nil {
		return apperrors.Internal("Failed to generate OTP", err)
	}

	if err := s.otp.Save(ctx, email, code); err != nil {
		s.cfg.Log.Error("Failed to store OTP", "email", email, "error", err)
		return apperrors.Internal("Failed to store OTP", err)
	}

	event := model.NotificationEvent{
		Type:       model.NotificationPasswordOTP,
		Email:      email,
		OTP:        code,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish OTP notification", "email", email, "error", err)
		return apperrors.Internal("Failed to send OTP", err)
	}

	s.cfg.Log.Info("Password reset requested", "email", email)
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return apperrors.InvalidInput("Email and OTP are required")
	}

	if err := s.otp.Verify(ctx, email, code); err != nil {
		return mapOTPError(err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return apperrors.InvalidInput("Email and OTP are required")
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	if err := s.otp.Consume(ctx, email, code); err != nil {
		return mapOTPError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("Failed to hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, email, string(hash)); err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return apperrors.NotFoundWithID("User", email)
		}
		s.cfg.Log.Error("Failed to update password", "email", email, "error", err)
		return apperrors.Internal("Failed to update password", err)
	}

	s.cfg.Log.Info("Password reset completed", "email", email)
	return nil
}

// --- Helpers ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapOTPError(err error) error {
	if errors.Is(err, autherrors.ErrOTPExpired) || errors.Is(err, autherrors.ErrOTPMismatch) {
		return apperrors.InvalidInput("OTP is invalid or has expired")
	}
	return apperrors.Internal("Failed to verify OTP", err)
}

// generateOTP produces a uniformly random 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
