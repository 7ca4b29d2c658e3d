package service

import (
	"context"
	"testing"
	"time"

	autherrors "cloudbase/internal/auth/errors"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	"cloudbase/pkg/logger"
	"cloudbase/pkg/model"
	"cloudbase/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFunc         func(ctx context.Context, user *model.User) error
	findByEmailFunc    func(ctx context.Context, email string) (*model.User, error)
	updatePasswordFunc func(ctx context.Context, email, passwordHash string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "65f000000000000000000030"
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, autherrors.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, email, passwordHash)
	}
	return nil
}

type mockOTPStore struct {
	saved       map[string]string
	verifyFunc  func(ctx context.Context, email, code string) error
	consumeFunc func(ctx context.Context, email, code string) error
}

func (m *mockOTPStore) Save(ctx context.Context, email, code string) error {
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[email] = code
	return nil
}

func (m *mockOTPStore) Verify(ctx context.Context, email, code string) error {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, email, code)
	}
	return nil
}

func (m *mockOTPStore) Consume(ctx context.Context, email, code string) error {
	if m.consumeFunc != nil {
		return m.consumeFunc(ctx, email, code)
	}
	return nil
}

type mockNotifier struct {
	events []model.NotificationEvent
	err    error
}

func (m *mockNotifier) Publish(ctx context.Context, event model.NotificationEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:    logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}),
		OTPTTL: 10 * time.Minute,
	}
}

func testSealer(t *testing.T) *token.Sealer {
	t.Helper()
	sealer, err := token.NewSealer("", time.Hour)
	if err != nil {
		t.Fatalf("failed to build sealer: %v", err)
	}
	return sealer
}

func newTestService(t *testing.T, users *mockUserRepository, otp *mockOTPStore, notifierPub *mockNotifier) AuthService {
	t.Helper()
	return NewAuthService(users, otp, testSealer(t), notifierPub, testConfig())
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestLogin_IssuesParsableToken(t *testing.T) {
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{Email: email, PasswordHash: hashOf(t, "hunter2hunter2")}, nil
		},
	}

	svc := newTestService(t, users, &mockOTPStore{}, &mockNotifier{})
	sealed, err := svc.Login(context.Background(), "Traveler@Example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	email, err := testSealer(t).Parse(sealed)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if email != "traveler@example.com" {
		t.Errorf("expected normalized email in token, got %s", email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{Email: email, PasswordHash: hashOf(t, "correct-horse")}, nil
		},
	}

	svc := newTestService(t, users, &mockOTPStore{}, &mockNotifier{})
	_, err := svc.Login(context.Background(), "traveler@example.com", "wrong-password")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService(t, &mockUserRepository{}, &mockOTPStore{}, &mockNotifier{})
	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever123")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	var created *model.User
	users := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	svc := newTestService(t, users, &mockOTPStore{}, &mockNotifier{})
	_, err := svc.Register(context.Background(), "  Asha   Rao ", "Asha@Example.com", "strongpassword")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.PasswordHash == "strongpassword" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("strongpassword")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if created.Name != "Asha Rao" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
	if created.Email != "asha@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return autherrors.ErrDuplicateEmail
		},
	}

	svc := newTestService(t, users, &mockOTPStore{}, &mockNotifier{})
	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "strongpassword")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService(t, &mockUserRepository{}, &mockOTPStore{}, &mockNotifier{})
	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "short")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestRequestReset_StoresAndPublishesOTP(t *testing.T) {
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{Email: email}, nil
		},
	}
	otp := &mockOTPStore{}
	pub := &mockNotifier{}

	svc := newTestService(t, users, otp, pub)
	if err := svc.RequestReset(context.Background(), "traveler@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, ok := otp.saved["traveler@example.com"]
	if !ok {
		t.Fatal("expected OTP to be stored")
	}
	if len(code) != 6 {
		t.Errorf("expected 6-digit OTP, got %q", code)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(pub.events))
	}
	event := pub.events[0]
	if event.Type != model.NotificationPasswordOTP {
		t.Errorf("expected type %s, got %s", model.NotificationPasswordOTP, event.Type)
	}
	if event.OTP != code {
		t.Error("published OTP differs from stored OTP")
	}
}

func TestRequestReset_UnknownUser(t *testing.T) {
	svc := newTestService(t, &mockUserRepository{}, &mockOTPStore{}, &mockNotifier{})
	err := svc.RequestReset(context.Background(), "nobody@example.com")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestVerifyOTP_Matrix(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantCode string
	}{
		{"valid", nil, ""},
		{"expired", autherrors.ErrOTPExpired, apperrors.CodeInvalidInput},
		{"mismatch", autherrors.ErrOTPMismatch, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otp := &mockOTPStore{
				verifyFunc: func(ctx context.Context, email, code string) error {
					return tt.storeErr
				},
			}

			svc := newTestService(t, &mockUserRepository{}, otp, &mockNotifier{})
			err := svc.VerifyOTP(context.Background(), "traveler@example.com", "123456")

			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, appErr.Code)
			}
		})
	}
}

func TestResetPassword_UpdatesHash(t *testing.T) {
	var storedHash string
	users := &mockUserRepository{
		updatePasswordFunc: func(ctx context.Context, email, passwordHash string) error {
			storedHash = passwordHash
			return nil
		},
	}

	svc := newTestService(t, users, &mockOTPStore{}, &mockNotifier{})
	if err := svc.ResetPassword(context.Background(), "traveler@example.com", "123456", "newpassword1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("newpassword1")); err != nil {
		t.Errorf("stored hash does not match new password: %v", err)
	}
}

func TestResetPassword_RejectedOTP(t *testing.T) {
	otp := &mockOTPStore{
		consumeFunc: func(ctx context.Context, email, code string) error {
			return autherrors.ErrOTPMismatch
		},
	}
	updateCalled := false
	users := &mockUserRepository{
		updatePasswordFunc: func(ctx context.Context, email, passwordHash string) error {
			updateCalled = true
			return nil
		},
	}

	svc := newTestService(t, users, otp, &mockNotifier{})
	err := svc.ResetPassword(context.Background(), "traveler@example.com", "000000", "newpassword1")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
	if updateCalled {
		t.Error("password must not change when OTP is rejected")
	}
}
