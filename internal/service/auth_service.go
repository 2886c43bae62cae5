package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"spendly/internal/auth"
	apperrors "spendly/internal/errors"
	"spendly/internal/mail"
	"spendly/internal/model"
	"spendly/internal/repository"
)

// AuthService orchestrates the credential lifecycle: signup, login, logout,
// password reset and email verification.
type AuthService interface {
	Signup(ctx context.Context, name, email, password, passwordConfirm string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*model.User, string, error)
	SendVerificationEmail(ctx context.Context, user *model.User) error
	VerifyEmail(ctx context.Context, rawToken string) (*model.User, error)
}

type authService struct {
	users          repository.UserRepository
	jwtService     *auth.JWTService
	tokenStore     auth.TokenStoreInterface
	mailer         mail.Mailer
	baseURL        string
	actionTokenTTL time.Duration
	now            func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	mailer mail.Mailer,
	baseURL string,
	actionTokenTTL time.Duration,
) AuthService {
	return &authService{
		users:          users,
		jwtService:     jwtService,
		tokenStore:     tokenStore,
		mailer:         mailer,
		baseURL:        strings.TrimRight(baseURL, "/"),
		actionTokenTTL: actionTokenTTL,
		now:            time.Now,
	}
}

// NormalizeEmail lower-cases and trims an email address. Emails are stored
// normalized so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new user with a hashed password and issues a session token.
func (s *authService) Signup(ctx context.Context, name, email, password, passwordConfirm string) (*model.User, string, error) {
	if password != passwordConfirm {
		return nil, "", apperrors.NewValidation("passwords do not match")
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	// The confirmation value is not referenced past this point and never
	// reaches storage.

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hashed,
		Role:         model.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, _, err := s.jwtService.GenerateSessionToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user and returns a session token. Unknown email and
// wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, _, err := s.jwtService.GenerateSessionToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	return user, token, nil
}

// Logout revokes the presented session token until its own expiry elapses.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return apperrors.ErrUnauthenticated
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.tokenStore.RevokeSession(ctx, claims.ID, ttl)
}

// ForgotPassword issues a single-use reset token and mails a reset link.
// A failed send clears the just-written token so the record never holds a
// digest the user cannot have received.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw, hash, err := auth.GenerateActionToken()
	if err != nil {
		return err
	}

	var token model.PasswordResetToken
	token.Set(hash, s.now().Add(s.actionTokenTTL))
	if err := s.users.UpdateResetToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Your password reset token (valid for 10 minutes)",
		Body: fmt.Sprintf(
			"Forgot your password? Submit a new password to:\n\n%s/api/v1/auth/reset-password/%s\n\nIf you didn't request this, ignore this email.",
			s.baseURL, raw,
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		// Compensating clear: the token is unusable if it never arrived.
		_ = s.users.UpdateResetToken(ctx, user.ID, model.PasswordResetToken{})
		return fmt.Errorf("%w: %v", apperrors.ErrMailDelivery, err)
	}
	return nil
}

// ResetPassword consumes a raw reset token and replaces the password.
// All session tokens issued before the reset become stale.
func (s *authService) ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*model.User, string, error) {
	if password != passwordConfirm {
		return nil, "", apperrors.NewValidation("passwords do not match")
	}

	now := s.now()
	user, err := s.users.FindByPasswordResetHash(ctx, auth.HashActionToken(rawToken), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidOrExpiredToken
		}
		return nil, "", fmt.Errorf("find user by reset token: %w", err)
	}
	// The store query already filters on expiry; re-check here so the rule
	// holds regardless of how the record was fetched.
	if user.PasswordReset.ExpiresAt == nil || !now.Before(*user.PasswordReset.ExpiresAt) {
		return nil, "", apperrors.ErrInvalidOrExpiredToken
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashed, now); err != nil {
		return nil, "", fmt.Errorf("update password: %w", err)
	}
	user.PasswordHash = hashed
	user.PasswordChangedAt = &now
	user.PasswordReset.Clear()

	token, _, err := s.jwtService.GenerateSessionToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	return user, token, nil
}

// SendVerificationEmail issues a verification token for an authenticated user
// and mails a confirmation link.
func (s *authService) SendVerificationEmail(ctx context.Context, user *model.User) error {
	raw, hash, err := auth.GenerateActionToken()
	if err != nil {
		return err
	}

	var token model.EmailVerificationToken
	token.Set(hash, s.now().Add(s.actionTokenTTL))
	if err := s.users.UpdateVerificationToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Verify your email address (valid for 10 minutes)",
		Body: fmt.Sprintf(
			"Confirm your email address by visiting:\n\n%s/api/v1/auth/email-token-verify/%s",
			s.baseURL, raw,
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		_ = s.users.UpdateVerificationToken(ctx, user.ID, model.EmailVerificationToken{})
		return fmt.Errorf("%w: %v", apperrors.ErrMailDelivery, err)
	}
	return nil
}

// VerifyEmail consumes a raw verification token and marks the email verified.
func (s *authService) VerifyEmail(ctx context.Context, rawToken string) (*model.User, error) {
	now := s.now()
	user, err := s.users.FindByVerificationHash(ctx, auth.HashActionToken(rawToken), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("find user by verification token: %w", err)
	}
	if user.EmailVerification.ExpiresAt == nil || !now.Before(*user.EmailVerification.ExpiresAt) {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("mark email verified: %w", err)
	}
	user.EmailVerified = true
	user.EmailVerification.Clear()
	return user, nil
}
