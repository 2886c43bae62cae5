package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spendly/internal/model"
)

// UserRepository defines persistence operations for users. Token and password
// updates touch only their own columns so unrelated fields are never
// re-validated or rewritten.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPasswordResetHash(ctx context.Context, hash string, now time.Time) (*model.User, error)
	FindByVerificationHash(ctx context.Context, hash string, now time.Time) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateResetToken(ctx context.Context, userID uuid.UUID, token model.PasswordResetToken) error
	UpdateVerificationToken(ctx context.Context, userID uuid.UUID, token model.EmailVerificationToken) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByPasswordResetHash(ctx context.Context, hash string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("password_reset_hash = ? AND password_reset_expires_at > ?", hash, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByVerificationHash(ctx context.Context, hash string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email_verification_hash = ? AND email_verification_expires_at > ?", hash, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateResetToken writes (or clears, when the fields are nil) only the
// password-reset token pair.
func (r *userRepository) UpdateResetToken(ctx context.Context, userID uuid.UUID, token model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_reset_hash":       token.Hash,
			"password_reset_expires_at": token.ExpiresAt,
		}).Error
}

// UpdateVerificationToken writes (or clears) only the email-verification token pair.
func (r *userRepository) UpdateVerificationToken(ctx context.Context, userID uuid.UUID, token model.EmailVerificationToken) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"email_verification_hash":       token.Hash,
			"email_verification_expires_at": token.ExpiresAt,
		}).Error
}

// UpdatePassword replaces the password hash, records the change time and
// clears any outstanding reset token in a single UPDATE.
func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":             passwordHash,
			"password_changed_at":       changedAt,
			"password_reset_hash":       nil,
			"password_reset_expires_at": nil,
		}).Error
}

// MarkEmailVerified flips the verified flag and clears the verification token.
func (r *userRepository) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"email_verified":                true,
			"email_verification_hash":       nil,
			"email_verification_expires_at": nil,
		}).Error
}
