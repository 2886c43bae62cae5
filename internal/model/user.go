package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role controls access to restricted endpoints.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PasswordResetToken is the stored digest of the single outstanding
// password-reset request for a user. Only the SHA-256 digest of the raw
// token is persisted; the raw value travels once, in the reset link.
type PasswordResetToken struct {
	Hash      *string    `json:"-" gorm:"column:hash;size:64;index"`
	ExpiresAt *time.Time `json:"-" gorm:"column:expires_at"`
}

// Set replaces any previous outstanding reset token.
func (t *PasswordResetToken) Set(hash string, expiresAt time.Time) {
	t.Hash = &hash
	t.ExpiresAt = &expiresAt
}

// Clear drops the token pair after consumption or a failed delivery.
func (t *PasswordResetToken) Clear() {
	t.Hash = nil
	t.ExpiresAt = nil
}

// EmailVerificationToken mirrors PasswordResetToken for the verification
// flow. Kept as a distinct type so the two flows cannot be mixed up.
type EmailVerificationToken struct {
	Hash      *string    `json:"-" gorm:"column:hash;size:64;index"`
	ExpiresAt *time.Time `json:"-" gorm:"column:expires_at"`
}

// Set replaces any previous outstanding verification token.
func (t *EmailVerificationToken) Set(hash string, expiresAt time.Time) {
	t.Hash = &hash
	t.ExpiresAt = &expiresAt
}

// Clear drops the token pair after consumption or a failed delivery.
func (t *EmailVerificationToken) Clear() {
	t.Hash = nil
	t.ExpiresAt = nil
}

// User represents an authenticated user in the system.
type User struct {
	ID                uuid.UUID              `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string                 `json:"name" gorm:"size:255;not null"`
	Email             string                 `json:"email" gorm:"uniqueIndex;size:255;not null"` // stored lower-cased
	PasswordHash      string                 `json:"-" gorm:"size:255;not null"`                 // Never expose in JSON
	Role              Role                   `json:"role" gorm:"size:50;not null;default:'user'"`
	EmailVerified     bool                   `json:"email_verified" gorm:"default:false"`
	PasswordChangedAt *time.Time             `json:"-"`
	PasswordReset     PasswordResetToken     `json:"-" gorm:"embedded;embeddedPrefix:password_reset_"`
	EmailVerification EmailVerificationToken `json:"-" gorm:"embedded;embeddedPrefix:email_verification_"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	DeletedAt         gorm.DeletedAt         `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PasswordChangedAfter reports whether the password was replaced strictly
// after the given token issue time. JWT issued-at has second precision, so
// the stored timestamp is truncated before comparing.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}
